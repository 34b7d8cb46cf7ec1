package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/board"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.Development)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, board.Params{Size: 10, MineCount: 10}, cfg.Game.DefaultParams())
	assert.Equal(t, 64, cfg.Game.MaxGridSize)
	assert.Equal(t, time.Hour, cfg.Game.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.Token.Lifetime)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"APP_ADDR":             "127.0.0.1:9000",
		"APP_BASE_PATH":        "/api",
		"DEVELOPMENT":          "1",
		"MINES_GRID_SIZE":      "16",
		"MINES_MINE_COUNT":     "40",
		"MINES_SESSION_TTL":    "15m",
		"MINES_TOKEN_SECRET":   "hunter2",
		"MINES_TOKEN_LIFETIME": "1h",
		"DATABASE_URL":         "postgres://u:p@db:5432/mines",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/api", cfg.BasePath)
	assert.True(t, cfg.Development)
	assert.Equal(t, board.Params{Size: 16, MineCount: 40}, cfg.Game.DefaultParams())
	assert.Equal(t, 15*time.Minute, cfg.Game.SessionTTL)
	assert.Equal(t, "hunter2", cfg.Token.Secret)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadRejectsBadDefaults(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"MINES_GRID_SIZE":  "3",
		"MINES_MINE_COUNT": "9",
	})
	assert.ErrorIs(t, err, board.ErrInvalidConfiguration)

	_, err = LoadFrom(map[string]string{"MINES_GRID_SIZE": "ten"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"MINES_SESSION_TTL": "0s"})
	assert.Error(t, err)
}

func TestGameValidate(t *testing.T) {
	g := Game{MaxGridSize: 30}
	assert.NoError(t, g.Validate(board.Params{Size: 30, MineCount: 99}))
	assert.ErrorIs(t, g.Validate(board.Params{Size: 31, MineCount: 10}), board.ErrInvalidConfiguration)
	assert.ErrorIs(t, g.Validate(board.Params{Size: 5, MineCount: 25}), board.ErrInvalidConfiguration)
}

func TestDatabaseConnString(t *testing.T) {
	url, err := Database{URL: "postgres://x"}.ConnString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://x", url)

	passwordFile := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("s3cr3t&\n"), 0o600))

	url, err = Database{
		Username:     "mines",
		PasswordFile: passwordFile,
		Host:         "db",
		Port:         5433,
		DBName:       "records",
		SSLMode:      "disable",
	}.ConnString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://mines:s3cr3t%26@db:5433/records?sslmode=disable", url)

	_, err = Database{Host: "db"}.ConnString()
	assert.Error(t, err)
}
