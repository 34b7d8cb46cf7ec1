package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vancomm/minesweeper-engine/internal/board"
)

type Config struct {
	Addr        string `env:"APP_ADDR" envDefault:":8080"`
	BasePath    string `env:"APP_BASE_PATH"`
	Development bool   `env:"DEVELOPMENT"`

	Log      Log
	Game     Game
	Token    Token
	Database Database
}

type Log struct {
	Level      string `env:"MINES_LOG_LEVEL" envDefault:"info"`
	File       string `env:"MINES_LOG_FILE"`
	MaxSizeMB  int    `env:"MINES_LOG_MAX_SIZE" envDefault:"50"`
	MaxBackups int    `env:"MINES_LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MINES_LOG_MAX_AGE" envDefault:"28"`
}

type Game struct {
	GridSize      int           `env:"MINES_GRID_SIZE" envDefault:"10"`
	MineCount     int           `env:"MINES_MINE_COUNT" envDefault:"10"`
	MaxGridSize   int           `env:"MINES_MAX_GRID_SIZE" envDefault:"64"`
	SessionTTL    time.Duration `env:"MINES_SESSION_TTL" envDefault:"1h"`
	SweepInterval time.Duration `env:"MINES_SWEEP_INTERVAL" envDefault:"1m"`
}

func (g Game) DefaultParams() board.Params {
	return board.Params{Size: g.GridSize, MineCount: g.MineCount}
}

// Validate checks params requested by a client against the board rules and
// the configured size limit.
func (g Game) Validate(p board.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Size > g.MaxGridSize {
		return fmt.Errorf(
			"%w: size %d exceeds %d", board.ErrInvalidConfiguration, p.Size, g.MaxGridSize,
		)
	}
	return nil
}

type Token struct {
	Secret   string        `env:"MINES_TOKEN_SECRET"`
	Lifetime time.Duration `env:"MINES_TOKEN_LIFETIME" envDefault:"24h"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Game.Validate(cfg.Game.DefaultParams()); err != nil {
		return nil, fmt.Errorf("default game: %w", err)
	}
	if cfg.Game.SessionTTL <= 0 || cfg.Game.SweepInterval <= 0 {
		return nil, fmt.Errorf("session ttl and sweep interval must be positive")
	}
	return &cfg, nil
}
