// Package records keeps a log of finished games and answers highscore
// queries over it. Boards themselves are never stored.
package records

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/minesweeper-engine/internal/board"
)

var ErrAlreadyRecorded = errors.New("game already recorded")

type Record struct {
	GameSessionID string
	Params        board.Params
	Won           bool
	Moves         int
	StartedAt     time.Time
	EndedAt       time.Time
}

type Highscore struct {
	GameSessionID string    `json:"game_session_id" db:"game_session_id"`
	Size          int       `json:"size" db:"size"`
	MineCount     int       `json:"mine_count" db:"mine_count"`
	Moves         int       `json:"moves" db:"moves"`
	PlaytimeMs    float64   `json:"playtime_ms" db:"playtime_ms"`
	EndedAt       time.Time `json:"ended_at" db:"ended_at"`
}

const DefaultLimit = 50

type Filter struct {
	Params *board.Params
	Limit  int
}

type Recorder interface {
	Record(ctx context.Context, r Record) error
	Highscores(ctx context.Context, f Filter) ([]Highscore, error)
	Close()
}

// Nop is the recorder used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Record) error { return nil }

func (Nop) Highscores(context.Context, Filter) ([]Highscore, error) {
	return []Highscore{}, nil
}

func (Nop) Close() {}
