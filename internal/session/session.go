// Package session owns one Minesweeper game per session and serialises the
// actions a caller sends to it.
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/board"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrUnknownAction = errors.New("unknown action")
)

type Status int

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type ActionKind int

const (
	Noop ActionKind = iota
	Open
	Flag
	Chord
	Reset
	Forfeit
)

func (k ActionKind) String() string {
	switch k {
	case Noop:
		return "noop"
	case Open:
		return "open"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	case Reset:
		return "reset"
	case Forfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseMove parses the cell actions a client may name: open, flag, chord.
func ParseMove(s string) (ActionKind, error) {
	switch s {
	case "open":
		return Open, nil
	case "flag":
		return Flag, nil
	case "chord":
		return Chord, nil
	}
	return Noop, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Action is the single input a session accepts. Cell actions use Point;
// Reset uses Params when set and the current params otherwise.
type Action struct {
	Kind ActionKind `json:"kind"`
	board.Point
	Params *board.Params `json:"-"`
}

type Result struct {
	Action Action               `json:"action"`
	Reveal *board.RevealOutcome `json:"reveal,omitempty"`
	Flag   *board.FlagOutcome   `json:"flag,omitempty"`
	Mines  []board.Point        `json:"mines,omitempty"`

	// Finished is set on the one result that ended the game.
	Finished *Summary `json:"-"`
}

type Session struct {
	mu        sync.Mutex
	id        string
	rnd       *rand.Rand
	log       logrus.FieldLogger
	now       func() time.Time
	check     func(board.Params) error
	board     *board.Board
	status    Status
	moves     int
	startedAt time.Time
	endedAt   time.Time
	touchedAt time.Time
}

type Option func(*Session)

// WithParamsCheck adds a check that params for a new board must pass on
// top of the board rules, both at creation and on reset.
func WithParamsCheck(check func(board.Params) error) Option {
	return func(s *Session) {
		s.check = check
	}
}

func New(
	id string, params board.Params, rnd *rand.Rand, log logrus.FieldLogger,
	opts ...Option,
) (*Session, error) {
	s := &Session{
		id:  id,
		rnd: rnd,
		log: log.WithField("session", id),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.reset(&params); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) reset(params *board.Params) error {
	p := params
	if p == nil {
		bp := s.board.Params()
		p = &bp
	} else if s.check != nil {
		if err := s.check(*p); err != nil {
			return err
		}
	}
	b, err := board.New(*p, s.rnd)
	if err != nil {
		return err
	}
	s.board = b
	s.status = Playing
	s.moves = 0
	s.startedAt = s.now().UTC()
	s.endedAt = time.Time{}
	s.touchedAt = s.startedAt
	s.log.WithField("params", p.String()).Debug("new board")
	return nil
}

func (s *Session) finish(status Status, res *Result) {
	s.status = status
	s.endedAt = s.now().UTC()
	s.log.WithFields(logrus.Fields{
		"status": status,
		"moves":  s.moves,
		"params": s.board.Params().String(),
	}).Info("game over")
	sum := s.summary()
	res.Finished = &sum
	res.Mines = s.board.RevealAllMines()
}

func (s *Session) settle(out board.RevealOutcome, res *Result) {
	if out.Kind != board.Unchanged {
		s.moves++
	}
	switch {
	case out.Kind == board.MineHit:
		s.finish(Lost, res)
	case out.Won:
		s.finish(Won, res)
	}
}

// Dispatch applies one action to the session's board. Each call runs to
// completion, cascades included, before the next one is accepted.
func (s *Session) Dispatch(a Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touchedAt = s.now().UTC()
	res := Result{Action: a}

	switch a.Kind {
	case Noop:
		return res, nil
	case Reset:
		return res, s.reset(a.Params)
	case Forfeit:
		if s.status == Playing {
			s.finish(Lost, &res)
		} else {
			res.Mines = s.board.RevealAllMines()
		}
		return res, nil
	case Open, Flag, Chord:
	default:
		return res, fmt.Errorf("%w: %d", ErrUnknownAction, a.Kind)
	}

	if s.status != Playing {
		return res, ErrGameOver
	}

	switch a.Kind {
	case Open:
		out, err := s.board.Reveal(a.X, a.Y)
		if err != nil {
			return res, err
		}
		res.Reveal = &out
		s.settle(out, &res)
	case Chord:
		out, err := s.board.Chord(a.X, a.Y)
		if err != nil {
			return res, err
		}
		res.Reveal = &out
		s.settle(out, &res)
	case Flag:
		out, err := s.board.ToggleFlag(a.X, a.Y)
		if err != nil {
			return res, err
		}
		if out.Changed {
			s.moves++
		}
		res.Flag = &out
	}
	return res, nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Finished() bool {
	return s.Status() != Playing
}

func (s *Session) Params() board.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Params()
}

// IdleSince returns the time of the last action, or of creation.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

type Summary struct {
	ID        string
	Params    board.Params
	Won       bool
	Moves     int
	StartedAt time.Time
	EndedAt   time.Time
}

func (s *Session) summary() Summary {
	return Summary{
		ID:        s.id,
		Params:    s.board.Params(),
		Won:       s.status == Won,
		Moves:     s.moves,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
}

type View struct {
	ID        string     `json:"game_session_id"`
	Grid      board.Grid `json:"grid"`
	Size      int        `json:"size"`
	MineCount int        `json:"mine_count"`
	Flags     int        `json:"flags"`
	Status    Status     `json:"status"`
	Dead      bool       `json:"dead"`
	Won       bool       `json:"won"`
	Moves     int        `json:"moves"`
	StartedAt int64      `json:"started_at"`
	EndedAt   *int64     `json:"ended_at,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endedAt *int64
	if !s.endedAt.IsZero() {
		e := s.endedAt.UnixMilli()
		endedAt = &e
	}
	return View{
		ID:        s.id,
		Grid:      s.board.Snapshot(),
		Size:      s.board.Size(),
		MineCount: s.board.MineCount(),
		Flags:     s.board.Flags(),
		Status:    s.status,
		Dead:      s.status == Lost,
		Won:       s.status == Won,
		Moves:     s.moves,
		StartedAt: s.startedAt.UnixMilli(),
		EndedAt:   endedAt,
	}
}
