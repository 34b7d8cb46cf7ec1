package session

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/board"
)

// newTestSession returns a session whose board is size x size with mines
// at the given points.
func newTestSession(t *testing.T, size int, mines ...board.Point) (*Session, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s, err := New("test", board.Params{Size: size, MineCount: len(mines)},
		rand.New(rand.NewPCG(1, 2)), logger)
	require.NoError(t, err)

	b, err := board.NewWithMines(size, mines)
	require.NoError(t, err)
	s.board = b
	return s, hook
}

func TestNewRejectsInvalidParams(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	_, err := New("x", board.Params{Size: 3, MineCount: 9}, rand.New(rand.NewPCG(1, 2)), logger)
	assert.ErrorIs(t, err, board.ErrInvalidConfiguration)
}

func TestDispatchOpenWins(t *testing.T) {
	s, hook := newTestSession(t, 3, board.Point{X: 0, Y: 0})

	res, err := s.Dispatch(Action{Kind: Open, Point: board.Point{X: 2, Y: 2}})
	require.NoError(t, err)
	require.NotNil(t, res.Reveal)
	assert.Equal(t, board.Revealed, res.Reveal.Kind)
	assert.True(t, res.Reveal.Won)
	assert.Equal(t, []board.Point{{X: 0, Y: 0}}, res.Mines)

	assert.Equal(t, Won, s.Status())
	view := s.View()
	assert.True(t, view.Won)
	assert.False(t, view.Dead)
	assert.NotNil(t, view.EndedAt)
	assert.Equal(t, 1, view.Moves)
	assert.Equal(t, board.UnflaggedMine, view.Grid[0])
	assert.Equal(t, "game over", hook.LastEntry().Message)
}

func TestDispatchMineHitEndsGame(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 0, Y: 0}, board.Point{X: 2, Y: 2})

	res, err := s.Dispatch(Action{Kind: Open, Point: board.Point{X: 2, Y: 2}})
	require.NoError(t, err)
	assert.Equal(t, board.MineHit, res.Reveal.Kind)
	assert.ElementsMatch(t, []board.Point{{X: 0, Y: 0}, {X: 2, Y: 2}}, res.Mines)
	assert.Equal(t, Lost, s.Status())

	view := s.View()
	assert.True(t, view.Dead)
	assert.Equal(t, board.ExplodedMine, view.Grid[8])
	assert.Equal(t, board.UnflaggedMine, view.Grid[0])

	for _, kind := range []ActionKind{Open, Flag, Chord} {
		_, err = s.Dispatch(Action{Kind: kind, Point: board.Point{X: 1, Y: 1}})
		assert.ErrorIs(t, err, ErrGameOver, kind.String())
	}
}

func TestDispatchInvalidCoordinate(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 0, Y: 0})

	_, err := s.Dispatch(Action{Kind: Open, Point: board.Point{X: 3, Y: 0}})
	assert.ErrorIs(t, err, board.ErrInvalidCoordinate)
	_, err = s.Dispatch(Action{Kind: Flag, Point: board.Point{X: 0, Y: -1}})
	assert.ErrorIs(t, err, board.ErrInvalidCoordinate)
	assert.Equal(t, Playing, s.Status())
}

func TestDispatchUnknownAction(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 0, Y: 0})
	_, err := s.Dispatch(Action{Kind: ActionKind(42)})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFlagDoesNotEndGame(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 0, Y: 0})

	res, err := s.Dispatch(Action{Kind: Flag, Point: board.Point{X: 0, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, &board.FlagOutcome{Flagged: true, Changed: true}, res.Flag)

	res, err = s.Dispatch(Action{Kind: Open, Point: board.Point{X: 0, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, board.Unchanged, res.Reveal.Kind)
	assert.Equal(t, Playing, s.Status())
	assert.Equal(t, 1, s.View().Flags)
}

func TestResetBuildsNewBoard(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 0, Y: 0})

	_, err := s.Dispatch(Action{Kind: Open, Point: board.Point{X: 0, Y: 0}})
	require.NoError(t, err)
	require.Equal(t, Lost, s.Status())
	old := s.board

	_, err = s.Dispatch(Action{Kind: Reset})
	require.NoError(t, err)
	assert.Equal(t, Playing, s.Status())
	assert.NotSame(t, old, s.board)
	assert.Equal(t, board.Params{Size: 3, MineCount: 1}, s.Params())
	assert.Nil(t, s.View().EndedAt)
	assert.Zero(t, s.View().Moves)

	_, err = s.Dispatch(Action{Kind: Reset, Params: &board.Params{Size: 5, MineCount: 4}})
	require.NoError(t, err)
	assert.Equal(t, board.Params{Size: 5, MineCount: 4}, s.Params())

	current := s.board
	_, err = s.Dispatch(Action{Kind: Reset, Params: &board.Params{Size: 2, MineCount: 4}})
	assert.ErrorIs(t, err, board.ErrInvalidConfiguration)
	assert.Same(t, current, s.board)
}

func TestForfeit(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 1, Y: 1})

	res, err := s.Dispatch(Action{Kind: Forfeit})
	require.NoError(t, err)
	assert.Equal(t, []board.Point{{X: 1, Y: 1}}, res.Mines)
	assert.Equal(t, Lost, s.Status())

	res, err = s.Dispatch(Action{Kind: Forfeit})
	require.NoError(t, err)
	assert.Equal(t, Lost, s.Status())
	assert.Len(t, res.Mines, 1)
}

func TestFinishedSummaryOncePerGame(t *testing.T) {
	s, _ := newTestSession(t, 3, board.Point{X: 0, Y: 0})

	res, err := s.Dispatch(Action{Kind: Flag, Point: board.Point{X: 0, Y: 0}})
	require.NoError(t, err)
	assert.Nil(t, res.Finished, "game still running")

	res, err = s.Dispatch(Action{Kind: Open, Point: board.Point{X: 2, Y: 2}})
	require.NoError(t, err)
	require.NotNil(t, res.Finished)
	assert.True(t, res.Finished.Won)
	assert.Equal(t, "test", res.Finished.ID)
	assert.Equal(t, 2, res.Finished.Moves)
	assert.False(t, res.Finished.EndedAt.Before(res.Finished.StartedAt))

	res, err = s.Dispatch(Action{Kind: Forfeit})
	require.NoError(t, err)
	assert.Nil(t, res.Finished, "already finished")

	_, err = s.Dispatch(Action{Kind: Reset})
	require.NoError(t, err)
	res, err = s.Dispatch(Action{Kind: Forfeit})
	require.NoError(t, err)
	require.NotNil(t, res.Finished)
	assert.False(t, res.Finished.Won)
	assert.Zero(t, res.Finished.Moves)
}

func TestParamsCheck(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	errTooBig := errors.New("too big")
	check := WithParamsCheck(func(p board.Params) error {
		if p.Size > 8 {
			return errTooBig
		}
		return nil
	})

	_, err := New("x", board.Params{Size: 9, MineCount: 1}, rand.New(rand.NewPCG(1, 2)), logger, check)
	assert.ErrorIs(t, err, errTooBig)

	s, err := New("x", board.Params{Size: 8, MineCount: 1}, rand.New(rand.NewPCG(1, 2)), logger, check)
	require.NoError(t, err)

	results, err := s.Execute("n 65 1")
	assert.ErrorIs(t, err, errTooBig)
	assert.Empty(t, results)
	assert.Equal(t, board.Params{Size: 8, MineCount: 1}, s.Params())

	_, err = s.Dispatch(Action{Kind: Reset})
	require.NoError(t, err, "current params are not rechecked")
	_, err = s.Execute("n 4 2")
	require.NoError(t, err)
	assert.Equal(t, board.Params{Size: 4, MineCount: 2}, s.Params())
}

func TestDispatchIsSerialised(t *testing.T) {
	s, _ := newTestSession(t, 4, board.Point{X: 0, Y: 0})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := board.Point{X: i % 4, Y: 3}
			for range 10 {
				_, err := s.Dispatch(Action{Kind: Flag, Point: p})
				assert.NoError(t, err)
				_ = s.View()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, s.View().Flags)
	assert.Equal(t, 80, s.View().Moves)
}
