package handlers

import (
	"context"
	"errors"
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/board"
	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/records"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

var (
	errMissingToken = errors.New("missing or invalid session token")
	errForeignToken = errors.New("token was issued for another session")
)

type GameHandler struct {
	logger   logrus.FieldLogger
	store    *session.Store
	recorder records.Recorder
	jwt      *config.JWT
	ws       *config.WebSocket
	game     config.Game
	newRand  func() *rand.Rand
	newID    func() string
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func NewGameHandler(
	logger logrus.FieldLogger,
	store *session.Store,
	recorder records.Recorder,
	jwt *config.JWT,
	ws *config.WebSocket,
	game config.Game,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		store:    store,
		recorder: recorder,
		jwt:      jwt,
		ws:       ws,
		game:     game,
		newRand:  createRand,
		newID:    uuid.NewString,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, board.ErrInvalidCoordinate),
		errors.Is(err, board.ErrInvalidConfiguration),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, session.ErrUnknownCommand),
		errors.Is(err, session.ErrBadArguments):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// authorize resolves the session named in the path, requiring a token
// issued for it.
func (g *GameHandler) authorize(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		sendError(w, g.logger, http.StatusUnauthorized, errMissingToken)
		return nil, false
	}
	if claims.SessionID != id {
		sendError(w, g.logger, http.StatusForbidden, errForeignToken)
		return nil, false
	}
	s, err := g.store.Get(id)
	if err != nil {
		sendError(w, g.logger, statusFor(err), err)
		return nil, false
	}
	return s, true
}

// record stores the outcome of a game if res is the result that ended it.
func (g *GameHandler) record(ctx context.Context, res session.Result) {
	sum := res.Finished
	if sum == nil {
		return
	}
	err := g.recorder.Record(ctx, records.Record{
		GameSessionID: sum.ID,
		Params:        sum.Params,
		Won:           sum.Won,
		Moves:         sum.Moves,
		StartedAt:     sum.StartedAt,
		EndedAt:       sum.EndedAt,
	})
	if err != nil && !errors.Is(err, records.ErrAlreadyRecorded) {
		g.logger.WithError(err).WithField("session", sum.ID).Error("unable to record game")
	}
}

func (g *GameHandler) dispatch(
	w http.ResponseWriter, r *http.Request, s *session.Session, a session.Action,
) {
	res, err := s.Dispatch(a)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			g.logger.WithError(err).Error("unable to apply action")
		}
		sendError(w, g.logger, status, err)
		return
	}
	g.record(r.Context(), res)
	sendJSONOrLog(w, g.logger, MoveResultDTO{View: s.View(), Result: res})
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseParamsDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	params := dto.Params(g.game.DefaultParams())

	id := g.newID()
	s, err := session.New(
		id, params, g.newRand(), g.logger, session.WithParamsCheck(g.game.Validate),
	)
	if err != nil {
		sendError(w, g.logger, statusFor(err), err)
		return
	}
	token, err := g.jwt.Sign(id)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.WithError(err).Error("unable to sign session token")
		return
	}
	g.store.Add(s)

	g.logger.WithFields(logrus.Fields{
		"session": id,
		"params":  params.String(),
	}).Debug("created session")

	sendJSONOrLog(w, g.logger, GameSessionDTO{View: s.View(), Token: token})
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := g.store.Get(r.PathValue("id"))
	if err != nil {
		sendError(w, g.logger, statusFor(err), err)
		return
	}
	sendJSONOrLog(w, g.logger, GameSessionDTO{View: s.View()})
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	action, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	s, ok := g.authorize(w, r)
	if !ok {
		return
	}
	g.dispatch(w, r, s, action)
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseParamsDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	s, ok := g.authorize(w, r)
	if !ok {
		return
	}
	action := session.Action{Kind: session.Reset}
	if !dto.Empty() {
		params := dto.Params(s.Params())
		action.Params = &params
	}
	g.dispatch(w, r, s, action)
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	s, ok := g.authorize(w, r)
	if !ok {
		return
	}
	g.dispatch(w, r, s, session.Action{Kind: session.Forfeit})
}
