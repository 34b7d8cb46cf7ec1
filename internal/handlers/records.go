package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/board"
	"github.com/vancomm/minesweeper-engine/internal/records"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

type RecordsHandler struct {
	logger   logrus.FieldLogger
	recorder records.Recorder
}

func NewRecordsHandler(logger logrus.FieldLogger, recorder records.Recorder) *RecordsHandler {
	return &RecordsHandler{logger: logger, recorder: recorder}
}

func (h *RecordsHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseHighscoresDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	filter := records.Filter{Limit: dto.Limit}
	if !dto.Empty() {
		params := dto.Params(board.Params{})
		filter.Params = &params
	}
	scores, err := h.recorder.Highscores(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.WithError(err).Error("unable to fetch highscores")
		return
	}
	sendJSONOrLog(w, h.logger, scores)
}

// Healthz reports liveness along with the number of sessions held.
func Healthz(logger logrus.FieldLogger, store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sendJSONOrLog(w, logger, map[string]any{
			"status":   "ok",
			"sessions": store.Count(),
		})
	}
}
