package app

import (
	"net/http"

	"github.com/vancomm/minesweeper-engine/internal/handlers"
	"github.com/vancomm/minesweeper-engine/internal/records"
)

func (a *App) loadRoutes(router *http.ServeMux, recorder records.Recorder) {
	game := handlers.NewGameHandler(
		a.logger, a.store, recorder, a.jwt, a.ws, a.cfg.Game,
	)
	highscores := handlers.NewRecordsHandler(a.logger, recorder)

	router.HandleFunc("POST /game", game.NewGame)
	router.HandleFunc("GET /game/{id}", game.Fetch)
	router.HandleFunc("POST /game/{id}/move", game.MakeAMove)
	router.HandleFunc("POST /game/{id}/reset", game.Reset)
	router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)
	router.HandleFunc("GET /highscores", highscores.Highscores)
	router.HandleFunc("GET /healthz", handlers.Healthz(a.logger, a.store))
}
