package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-engine/internal/session"
)

// ConnectWS upgrades to a websocket on which every text frame is a batch of
// newline-separated commands. Each batch is answered with the session view
// and the results of the commands that ran.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := g.authorize(w, r)
	if !ok {
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.WithError(err).Warn("upgrade")
		return
	}
	defer c.Close()
	c.SetReadLimit(g.ws.ReadLimit)

	log := g.logger.WithField("session", s.ID())
	log.Debug("websocket connected")

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				log.WithError(err).Warn("read")
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}

		results, err := s.Execute(strings.TrimSpace(string(message)))
		reply := CommandReplyDTO{Results: results}
		if reply.Results == nil {
			reply.Results = []session.Result{}
		}
		if err != nil {
			reply.Error = err.Error()
		}
		for _, res := range results {
			g.record(r.Context(), res)
		}
		reply.View = s.View()

		c.SetWriteDeadline(time.Now().Add(g.ws.WriteWait))
		if err := c.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("write")
			break
		}
	}
}
