package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients connect from arbitrary origins
	},
}

// handleWebSocket upgrades the connection and hands it to the real-time
// session handler, which authenticates the token, registers the session,
// and runs the receive loop until disconnect.
func (s *Server) handleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	// Serve blocks for the lifetime of the connection and always cleans up
	// its registry entry before returning.
	s.realtime.Serve(c.Request().Context(), conn, token)
	return nil
}
