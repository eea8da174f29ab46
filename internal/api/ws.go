package api

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

func wsUpgrade(c *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// wsHandler authenticates the socket from a query token (browsers cannot
// set headers on the upgrade request) and streams refresh hints until the
// client goes away.
func (s *Server) wsHandler(secret string) func(*fiberws.Conn) {
	return func(conn *fiberws.Conn) {
		claims, err := validateToken(secret, conn.Query("token"))
		if err != nil {
			_ = conn.WriteJSON(fiber.Map{"error": "invalid token"})
			_ = conn.Close()
			return
		}
		userID := claims.ExternalID()

		client := s.hub.Register(userID, conn)
		defer s.hub.Unregister(client)

		go client.WritePump()

		// Drain the socket; hints flow one way, a read error means the
		// client disconnected.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
