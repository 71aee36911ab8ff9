package server

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"crafthub/internal/middleware"
	"crafthub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	wsTicketPrefix = "ws_ticket:"
	wsTicketTTL    = 30 * time.Second
)

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set headers on a
// websocket handshake, so they trade their bearer token for a short-lived,
// single-use ticket passed as ?ticket= instead.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			fiber.NewError(fiber.StatusServiceUnavailable, "realtime notifications are disabled"))
	}
	ticket := uuid.NewString()
	userID := caller(c).UserID
	if err := s.redis.Set(c.UserContext(), wsTicketPrefix+ticket, userID, wsTicketTTL).Err(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// SocketAuth authenticates a websocket handshake by ticket or bearer token.
// A presented ticket is consumed whether or not the upgrade succeeds.
func (s *Server) SocketAuth() fiber.Handler {
	bearer := s.AuthRequired()
	return func(c *fiber.Ctx) error {
		ticket := c.Query("ticket")
		if ticket == "" {
			return bearer(c)
		}
		if s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		raw, err := s.redis.GetDel(c.UserContext(), wsTicketPrefix+ticket).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(c.UserContext(), "ticket lookup failed", slog.String("error", err.Error()))
		}
		userID, perr := strconv.ParseUint(raw, 10, 32)
		if err != nil || perr != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}
		setCaller(c, uint(userID))
		return c.Next()
	}
}

// requireUpgrade turns plain HTTP requests to a socket route away.
func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			fiber.NewError(fiber.StatusUpgradeRequired, "websocket upgrade required"))
	}
	return c.Next()
}

// NotificationsSocket handles GET /api/ws/notifications. Every event the
// Notifier publishes for the caller, plus broadcasts, is written to the
// socket as a JSON text frame.
func (s *Server) NotificationsSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("notification socket rejected",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
