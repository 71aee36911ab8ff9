package server

import (
	"errors"
	"log/slog"

	"crafthub/internal/middleware"
	"crafthub/internal/models"

	"github.com/gofiber/fiber/v2"
)

var errTokenRevoked = errors.New("token has been revoked")

// verify checks the bearer token and its revocation status.
func (s *Server) verify(c *fiber.Ctx) (uint, error) {
	raw, ok := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return 0, middleware.ErrMissingToken
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, raw)
	if err != nil {
		return 0, err
	}

	if claims.JTI != "" && s.redis != nil {
		revoked, err := s.redis.Exists(c.UserContext(), middleware.RevokedTokenKey(claims.JTI)).Result()
		if err != nil {
			// Revocation is best effort; Redis trouble must not lock everyone out.
			middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", slog.String("error", err.Error()))
		} else if revoked > 0 {
			return 0, errTokenRevoked
		}
	}
	return claims.UserID, nil
}

func setCaller(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
}

// AuthRequired rejects requests without a valid bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.verify(c)
		if err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, middleware.ErrMissingToken):
				msg = "Authorization required"
			case errors.Is(err, errTokenRevoked):
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		setCaller(c, userID)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is presented and
// otherwise continues anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, err := s.verify(c); err == nil {
			setCaller(c, userID)
		}
		return c.Next()
	}
}

// caller returns the identity established by AuthRequired or OptionalAuth.
func caller(c *fiber.Ctx) models.Caller {
	userID, _ := c.Locals("userID").(uint)
	return models.Caller{UserID: userID}
}
