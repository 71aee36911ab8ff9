package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns every configured flag evaluated for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "flags", s.featureFlags.Snapshot(caller(c).UserID))
}
