package server

import (
	"context"
	"errors"
	"time"

	"crafthub/internal/models"
	"crafthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	users, err := s.userService.ListUsers(ctx, parsePage(c))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.RespondWithError(c, fiber.StatusGatewayTimeout, errors.New("request timeout"))
		}
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "users", users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.userService.GetProfile(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "user", profile)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Me(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "user", profile)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var in service.UpdateProfileInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, invalidBody())
	}
	profile, err := s.userService.UpdateProfile(c.UserContext(), caller(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "user", profile)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.followService.Follow(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if res.Changed {
		s.publishFollowed(c.UserContext(), caller(c).UserID, id)
	}
	return respond(c, fiber.StatusOK, "follow", res)
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.followService.Unfollow(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "follow", res)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.followService.ListFollowers(c.UserContext(), id, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "users", users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.followService.ListFollowing(c.UserContext(), id, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "users", users)
}
