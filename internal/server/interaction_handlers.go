package server

import "github.com/gofiber/fiber/v2"

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.interactionService.ToggleLike(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if res.Liked {
		s.publishToAuthor(c.UserContext(), res.Post, caller(c).UserID, EventPostLiked, map[string]any{
			"likes_count": res.Post.LikesCount,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"liked":   res.Liked,
		"post":    res.Post,
	})
}

// RemoveLike handles DELETE /api/posts/:id/like
func (s *Server) RemoveLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.interactionService.RemoveLike(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"removed": res.Removed,
		"post":    res.Post,
	})
}

// SharePost handles POST /api/posts/:id/share. Sharing twice succeeds with
// created=false.
func (s *Server) SharePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.interactionService.SharePost(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
		s.publishToAuthor(c.UserContext(), res.Post, caller(c).UserID, EventPostShared, map[string]any{
			"shares_count": res.Post.SharesCount,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"created": res.Created,
		"post":    res.Post,
	})
}
