package server

import "github.com/gofiber/fiber/v2"

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), postID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "comments", comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	comment, err := s.commentService.AddComment(c.UserContext(), caller(c), postID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	s.publishCommentCreated(c.UserContext(), comment)
	return respond(c, fiber.StatusCreated, "comment", comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBody())
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), caller(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "comment", comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "message", "Comment deleted")
}
