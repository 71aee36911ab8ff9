package server

import "github.com/gofiber/fiber/v2"

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.queryService.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "categories", categories)
}

// GetCategory handles GET /api/categories/:id
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	category, err := s.queryService.GetCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "category", category)
}

// GetCategoryPosts handles GET /api/categories/:id/posts
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	posts, err := s.queryService.ListByCategory(c.UserContext(), caller(c), id, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "posts", posts)
}
