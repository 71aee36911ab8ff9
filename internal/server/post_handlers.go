package server

import (
	"crafthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts with optional author, category, for_sale,
// featured, q, created_after, created_before, limit and offset filters. Both
// date bounds are inclusive; created_before=YYYY-MM-DD includes that day.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	var f queryFilters
	q := service.PostQuery{
		AuthorID:      f.uintParam(c, "author"),
		CategoryID:    f.uintParam(c, "category"),
		IsForSale:     f.boolParam(c, "for_sale"),
		IsFeatured:    f.boolParam(c, "featured"),
		Search:        c.Query("q"),
		CreatedAfter:  f.timeParam(c, "created_after", false),
		CreatedBefore: f.timeParam(c, "created_before", true),
		Page:          parsePage(c),
	}
	if err := f.err(); err != nil {
		return respondError(c, err)
	}

	posts, err := s.queryService.ListPosts(c.UserContext(), caller(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "posts", posts)
}

// GetFeaturedPosts handles GET /api/posts/featured
func (s *Server) GetFeaturedPosts(c *fiber.Ctx) error {
	posts, err := s.queryService.ListFeatured(c.UserContext(), caller(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "posts", posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.queryService.GetPost(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if post == nil {
		return respondError(c, notFound("Post", id))
	}
	return respond(c, fiber.StatusOK, "post", post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, invalidBody())
	}

	post, err := s.postService.CreatePost(c.UserContext(), caller(c), in)
	if err != nil {
		return respondError(c, err)
	}
	s.publishPostCreated(c.UserContext(), post)
	return respond(c, fiber.StatusCreated, "post", post)
}

// UpdatePost handles PUT /api/posts/:id. Absent fields are left unchanged.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdatePostInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, invalidBody())
	}

	post, err := s.postService.UpdatePost(c.UserContext(), caller(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "post", post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "message", "Post deleted")
}
