package server

import (
	"socialfeed/internal/models"
	"socialfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/feeds/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	feedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"text_content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:  userID,
		FeedID:  feedID,
		Content: req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/feeds/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	feedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p, err := parsePagination(c, 50)
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.Context(), feedID, p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(comments)
}
