package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"socialfeed/internal/models"
	"socialfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeeds handles GET /api/feeds
func (s *Server) GetFeeds(c *fiber.Ctx) error {
	p, err := parsePagination(c, 20)
	if err != nil {
		return nil
	}

	feeds, err := s.feedService.ListFeeds(c.Context(), service.ListFeedsInput{
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	if feeds == nil {
		feeds = []*models.Feed{}
	}
	return c.JSON(feeds)
}

// CreateFeed handles POST /api/feeds. It accepts multipart form data with
// a text_content field and up to four image files, or a JSON body with
// text_content and previously stored image refs.
func (s *Server) CreateFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var content string
	var imageRefs []string

	if form, err := c.MultipartForm(); err == nil && form != nil {
		content = c.FormValue("text_content")
		files := form.File["images"]
		if len(files) > models.MaxImagesPerFeed {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("A feed can only have up to 4 images."))
		}
		for _, fh := range files {
			ref, storeErr := s.storeUploadedImage(fh)
			if storeErr != nil {
				return respondAppError(c, storeErr)
			}
			imageRefs = append(imageRefs, ref)
		}
	} else {
		var req struct {
			Content string   `json:"text_content"`
			Images  []string `json:"images"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		content = req.Content
		imageRefs = req.Images
	}

	feed, err := s.feedService.CreateFeed(c.Context(), service.CreateFeedInput{
		UserID:  userID,
		Content: content,
		Images:  imageRefs,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(feed)
}

// ReportFeed handles POST /api/feeds/:id/report
func (s *Server) ReportFeed(c *fiber.Ctx) error {
	feedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for reports.
	_ = c.BodyParser(&req)

	result, err := s.feedService.ReportFeed(c.Context(), service.ReportFeedInput{
		UserID: userID,
		FeedID: feedID,
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	message := "Feed reported successfully"
	if result.Removed {
		message = "Feed removed due to reporting threshold"
	}
	return c.JSON(fiber.Map{"message": message})
}

// ServeMedia handles GET /media/:hash/:file
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	path, err := s.mediaService.ResolveForServing(c.Params("hash"), c.Params("file"))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code != "INTERNAL_ERROR" {
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
		return respondAppError(c, err)
	}
	return c.SendFile(path)
}

func (s *Server) storeUploadedImage(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	stored, err := s.mediaService.Store(service.StoreMediaInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return "", err
	}
	return stored.Ref, nil
}
