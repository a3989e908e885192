package service

import (
	"context"
	"strings"

	"socialfeed/internal/cache"
	"socialfeed/internal/models"
	"socialfeed/internal/repository"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	feedRepo    repository.FeedRepository
}

type CreateCommentInput struct {
	UserID  uint
	FeedID  uint
	Content string
}

func NewCommentService(commentRepo repository.CommentRepository, feedRepo repository.FeedRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		feedRepo:    feedRepo,
	}
}

// CreateComment adds a comment to an active feed. Hidden and missing
// feeds reject comments the same way, without revealing which it was.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Text content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	feed, err := s.feedRepo.GetByID(ctx, in.FeedID)
	if err != nil {
		return nil, err
	}
	if feed == nil || !feed.IsActive {
		return nil, &models.AppError{Code: "NOT_FOUND", Message: "Feed not found or is inactive"}
	}

	comment := &models.Comment{
		FeedID:  in.FeedID,
		UserID:  in.UserID,
		Content: in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Cached listings embed comments, so they are stale now.
	cache.InvalidateFeedLists(ctx)

	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, feedID uint, limit, offset int) ([]*models.Comment, error) {
	feed, err := s.feedRepo.GetByID(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed == nil || !feed.IsActive {
		return nil, &models.AppError{Code: "NOT_FOUND", Message: "Feed not found or is inactive"}
	}
	return s.commentRepo.GetByFeedID(ctx, feedID, limit, offset)
}
