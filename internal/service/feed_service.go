// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"strings"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/repository"
)

// ReportThreshold is the number of distinct reporters that hides a feed.
const ReportThreshold = 3

const maxContentLen = 10000

// maxReportReasonLen matches the reason column width.
const maxReportReasonLen = 100

type FeedService struct {
	feedRepo repository.FeedRepository
}

type CreateFeedInput struct {
	UserID  uint
	Content string
	// Images holds stable media references in display order.
	Images []string
}

type ListFeedsInput struct {
	Limit  int
	Offset int
}

type ReportFeedInput struct {
	UserID uint
	FeedID uint
	Reason string
}

// ReportResult describes what happened to a feed after a report.
type ReportResult struct {
	Feed *models.Feed
	// Removed is true when this report pushed the feed over the
	// threshold and it is no longer visible.
	Removed bool
}

func NewFeedService(feedRepo repository.FeedRepository) *FeedService {
	return &FeedService{feedRepo: feedRepo}
}

func (s *FeedService) CreateFeed(ctx context.Context, in CreateFeedInput) (*models.Feed, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Text content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Text content too long (max 10000 characters)")
	}
	if len(in.Images) > models.MaxImagesPerFeed {
		return nil, models.NewValidationError("A feed can only have up to 4 images.")
	}

	feed := &models.Feed{
		UserID:  in.UserID,
		Content: in.Content,
	}
	for i, ref := range in.Images {
		if strings.TrimSpace(ref) == "" {
			return nil, models.NewValidationError("Image reference cannot be empty")
		}
		feed.Images = append(feed.Images, models.FeedImage{Image: ref, Order: i})
	}

	if err := s.feedRepo.Create(ctx, feed); err != nil {
		return nil, err
	}
	return s.feedRepo.GetByID(ctx, feed.ID)
}

func (s *FeedService) ListFeeds(ctx context.Context, in ListFeedsInput) ([]*models.Feed, error) {
	return s.feedRepo.ListActive(ctx, in.Limit, in.Offset)
}

// ReportFeed records a report against an active feed. Reports are
// idempotent per user, and once ReportThreshold distinct users have
// reported the feed it is deactivated and stays that way. Reporting a
// missing or already hidden feed returns a not-found error.
func (s *FeedService) ReportFeed(ctx context.Context, in ReportFeedInput) (*ReportResult, error) {
	feed, err := s.feedRepo.GetByID(ctx, in.FeedID)
	if err != nil {
		return nil, err
	}
	if feed == nil || !feed.IsActive {
		return nil, &models.AppError{Code: "NOT_FOUND", Message: "Feed not found or is inactive"}
	}

	reason := in.Reason
	if len(reason) > maxReportReasonLen {
		reason = reason[:maxReportReasonLen]
	}

	count, _, err := s.feedRepo.RecordReport(ctx, in.FeedID, in.UserID, reason)
	if err != nil {
		return nil, err
	}

	if count >= ReportThreshold {
		if err := s.feedRepo.Deactivate(ctx, in.FeedID); err != nil {
			return nil, err
		}
		middleware.FeedsDeactivated.Inc()
		feed.IsActive = false
		feed.ReportCount = count
		return &ReportResult{Feed: feed, Removed: true}, nil
	}

	feed.ReportCount = count
	return &ReportResult{Feed: feed, Removed: false}, nil
}
