package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedRepoStub is a stub for repository.FeedRepository.
type feedRepoStub struct {
	createFn       func(context.Context, *models.Feed) error
	getByIDFn      func(context.Context, uint) (*models.Feed, error)
	listActiveFn   func(context.Context, int, int) ([]*models.Feed, error)
	recordReportFn func(context.Context, uint, uint, string) (uint, bool, error)
	deactivateFn   func(context.Context, uint) error
}

func (s *feedRepoStub) Create(ctx context.Context, feed *models.Feed) error {
	return s.createFn(ctx, feed)
}
func (s *feedRepoStub) GetByID(ctx context.Context, id uint) (*models.Feed, error) {
	return s.getByIDFn(ctx, id)
}
func (s *feedRepoStub) ListActive(ctx context.Context, limit, offset int) ([]*models.Feed, error) {
	return s.listActiveFn(ctx, limit, offset)
}
func (s *feedRepoStub) RecordReport(ctx context.Context, feedID, userID uint, reason string) (uint, bool, error) {
	return s.recordReportFn(ctx, feedID, userID, reason)
}
func (s *feedRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}

func noopFeedRepo() *feedRepoStub {
	return &feedRepoStub{
		createFn:     func(_ context.Context, _ *models.Feed) error { return nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.Feed, error) { return &models.Feed{IsActive: true}, nil },
		listActiveFn: func(_ context.Context, _, _ int) ([]*models.Feed, error) { return nil, nil },
		recordReportFn: func(_ context.Context, _, _ uint, _ string) (uint, bool, error) {
			return 1, true, nil
		},
		deactivateFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCreateFeed_RequiresContent(t *testing.T) {
	t.Parallel()

	svc := NewFeedService(noopFeedRepo())
	_, err := svc.CreateFeed(context.Background(), CreateFeedInput{UserID: 1, Content: "   "})
	assertValidationError(t, err)
}

func TestCreateFeed_ContentTooLong(t *testing.T) {
	t.Parallel()

	svc := NewFeedService(noopFeedRepo())
	_, err := svc.CreateFeed(context.Background(), CreateFeedInput{
		UserID:  1,
		Content: strings.Repeat("a", maxContentLen+1),
	})
	assertValidationError(t, err)
}

func TestCreateFeed_TooManyImages(t *testing.T) {
	t.Parallel()

	svc := NewFeedService(noopFeedRepo())
	_, err := svc.CreateFeed(context.Background(), CreateFeedInput{
		UserID:  1,
		Content: "pics",
		Images:  []string{"/media/a", "/media/b", "/media/c", "/media/d", "/media/e"},
	})
	assertValidationError(t, err)
	assert.Contains(t, err.Error(), "up to 4 images")
}

func TestCreateFeed_AssignsImageOrder(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	var created *models.Feed
	repo.createFn = func(_ context.Context, f *models.Feed) error {
		f.ID = 7
		created = f
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Feed, error) {
		return created, nil
	}

	svc := NewFeedService(repo)
	feed, err := svc.CreateFeed(context.Background(), CreateFeedInput{
		UserID:  1,
		Content: "four pics",
		Images:  []string{"/media/a", "/media/b", "/media/c", "/media/d"},
	})
	require.NoError(t, err)
	require.Len(t, feed.Images, 4)
	for i, img := range feed.Images {
		assert.Equal(t, i, img.Order)
	}
}

func TestReportFeed_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Feed, error) { return nil, nil }

	svc := NewFeedService(repo)
	_, err := svc.ReportFeed(context.Background(), ReportFeedInput{UserID: 1, FeedID: 42})
	assertNotFoundError(t, err)
}

func TestReportFeed_InactiveTreatedAsMissing(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Feed, error) {
		return &models.Feed{IsActive: false}, nil
	}

	svc := NewFeedService(repo)
	_, err := svc.ReportFeed(context.Background(), ReportFeedInput{UserID: 1, FeedID: 42})
	assertNotFoundError(t, err)
}

func TestReportFeed_BelowThreshold(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	repo.recordReportFn = func(_ context.Context, _, _ uint, _ string) (uint, bool, error) {
		return 2, true, nil
	}
	deactivated := false
	repo.deactivateFn = func(_ context.Context, _ uint) error {
		deactivated = true
		return nil
	}

	svc := NewFeedService(repo)
	res, err := svc.ReportFeed(context.Background(), ReportFeedInput{UserID: 1, FeedID: 42})
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.False(t, deactivated)
	assert.Equal(t, uint(2), res.Feed.ReportCount)
}

func TestReportFeed_ThresholdDeactivates(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	repo.recordReportFn = func(_ context.Context, _, _ uint, _ string) (uint, bool, error) {
		return 3, true, nil
	}
	var deactivatedID uint
	repo.deactivateFn = func(_ context.Context, id uint) error {
		deactivatedID = id
		return nil
	}

	svc := NewFeedService(repo)
	res, err := svc.ReportFeed(context.Background(), ReportFeedInput{UserID: 1, FeedID: 42})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, uint(42), deactivatedID)
	assert.False(t, res.Feed.IsActive)
}

func TestReportFeed_RepeatReportDoesNotRemove(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	repo.recordReportFn = func(_ context.Context, _, _ uint, _ string) (uint, bool, error) {
		// same user reporting again, count unchanged
		return 2, false, nil
	}

	svc := NewFeedService(repo)
	res, err := svc.ReportFeed(context.Background(), ReportFeedInput{UserID: 1, FeedID: 42})
	require.NoError(t, err)
	assert.False(t, res.Removed)
}

func TestReportFeed_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	repo := noopFeedRepo()
	repo.recordReportFn = func(_ context.Context, _, _ uint, _ string) (uint, bool, error) {
		return 0, false, models.NewInternalError(errors.New("db down"))
	}

	svc := NewFeedService(repo)
	_, err := svc.ReportFeed(context.Background(), ReportFeedInput{UserID: 1, FeedID: 42})
	require.Error(t, err)
}
