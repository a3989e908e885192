// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"socialfeed/internal/cache"
	"socialfeed/internal/models"
	"socialfeed/internal/observability"

	"gorm.io/gorm"
)

// FeedRepository defines the interface for feed data operations
type FeedRepository interface {
	Create(ctx context.Context, feed *models.Feed) error
	GetByID(ctx context.Context, id uint) (*models.Feed, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Feed, error)
	RecordReport(ctx context.Context, feedID, userID uint, reason string) (count uint, created bool, err error)
	Deactivate(ctx context.Context, id uint) error
}

// feedRepository implements FeedRepository
type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

// Create persists the feed and its images in a single transaction. GORM
// writes the Images association alongside the feed row, so a failure on
// any image leaves nothing behind.
func (r *feedRepository) Create(ctx context.Context, feed *models.Feed) error {
	err := r.db.WithContext(ctx).Create(feed).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFeedLists(ctx)
	return nil
}

// GetByID returns the feed regardless of its active state, or nil when no
// such feed exists. Callers decide how to treat hidden feeds.
func (r *feedRepository) GetByID(ctx context.Context, id uint) (*models.Feed, error) {
	var feed models.Feed
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("feed_images.\"order\" ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.User").
		First(&feed, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	normalizeFeedAssociations(&feed)
	return &feed, nil
}

// normalizeFeedAssociations replaces nil association slices with empty ones
// so feeds serialize with "images": [] and "comments": [] instead of null.
func normalizeFeedAssociations(feed *models.Feed) {
	if feed.Images == nil {
		feed.Images = []models.FeedImage{}
	}
	if feed.Comments == nil {
		feed.Comments = []models.Comment{}
	}
}

func (r *feedRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Feed, error) {
	var feeds []*models.Feed
	key := cache.FeedListKey(offset, limit)

	err := cache.Aside(ctx, key, &feeds, cache.FeedListTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("User").
			Preload("Images", func(db *gorm.DB) *gorm.DB {
				return db.Order("feed_images.\"order\" ASC")
			}).
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC")
			}).
			Preload("Comments.User").
			Where("is_active = ?", true).
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&feeds).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, feed := range feeds {
		normalizeFeedAssociations(feed)
	}
	return feeds, nil
}

// RecordReport inserts the (feed, user) report row and bumps the feed's
// report counter only when the row is new. Both statements run in one
// transaction so the counter always equals the number of distinct
// reporters. The returned count reflects the state after this call.
func (r *feedRepository) RecordReport(ctx context.Context, feedID, userID uint, reason string) (uint, bool, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "RecordReport", "feed_reports")
	defer span.End()

	var count uint
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// ON CONFLICT DO NOTHING keeps repeat reports from the same
		// user idempotent even under concurrent requests.
		res := tx.Exec(
			`INSERT INTO feed_reports (feed_id, user_id, reason, created_at)
			 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (feed_id, user_id) DO NOTHING`,
			feedID, userID, reason,
		)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0

		if created {
			if err := tx.Model(&models.Feed{}).
				Where("id = ?", feedID).
				UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Feed{}).
			Where("id = ?", feedID).
			Pluck("report_count", &count).Error
	})
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return 0, false, models.NewInternalError(err)
	}
	return count, created, nil
}

func (r *feedRepository) Deactivate(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Feed{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFeedLists(ctx)
	return nil
}
