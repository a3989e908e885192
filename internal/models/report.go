package models

import (
	"time"
)

// FeedReport tracks one user's report of one feed. The composite unique
// index is the source of truth for "distinct reporting users": the feed's
// ReportCount is only incremented when an insert actually lands here.
type FeedReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FeedID    uint      `gorm:"not null;uniqueIndex:idx_feed_reports_feed_user" json:"feed_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_feed_reports_feed_user" json:"user_id"`
	Reason    string    `gorm:"size:100" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
