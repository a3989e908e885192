package models

import (
	"time"
)

// MaxImagesPerFeed is the upper bound on images attached to a single feed.
const MaxImagesPerFeed = 4

// Feed represents a feed post.
//
// IsActive and ReportCount are only mutated by the report-handling flow:
// ReportCount always equals the number of distinct FeedReport rows for this
// feed, and once IsActive flips to false it never flips back.
type Feed struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Content     string      `gorm:"type:text" json:"text_content"`
	IsActive    bool        `gorm:"not null;default:true;index:idx_feeds_active_created" json:"is_active"`
	ReportCount uint        `gorm:"not null;default:0" json:"report_count"`
	Images      []FeedImage `gorm:"foreignKey:FeedID;constraint:OnDelete:CASCADE" json:"images"`
	Comments    []Comment   `gorm:"foreignKey:FeedID" json:"comments"`
	CreatedAt   time.Time   `gorm:"index:idx_feeds_active_created,sort:desc" json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// FeedImage stores one of up to four images attached to a feed.
// Image holds the stable media reference returned by the media service.
type FeedImage struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	FeedID uint   `gorm:"not null;uniqueIndex:idx_feed_images_feed_order" json:"-"`
	Image  string `gorm:"not null" json:"image"`
	Order  int    `gorm:"not null;uniqueIndex:idx_feed_images_feed_order" json:"order"`
}
