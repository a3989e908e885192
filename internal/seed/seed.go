// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"socialfeed/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumFeeds    int
	ShouldClean bool
}

// Run populates the database with generated users, feeds, comments and
// reports. A slice of the generated feeds ends up reported past the
// threshold so hidden feeds exist in dev environments too.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumFeeds <= 0 {
		opts.NumFeeds = 100
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	feeds := make([]*models.Feed, 0, opts.NumFeeds)
	for i := 0; i < opts.NumFeeds; i++ {
		feed, err := f.CreateFeed(users[i%len(users)])
		if err != nil {
			return fmt.Errorf("create feed: %w", err)
		}
		feeds = append(feeds, feed)
	}
	log.Printf("seeded %d feeds", len(feeds))

	commented := 0
	for _, feed := range feeds {
		n, err := f.CreateComments(feed, users)
		if err != nil {
			return fmt.Errorf("create comments: %w", err)
		}
		commented += n
	}
	log.Printf("seeded %d comments", commented)

	// Hide roughly one feed in twenty via reports.
	hidden := 0
	for i, feed := range feeds {
		if i%20 != 0 {
			continue
		}
		if err := f.ReportPastThreshold(feed, users); err != nil {
			return fmt.Errorf("report feed: %w", err)
		}
		hidden++
	}
	log.Printf("seeded reports hiding %d feeds", hidden)

	return nil
}

func clean(db *gorm.DB) error {
	// Delete in dependency order.
	for _, model := range []any{
		&models.FeedReport{},
		&models.Comment{},
		&models.FeedImage{},
		&models.Feed{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
