package seed

import (
	"fmt"
	"math/rand"
	"time"

	"socialfeed/internal/models"
	"socialfeed/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, r: rand.New(rand.NewSource(seed))}
}

// CreateUser constructs and persists a sample user. All seeded users
// share the password "Passw0rd!" so dev logins are easy.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFeed constructs and persists a feed for the given user, with a
// random number of placeholder images and a created_at spread over the
// last 90 days.
func (f *Factory) CreateFeed(user *models.User, overrides ...func(*models.Feed)) (*models.Feed, error) {
	feed := &models.Feed{
		UserID:  user.ID,
		Content: gofakeit.Paragraph(1, 3, 8, "\n"),
	}

	numImages := f.r.Intn(models.MaxImagesPerFeed + 1)
	for i := 0; i < numImages; i++ {
		feed.Images = append(feed.Images, models.FeedImage{
			Image: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Order: i,
		})
	}

	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	feed.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(feed)
	}

	if err := f.db.Create(feed).Error; err != nil {
		return nil, err
	}
	return feed, nil
}

// CreateComments adds zero to five comments to the feed from random
// users and returns how many were created.
func (f *Factory) CreateComments(feed *models.Feed, users []*models.User) (int, error) {
	n := f.r.Intn(6)
	for i := 0; i < n; i++ {
		commenter := users[f.r.Intn(len(users))]
		comment := &models.Comment{
			FeedID:  feed.ID,
			UserID:  commenter.ID,
			Content: gofakeit.Sentence(f.r.Intn(12) + 3),
		}
		if err := f.db.Create(comment).Error; err != nil {
			return i, err
		}
	}
	return n, nil
}

// ReportPastThreshold files reports from distinct users until the feed
// crosses the hide threshold, then deactivates it the way the API does.
func (f *Factory) ReportPastThreshold(feed *models.Feed, users []*models.User) error {
	if len(users) < service.ReportThreshold {
		return fmt.Errorf("need at least %d users to hide a feed", service.ReportThreshold)
	}

	for i := 0; i < service.ReportThreshold; i++ {
		report := &models.FeedReport{
			FeedID: feed.ID,
			UserID: users[i].ID,
			Reason: gofakeit.HackerPhrase(),
		}
		if err := f.db.Create(report).Error; err != nil {
			return err
		}
	}

	return f.db.Model(&models.Feed{}).
		Where("id = ?", feed.ID).
		Updates(map[string]any{
			"report_count": service.ReportThreshold,
			"is_active":    false,
		}).Error
}
