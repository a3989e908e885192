package seed

import (
	"testing"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Feed{},
		&models.FeedImage{},
		&models.Comment{},
		&models.FeedReport{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func TestRun(t *testing.T) {
	t.Parallel()

	db := setupSeedTestDB(t)
	require.NoError(t, Run(db, Options{NumUsers: 5, NumFeeds: 25}))

	var userCount, feedCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Feed{}).Count(&feedCount).Error)
	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(25), feedCount)

	// some feeds were reported past the threshold and hidden
	var hiddenCount int64
	require.NoError(t, db.Model(&models.Feed{}).Where("is_active = ?", false).Count(&hiddenCount).Error)
	assert.Greater(t, hiddenCount, int64(0))

	var hidden []models.Feed
	require.NoError(t, db.Where("is_active = ?", false).Find(&hidden).Error)
	for _, f := range hidden {
		var reports int64
		require.NoError(t, db.Model(&models.FeedReport{}).Where("feed_id = ?", f.ID).Count(&reports).Error)
		assert.GreaterOrEqual(t, reports, int64(3))
	}

	// no feed carries more than the image cap
	var imageCounts []int64
	require.NoError(t, db.Model(&models.FeedImage{}).
		Select("count(*)").
		Group("feed_id").
		Scan(&imageCounts).Error)
	for _, n := range imageCounts {
		assert.LessOrEqual(t, n, int64(models.MaxImagesPerFeed))
	}
}

func TestRun_Clean(t *testing.T) {
	t.Parallel()

	db := setupSeedTestDB(t)
	require.NoError(t, Run(db, Options{NumUsers: 3, NumFeeds: 6}))
	require.NoError(t, Run(db, Options{NumUsers: 3, NumFeeds: 6, ShouldClean: true}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(3), userCount)
}
