package database

import "socialfeed/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Feed{},
		&models.FeedImage{},
		&models.Comment{},
		&models.FeedReport{},
	}
}
