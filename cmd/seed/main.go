// Command main runs the database seeder.
package main

import (
	"flag"
	"log"

	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numFeeds := flag.Int("feeds", 100, "Number of feeds to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumFeeds:    *numFeeds,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete. All seeded users have the password: Passw0rd!")
}
