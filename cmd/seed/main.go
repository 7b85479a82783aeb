// Command seed populates the database with demo users, places and comments.
package main

import (
	"flag"
	"log"

	"campusmap/internal/config"
	"campusmap/internal/database"
	"campusmap/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	places := flag.Int("places", 40, "number of places to create")
	comments := flag.Int("comments", 3, "comments per place")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "store plaintext demo passwords for faster seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.DefaultOptions()
	opts.Users = *users
	opts.Places = *places
	opts.CommentsPerPlace = *comments
	opts.SkipBcrypt = *skipBcrypt

	factory := seed.NewFactory(db, opts)
	if err := factory.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
