// Command seed loads the bundled CPIC guideline corpus into a SQLite
// guideline database. It is intended for local development and for
// pre-building the database image used in container deployments.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/pharmaguard-server/internal/guideline"
)

func main() {
	dbPath := flag.String("db", "./data/guidelines.db", "path to the SQLite guideline database")
	flag.Parse()

	if dir := filepath.Dir(*dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	store, err := guideline.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open guideline database: %v", err)
	}
	defer store.Close()

	count, err := guideline.Seed(context.Background(), store)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d guideline entries into %s", count, *dbPath)
}
