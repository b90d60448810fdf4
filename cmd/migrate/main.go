package main

import (
	"context"
	"log"
	"os"

	"forecastbonus/adapters/fileio"
	"forecastbonus/adapters/postgres"
	"forecastbonus/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	args := os.Args[1:]
	if len(args) > 0 {
		databaseURL = args[0]
		args = args[1:]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url> [export-file...]")
	}

	ctx := context.Background()

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Schema at version %s", runner.Version())

	repo := postgres.NewAssignmentRepository(db)
	imported := 0
	for _, path := range args {
		assignments, err := fileio.LoadAssignments(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		for _, a := range assignments {
			if a.Identifier.IsAbsent() {
				log.Printf("Skipping assignment without identifier in %s", path)
				continue
			}
			if err := repo.SaveAssignment(ctx, a); err != nil {
				log.Fatalf("Failed to import %s: %v", a.ID(), err)
			}
			imported++
		}
		log.Printf("Imported %s", path)
	}

	log.Printf("Migration complete: %d assignments imported", imported)
}
