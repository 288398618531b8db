// seed/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/cognify-health/cognify_api/seed/seeders"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Parse command line flags
	var (
		seedType = flag.String("type", "all", "Type of seeding: all, pairs, categories, challenges")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := openDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete content bank seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "pairs":
		log.Println("Seeding card pairs only...")
		if err := mainSeeder.SeedPairsOnly(); err != nil {
			log.Fatalf("Failed to seed card pairs: %v", err)
		}
	case "categories":
		log.Println("Seeding naming categories only...")
		if err := mainSeeder.SeedCategoriesOnly(); err != nil {
			log.Fatalf("Failed to seed categories: %v", err)
		}
	case "challenges":
		log.Println("Seeding sequence challenges only...")
		if err := mainSeeder.SeedChallengesOnly(); err != nil {
			log.Fatalf("Failed to seed challenges: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'pairs', 'categories', or 'challenges'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

// openDatabase mirrors the API's connection rules: postgres when
// POSTGRES_DSN is set, sqlite otherwise.
func openDatabase(dbPath string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" && dbPath == "" {
		log.Println("Connecting to postgres database")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	databasePath := dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "cognify.db"
		}
	}

	log.Printf("Connecting to sqlite database: %s", databasePath)
	return gorm.Open(sqlite.Open(databasePath), cfg)
}

func showHelp() {
	log.Print(`
Content Bank Seeding Tool for the Cognify Exercise API

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, pairs, categories, challenges
  -db string
        Sqlite database path (overrides DB_DATABASE environment variable)
  -help
        Show this help message

Examples:
  # Seed everything
  go run seed/main.go

  # Seed only the pair-match bank
  go run seed/main.go -type=pairs

  # Seed with custom database path
  go run seed/main.go -db=./custom.db

Environment Variables:
  DB_DATABASE  - Default sqlite path (default: cognify.db)
  POSTGRES_DSN - Use postgres instead of sqlite when set
`)
}
