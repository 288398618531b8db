// seeders/main_seeder.go
package seeders

import (
	"log"

	"gorm.io/gorm"

	"github.com/cognify-health/cognify_api/model"
)

// MainSeeder coordinates seeding of the three content banks
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

func (s *MainSeeder) migrate() error {
	return s.db.AutoMigrate(
		&model.CardPair{},
		&model.Category{},
		&model.SequenceChallenge{},
	)
}

// SeedAll seeds every content bank
func (s *MainSeeder) SeedAll() error {
	if err := s.migrate(); err != nil {
		return err
	}

	if err := NewPairSeeder(s.db).SeedPairs(); err != nil {
		return err
	}
	if err := NewCategorySeeder(s.db).SeedCategories(); err != nil {
		return err
	}
	if err := NewChallengeSeeder(s.db).SeedChallenges(); err != nil {
		return err
	}

	log.Println("All content banks seeded")
	return nil
}

// SeedPairsOnly seeds just the card pair bank
func (s *MainSeeder) SeedPairsOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewPairSeeder(s.db).SeedPairs()
}

// SeedCategoriesOnly seeds just the naming categories
func (s *MainSeeder) SeedCategoriesOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewCategorySeeder(s.db).SeedCategories()
}

// SeedChallengesOnly seeds just the sequence challenges
func (s *MainSeeder) SeedChallengesOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewChallengeSeeder(s.db).SeedChallenges()
}
