// seeders/pair_seeder.go
package seeders

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/cognify-health/cognify_api/model"
)

// PairSeeder seeds the pair-match question/answer bank
type PairSeeder struct {
	db *gorm.DB
}

// NewPairSeeder creates a new pair seeder
func NewPairSeeder(db *gorm.DB) *PairSeeder {
	return &PairSeeder{db: db}
}

// SeedPairs inserts any card pairs not already present
func (s *PairSeeder) SeedPairs() error {
	pairs := s.getPairs()

	created := 0
	for _, pair := range pairs {
		var existing model.CardPair
		err := s.db.First(&existing, "id = ?", pair.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check pair %s: %w", pair.ID, err)
		}

		if err := s.db.Create(&pair).Error; err != nil {
			return fmt.Errorf("create pair %s: %w", pair.ID, err)
		}
		created++
	}

	log.Printf("Card pairs seeded: %d created, %d total", created, len(pairs))
	return nil
}

func (s *PairSeeder) getPairs() []model.CardPair {
	type entry struct {
		q string
		a string
	}

	banks := []struct {
		category string
		prefix   string
		entries  []entry
	}{
		{
			category: "geography",
			prefix:   "geo",
			entries: []entry{
				{"France", "Paris"},
				{"Japan", "Tokyo"},
				{"Canada", "Ottawa"},
				{"Australia", "Canberra"},
				{"Germany", "Berlin"},
				{"India", "New Delhi"},
				{"Mexico", "Mexico City"},
				{"Italy", "Rome"},
				{"Spain", "Madrid"},
				{"Egypt", "Cairo"},
				{"Russia", "Moscow"},
				{"South Korea", "Seoul"},
				{"Argentina", "Buenos Aires"},
				{"Sweden", "Stockholm"},
				{"Norway", "Oslo"},
				{"Netherlands", "Amsterdam"},
				{"Greece", "Athens"},
				{"Turkey", "Ankara"},
				{"Kenya", "Nairobi"},
				{"Thailand", "Bangkok"},
				{"Malaysia", "Kuala Lumpur"},
				{"Vietnam", "Hanoi"},
			},
		},
		{
			category: "math",
			prefix:   "math",
			entries: []entry{
				{"2 + 2", "4"},
				{"5 - 3", "2"},
				{"3 x 3", "9"},
				{"10 / 2", "5"},
				{"7 + 8", "15"},
				{"6 x 7", "42"},
				{"4 x 4", "16"},
				{"5 x 5", "25"},
				{"9 x 9", "81"},
				{"8 x 9", "72"},
				{"7 x 7", "49"},
				{"45 / 5", "9"},
				{"10 squared", "100"},
			},
		},
		{
			category: "general_knowledge",
			prefix:   "gk",
			entries: []entry{
				{"Color of the sky on a clear day", "Blue"},
				{"Animal that says 'meow'", "Cat"},
				{"The Red Planet", "Mars"},
				{"Days in a leap year", "366"},
				{"Shape of a stop sign", "Octagon"},
				{"Legs on a spider", "Eight"},
				{"Number of continents", "Seven"},
				{"Metal that is liquid at room temperature", "Mercury"},
				{"Largest ocean", "Pacific Ocean"},
				{"King of the Jungle", "Lion"},
				{"Chemical formula H2O", "Water"},
				{"Gas humans breathe in to live", "Oxygen"},
			},
		},
	}

	var pairs []model.CardPair
	for _, bank := range banks {
		for i, e := range bank.entries {
			pairs = append(pairs, model.CardPair{
				ID:       fmt.Sprintf("%s_%02d", bank.prefix, i+1),
				Category: bank.category,
				Question: e.q,
				Answer:   e.a,
				IsActive: true,
			})
		}
	}
	return pairs
}
