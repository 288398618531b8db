// seeders/challenge_seeder.go
package seeders

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/cognify-health/cognify_api/model"
)

// ChallengeSeeder seeds the sequence ordering challenge bank
type ChallengeSeeder struct {
	db *gorm.DB
}

// NewChallengeSeeder creates a new challenge seeder
func NewChallengeSeeder(db *gorm.DB) *ChallengeSeeder {
	return &ChallengeSeeder{db: db}
}

// SeedChallenges inserts any challenges not already present
func (s *ChallengeSeeder) SeedChallenges() error {
	challenges, err := s.getChallenges()
	if err != nil {
		return err
	}

	created := 0
	for _, ch := range challenges {
		var existing model.SequenceChallenge
		err := s.db.First(&existing, "id = ?", ch.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check challenge %s: %w", ch.ID, err)
		}

		if err := s.db.Create(&ch).Error; err != nil {
			return fmt.Errorf("create challenge %s: %w", ch.ID, err)
		}
		created++
	}

	log.Printf("Sequence challenges seeded: %d created, %d total", created, len(challenges))
	return nil
}

// Steps are stored in the correct order; the engine shuffles them per session.
func (s *ChallengeSeeder) getChallenges() ([]model.SequenceChallenge, error) {
	banks := []struct {
		id         string
		category   string
		difficulty string
		steps      []string
	}{
		{
			id: "dmr_01", category: "daily_routine", difficulty: "easy",
			steps: []string{
				"Wake up",
				"Turn off alarm",
				"Brush teeth",
				"Take a shower",
				"Get dressed",
				"Eat breakfast",
				"Leave for work/school",
			},
		},
		{
			id: "dmr_02", category: "daily_routine", difficulty: "easy",
			steps: []string{
				"Wake up",
				"Make the bed",
				"Wash face",
				"Brush teeth",
				"Eat breakfast",
				"Pack bag",
				"Head out",
			},
		},
		{
			id: "ewr_01", category: "evening_routine", difficulty: "easy",
			steps: []string{
				"Finish dinner",
				"Wash dishes",
				"Brush teeth",
				"Read a book",
				"Turn off lights and go to bed",
			},
		},
		{
			id: "lp_01_make_tea", category: "life_process", difficulty: "easy",
			steps: []string{
				"Fill kettle with water",
				"Boil the water",
				"Put tea bag in cup",
				"Pour hot water into cup",
				"Let tea steep",
				"Remove tea bag and drink",
			},
		},
		{
			id: "lp_02_make_coffee", category: "life_process", difficulty: "easy",
			steps: []string{
				"Fill coffee maker with water",
				"Add coffee grounds to filter",
				"Turn on coffee maker",
				"Wait for coffee to brew",
				"Pour coffee into mug",
				"Add milk or sugar and enjoy",
			},
		},
		{
			id: "sse_01", category: "short_story", difficulty: "medium",
			steps: []string{
				"Anna decided to go to the park",
				"She put on her jacket",
				"She walked to the park",
				"She sat on a bench and enjoyed the sun",
			},
		},
		{
			id: "sse_02", category: "short_story", difficulty: "medium",
			steps: []string{
				"Tom wanted a cup of coffee",
				"He went to the kitchen",
				"He brewed a fresh pot",
				"He drank his coffee while reading the paper",
			},
		},
		{
			id: "sse_03", category: "short_story", difficulty: "medium",
			steps: []string{
				"Lucy wanted to bake cookies",
				"She mixed the ingredients",
				"She put the tray in the oven",
				"She shared the warm cookies with her friends",
			},
		},
		{
			id: "pgc_01_tomato", category: "plant_growth", difficulty: "medium",
			steps: []string{
				"Plant tomato seed in soil",
				"Water seed daily",
				"Seed germinates into seedling",
				"Seedling grows leaves",
				"Plant produces flowers",
				"Flowers turn into tomatoes",
			},
		},
		{
			id: "blc_01_monarch", category: "butterfly_life_cycle", difficulty: "medium",
			steps: []string{
				"Egg is laid on a milkweed leaf",
				"Caterpillar (larva) hatches and eats leaves",
				"Caterpillar forms chrysalis (pupa)",
				"Chrysalis hardens and changes color",
				"Adult monarch butterfly emerges",
			},
		},
		{
			id: "htl_01_communication_inventions", category: "historical_timeline", difficulty: "hard",
			steps: []string{
				"Printing Press (1440)",
				"Telegraph (1837)",
				"Telephone (1876)",
				"Radio (1906)",
				"Television (1927)",
				"Internet (1990s)",
			},
		},
		{
			id: "htl_03_space_exploration", category: "historical_timeline", difficulty: "hard",
			steps: []string{
				"Sputnik launched (1957)",
				"Yuri Gagarin orbits Earth (1961)",
				"Apollo 11 Moon landing (1969)",
				"Voyager probes launched (1977)",
				"International Space Station assembly begins (1998)",
				"SpaceX founded era of commercial flight (2008)",
			},
		},
		{
			id: "htl_04_computing_milestones", category: "historical_timeline", difficulty: "hard",
			steps: []string{
				"ENIAC built (1945)",
				"UNIVAC delivered (1951)",
				"IBM PC released (1981)",
				"World Wide Web invented (1989)",
				"Smartphone era begins (2007)",
				"Cloud computing goes mainstream (2010s)",
			},
		},
		{
			id: "wcp_01_standard", category: "water_cycle", difficulty: "hard",
			steps: []string{
				"Evaporation from oceans and lakes",
				"Water vapor rises into the atmosphere",
				"Condensation into clouds",
				"Precipitation falls as rain or snow",
				"Runoff flows over land",
				"Collection in rivers and oceans",
			},
		},
		{
			id: "mps_02_solve_quadratic", category: "math_process", difficulty: "hard",
			steps: []string{
				"Write the equation x^2 - 5x + 6 = 0",
				"Factor into (x - 2)(x - 3) = 0",
				"Set each factor equal to zero",
				"Solve x = 2 and x = 3",
				"Check both solutions in the original equation",
			},
		},
		{
			id: "mps_03_solve_system", category: "math_process", difficulty: "hard",
			steps: []string{
				"Write the system 2x + y = 5 and x - y = 1",
				"Add the equations to eliminate y",
				"Solve 3x = 6 for x = 2",
				"Substitute x back to get y = 1",
				"Verify the pair satisfies both equations",
			},
		},
	}

	challenges := make([]model.SequenceChallenge, 0, len(banks))
	for _, bank := range banks {
		raw, err := json.Marshal(bank.steps)
		if err != nil {
			return nil, fmt.Errorf("marshal steps for %s: %w", bank.id, err)
		}
		challenges = append(challenges, model.SequenceChallenge{
			ID:         bank.id,
			Category:   bank.category,
			Difficulty: bank.difficulty,
			Steps:      raw,
			IsActive:   true,
		})
	}
	return challenges, nil
}
