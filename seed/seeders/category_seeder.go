// seeders/category_seeder.go
package seeders

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/cognify-health/cognify_api/model"
)

// CategorySeeder seeds the naming categories and their ranked vocabularies
type CategorySeeder struct {
	db *gorm.DB
}

// NewCategorySeeder creates a new category seeder
func NewCategorySeeder(db *gorm.DB) *CategorySeeder {
	return &CategorySeeder{db: db}
}

// SeedCategories inserts any categories not already present
func (s *CategorySeeder) SeedCategories() error {
	categories, err := s.getCategories()
	if err != nil {
		return err
	}

	created := 0
	for _, cat := range categories {
		var existing model.Category
		err := s.db.First(&existing, "id = ?", cat.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check category %s: %w", cat.ID, err)
		}

		if err := s.db.Create(&cat).Error; err != nil {
			return fmt.Errorf("create category %s: %w", cat.ID, err)
		}
		created++
	}

	log.Printf("Categories seeded: %d created, %d total", created, len(categories))
	return nil
}

// Word lists are ordered most common first; rank in the list decides which
// entries count as rare.
func (s *CategorySeeder) getCategories() ([]model.Category, error) {
	banks := []struct {
		id    string
		name  string
		words []string
	}{
		{
			id:   "animals",
			name: "Animals",
			words: []string{
				"dog", "cat", "elephant", "lion", "tiger", "giraffe", "zebra",
				"bear", "wolf", "kangaroo", "panda", "monkey", "horse", "cow",
				"sheep", "goat", "rabbit", "fox", "deer", "hippopotamus",
				"rhinoceros", "crocodile", "snake", "frog", "penguin",
				"dolphin", "whale", "shark", "octopus", "eagle",
			},
		},
		{
			id:   "fruits",
			name: "Fruits",
			words: []string{
				"apple", "banana", "orange", "grape", "strawberry", "blueberry",
				"pear", "peach", "mango", "pineapple", "watermelon", "kiwi",
				"cherry", "plum", "papaya", "apricot", "grapefruit", "lemon",
				"lime", "cantaloupe", "pomegranate", "blackberry", "raspberry",
				"fig", "date", "guava", "nectarine", "tangerine", "lychee",
				"jackfruit",
			},
		},
		{
			id:   "vegetables",
			name: "Vegetables",
			words: []string{
				"carrot", "broccoli", "spinach", "lettuce", "cucumber",
				"tomato", "pepper", "cauliflower", "cabbage", "onion", "garlic",
				"potato", "sweet potato", "zucchini", "eggplant", "pea", "corn",
				"pumpkin", "radish", "beet", "asparagus", "celery", "kale",
				"brussels sprouts", "leek", "okra", "squash", "mushroom",
				"turnip", "artichoke",
			},
		},
		{
			id:   "countries",
			name: "Countries",
			words: []string{
				"united states", "canada", "mexico", "brazil", "argentina",
				"united kingdom", "france", "germany", "italy", "spain",
				"portugal", "australia", "china", "japan", "india", "russia",
				"south africa", "egypt", "kenya", "nigeria", "morocco",
				"turkey", "saudi arabia", "thailand", "vietnam", "indonesia",
				"philippines", "south korea", "new zealand", "netherlands",
			},
		},
		{
			id:   "cities",
			name: "Cities",
			words: []string{
				"new york", "los angeles", "chicago", "houston", "philadelphia",
				"london", "paris", "berlin", "madrid", "rome", "tokyo",
				"sydney", "melbourne", "mumbai", "delhi", "beijing", "shanghai",
				"moscow", "dubai", "cairo", "nairobi", "capetown",
				"rio de janeiro", "buenos aires", "toronto", "vancouver",
				"singapore", "bangkok", "seoul", "amsterdam",
			},
		},
		{
			id:   "sports",
			name: "Sports",
			words: []string{
				"soccer", "basketball", "baseball", "tennis", "golf",
				"swimming", "running", "cycling", "volleyball", "cricket",
				"rugby", "hockey", "skiing", "snowboarding", "boxing",
				"wrestling", "martial arts", "badminton", "table tennis",
				"skateboarding", "surfing", "gymnastics", "fencing", "archery",
				"equestrian", "rowing", "canoeing", "taekwondo", "judo",
				"karate",
			},
		},
		{
			id:   "musical_instruments",
			name: "Musical Instruments",
			words: []string{
				"piano", "guitar", "violin", "drums", "flute", "saxophone",
				"trumpet", "cello", "clarinet", "trombone", "harp",
				"accordion", "banjo", "mandolin", "ukulele", "harmonica",
				"bass", "oboe", "bassoon", "sitar", "tabla", "xylophone",
				"timpani", "keyboard", "theremin", "marimba", "bagpipes",
				"didgeridoo", "lute", "recorder",
			},
		},
	}

	categories := make([]model.Category, 0, len(banks))
	for _, bank := range banks {
		raw, err := json.Marshal(bank.words)
		if err != nil {
			return nil, fmt.Errorf("marshal words for %s: %w", bank.id, err)
		}
		categories = append(categories, model.Category{
			ID:       bank.id,
			Name:     bank.name,
			Words:    raw,
			IsActive: true,
		})
	}
	return categories, nil
}
