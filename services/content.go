package services

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cognify-health/cognify_api/game"
	"github.com/cognify-health/cognify_api/model"
	"github.com/cognify-health/cognify_api/shared"
)

// contentStore is the slice of SqlService the content lookups need.
type contentStore interface {
	GetCardPairs(category string) ([]model.CardPair, error)
	GetCategories() ([]model.Category, error)
	GetCategory(id string) (*model.Category, error)
	GetSequenceChallenges(difficulty string) ([]model.SequenceChallenge, error)
	GetSequenceChallenge(id string) (*model.SequenceChallenge, error)
}

// ContentService turns the persisted banks into engine inputs: sampled card
// pairs, category vocabularies and sequence challenges.
type ContentService struct {
	context.DefaultService

	store contentStore

	rng    *rand.Rand
	rngMux sync.Mutex
}

const CONTENT_SVC = "content_svc"

func (svc ContentService) Id() string {
	return CONTENT_SVC
}

func (svc *ContentService) Configure(ctx *context.Context) error {
	svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	return svc.DefaultService.Configure(ctx)
}

func (svc *ContentService) Start() error {
	svc.store = svc.Service(SQL_SVC).(*SqlService)
	return nil
}

// SessionRng mints an independent randomness source for one session. The
// engine constructors shuffle with it outside any service lock, so each
// session must own its rand rather than share the seed source.
func (svc *ContentService) SessionRng() *rand.Rand {
	svc.rngMux.Lock()
	defer svc.rngMux.Unlock()
	return rand.New(rand.NewSource(svc.rng.Int63()))
}

// SamplePairs draws the level's pair count from the bank, optionally within
// one category.
func (svc *ContentService) SamplePairs(lvl game.PairMatchDifficulty, category string) ([]game.PairContent, error) {
	pairs, err := svc.store.GetCardPairs(category)
	if err != nil {
		return nil, err
	}
	if len(pairs) < lvl.Pairs {
		log.Warn().
			Str("category", category).
			Int("available", len(pairs)).
			Int("needed", lvl.Pairs).
			Msg("Card pair bank too small for difficulty")
		return nil, shared.NewBadRequestError(
			fmt.Errorf("bank has %d pairs, %s needs %d", len(pairs), lvl.Name, lvl.Pairs),
			"Not enough card pairs for this difficulty")
	}

	svc.rngMux.Lock()
	svc.rng.Shuffle(len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})
	svc.rngMux.Unlock()

	content := make([]game.PairContent, lvl.Pairs)
	for i := 0; i < lvl.Pairs; i++ {
		content[i] = game.PairContent{
			PairID:   i + 1,
			Question: pairs[i].Question,
			Answer:   pairs[i].Answer,
			Category: pairs[i].Category,
		}
	}
	return content, nil
}

// CategoryVocabulary resolves a category, or picks one at random when id is
// empty, and decodes its ranked word list.
func (svc *ContentService) CategoryVocabulary(id string) (*model.Category, []string, error) {
	var category *model.Category
	var err error

	if id != "" {
		category, err = svc.store.GetCategory(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, shared.NewNotFoundError(err, "Category not found")
			}
			return nil, nil, err
		}
	} else {
		categories, err := svc.store.GetCategories()
		if err != nil {
			return nil, nil, err
		}
		if len(categories) == 0 {
			return nil, nil, shared.NewInternalError(fmt.Errorf("category bank is empty"), "No categories available")
		}
		svc.rngMux.Lock()
		category = &categories[svc.rng.Intn(len(categories))]
		svc.rngMux.Unlock()
	}

	var words []string
	if err := sonic.Unmarshal(category.Words, &words); err != nil {
		return nil, nil, shared.NewInternalError(err, "Category vocabulary is corrupt")
	}
	if len(words) == 0 {
		return nil, nil, shared.NewInternalError(fmt.Errorf("category %s has no words", category.ID), "Category vocabulary is empty")
	}
	return category, words, nil
}

// ListCategories returns the active categories with their word counts.
func (svc *ContentService) ListCategories() ([]model.Category, map[string]int, error) {
	categories, err := svc.store.GetCategories()
	if err != nil {
		return nil, nil, err
	}

	counts := make(map[string]int, len(categories))
	for _, c := range categories {
		var words []string
		if err := sonic.Unmarshal(c.Words, &words); err != nil {
			continue
		}
		counts[c.ID] = len(words)
	}
	return categories, counts, nil
}

// PickChallenge resolves a sequence challenge by id, or draws a random one of
// the requested difficulty, and decodes its steps in reference order.
func (svc *ContentService) PickChallenge(difficulty, challengeID string) (*model.SequenceChallenge, []game.Step, error) {
	var challenge *model.SequenceChallenge
	var err error

	if challengeID != "" {
		challenge, err = svc.store.GetSequenceChallenge(challengeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, shared.NewNotFoundError(err, "Challenge not found")
			}
			return nil, nil, err
		}
		if challenge.Difficulty != difficulty {
			return nil, nil, shared.NewBadRequestError(
				fmt.Errorf("challenge %s is %s, requested %s", challenge.ID, challenge.Difficulty, difficulty),
				"Challenge does not belong to the requested difficulty")
		}
	} else {
		challenges, err := svc.store.GetSequenceChallenges(difficulty)
		if err != nil {
			return nil, nil, err
		}
		if len(challenges) == 0 {
			return nil, nil, shared.NewInternalError(fmt.Errorf("no %s challenges in bank", difficulty), "No challenges available")
		}
		svc.rngMux.Lock()
		challenge = &challenges[svc.rng.Intn(len(challenges))]
		svc.rngMux.Unlock()
	}

	var texts []string
	if err := sonic.Unmarshal(challenge.Steps, &texts); err != nil {
		return nil, nil, shared.NewInternalError(err, "Challenge steps are corrupt")
	}

	steps := make([]game.Step, len(texts))
	for i, text := range texts {
		steps[i] = game.Step{
			StepID:       fmt.Sprintf("%s_s%d", challenge.ID, i+1),
			Text:         text,
			CorrectIndex: i,
		}
	}
	return challenge, steps, nil
}
