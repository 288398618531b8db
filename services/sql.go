package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cognify-health/cognify_api/model"
)

// SqlService owns the attempt store and the three content banks. It runs on
// sqlite by default and switches to postgres when POSTGRES_DSN is set.
type SqlService struct {
	context.DefaultService
	db *gorm.DB

	database    string
	postgresDSN string
}

const SQL_SVC = "sql_svc"

// Id returns Service ID
func (ds SqlService) Id() string {
	return SQL_SVC
}

// Db Access to raw SqlService db
func (ds SqlService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqlService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DB_DATABASE")
	if ds.database == "" {
		ds.database = "cognify.db"
	}
	ds.postgresDSN = os.Getenv("POSTGRES_DSN")

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqlService) Start() (err error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	}
	if ds.postgresDSN != "" {
		ds.db, err = gorm.Open(postgres.Open(ds.postgresDSN), cfg)
	} else {
		ds.db, err = gorm.Open(sqlite.Open(ds.database), cfg)
	}
	if err != nil {
		return err
	}

	models := []interface{}{
		&model.ExerciseAttempt{},
		&model.CardPair{},
		&model.Category{},
		&model.SequenceChallenge{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqlService) Shutdown() {
}

func (ds *SqlService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "no such table") {
			statusCode = http.StatusInternalServerError // 500
			errorType = "SCHEMA_ERROR"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// Attempt store

func (ds *SqlService) CreateAttempt(attempt *model.ExerciseAttempt) error {
	return ds.HandleError(ds.db.Create(attempt).Error)
}

func (ds *SqlService) UpdateAttempt(attempt *model.ExerciseAttempt) error {
	return ds.HandleError(ds.db.Save(attempt).Error)
}

func (ds *SqlService) GetAttemptByExerciseID(exerciseID string) (*model.ExerciseAttempt, error) {
	var attempt model.ExerciseAttempt
	err := ds.db.Where("exercise_id = ?", exerciseID).First(&attempt).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &attempt, nil
}

func (ds *SqlService) ListAttemptsByUser(userID string, limit int) ([]model.ExerciseAttempt, error) {
	var attempts []model.ExerciseAttempt
	q := ds.db.Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&attempts).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return attempts, nil
}

// Content banks

func (ds *SqlService) GetCardPairs(category string) ([]model.CardPair, error) {
	var pairs []model.CardPair
	q := ds.db.Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&pairs).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return pairs, nil
}

func (ds *SqlService) GetCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := ds.db.Where("is_active = ?", true).Order("id").Find(&categories).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return categories, nil
}

func (ds *SqlService) GetCategory(id string) (*model.Category, error) {
	var category model.Category
	err := ds.db.Where("id = ? AND is_active = ?", id, true).First(&category).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &category, nil
}

func (ds *SqlService) GetSequenceChallenges(difficulty string) ([]model.SequenceChallenge, error) {
	var challenges []model.SequenceChallenge
	q := ds.db.Where("is_active = ?", true)
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	if err := q.Find(&challenges).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return challenges, nil
}

func (ds *SqlService) GetSequenceChallenge(id string) (*model.SequenceChallenge, error) {
	var challenge model.SequenceChallenge
	err := ds.db.Where("id = ? AND is_active = ?", id, true).First(&challenge).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &challenge, nil
}
