package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewdesk/pkg/domain"
)

// GormStore implements Store on Postgres via GORM. It keeps the same
// load-full/save-full contract as the file store: Save replaces every row
// inside one transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&ReviewModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Load returns the collection ordered by insertion position.
func (g *GormStore) Load() ([]domain.Review, error) {
	var rows []ReviewModel
	if err := g.db.Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, toDomain(row))
	}
	return reviews, nil
}

// Save replaces all rows with the given collection.
func (g *GormStore) Save(reviews []domain.Review) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ReviewModel{}).Error; err != nil {
			return fmt.Errorf("clear reviews: %w", err)
		}
		if len(reviews) == 0 {
			return nil
		}
		rows := make([]ReviewModel, 0, len(reviews))
		for i, review := range reviews {
			rows = append(rows, toModel(review, i))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert reviews: %w", err)
		}
		return nil
	})
}

func toDomain(row ReviewModel) domain.Review {
	return domain.Review{
		ID:                  row.ID,
		UserRating:          row.UserRating,
		UserReview:          row.UserReview,
		AIResponse:          row.AIResponse,
		AISummary:           row.AISummary,
		AIRecommendedAction: row.AIRecommendedAction,
		Timestamp:           row.Timestamp,
		Status:              row.Status,
	}
}

func toModel(review domain.Review, position int) ReviewModel {
	return ReviewModel{
		ID:                  review.ID,
		Position:            position,
		UserRating:          review.UserRating,
		UserReview:          review.UserReview,
		AIResponse:          review.AIResponse,
		AISummary:           review.AISummary,
		AIRecommendedAction: review.AIRecommendedAction,
		Timestamp:           review.Timestamp,
		Status:              review.Status,
	}
}
