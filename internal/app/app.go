package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reviewdesk/pkg/domain"
	"reviewdesk/pkg/store"
)

// ContentGenerator produces the AI-generated fields of a review. Calls never
// fail: generation errors surface as placeholder content in the result.
type ContentGenerator interface {
	ResponseFor(ctx context.Context, rating int, reviewText string) string
	SummaryFor(ctx context.Context, reviewText string, rating int) string
	ActionFor(ctx context.Context, reviewText string, rating int, summary string) string
}

// Config holds dependencies for the core application.
type Config struct {
	Store    store.Store
	Reviewer ContentGenerator
}

// App is the review workflow: validation, AI content generation, and
// whole-collection persistence.
type App struct {
	store    store.Store
	reviewer ContentGenerator
}

// New wires the workflow with its storage and generator dependencies.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Reviewer == nil {
		return nil, fmt.Errorf("reviewer required")
	}
	return &App{store: cfg.Store, reviewer: cfg.Reviewer}, nil
}

// SubmitReview validates the submission, generates the three AI fields, and
// appends the new record to the persisted collection. Response and summary
// are generated concurrently; the action recommendation needs the summary
// and runs after. Nothing is persisted until generation has finished, so a
// failed save leaves no partial record behind.
func (a *App) SubmitReview(ctx context.Context, rating int, reviewText string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}
	if strings.TrimSpace(reviewText) == "" {
		return domain.Review{}, ErrEmptyReview
	}

	var response, summary string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		response = a.reviewer.ResponseFor(gctx, rating, reviewText)
		return nil
	})
	g.Go(func() error {
		summary = a.reviewer.SummaryFor(gctx, reviewText, rating)
		return nil
	})
	_ = g.Wait()
	action := a.reviewer.ActionFor(ctx, reviewText, rating, summary)

	reviews, err := a.store.Load()
	if err != nil {
		return domain.Review{}, fmt.Errorf("load reviews: %w", err)
	}
	now := time.Now().UTC()
	review := domain.Review{
		ID:                  uniqueID(reviews, now),
		UserRating:          rating,
		UserReview:          reviewText,
		AIResponse:          response,
		AISummary:           summary,
		AIRecommendedAction: action,
		Timestamp:           now.Format(time.RFC3339),
		Status:              domain.StatusPending,
	}
	reviews = append(reviews, review)
	if err := a.store.Save(reviews); err != nil {
		return domain.Review{}, fmt.Errorf("save reviews: %w", err)
	}
	return review, nil
}

// ListReviews returns the full persisted collection in insertion order.
func (a *App) ListReviews() ([]domain.Review, error) {
	reviews, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	return reviews, nil
}

// GetReview returns the record with the given id.
func (a *App) GetReview(id string) (domain.Review, error) {
	reviews, err := a.store.Load()
	if err != nil {
		return domain.Review{}, fmt.Errorf("load reviews: %w", err)
	}
	for _, review := range reviews {
		if review.ID == id {
			return review, nil
		}
	}
	return domain.Review{}, ErrReviewNotFound
}

// UpdateStatus overwrites the status of the given review and persists the
// collection. The new value is free text; no enumeration is enforced.
func (a *App) UpdateStatus(id, status string) error {
	reviews, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}
	for i := range reviews {
		if reviews[i].ID == id {
			reviews[i].Status = status
			if err := a.store.Save(reviews); err != nil {
				return fmt.Errorf("save reviews: %w", err)
			}
			return nil
		}
	}
	return ErrReviewNotFound
}

// Analytics computes dashboard aggregates. An empty collection yields zero
// values and a zero-filled distribution, never a division by zero.
func (a *App) Analytics() (domain.Analytics, error) {
	reviews, err := a.store.Load()
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("load reviews: %w", err)
	}
	distribution := make(map[string]int, 5)
	for rating := 1; rating <= 5; rating++ {
		distribution[strconv.Itoa(rating)] = 0
	}
	total := 0
	for _, review := range reviews {
		total += review.UserRating
		distribution[strconv.Itoa(review.UserRating)]++
	}
	result := domain.Analytics{
		TotalReviews:       len(reviews),
		RatingDistribution: distribution,
	}
	if len(reviews) > 0 {
		result.AverageRating = float64(total) / float64(len(reviews))
	}
	return result, nil
}

// uniqueID derives a timestamp id and bumps it by one microsecond while it
// collides with an existing record.
func uniqueID(reviews []domain.Review, now time.Time) string {
	id := domain.NewReviewID(now)
	for idTaken(reviews, id) {
		now = now.Add(time.Microsecond)
		id = domain.NewReviewID(now)
	}
	return id
}

func idTaken(reviews []domain.Review, id string) bool {
	for _, review := range reviews {
		if review.ID == id {
			return true
		}
	}
	return false
}
