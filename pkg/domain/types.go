package domain

import (
	"fmt"
	"time"
)

// StatusPending is the workflow status assigned to every new review.
// Status is free text after creation; no enumeration is enforced.
const StatusPending = "pending"

// Review combines the customer's input with the AI-generated fields.
// JSON tags double as the persisted document field names.
type Review struct {
	ID                  string `json:"id"`
	UserRating          int    `json:"user_rating"`
	UserReview          string `json:"user_review"`
	AIResponse          string `json:"ai_response"`
	AISummary           string `json:"ai_summary"`
	AIRecommendedAction string `json:"ai_recommended_action"`
	Timestamp           string `json:"timestamp"`
	Status              string `json:"status"`
}

// Analytics aggregates the collection for the admin dashboard.
type Analytics struct {
	TotalReviews       int            `json:"total_reviews"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// NewReviewID derives an id token from the given time, seconds with
// microsecond precision, matching the historical id format.
func NewReviewID(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
