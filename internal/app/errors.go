package app

import "errors"

var (
	// ErrInvalidRating rejects submissions outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyReview rejects submissions with blank review text.
	ErrEmptyReview = errors.New("review text cannot be empty")
	// ErrReviewNotFound signals an unknown review id.
	ErrReviewNotFound = errors.New("review not found")
)
