package store

import "reviewdesk/pkg/domain"

// Store persists the review collection as a single document: callers load
// the full collection, mutate it, and save it back wholesale. There is no
// per-record update path.
type Store interface {
	Load() ([]domain.Review, error)
	Save([]domain.Review) error
}
