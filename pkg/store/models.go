package store

// ReviewModel is the GORM row backing one review. Position preserves the
// collection's insertion order across save/load cycles.
type ReviewModel struct {
	ID                  string `gorm:"primaryKey"`
	Position            int    `gorm:"not null;index"`
	UserRating          int    `gorm:"not null"`
	UserReview          string `gorm:"type:text;not null"`
	AIResponse          string `gorm:"type:text"`
	AISummary           string `gorm:"type:text"`
	AIRecommendedAction string `gorm:"type:text"`
	Timestamp           string `gorm:"not null"`
	Status              string `gorm:"not null"`
}
