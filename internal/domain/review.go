package domain

import (
	"math"
	"time"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewComment = 1000
)

// Review is a visitor's rating of a product. UserID is empty for guests.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId,omitempty"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// AverageRating is the mean rating rounded to one decimal, 0 without reviews.
func AverageRating(rs []Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return math.Round(float64(sum)*10/float64(len(rs))) / 10
}
