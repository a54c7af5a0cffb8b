package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"medicatalog/internal/domain"
	applog "medicatalog/internal/log"
	"medicatalog/internal/repos"
	"medicatalog/internal/validate"
)

type ReviewService struct {
	Prods   *repos.ProductRepo
	Reviews *repos.ReviewRepo
}

func NewReviewService(prods *repos.ProductRepo, reviews *repos.ReviewRepo) *ReviewService {
	return &ReviewService{Prods: prods, Reviews: reviews}
}

// ReviewInput is a review as posted. Author is only read for guests.
type ReviewInput struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Add stores a review for productID. A signed-in user signs with their
// account name and id.
func (s *ReviewService) Add(ctx context.Context, productID string, in ReviewInput, u *domain.User) (domain.Review, error) {
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return domain.Review{}, domain.Invalid("rating", "must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" || utf8.RuneCountInString(comment) > domain.MaxReviewComment {
		return domain.Review{}, domain.Invalid("comment", "required, at most 1000 characters")
	}
	rv := domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if u != nil {
		rv.UserID, rv.Author = u.ID, u.Name
	} else {
		name, ok := validate.ContactName(in.Author)
		if !ok {
			return domain.Review{}, domain.Invalid("author", "required, at most 80 characters")
		}
		rv.Author = name
	}

	if _, err := s.Prods.Get(ctx, productID); err != nil {
		return domain.Review{}, domain.Transient("products.get", err)
	}
	if err := s.Reviews.Add(ctx, rv); err != nil {
		return domain.Review{}, domain.Transient("reviews.add", err)
	}
	applog.Event("review.added", nil, map[string]any{"product": productID, "rating": rv.Rating, "guest": rv.UserID == ""})
	return rv, nil
}

// List returns a product's reviews, newest first.
func (s *ReviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	out, err := s.Reviews.ByProduct(ctx, productID)
	return out, domain.Transient("reviews.list", err)
}
