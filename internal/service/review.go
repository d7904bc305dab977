package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository"
)

type ReviewService struct {
	log  *zap.Logger
	repo repository.Repository
	now  func() time.Time
}

func NewReviewService(repo repository.Repository, log *zap.Logger) *ReviewService {
	return &ReviewService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, authorEmail string, req model.ReviewCreateRequest) (model.Review, error) {
	user, err := s.repo.GetUserByEmail(ctx, authorEmail)
	if err != nil {
		return model.Review{}, errors.Wrap(err, "author")
	}
	if _, err := s.repo.GetBook(ctx, req.BookID); err != nil {
		return model.Review{}, errors.Wrap(err, "book")
	}

	return s.repo.CreateReview(ctx, model.Review{
		UserID:    user.ID,
		BookID:    req.BookID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now().UTC(),
	})
}

func (s *ReviewService) GetAllReviews(ctx context.Context) ([]model.Review, error) {
	return s.repo.ListReviews(ctx)
}

func (s *ReviewService) GetReviewsForBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	return s.repo.ListReviewsByBook(ctx, bookID)
}

func (s *ReviewService) GetReviewsForIdentity(ctx context.Context, email string) ([]model.Review, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReviewsByUser(ctx, user.ID)
}

func (s *ReviewService) GetAverageRatingForBook(ctx context.Context, bookID int64) (float64, error) {
	return s.repo.AverageRatingForBook(ctx, bookID)
}

// DeleteReview removes a review. Staff may delete any review, an
// author only their own.
func (s *ReviewService) DeleteReview(ctx context.Context, id int64, actorEmail string) error {
	review, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.repo.GetUserByEmail(ctx, actorEmail)
	if err != nil {
		return err
	}

	if !actor.Role.IsStaff() && review.UserID != actor.ID {
		return errs.ErrForbidden
	}
	return s.repo.DeleteReview(ctx, id)
}
