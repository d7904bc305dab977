package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
)

const reviewColumns = "id, user_id, book_id, rating, comment, created_at"

func (r *repository) CreateReview(ctx context.Context, review model.Review) (model.Review, error) {
	query, args, err := qb.Insert(reviewsTableName).
		Columns("user_id", "book_id", "rating", "comment", "created_at").
		Values(review.UserID, review.BookID, review.Rating, review.Comment, review.CreatedAt).
		Suffix("returning " + reviewColumns).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}

	var created model.Review
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return model.Review{}, err
	}
	return created, nil
}

func (r *repository) GetReview(ctx context.Context, id int64) (model.Review, error) {
	query, args, err := qb.Select(reviewColumns).
		From(reviewsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}

	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Review{}, errs.ErrNotFound
		}
		return model.Review{}, err
	}
	return review, nil
}

func (r *repository) ListReviews(ctx context.Context) ([]model.Review, error) {
	return r.listReviews(ctx, nil)
}

func (r *repository) ListReviewsByBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	return r.listReviews(ctx, sq.Eq{"book_id": bookID})
}

func (r *repository) ListReviewsByUser(ctx context.Context, userID int64) ([]model.Review, error) {
	return r.listReviews(ctx, sq.Eq{"user_id": userID})
}

func (r *repository) listReviews(ctx context.Context, pred interface{}) ([]model.Review, error) {
	q := qb.Select(reviewColumns).
		From(reviewsTableName).
		OrderBy("created_at desc")
	if pred != nil {
		q = q.Where(pred)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var reviews []model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageRatingForBook is derived on read, never stored.
func (r *repository) AverageRatingForBook(ctx context.Context, bookID int64) (float64, error) {
	q := `select coalesce(avg(rating), 0) from reviews where book_id = $1`

	var avg float64
	if err := r.db.QueryRowContext(ctx, q, bookID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *repository) DeleteReview(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(reviewsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
