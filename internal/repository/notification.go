package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
)

const notificationColumns = "id, user_id, loan_id, message, created_at, read_flag"

func (r *repository) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	query, args, err := qb.Insert(notificationsTableName).
		Columns("user_id", "loan_id", "message", "created_at", "read_flag").
		Values(n.UserID, n.LoanID, n.Message, n.CreatedAt, n.ReadFlag).
		Suffix("returning " + notificationColumns).
		ToSql()
	if err != nil {
		return model.Notification{}, err
	}

	var created model.Notification
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return model.Notification{}, err
	}
	return created, nil
}

func (r *repository) GetNotification(ctx context.Context, id int64) (model.Notification, error) {
	query, args, err := qb.Select(notificationColumns).
		From(notificationsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Notification{}, err
	}

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, errs.ErrNotFound
		}
		return model.Notification{}, err
	}
	return n, nil
}

func (r *repository) ListNotificationsByUser(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error) {
	q := qb.Select(notificationColumns).
		From(notificationsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc")
	if unreadOnly {
		q = q.Where(sq.Eq{"read_flag": false})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.Notification
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) MarkNotificationRead(ctx context.Context, id int64) error {
	query, args, err := qb.Update(notificationsTableName).
		Set("read_flag", true).
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

func (r *repository) DeleteNotification(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(notificationsTableName).
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
