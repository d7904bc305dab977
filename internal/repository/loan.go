package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
)

const loanColumns = "id, user_id, book_id, loan_date, due_date, return_date"

// CreateLoan decrements the book counter and records the loan in one
// transaction. The decrement predicate keeps the counter non-negative,
// so two concurrent borrows of the last copy cannot both commit.
func (r *repository) CreateLoan(ctx context.Context, userID, bookID int64, loanDate, dueDate time.Time) (model.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
update books
    set available_copies = available_copies - 1
where id = $1 and available_copies > 0`, bookID)
	if err != nil {
		return model.Loan{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Loan{}, errs.ErrInvalidState
	}

	query, args, err := qb.Insert(loansTableName).
		Columns("user_id", "book_id", "loan_date", "due_date").
		Values(userID, bookID, loanDate, dueDate).
		Suffix("returning " + loanColumns).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var loan model.Loan
	if err := tx.GetContext(ctx, &loan, query, args...); err != nil {
		r.log.Error("CreateLoan", zap.String("q", query), zap.Error(err))
		return model.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

// CloseLoan sets the return date and gives the copy back to the book,
// both in one transaction. A loan that is already closed is left
// untouched and reported as ErrInvalidState.
func (r *repository) CloseLoan(ctx context.Context, loanID int64, returnDate time.Time) (model.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var loan model.Loan
	err = tx.GetContext(ctx, &loan, `
update loans
    set return_date = $2
where id = $1 and return_date is null
returning `+loanColumns, loanID, returnDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrInvalidState
		}
		return model.Loan{}, err
	}

	if _, err := tx.ExecContext(ctx, `
update books
    set available_copies = available_copies + 1
where id = $1`, loan.BookID); err != nil {
		return model.Loan{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) GetLoan(ctx context.Context, id int64) (model.Loan, error) {
	query, args, err := qb.Select(loanColumns).
		From(loansTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var loan model.Loan
	if err := r.db.GetContext(ctx, &loan, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) ListLoans(ctx context.Context) ([]model.Loan, error) {
	return r.listLoans(ctx, nil)
}

func (r *repository) ListLoansByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	return r.listLoans(ctx, sq.Eq{"user_id": userID})
}

func (r *repository) ListActiveLoans(ctx context.Context) ([]model.Loan, error) {
	return r.listLoans(ctx, sq.Eq{"return_date": nil})
}

func (r *repository) ListActiveLoansByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	return r.listLoans(ctx, sq.And{
		sq.Eq{"user_id": userID},
		sq.Eq{"return_date": nil},
	})
}

// ListOverdueLoans returns open loans whose due date is strictly before
// dueBefore. Called with today for overdue detection and today-7d for
// the librarian broadcast.
func (r *repository) ListOverdueLoans(ctx context.Context, dueBefore time.Time) ([]model.Loan, error) {
	return r.listLoans(ctx, sq.And{
		sq.Lt{"due_date": dueBefore},
		sq.Eq{"return_date": nil},
	})
}

func (r *repository) listLoans(ctx context.Context, pred interface{}) ([]model.Loan, error) {
	q := qb.Select(loanColumns).From(loansTableName)
	if pred != nil {
		q = q.Where(pred)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}

// DeleteLoan is an administrative hard delete. It deliberately does not
// touch available_copies; only CloseLoan restores availability.
func (r *repository) DeleteLoan(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(loansTableName).
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

func (r *repository) LoanStats(ctx context.Context, today time.Time) (model.LoanReport, error) {
	q := `
select
    count(*) as total,
    count(*) filter (where return_date is null) as active,
    count(*) filter (where return_date is null and due_date < $1) as overdue
from loans`

	var report model.LoanReport
	if err := r.db.QueryRowContext(ctx, q, today).
		Scan(&report.TotalLoans, &report.ActiveLoans, &report.OverdueLoans); err != nil {
		return model.LoanReport{}, err
	}
	return report, nil
}
