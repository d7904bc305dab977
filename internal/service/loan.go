package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository"
	"github.com/bibliodesk/library-service/pkg/kafka"
)

// loanPeriodDays is the fixed lending policy: due date is loan date
// plus two weeks.
const loanPeriodDays = 14

type LoanService struct {
	log       *zap.Logger
	repo      repository.Repository
	publisher kafka.Publisher
	now       func() time.Time
}

// NewLoanService wires the loan engine. publisher may be nil; lifecycle
// events are then skipped.
func NewLoanService(repo repository.Repository, publisher kafka.Publisher, log *zap.Logger) *LoanService {
	return &LoanService{
		log:       log,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *LoanService) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateLoan lends one copy of a book to a user. The counter decrement
// and the loan insert commit together or not at all.
func (s *LoanService) CreateLoan(ctx context.Context, userID, bookID int64) (model.Loan, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "borrower")
	}
	if !user.Active {
		return model.Loan{}, errs.ErrInvalidState
	}

	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "book")
	}
	if book.AvailableCopies <= 0 {
		return model.Loan{}, errs.ErrInvalidState
	}

	loanDate := s.today()
	dueDate := loanDate.AddDate(0, 0, loanPeriodDays)

	loan, err := s.repo.CreateLoan(ctx, userID, bookID, loanDate, dueDate)
	if err != nil {
		return model.Loan{}, err
	}

	s.publish(kafka.NewLoanEvent(kafka.EventLoanCreated, loan.ID, loan.UserID, loan.BookID, loan.DueDate.Format(time.DateOnly)))
	return loan, nil
}

// CreateLoanForIdentity resolves the caller's email to a borrower id
// and delegates to CreateLoan.
func (s *LoanService) CreateLoanForIdentity(ctx context.Context, email string, bookID int64) (model.Loan, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "borrower")
	}
	return s.CreateLoan(ctx, user.ID, bookID)
}

// ReturnLoan closes an open loan. Only the borrower or staff may do it;
// the return date, once set, never changes.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID int64, actingEmail string) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "loan")
	}
	if loan.ReturnDate != nil {
		return model.Loan{}, errs.ErrInvalidState
	}

	actor, err := s.repo.GetUserByEmail(ctx, actingEmail)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "acting user")
	}

	isOwner := loan.UserID == actor.ID
	if !isOwner && !actor.Role.IsStaff() {
		return model.Loan{}, errs.ErrForbidden
	}

	closed, err := s.repo.CloseLoan(ctx, loanID, s.today())
	if err != nil {
		return model.Loan{}, err
	}

	s.publish(kafka.NewLoanEvent(kafka.EventLoanReturned, closed.ID, closed.UserID, closed.BookID, ""))
	return closed, nil
}

func (s *LoanService) GetLoan(ctx context.Context, id int64) (model.Loan, error) {
	return s.repo.GetLoan(ctx, id)
}

func (s *LoanService) GetAllLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListLoans(ctx)
}

func (s *LoanService) GetLoansForUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.repo.ListLoansByUser(ctx, userID)
}

func (s *LoanService) GetLoansForIdentity(ctx context.Context, email string) ([]model.Loan, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLoansByUser(ctx, user.ID)
}

func (s *LoanService) GetActiveLoansForIdentity(ctx context.Context, email string) ([]model.Loan, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActiveLoansByUser(ctx, user.ID)
}

func (s *LoanService) GetAllActiveLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListActiveLoans(ctx)
}

func (s *LoanService) GetOverdueLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListOverdueLoans(ctx, s.today())
}

// DeleteLoan is the administrative purge. It does not restore book
// availability; that is ReturnLoan's job alone.
func (s *LoanService) DeleteLoan(ctx context.Context, id int64) error {
	return s.repo.DeleteLoan(ctx, id)
}

// CreateOverdueNotifications emits one notification per overdue loan
// and returns the count. There is no dedup key: calling it twice
// notifies twice.
func (s *LoanService) CreateOverdueNotifications(ctx context.Context) (int, error) {
	overdue, err := s.repo.ListOverdueLoans(ctx, s.today())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, loan := range overdue {
		book, err := s.repo.GetBook(ctx, loan.BookID)
		if err != nil {
			return count, errors.Wrapf(err, "book for loan %d", loan.ID)
		}

		loanID := loan.ID
		msg := fmt.Sprintf("Loan for book '%s' is overdue. Due date was %s.",
			book.Title, loan.DueDate.Format(time.DateOnly))

		if _, err := s.repo.CreateNotification(ctx, model.Notification{
			UserID:    loan.UserID,
			LoanID:    &loanID,
			Message:   msg,
			CreatedAt: s.now().UTC(),
		}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *LoanService) Report(ctx context.Context) (model.LoanReport, error) {
	return s.repo.LoanStats(ctx, s.today())
}

func (s *LoanService) publish(ev kafka.LoanEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ev); err != nil {
		s.log.Warn("publish loan event", zap.String("type", ev.Type), zap.Error(err))
	}
}
