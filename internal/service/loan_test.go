package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository/mocks"
)

func newLoanService(t *testing.T, at time.Time) (*LoanService, *mocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewLoanService(repo, nil, zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc, repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoanService_CreateLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)
	loanDate := date(2024, time.March, 10)
	dueDate := date(2024, time.March, 24)

	borrower := model.User{ID: 7, Email: "reader@mail.ru", Role: model.RoleUser, Active: true}
	book := model.Book{ID: 3, Title: "Dune", AvailableCopies: 2}

	tests := []struct {
		name    string
		mock    func(r *mocks.MockRepository)
		wantErr error
	}{
		{
			name: "ok",
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetUserByID(ctx, borrower.ID).Return(borrower, nil)
				r.EXPECT().GetBook(ctx, book.ID).Return(book, nil)
				r.EXPECT().CreateLoan(ctx, borrower.ID, book.ID, loanDate, dueDate).
					Return(model.Loan{ID: 1, UserID: borrower.ID, BookID: book.ID, LoanDate: loanDate, DueDate: dueDate}, nil)
			},
		},
		{
			name: "unknown borrower",
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetUserByID(ctx, borrower.ID).Return(model.User{}, errs.ErrNotFound)
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "deactivated borrower",
			mock: func(r *mocks.MockRepository) {
				inactive := borrower
				inactive.Active = false
				r.EXPECT().GetUserByID(ctx, borrower.ID).Return(inactive, nil)
			},
			wantErr: errs.ErrInvalidState,
		},
		{
			name: "unknown book",
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetUserByID(ctx, borrower.ID).Return(borrower, nil)
				r.EXPECT().GetBook(ctx, book.ID).Return(model.Book{}, errs.ErrNotFound)
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "no copies left",
			mock: func(r *mocks.MockRepository) {
				empty := book
				empty.AvailableCopies = 0
				r.EXPECT().GetUserByID(ctx, borrower.ID).Return(borrower, nil)
				r.EXPECT().GetBook(ctx, book.ID).Return(empty, nil)
			},
			wantErr: errs.ErrInvalidState,
		},
		{
			name: "last copy taken concurrently",
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetUserByID(ctx, borrower.ID).Return(borrower, nil)
				r.EXPECT().GetBook(ctx, book.ID).Return(book, nil)
				r.EXPECT().CreateLoan(ctx, borrower.ID, book.ID, loanDate, dueDate).
					Return(model.Loan{}, errs.ErrInvalidState)
			},
			wantErr: errs.ErrInvalidState,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo := newLoanService(t, at)
			tt.mock(repo)

			loan, err := svc.CreateLoan(ctx, borrower.ID, book.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, dueDate, loan.DueDate)
			require.True(t, loan.Active())
		})
	}
}

func TestLoanService_CreateLoanForIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	loanDate := date(2024, time.March, 10)
	dueDate := date(2024, time.March, 24)

	svc, repo := newLoanService(t, at)
	borrower := model.User{ID: 7, Email: "reader@mail.ru", Role: model.RoleUser, Active: true}
	repo.EXPECT().GetUserByEmail(ctx, borrower.Email).Return(borrower, nil)
	repo.EXPECT().GetUserByID(ctx, borrower.ID).Return(borrower, nil)
	repo.EXPECT().GetBook(ctx, int64(3)).Return(model.Book{ID: 3, AvailableCopies: 1}, nil)
	repo.EXPECT().CreateLoan(ctx, borrower.ID, int64(3), loanDate, dueDate).
		Return(model.Loan{ID: 5, UserID: borrower.ID, BookID: 3, LoanDate: loanDate, DueDate: dueDate}, nil)

	loan, err := svc.CreateLoanForIdentity(ctx, borrower.Email, 3)
	require.NoError(t, err)
	require.EqualValues(t, 5, loan.ID)
}

func TestLoanService_ReturnLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)
	returnDate := date(2024, time.April, 2)

	owner := model.User{ID: 7, Email: "reader@mail.ru", Role: model.RoleUser, Active: true}
	librarian := model.User{ID: 9, Email: "lib@mail.ru", Role: model.RoleLibrarian, Active: true}
	stranger := model.User{ID: 11, Email: "other@mail.ru", Role: model.RoleUser, Active: true}
	open := model.Loan{ID: 4, UserID: owner.ID, BookID: 3, LoanDate: date(2024, time.March, 10), DueDate: date(2024, time.March, 24)}

	closed := open
	closed.ReturnDate = &returnDate

	tests := []struct {
		name    string
		actor   model.User
		mock    func(r *mocks.MockRepository)
		wantErr error
	}{
		{
			name:  "owner returns own loan",
			actor: owner,
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetLoan(ctx, open.ID).Return(open, nil)
				r.EXPECT().GetUserByEmail(ctx, owner.Email).Return(owner, nil)
				r.EXPECT().CloseLoan(ctx, open.ID, returnDate).Return(closed, nil)
			},
		},
		{
			name:  "librarian returns someone else's loan",
			actor: librarian,
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetLoan(ctx, open.ID).Return(open, nil)
				r.EXPECT().GetUserByEmail(ctx, librarian.Email).Return(librarian, nil)
				r.EXPECT().CloseLoan(ctx, open.ID, returnDate).Return(closed, nil)
			},
		},
		{
			name:  "stranger is refused",
			actor: stranger,
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetLoan(ctx, open.ID).Return(open, nil)
				r.EXPECT().GetUserByEmail(ctx, stranger.Email).Return(stranger, nil)
			},
			wantErr: errs.ErrForbidden,
		},
		{
			name:  "already returned",
			actor: owner,
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetLoan(ctx, open.ID).Return(closed, nil)
			},
			wantErr: errs.ErrInvalidState,
		},
		{
			name:  "unknown loan",
			actor: owner,
			mock: func(r *mocks.MockRepository) {
				r.EXPECT().GetLoan(ctx, open.ID).Return(model.Loan{}, errs.ErrNotFound)
			},
			wantErr: errs.ErrNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo := newLoanService(t, at)
			tt.mock(repo)

			loan, err := svc.ReturnLoan(ctx, open.ID, tt.actor.Email)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, loan.ReturnDate)
			require.Equal(t, returnDate, *loan.ReturnDate)
		})
	}
}

func TestLoanService_GetOverdueLoans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, time.April, 2, 23, 59, 0, 0, time.UTC)

	svc, repo := newLoanService(t, at)
	overdue := []model.Loan{{ID: 1, DueDate: date(2024, time.March, 24)}}
	repo.EXPECT().ListOverdueLoans(ctx, date(2024, time.April, 2)).Return(overdue, nil)

	got, err := svc.GetOverdueLoans(ctx)
	require.NoError(t, err)
	require.Equal(t, overdue, got)
}

func TestLoanService_CreateOverdueNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	today := date(2024, time.April, 2)

	overdue := []model.Loan{
		{ID: 1, UserID: 7, BookID: 3, DueDate: date(2024, time.March, 24)},
		{ID: 2, UserID: 8, BookID: 4, DueDate: date(2024, time.March, 20)},
	}

	t.Run("one notification per overdue loan", func(t *testing.T) {
		t.Parallel()
		svc, repo := newLoanService(t, at)
		repo.EXPECT().ListOverdueLoans(ctx, today).Return(overdue, nil)
		repo.EXPECT().GetBook(ctx, int64(3)).Return(model.Book{ID: 3, Title: "Dune"}, nil)
		repo.EXPECT().GetBook(ctx, int64(4)).Return(model.Book{ID: 4, Title: "Solaris"}, nil)

		first := overdue[0].ID
		second := overdue[1].ID
		repo.EXPECT().CreateNotification(ctx, model.Notification{
			UserID:    7,
			LoanID:    &first,
			Message:   "Loan for book 'Dune' is overdue. Due date was 2024-03-24.",
			CreatedAt: at,
		}).Return(model.Notification{ID: 100}, nil)
		repo.EXPECT().CreateNotification(ctx, model.Notification{
			UserID:    8,
			LoanID:    &second,
			Message:   "Loan for book 'Solaris' is overdue. Due date was 2024-03-20.",
			CreatedAt: at,
		}).Return(model.Notification{ID: 101}, nil)

		count, err := svc.CreateOverdueNotifications(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("nothing overdue", func(t *testing.T) {
		t.Parallel()
		svc, repo := newLoanService(t, at)
		repo.EXPECT().ListOverdueLoans(ctx, today).Return(nil, nil)

		count, err := svc.CreateOverdueNotifications(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("reruns notify again", func(t *testing.T) {
		t.Parallel()
		svc, repo := newLoanService(t, at)
		one := []model.Loan{overdue[0]}
		loanID := overdue[0].ID

		repo.EXPECT().ListOverdueLoans(ctx, today).Return(one, nil).Times(2)
		repo.EXPECT().GetBook(ctx, int64(3)).Return(model.Book{ID: 3, Title: "Dune"}, nil).Times(2)
		repo.EXPECT().CreateNotification(ctx, model.Notification{
			UserID:    7,
			LoanID:    &loanID,
			Message:   "Loan for book 'Dune' is overdue. Due date was 2024-03-24.",
			CreatedAt: at,
		}).Return(model.Notification{ID: 100}, nil).Times(2)

		for i := 0; i < 2; i++ {
			count, err := svc.CreateOverdueNotifications(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, count)
		}
	})
}

func TestLoanService_Report(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)

	svc, repo := newLoanService(t, at)
	want := model.LoanReport{TotalLoans: 10, ActiveLoans: 4, OverdueLoans: 2}
	repo.EXPECT().LoanStats(ctx, date(2024, time.April, 2)).Return(want, nil)

	got, err := svc.Report(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
