package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/model"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock.go -package=mocks

type Repository interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateUser(ctx context.Context, user model.User) (model.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) error

	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchBooksByTitle(ctx context.Context, title string) ([]model.Book, error)
	SearchBooksByAuthor(ctx context.Context, author string) ([]model.Book, error)
	SearchBooksByCategory(ctx context.Context, category string) ([]model.Book, error)
	SearchBooksAnywhere(ctx context.Context, keyword string) ([]model.Book, error)

	CreateCategory(ctx context.Context, category model.Category) (model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateLoan(ctx context.Context, userID, bookID int64, loanDate, dueDate time.Time) (model.Loan, error)
	CloseLoan(ctx context.Context, loanID int64, returnDate time.Time) (model.Loan, error)
	GetLoan(ctx context.Context, id int64) (model.Loan, error)
	ListLoans(ctx context.Context) ([]model.Loan, error)
	ListLoansByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListActiveLoans(ctx context.Context) ([]model.Loan, error)
	ListActiveLoansByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	ListOverdueLoans(ctx context.Context, dueBefore time.Time) ([]model.Loan, error)
	DeleteLoan(ctx context.Context, id int64) error
	LoanStats(ctx context.Context, today time.Time) (model.LoanReport, error)

	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	GetNotification(ctx context.Context, id int64) (model.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	DeleteNotification(ctx context.Context, id int64) error

	CreateReview(ctx context.Context, review model.Review) (model.Review, error)
	GetReview(ctx context.Context, id int64) (model.Review, error)
	ListReviews(ctx context.Context) ([]model.Review, error)
	ListReviewsByBook(ctx context.Context, bookID int64) ([]model.Review, error)
	ListReviewsByUser(ctx context.Context, userID int64) ([]model.Review, error)
	AverageRatingForBook(ctx context.Context, bookID int64) (float64, error)
	DeleteReview(ctx context.Context, id int64) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName         = `users`
	booksTableName         = `books`
	categoriesTableName    = `categories`
	loansTableName         = `loans`
	notificationsTableName = `notifications`
	reviewsTableName       = `reviews`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
