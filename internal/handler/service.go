package handler

import (
	"context"

	"github.com/bibliodesk/library-service/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=mocks

type UserService interface {
	Register(ctx context.Context, req model.UserCreateRequest) (model.User, error)
	Authenticate(ctx context.Context, email, password string) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]model.User, error)
	UpdateUser(ctx context.Context, id int64, req model.UserUpdateRequest, actorEmail string) (model.User, error)
	UpdateCurrentUser(ctx context.Context, email string, req model.UserUpdateRequest) (model.User, error)
	DeactivateUser(ctx context.Context, id int64) error
	ActivateUser(ctx context.Context, id int64, actorEmail string) (model.User, error)
}

type BookService interface {
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchByTitle(ctx context.Context, title string) ([]model.Book, error)
	SearchByAuthor(ctx context.Context, author string) ([]model.Book, error)
	SearchByCategory(ctx context.Context, category string) ([]model.Book, error)
	SearchAnywhere(ctx context.Context, keyword string) ([]model.Book, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, req model.CategoryRequest) (model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type LoanService interface {
	CreateLoan(ctx context.Context, userID, bookID int64) (model.Loan, error)
	CreateLoanForIdentity(ctx context.Context, email string, bookID int64) (model.Loan, error)
	ReturnLoan(ctx context.Context, loanID int64, actingEmail string) (model.Loan, error)
	GetLoan(ctx context.Context, id int64) (model.Loan, error)
	GetAllLoans(ctx context.Context) ([]model.Loan, error)
	GetLoansForUser(ctx context.Context, userID int64) ([]model.Loan, error)
	GetLoansForIdentity(ctx context.Context, email string) ([]model.Loan, error)
	GetActiveLoansForIdentity(ctx context.Context, email string) ([]model.Loan, error)
	GetAllActiveLoans(ctx context.Context) ([]model.Loan, error)
	GetOverdueLoans(ctx context.Context) ([]model.Loan, error)
	DeleteLoan(ctx context.Context, id int64) error
	CreateOverdueNotifications(ctx context.Context) (int, error)
	Report(ctx context.Context) (model.LoanReport, error)
}

type NotificationService interface {
	ListForIdentity(ctx context.Context, email string) ([]model.Notification, error)
	ListUnreadForIdentity(ctx context.Context, email string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64, email string) (model.Notification, error)
	Delete(ctx context.Context, id int64, email string) error
	NotifyLibrariansAboutOverdueBeyondOneWeek(ctx context.Context) error
}

type ReviewService interface {
	CreateReview(ctx context.Context, authorEmail string, req model.ReviewCreateRequest) (model.Review, error)
	GetAllReviews(ctx context.Context) ([]model.Review, error)
	GetReviewsForBook(ctx context.Context, bookID int64) ([]model.Review, error)
	GetReviewsForIdentity(ctx context.Context, email string) ([]model.Review, error)
	GetAverageRatingForBook(ctx context.Context, bookID int64) (float64, error)
	DeleteReview(ctx context.Context, id int64, actorEmail string) error
}
