package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/policy"
	md "github.com/bibliodesk/library-service/pkg/middleware"
	"github.com/bibliodesk/library-service/pkg/validate"
)

const apiPrefix = "/api/v1"

type Services struct {
	User         UserService
	Book         BookService
	Category     CategoryService
	Loan         LoanService
	Notification NotificationService
	Review       ReviewService
}

type Handler struct {
	userSvc         UserService
	bookSvc         BookService
	categorySvc     CategoryService
	loanSvc         LoanService
	notificationSvc NotificationService
	reviewSvc       ReviewService
	log             *zap.Logger
}

func New(svcs Services, log *zap.Logger) *Handler {
	return &Handler{
		userSvc:         svcs.User,
		bookSvc:         svcs.Book,
		categorySvc:     svcs.Category,
		loanSvc:         svcs.Loan,
		notificationSvc: svcs.Notification,
		reviewSvc:       svcs.Review,
		log:             log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = errorHandler

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group(apiPrefix,
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.JwtAuthentication,
		policy.Middleware(policy.Default(), apiPrefix),
	)

	api.POST("/auth/token", h.IssueToken)

	api.POST("/users", h.Register)
	api.GET("/users", h.ListUsers)
	api.GET("/users/active", h.ListActiveUsers)
	api.GET("/users/me", h.GetCurrentUser)
	api.PUT("/users/me", h.UpdateCurrentUser)
	api.GET("/users/:id", h.GetUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.PUT("/users/:id/activate", h.ActivateUser)
	api.DELETE("/users/:id", h.DeactivateUser)

	api.GET("/books", h.ListBooks)
	api.GET("/books/search", h.SearchBooks)
	api.GET("/books/search/title", h.SearchBooksByTitle)
	api.GET("/books/search/author", h.SearchBooksByAuthor)
	api.GET("/books/search/category", h.SearchBooksByCategory)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.POST("/categories", h.CreateCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)

	api.GET("/loans", h.ListLoans)
	api.GET("/loans/overdue", h.ListOverdueLoans)
	api.GET("/loans/allActive", h.ListActiveLoans)
	api.GET("/loans/me", h.ListMyLoans)
	api.GET("/loans/me/active", h.ListMyActiveLoans)
	api.GET("/loans/user/:userId", h.ListLoansForUser)
	api.GET("/loans/:id", h.GetLoan)
	api.POST("/loans", h.CreateLoan)
	api.POST("/loans/borrow/:bookId", h.BorrowBook)
	api.POST("/loans/:id/return", h.ReturnLoan)
	api.POST("/loans/overdue/notify", h.NotifyOverdue)
	api.DELETE("/loans/:id", h.DeleteLoan)

	api.GET("/notifications/me", h.ListMyNotifications)
	api.GET("/notifications/me/unread", h.ListMyUnreadNotifications)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)
	api.POST("/notifications/overdue-alert", h.OverdueAlert)
	api.DELETE("/notifications/:id", h.DeleteNotification)

	api.POST("/reviews", h.CreateReview)
	api.GET("/reviews", h.ListReviews)
	api.GET("/reviews/me", h.ListMyReviews)
	api.GET("/reviews/book/:bookId", h.ListReviewsForBook)
	api.GET("/reviews/book/:bookId/average", h.AverageRatingForBook)
	api.DELETE("/reviews/:id", h.DeleteReview)

	api.GET("/reports/loans", h.LoanReport)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the failure taxonomy onto HTTP statuses.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidState):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// errorHandler renders every failure with the common error body.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	body := errs.ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request().URL.Path,
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return id, nil
}
