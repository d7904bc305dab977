package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/handler"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/pkg/auth"
	"github.com/bibliodesk/library-service/pkg/validate"

	service_mocks "github.com/bibliodesk/library-service/internal/handler/mocks"
)

func identityMiddleware(email, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.SetAuthContext(c.Request().Context(), email, role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func TestHandler_CreateLoan(t *testing.T) {
	t.Parallel()
	type input struct {
		userID, bookID string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLoanService, inp input)

	loanDate := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLoanService, inp input) {
				r.EXPECT().
					CreateLoan(gomock.Any(), int64(7), int64(3)).
					Return(model.Loan{
						ID:       1,
						UserID:   7,
						BookID:   3,
						LoanDate: loanDate,
						DueDate:  dueDate,
					}, nil)
			},
			input: input{userID: "7", bookID: "3"},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"userId":7,"bookId":3,"loanDate":"2024-03-10T00:00:00Z","dueDate":"2024-03-24T00:00:00Z","returnDate":null}`,
			},
		},
		{
			name:         "err. bad userId",
			mockBehavior: func(r *service_mocks.MockLoanService, inp input) {},
			input:        input{userID: "abc", bookID: "3"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"userId is invalid"}`,
			},
			wantErr: true,
		},
		{
			name: "err. no copies",
			mockBehavior: func(r *service_mocks.MockLoanService, inp input) {
				r.EXPECT().
					CreateLoan(gomock.Any(), int64(7), int64(3)).
					Return(model.Loan{}, errs.ErrInvalidState)
			},
			input: input{userID: "7", bookID: "3"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid state"}`,
			},
			wantErr: true,
		},
		{
			name: "err. unknown user",
			mockBehavior: func(r *service_mocks.MockLoanService, inp input) {
				r.EXPECT().
					CreateLoan(gomock.Any(), int64(7), int64(3)).
					Return(model.Loan{}, errs.ErrNotFound)
			},
			input: input{userID: "7", bookID: "3"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			loanSvc := service_mocks.NewMockLoanService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(handler.Services{Loan: loanSvc}, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/loans", h.CreateLoan)

			r := httptest.NewRequest(
				http.MethodPost, fmt.Sprintf("/loans?userId=%s&bookId=%s", tt.input.userID, tt.input.bookID), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(loanSvc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnLoan(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLoanService)

	const actingEmail = "reader@mail.ru"
	loanDate := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)
	returnDate := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLoanService) {
				r.EXPECT().
					ReturnLoan(gomock.Any(), int64(4), actingEmail).
					Return(model.Loan{
						ID:         4,
						UserID:     7,
						BookID:     3,
						LoanDate:   loanDate,
						DueDate:    dueDate,
						ReturnDate: &returnDate,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":4,"userId":7,"bookId":3,"loanDate":"2024-03-10T00:00:00Z","dueDate":"2024-03-24T00:00:00Z","returnDate":"2024-04-02T00:00:00Z"}`,
			},
		},
		{
			name: "err. already returned",
			mockBehavior: func(r *service_mocks.MockLoanService) {
				r.EXPECT().
					ReturnLoan(gomock.Any(), int64(4), actingEmail).
					Return(model.Loan{}, errs.ErrInvalidState)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid state"}`,
			},
			wantErr: true,
		},
		{
			name: "err. not the borrower",
			mockBehavior: func(r *service_mocks.MockLoanService) {
				r.EXPECT().
					ReturnLoan(gomock.Any(), int64(4), actingEmail).
					Return(model.Loan{}, errs.ErrForbidden)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"forbidden"}`,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			loanSvc := service_mocks.NewMockLoanService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(handler.Services{Loan: loanSvc}, log)

			e := echo.New()
			e.Use(identityMiddleware(actingEmail, string(model.RoleUser)))
			e.POST("/loans/:id/return", h.ReturnLoan)

			r := httptest.NewRequest(http.MethodPost, "/loans/4/return", http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(loanSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_BorrowBook(t *testing.T) {
	t.Parallel()
	const actingEmail = "reader@mail.ru"
	loanDate := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)

	c := gomock.NewController(t)
	defer c.Finish()
	loanSvc := service_mocks.NewMockLoanService(c)
	loanSvc.EXPECT().
		CreateLoanForIdentity(gomock.Any(), actingEmail, int64(3)).
		Return(model.Loan{ID: 5, UserID: 7, BookID: 3, LoanDate: loanDate, DueDate: dueDate}, nil)

	h := handler.New(handler.Services{Loan: loanSvc}, zap.NewExample().Named("test"))

	e := echo.New()
	e.Use(identityMiddleware(actingEmail, string(model.RoleUser)))
	e.POST("/loans/borrow/:bookId", h.BorrowBook)

	r := httptest.NewRequest(http.MethodPost, "/loans/borrow/3", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t,
		`{"id":5,"userId":7,"bookId":3,"loanDate":"2024-03-10T00:00:00Z","dueDate":"2024-03-24T00:00:00Z","returnDate":null}`,
		strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_NotifyOverdue(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	loanSvc := service_mocks.NewMockLoanService(c)
	loanSvc.EXPECT().CreateOverdueNotifications(gomock.Any()).Return(3, nil)

	h := handler.New(handler.Services{Loan: loanSvc}, zap.NewExample().Named("test"))

	e := echo.New()
	e.POST("/loans/overdue/notify", h.NotifyOverdue)

	r := httptest.NewRequest(http.MethodPost, "/loans/overdue/notify", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"created":3}`, strings.Trim(w.Body.String(), "\n"))
}
