package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/handler"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/pkg/validate"

	service_mocks "github.com/bibliodesk/library-service/internal/handler/mocks"
)

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		path         string
		mockBehavior mockBehavior
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			path: "/books/3",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(gomock.Any(), int64(3)).
					Return(model.Book{
						ID:              3,
						Title:           "Dune",
						Author:          "Frank Herbert",
						ISBN:            "978-0441013593",
						PublishedYear:   1965,
						AvailableCopies: 2,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":3,"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1965,"availableCopies":2}`,
			},
		},
		{
			name: "err. unknown book",
			path: "/books/3",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(gomock.Any(), int64(3)).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
			wantErr: true,
		},
		{
			name:         "err. bad id",
			path:         "/books/abc",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"id is invalid"}`,
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
			bookSvc := service_mocks.NewMockBookService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(handler.Services{Book: bookSvc}, log)

			e := echo.New()
			e.GET("/books/:id", h.GetBook)

			r := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(bookSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			body: `{"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1965,"availableCopies":2}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					CreateBook(gomock.Any(), model.BookRequest{
						Title:           "Dune",
						Author:          "Frank Herbert",
						ISBN:            "978-0441013593",
						PublishedYear:   1965,
						AvailableCopies: 2,
					}).
					Return(model.Book{
						ID:              3,
						Title:           "Dune",
						Author:          "Frank Herbert",
						ISBN:            "978-0441013593",
						PublishedYear:   1965,
						AvailableCopies: 2,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":3,"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1965,"availableCopies":2}`,
			},
		},
		{
			name:         "err. missing title",
			body:         `{"author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1965}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
			wantErr: true,
		},
		{
			name:         "err. published year too old",
			body:         `{"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1300}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
			wantErr: true,
		},
		{
			name: "err. unknown category",
			body: `{"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1965,"categoryId":99}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				categoryID := int64(99)
				r.EXPECT().
					CreateBook(gomock.Any(), model.BookRequest{
						Title:         "Dune",
						Author:        "Frank Herbert",
						ISBN:          "978-0441013593",
						PublishedYear: 1965,
						CategoryID:    &categoryID,
					}).
					Return(model.Book{}, errs.ErrNotFound)
			},
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
			bookSvc := service_mocks.NewMockBookService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(handler.Services{Book: bookSvc}, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/books", h.CreateBook)

			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(bookSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_SearchBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "keyword search",
			target: "/books/search?keyword=dune",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					SearchAnywhere(gomock.Any(), "dune").
					Return([]model.Book{{ID: 3, Title: "Dune", Author: "Frank Herbert", ISBN: "978-0441013593", PublishedYear: 1965, AvailableCopies: 2}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":3,"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","publishedYear":1965,"availableCopies":2}]`,
			},
		},
		{
			name:         "err. keyword missing",
			target:       "/books/search",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"keyword is required"}`,
			},
		},
		{
			name:   "title search",
			target: "/books/search/title?title=dune",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					SearchByTitle(gomock.Any(), "dune").
					Return([]model.Book{}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[]`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			bookSvc := service_mocks.NewMockBookService(c)
			h := handler.New(handler.Services{Book: bookSvc}, zap.NewExample().Named("test"))

			e := echo.New()
			e.GET("/books/search", h.SearchBooks)
			e.GET("/books/search/title", h.SearchBooksByTitle)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(bookSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
