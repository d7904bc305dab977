package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
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

func TestHandler_IssueToken(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockUserService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			body: `{"email":"reader@mail.ru","password":"secret1"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {
				r.EXPECT().
					Authenticate(gomock.Any(), "reader@mail.ru", "secret1").
					Return(model.User{ID: 7, Email: "reader@mail.ru", Role: model.RoleUser, Active: true}, nil)
			},
			response: response{expectedCode: http.StatusOK},
		},
		{
			name: "err. wrong password",
			body: `{"email":"reader@mail.ru","password":"nope"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {
				r.EXPECT().
					Authenticate(gomock.Any(), "reader@mail.ru", "nope").
					Return(model.User{}, errs.ErrUnauthorized)
			},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"unauthorized"}`,
			},
			wantErr: true,
		},
		{
			name:         "err. malformed email",
			body:         `{"email":"not-an-email","password":"secret1"}`,
			mockBehavior: func(r *service_mocks.MockUserService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
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
			userSvc := service_mocks.NewMockUserService(c)
			h := handler.New(handler.Services{User: userSvc}, zap.NewExample().Named("test"))

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/auth/token", h.IssueToken)

			r := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(userSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.wantErr {
				if tt.response.expectedBody != "" {
					require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
				}
				return
			}

			var resp model.AuthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.AccessToken)

			claims := &auth.Claims{}
			_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
				return auth.JWTKey, nil
			})
			require.NoError(t, err)
			require.Equal(t, "reader@mail.ru", claims.Profile.Email)
			require.Equal(t, string(model.RoleUser), claims.Profile.Role)
		})
	}
}
