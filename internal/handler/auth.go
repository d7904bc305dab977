package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/pkg/auth"
)

const tokenTTL = 24 * time.Hour

func (h *Handler) IssueToken(c echo.Context) error {
	var credentials model.AuthRequest
	if err := c.Bind(&credentials); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&credentials); err != nil {
		return err
	}

	user, err := h.userSvc.Authenticate(c.Request().Context(), credentials.Email, credentials.Password)
	if err != nil {
		return httpError(err)
	}

	token, expiresAt, err := auth.NewToken(user.Email, string(user.Role), tokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, model.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int(expiresAt.Unix()),
	})
}
