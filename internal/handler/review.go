package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/pkg/auth"
)

func (h *Handler) CreateReview(c echo.Context) error {
	var req model.ReviewCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id := auth.FromContext(c.Request().Context())
	review, err := h.reviewSvc.CreateReview(c.Request().Context(), id.Email, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *Handler) ListReviews(c echo.Context) error {
	reviews, err := h.reviewSvc.GetAllReviews(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *Handler) ListMyReviews(c echo.Context) error {
	id := auth.FromContext(c.Request().Context())
	reviews, err := h.reviewSvc.GetReviewsForIdentity(c.Request().Context(), id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *Handler) ListReviewsForBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return err
	}
	reviews, err := h.reviewSvc.GetReviewsForBook(c.Request().Context(), bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *Handler) AverageRatingForBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return err
	}
	avg, err := h.reviewSvc.GetAverageRatingForBook(c.Request().Context(), bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"averageRating": avg})
}

func (h *Handler) DeleteReview(c echo.Context) error {
	reviewID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id := auth.FromContext(c.Request().Context())
	if err := h.reviewSvc.DeleteReview(c.Request().Context(), reviewID, id.Email); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
