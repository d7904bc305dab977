package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bibliodesk/library-service/pkg/auth"
)

func (h *Handler) ListLoans(c echo.Context) error {
	loans, err := h.loanSvc.GetAllLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetLoan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	loan, err := h.loanSvc.GetLoan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) ListLoansForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	loans, err := h.loanSvc.GetLoansForUser(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ListOverdueLoans(c echo.Context) error {
	loans, err := h.loanSvc.GetOverdueLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ListActiveLoans(c echo.Context) error {
	loans, err := h.loanSvc.GetAllActiveLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ListMyLoans(c echo.Context) error {
	id := auth.FromContext(c.Request().Context())
	loans, err := h.loanSvc.GetLoansForIdentity(c.Request().Context(), id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ListMyActiveLoans(c echo.Context) error {
	id := auth.FromContext(c.Request().Context())
	loans, err := h.loanSvc.GetActiveLoansForIdentity(c.Request().Context(), id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// CreateLoan lends a book to an explicitly named user, staff style:
// POST /loans?userId=1&bookId=2.
func (h *Handler) CreateLoan(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("userId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("userId is invalid"))
	}
	bookID, err := strconv.ParseInt(c.QueryParam("bookId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("bookId is invalid"))
	}

	loan, err := h.loanSvc.CreateLoan(c.Request().Context(), userID, bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

// BorrowBook lends a book to the caller.
func (h *Handler) BorrowBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return err
	}
	id := auth.FromContext(c.Request().Context())
	loan, err := h.loanSvc.CreateLoanForIdentity(c.Request().Context(), id.Email, bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	id := auth.FromContext(c.Request().Context())
	loan, err := h.loanSvc.ReturnLoan(c.Request().Context(), loanID, id.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) DeleteLoan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.loanSvc.DeleteLoan(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) NotifyOverdue(c echo.Context) error {
	count, err := h.loanSvc.CreateOverdueNotifications(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"created": count})
}

func (h *Handler) LoanReport(c echo.Context) error {
	report, err := h.loanSvc.Report(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
