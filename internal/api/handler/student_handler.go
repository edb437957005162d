package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/upsrj/checkin-system/internal/core/ports"
)

// StudentHandler serves the roster consumed by the dashboard.
type StudentHandler struct {
	ledger ports.LedgerService
}

func NewStudentHandler(ledger ports.LedgerService) *StudentHandler {
	return &StudentHandler{ledger: ledger}
}

type studentItem struct {
	Name            string `json:"name"`
	ID              string `json:"id"`
	Career          string `json:"career"`
	Email           string `json:"email"`
	LastCheckInTime string `json:"lastCheckInTime,omitempty"`
}

// List handles GET /alumnos. The password hash never leaves the server.
//
// @Summary      List enrolled students
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   studentItem
// @Failure      401  {object}  errorResponse
// @Router       /alumnos [get]
func (h *StudentHandler) List(c echo.Context) error {
	students, err := h.ledger.ListStudents(c.Request().Context())
	if err != nil {
		return err
	}

	items := make([]studentItem, 0, len(students))
	for _, s := range students {
		item := studentItem{
			Name:   s.Name,
			ID:     s.StudentID,
			Career: s.Career,
			Email:  s.Email,
		}
		if s.LastCheckInTime != nil {
			item.LastCheckInTime = s.LastCheckInTime.Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, items)
}
