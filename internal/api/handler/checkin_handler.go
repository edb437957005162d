package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/upsrj/checkin-system/internal/api/metrics"
	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/ports"
)

// CheckInHandler handles check-in recording and history lookups.
type CheckInHandler struct {
	ledger ports.LedgerService
}

func NewCheckInHandler(ledger ports.LedgerService) *CheckInHandler {
	return &CheckInHandler{ledger: ledger}
}

type recordCheckInRequest struct {
	User     string `json:"user"     validate:"required,email"`
	DateTime string `json:"dateTime" validate:"required"`
}

type recordCheckInResponse struct {
	Message  string `json:"message"`
	DateTime string `json:"dateTime"`
}

type checkInItem struct {
	DateTime string `json:"dateTime"`
	User     string `json:"user"`
}

// Record handles POST /checkin.
//
// @Summary      Record a check-in for today
// @Tags         checkin
// @Accept       json
// @Produce      json
// @Param        body  body      recordCheckInRequest  true  "User email and device wall-clock time"
// @Success      201   {object}  recordCheckInResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /checkin [post]
func (h *CheckInHandler) Record(c echo.Context) error {
	var req recordCheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	timer := prometheus.NewTimer(metrics.RecordDuration)
	evt, err := h.ledger.RecordCheckIn(c.Request().Context(), ports.RecordCheckInInput{
		User:       req.User,
		ClientTime: req.DateTime,
	})
	timer.ObserveDuration()

	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedInToday) {
			metrics.RejectedTotal.WithLabelValues("already_checked_in").Inc()
		} else {
			metrics.RejectedTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RecordedTotal.Inc()
	return c.JSON(http.StatusCreated, recordCheckInResponse{
		Message:  "check-in recorded",
		DateTime: evt.RecordedAt.Format(time.RFC3339),
	})
}

// History handles GET /checkin?user=<email>.
//
// @Summary      List a user's check-ins ascending by recorded time
// @Tags         checkin
// @Produce      json
// @Param        user  query     string  true  "Student email"
// @Success      200   {array}   checkInItem
// @Failure      400   {object}  errorResponse
// @Router       /checkin [get]
func (h *CheckInHandler) History(c echo.Context) error {
	user := c.QueryParam("user")
	if user == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user query parameter required")
	}

	events, err := h.ledger.ListCheckIns(c.Request().Context(), user)
	if err != nil {
		return err
	}

	items := make([]checkInItem, 0, len(events))
	for _, evt := range events {
		items = append(items, checkInItem{
			DateTime: evt.RecordedAt.Format(time.RFC3339),
			User:     evt.User,
		})
	}
	return c.JSON(http.StatusOK, items)
}
