package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-compass/internal/service"
)

type BookingHandler struct {
	logger *zap.Logger
	svc    *service.BookingService
}

func NewBookingHandler(logger *zap.Logger, svc *service.BookingService) *BookingHandler {
	return &BookingHandler{logger: logger, svc: svc}
}

// Book maneja POST /book.
func (h *BookingHandler) Book(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		EventID   string `json:"event_id" binding:"required"`
		EventType string `json:"event_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "booking")
		return
	}
	if !authorizedFor(c, req.UserID) {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}

	booking, err := h.svc.Book(c.Request.Context(), req.UserID, req.EventID, req.EventType)
	if err != nil {
		respondError(c, h.logger, err, "create booking")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListBookings maneja GET /user/:id/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.svc.ListBookings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "list bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}
