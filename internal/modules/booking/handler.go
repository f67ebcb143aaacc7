package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourbook/internal/modules/payment"
	"tourbook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/my", h.GetMyBookings)
	rg.GET("/bookings/provider", h.GetProviderBookings)
	rg.GET("/bookings/:id", h.Get)
	rg.POST("/bookings/:id/approve", h.Approve)
	rg.POST("/bookings/:id/reject", h.Reject)
	rg.POST("/bookings/:id/checkout", h.Checkout)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.UserID = c.GetInt64("user_id")

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetMyBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := h.service.GetMyBookings(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) GetProviderBookings(c *gin.Context) {
	rows, err := h.service.GetProviderBookings(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Approve(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "REASON_REQUIRED", "A rejection reason is required")
		return
	}

	b, err := h.service.Reject(c.Request.Context(), id, c.GetInt64("user_id"), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Checkout(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	result, err := h.service.Checkout(c.Request.Context(), id, c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *Handler) bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var stepErr *payment.StepError
	switch {
	case errors.As(err, &stepErr), errors.Is(err, payment.ErrNotConfigured):
		// Gateway handshake failures are retryable and must not read as
		// internal faults.
		response.Error(c, http.StatusBadGateway, "PAYMENT_INIT_FAILED", "Payment initiation failed, please retry")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking data")
	case errors.Is(err, ErrReasonRequired):
		response.Error(c, http.StatusBadRequest, "REASON_REQUIRED", "A rejection reason is required")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot act on this booking")
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or service not found")
	case errors.Is(err, ErrExpired):
		response.Error(c, http.StatusConflict, "BOOKING_EXPIRED", "The payment window for this booking has closed")
	case errors.Is(err, ErrConflictingState):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "The booking is not in a state that allows this action")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
