package payment

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/gateway/callback", h.ConfirmationCallback)
}

func (h *Handler) ConfirmationCallback(c *gin.Context) {
	rawBody, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(strings.NewReader(string(rawBody)))

	var cb ConfirmationCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		h.logger.Error("invalid confirmation callback payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.HandleConfirmationCallback(c.Request.Context(), cb, string(rawBody))
	if err != nil {
		h.logger.Error("confirmation callback failed",
			zap.String("merchant_order_id", cb.MerchantOrderID), zap.Error(err))
		switch {
		case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrAmountMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown merchant order id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
