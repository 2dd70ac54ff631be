package handler

import (
	"errors"
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentHandler handles the premium upgrade checkout.
type PaymentHandler struct {
	paymentService *service.PaymentService
	authHandler    *AuthHandler
	log            zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler. The auth handler re-issues
// the session once the role has changed.
func NewPaymentHandler(paymentService *service.PaymentService, authHandler *AuthHandler, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		authHandler:    authHandler,
		log:            log.With().Str("component", "payment_handler").Logger(),
	}
}

// CreateOrder godoc
// POST /api/v1/payments/orders
// Opens a gateway order for the premium upgrade.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	userID, err := claims.UserUUID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), userID)
	if err != nil {
		failPayment(c, err)
		return
	}
	response.Success(c, http.StatusCreated, order)
}

// VerifyPayment godoc
// POST /api/v1/payments/verify
// Checks the checkout signature, upgrades the user and refreshes the session.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	userID, err := claims.UserUUID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	var req model.VerifyPaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.paymentService.Verify(c.Request.Context(), userID, &req)
	if err != nil {
		failPayment(c, err)
		return
	}

	// The old token still carries the free role.
	if err := h.authHandler.authService.Revoke(c.Request.Context(), claims); err != nil {
		h.log.Warn().Err(err).Msg("Old token revocation failed")
	}
	h.authHandler.startSession(c, http.StatusOK, user)
}

func failPayment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		response.Fail(c, http.StatusBadRequest, response.ErrPaymentVerification)
	case errors.Is(err, service.ErrPaymentNotConfigured):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrPaymentUnavailable)
	case errors.Is(err, service.ErrGateway):
		response.Fail(c, http.StatusBadGateway, response.ErrPaymentGateway)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
