package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrPaymentNotConfigured = errors.New("payment gateway not configured")
	ErrInvalidSignature     = errors.New("payment signature mismatch")
	ErrGateway              = errors.New("payment gateway error")
)

// PaymentService creates gateway orders and verifies completed payments.
type PaymentService struct {
	cfg         *config.Config
	userService *UserService
	client      *http.Client
	now         func() time.Time
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(cfg *config.Config, userService *UserService, client *http.Client, log zerolog.Logger) *PaymentService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &PaymentService{
		cfg:         cfg,
		userService: userService,
		client:      client,
		now:         time.Now,
		log:         log.With().Str("component", "payment_service").Logger(),
	}
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// Receipt builds the merchant receipt identifier for an order.
func Receipt(userID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("receipt_%s_%d", userID, at.UnixMilli())
}

// CreateOrder opens a premium-upgrade order for userID.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uuid.UUID) (*model.CreateOrderResponse, error) {
	if s.cfg.RazorpayKeyID == "" || s.cfg.RazorpayKeySecret == "" {
		return nil, ErrPaymentNotConfigured
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:         s.cfg.PremiumPricePaise,
		Currency:       "INR",
		Receipt:        Receipt(userID, s.now()),
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.RazorpayAPIURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(s.cfg.RazorpayKeyID, s.cfg.RazorpayKeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrGateway, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Error().
			Int("status", resp.StatusCode).
			Bytes("body", raw).
			Msg("Order creation rejected")
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var order model.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("%w: decode order: %v", ErrGateway, err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("order_id", order.ID).
		Msg("Order created")

	return &model.CreateOrderResponse{Order: order, KeyID: s.cfg.RazorpayKeyID}, nil
}

// Signature computes the expected hex HMAC-SHA256 of "orderID|paymentID".
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a checkout signature in constant time.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Signature(s.cfg.RazorpayKeySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Verify checks the payment signature and upgrades a free user to premium.
// Admins keep their role.
func (s *PaymentService) Verify(ctx context.Context, userID uuid.UUID, req *model.VerifyPaymentRequest) (*model.User, error) {
	if s.cfg.RazorpayKeySecret == "" {
		return nil, ErrPaymentNotConfigured
	}
	if !s.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.log.Warn().
			Str("user_id", userID.String()).
			Str("order_id", req.OrderID).
			Msg("Payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	user, err := s.userService.UpgradeToPremium(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("upgrade user: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("payment_id", req.PaymentID).
		Str("role", string(user.Role)).
		Msg("Payment verified")
	return user, nil
}
