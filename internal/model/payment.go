package model

// Order is a payment-gateway order for the premium upgrade.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrderResponse carries the order plus the public key the checkout widget needs.
type CreateOrderResponse struct {
	Order Order  `json:"order"`
	KeyID string `json:"key_id"`
}

// VerifyPaymentRequest is posted by the checkout widget after payment.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}
