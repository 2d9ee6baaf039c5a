// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/utils"
)

// PaymentService is the fiat on-ramp in front of the ledger. The UI
// creates a payment intent for the exact amount an operation requires,
// confirms it with Stripe, then calls the ledger operation with the
// paid amount. Ledger conservation checks never depend on Stripe;
// this service only prices intents and verifies their status.
type PaymentService struct {
	store ledger.Store
	cfg   *config.Config
}

type PurchaseIntentRequest struct {
	PropertyID  uint64 `json:"property_id" validate:"required"`
	TokenAmount int64  `json:"token_amount" validate:"required,gt=0"`
}

type DepositIntentRequest struct {
	PropertyID uint64 `json:"property_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
}

func NewPaymentService(store ledger.Store, cfg *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		store: store,
		cfg:   cfg,
	}
}

// CreatePurchaseIntent prices a token purchase and opens a Stripe
// intent for exactly that amount. Amounts are already in the smallest
// currency unit, which is what Stripe expects.
func (s *PaymentService) CreatePurchaseIntent(userID uuid.UUID, req *PurchaseIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidParameter, err)
	}

	property, err := s.store.GetProperty(req.PropertyID)
	if err != nil {
		return nil, err
	}
	if req.TokenAmount > property.RemainingTokens() {
		return nil, ledger.ErrExceedsSupply
	}

	amount := req.TokenAmount * property.PricePerToken()
	return s.createIntent(amount, map[string]string{
		"user_id":      userID.String(),
		"purpose":      "token_purchase",
		"property_id":  fmt.Sprintf("%d", req.PropertyID),
		"token_amount": fmt.Sprintf("%d", req.TokenAmount),
	})
}

// CreateDepositIntent opens a Stripe intent for a revenue deposit by a
// property owner ahead of distributeRevenue.
func (s *PaymentService) CreateDepositIntent(userID uuid.UUID, req *DepositIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidParameter, err)
	}

	property, err := s.store.GetProperty(req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != userID {
		return nil, ledger.ErrUnauthorized
	}

	return s.createIntent(req.Amount, map[string]string{
		"user_id":     userID.String(),
		"purpose":     "revenue_deposit",
		"property_id": fmt.Sprintf("%d", req.PropertyID),
	})
}

// VerifyPayment reports whether a payment intent has succeeded for the
// given amount.
func (s *PaymentService) VerifyPayment(paymentIntentID string, expectedAmount int64) (bool, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded && pi.Amount == expectedAmount, nil
}

func (s *PaymentService) createIntent(amount int64, metadata map[string]string) (*PaymentIntentResponse, error) {
	currency := s.cfg.Payment.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Amount:       amount,
		Status:       string(pi.Status),
	}, nil
}
