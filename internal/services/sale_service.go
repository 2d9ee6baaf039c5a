// internal/services/sale_service.go
package services

import (
	"fmt"
	"time"

	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/utils"
)

// SaleService is the token sale engine. All checks and the supply
// update happen inside one store transaction holding the property row
// lock, so two purchases racing for the last tokens are resolved in
// sequence order and the supply cap can never be breached.
type SaleService struct {
	store ledger.Store
	now   func() time.Time
}

type PurchaseRequest struct {
	TokenAmount int64 `json:"token_amount" validate:"required,gt=0"`
	PaidAmount  int64 `json:"paid_amount" validate:"required,gt=0"`
}

type PurchaseResult struct {
	Receipt       Receipt        `json:"receipt"`
	Holding       models.Holding `json:"holding"`
	NewTokensSold int64          `json:"new_tokens_sold"`
	State         models.PropertyState `json:"state"`
}

func NewSaleService(store ledger.Store) *SaleService {
	return &SaleService{
		store: store,
		now:   time.Now,
	}
}

// PurchaseTokens records a token purchase. Payment must match the
// price exactly; the ledger neither keeps overpayment nor fills
// partial orders. First-time investors must meet the property's
// minimum investment, repeat investors may top up below it.
func (s *SaleService) PurchaseTokens(caller Caller, propertyID uint64, req *PurchaseRequest) (*PurchaseResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidParameter, err)
	}

	var result PurchaseResult
	err := s.store.Update(func(tx ledger.Store) error {
		// Supply is re-read under the row lock; nothing decided at
		// request submission time is trusted here.
		property, err := tx.GetPropertyForUpdate(propertyID)
		if err != nil {
			return err
		}

		now := s.now()
		if property.StateAt(now) != models.PropertyStateFunding {
			return ledger.ErrFundingClosed
		}
		if req.TokenAmount > property.RemainingTokens() {
			return ledger.ErrExceedsSupply
		}

		required := req.TokenAmount * property.PricePerToken()
		if req.PaidAmount != required {
			return fmt.Errorf("%w: required %d, paid %d", ledger.ErrInsufficientPayment, required, req.PaidAmount)
		}

		holding, err := tx.GetHolding(propertyID, caller.ID)
		switch err {
		case nil:
			// Repeat investors may top up below the minimum.
		case ledger.ErrNoHolding:
			if required < property.MinInvestment {
				return ledger.ErrBelowMinimumInvestment
			}
			holding = &models.Holding{PropertyID: propertyID, InvestorID: caller.ID}
		default:
			return err
		}

		property.TokensSold += req.TokenAmount
		if property.TokensSold > property.TotalTokens {
			return fmt.Errorf("%w: tokens sold %d exceeds supply %d",
				ledger.ErrLedgerInconsistent, property.TokensSold, property.TotalTokens)
		}
		if err := tx.SaveProperty(property); err != nil {
			return err
		}

		holding.TokenAmount += req.TokenAmount
		holding.Invested += req.PaidAmount
		if err := tx.SaveHolding(holding); err != nil {
			return err
		}

		event, err := appendEvent(tx, models.EventTokensPurchased, propertyID, caller.ID, models.JSONB{
			"property_id":     propertyID,
			"investor":        caller.ID.String(),
			"token_amount":    req.TokenAmount,
			"paid_amount":     req.PaidAmount,
			"new_tokens_sold": property.TokensSold,
		})
		if err != nil {
			return err
		}

		result = PurchaseResult{
			Receipt:       newReceipt(event),
			Holding:       *holding,
			NewTokensSold: property.TokensSold,
			State:         property.StateAt(now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
