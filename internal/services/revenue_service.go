// internal/services/revenue_service.go
package services

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/utils"
)

// RevenueService is the revenue distribution engine: owners deposit
// revenue against a property, investors withdraw their pro-rata share
// exactly once per distribution.
type RevenueService struct {
	store    ledger.Store
	notifier *NotificationService
	now      func() time.Time
}

type DistributeRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type DistributeResult struct {
	Receipt      Receipt             `json:"receipt"`
	Distribution models.Distribution `json:"distribution"`
}

type ClaimResult struct {
	Receipt      Receipt `json:"receipt"`
	PayoutAmount int64   `json:"payout_amount"`
}

type ClaimableDistribution struct {
	Seq            uint64 `json:"seq"`
	TotalAmount    int64  `json:"total_amount"`
	SnapshotTokens int64  `json:"snapshot_tokens"`
	PayoutAmount   int64  `json:"payout_amount"`
}

type PortfolioEntry struct {
	Property  PropertyView            `json:"property"`
	Holding   models.Holding          `json:"holding"`
	Claimable []ClaimableDistribution `json:"claimable"`
}

func NewRevenueService(store ledger.Store, notifier *NotificationService) *RevenueService {
	return &RevenueService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// DistributeRevenue opens a new distribution for a property. The
// snapshot denominator is the tokens sold at this instant and is never
// recomputed. A property that expired with partial sales may still
// distribute over the tokens that were sold.
func (s *RevenueService) DistributeRevenue(caller Caller, propertyID uint64, req *DistributeRequest) (*DistributeResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidParameter, err)
	}

	var result DistributeResult
	err := s.store.Update(func(tx ledger.Store) error {
		property, err := tx.GetPropertyForUpdate(propertyID)
		if err != nil {
			return err
		}
		if property.OwnerID != caller.ID {
			return ledger.ErrUnauthorized
		}
		if property.TokensSold == 0 {
			return ledger.ErrNoTokensSold
		}

		seq, err := tx.NextDistributionSeq(propertyID)
		if err != nil {
			return err
		}

		distribution := &models.Distribution{
			PropertyID:     propertyID,
			Seq:            seq,
			TotalAmount:    req.Amount,
			SnapshotTokens: property.TokensSold,
		}
		if err := tx.CreateDistribution(distribution); err != nil {
			return err
		}

		event, err := appendEvent(tx, models.EventRevenueDistributed, propertyID, caller.ID, models.JSONB{
			"property_id":     propertyID,
			"distribution_id": seq,
			"total_amount":    req.Amount,
			"snapshot_tokens": property.TokensSold,
		})
		if err != nil {
			return err
		}

		result = DistributeResult{Receipt: newReceipt(event), Distribution: *distribution}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Holders are notified after the commit; a delivery failure never
	// rolls back the distribution.
	if s.notifier != nil {
		go s.notifyHolders(propertyID, result.Distribution)
	}
	return &result, nil
}

func (s *RevenueService) notifyHolders(propertyID uint64, distribution models.Distribution) {
	property, err := s.store.GetProperty(propertyID)
	if err != nil {
		return
	}
	holders, err := s.store.ListPropertyHoldings(propertyID)
	if err != nil {
		return
	}
	s.notifier.NotifyRevenueDistributed(property, &distribution, holders)
}

// ClaimRevenue pays out the caller's share of one distribution. The
// claim marker is written in the same transaction that records the
// payout, and before the transfer is considered to have happened, so a
// failed transfer can never be replayed into a double payment.
func (s *RevenueService) ClaimRevenue(caller Caller, propertyID, seq uint64) (*ClaimResult, error) {
	var result ClaimResult
	err := s.store.Update(func(tx ledger.Store) error {
		// The property row lock serializes claims with purchases and
		// with each other.
		if _, err := tx.GetPropertyForUpdate(propertyID); err != nil {
			return err
		}
		distribution, err := tx.GetDistributionForUpdate(propertyID, seq)
		if err != nil {
			return err
		}

		holding, err := tx.GetHolding(propertyID, caller.ID)
		if err != nil {
			return err
		}
		if holding.TokenAmount == 0 {
			return ledger.ErrNoHolding
		}

		claimed, err := tx.HasClaim(propertyID, seq, caller.ID)
		if err != nil {
			return err
		}
		if claimed {
			return ledger.ErrAlreadyClaimed
		}

		payout := proRataShare(distribution.TotalAmount, holding.TokenAmount, distribution.SnapshotTokens)
		if distribution.PaidOut+payout > distribution.TotalAmount {
			return fmt.Errorf("%w: distribution %d/%d would pay out %d of %d",
				ledger.ErrLedgerInconsistent, propertyID, seq,
				distribution.PaidOut+payout, distribution.TotalAmount)
		}

		claim := &models.RevenueClaim{
			PropertyID:      propertyID,
			DistributionSeq: seq,
			InvestorID:      caller.ID,
			Amount:          payout,
		}
		if err := tx.CreateClaim(claim); err != nil {
			return err
		}

		distribution.PaidOut += payout
		if err := tx.SaveDistribution(distribution); err != nil {
			return err
		}

		event, err := appendEvent(tx, models.EventRevenueClaimed, propertyID, caller.ID, models.JSONB{
			"property_id":     propertyID,
			"distribution_id": seq,
			"investor":        caller.ID.String(),
			"amount":          payout,
		})
		if err != nil {
			return err
		}

		result = ClaimResult{Receipt: newReceipt(event), PayoutAmount: payout}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *RevenueService) ListDistributions(propertyID uint64) ([]models.Distribution, error) {
	if _, err := s.store.GetProperty(propertyID); err != nil {
		return nil, err
	}
	return s.store.ListDistributions(propertyID)
}

// Portfolio lists the investor's holdings with the distributions still
// claimable on each.
func (s *RevenueService) Portfolio(investorID uuid.UUID) ([]PortfolioEntry, error) {
	holdings, err := s.store.ListInvestorHoldings(investorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]PortfolioEntry, 0, len(holdings))
	for _, holding := range holdings {
		property, err := s.store.GetProperty(holding.PropertyID)
		if err != nil {
			return nil, err
		}

		distributions, err := s.store.ListDistributions(holding.PropertyID)
		if err != nil {
			return nil, err
		}

		var claimable []ClaimableDistribution
		for _, d := range distributions {
			claimed, err := s.store.HasClaim(d.PropertyID, d.Seq, investorID)
			if err != nil {
				return nil, err
			}
			if claimed {
				continue
			}
			claimable = append(claimable, ClaimableDistribution{
				Seq:            d.Seq,
				TotalAmount:    d.TotalAmount,
				SnapshotTokens: d.SnapshotTokens,
				PayoutAmount:   proRataShare(d.TotalAmount, holding.TokenAmount, d.SnapshotTokens),
			})
		}

		entries = append(entries, PortfolioEntry{
			Property: PropertyView{
				Property:        *property,
				State:           property.StateAt(now),
				PricePerToken:   property.PricePerToken(),
				RemainingTokens: property.RemainingTokens(),
			},
			Holding:   holding,
			Claimable: claimable,
		})
	}
	return entries, nil
}

// proRataShare computes floor(total * holding / snapshot). The
// multiplication runs in big integers so valuations near the int64
// range cannot overflow; rounding is always down and the residual
// stays with the ledger.
func proRataShare(total, holding, snapshot int64) int64 {
	share := new(big.Int).Mul(big.NewInt(total), big.NewInt(holding))
	share.Quo(share, big.NewInt(snapshot))
	return share.Int64()
}
