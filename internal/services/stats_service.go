// internal/services/stats_service.go
package services

import (
	"time"

	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
)

// StatsService aggregates platform-wide figures for the public stats
// endpoint and the owner dashboard.
type StatsService struct {
	store ledger.Store
	now   func() time.Time
}

type PlatformStats struct {
	TotalProperties   int64 `json:"total_properties"`
	FundingProperties int64 `json:"funding_properties"`
	FundedProperties  int64 `json:"funded_properties"`
	ExpiredProperties int64 `json:"expired_properties"`
	TotalValueListed  int64 `json:"total_value_listed"`
	TotalTokensSold   int64 `json:"total_tokens_sold"`
	TotalRaised       int64 `json:"total_raised"`
	TotalDistributed  int64 `json:"total_distributed"`
	TotalClaimed      int64 `json:"total_claimed"`
}

func NewStatsService(store ledger.Store) *StatsService {
	return &StatsService{
		store: store,
		now:   time.Now,
	}
}

func (s *StatsService) PlatformStats() (*PlatformStats, error) {
	properties, _, err := s.store.ListProperties(ledger.PropertyFilter{AsOf: s.now()})
	if err != nil {
		return nil, err
	}

	stats := &PlatformStats{}
	now := s.now()
	for i := range properties {
		p := &properties[i]
		stats.TotalProperties++
		switch p.StateAt(now) {
		case models.PropertyStateFunding:
			stats.FundingProperties++
		case models.PropertyStateFunded:
			stats.FundedProperties++
		case models.PropertyStateExpired:
			stats.ExpiredProperties++
		}
		stats.TotalValueListed += p.TotalValue
		stats.TotalTokensSold += p.TokensSold
		stats.TotalRaised += p.TokensSold * p.PricePerToken()

		distributions, err := s.store.ListDistributions(p.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range distributions {
			stats.TotalDistributed += d.TotalAmount
			stats.TotalClaimed += d.PaidOut
		}
	}
	return stats, nil
}
