// internal/models/property_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPropertyStateAt(t *testing.T) {
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	property := Property{
		TotalTokens:     100,
		TokensSold:      10,
		FundingDeadline: deadline,
	}

	assert.Equal(t, PropertyStateFunding, property.StateAt(deadline.Add(-time.Hour)))
	assert.Equal(t, PropertyStateExpired, property.StateAt(deadline.Add(time.Hour)))

	// The deadline instant itself is still open.
	assert.Equal(t, PropertyStateFunding, property.StateAt(deadline))
}

func TestPropertyStateFundedWinsOverExpired(t *testing.T) {
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	property := Property{
		TotalTokens:     100,
		TokensSold:      100,
		FundingDeadline: deadline,
	}

	assert.Equal(t, PropertyStateFunded, property.StateAt(deadline.Add(-time.Hour)))
	assert.Equal(t, PropertyStateFunded, property.StateAt(deadline.Add(24*time.Hour)))
}

func TestPropertyPricePerToken(t *testing.T) {
	property := Property{TotalValue: 1_000_000, TotalTokens: 1000}
	assert.Equal(t, int64(1000), property.PricePerToken())

	property.TokensSold = 400
	assert.Equal(t, int64(600), property.RemainingTokens())
}

func TestDistributionResidual(t *testing.T) {
	d := Distribution{TotalAmount: 1000, PaidOut: 999}
	assert.Equal(t, int64(1), d.Residual())
}

func TestInvestmentTypeValid(t *testing.T) {
	assert.True(t, InvestmentTypeRental.Valid())
	assert.True(t, InvestmentTypeAppreciation.Valid())
	assert.True(t, InvestmentTypeBoth.Valid())
	assert.False(t, InvestmentType("equity").Valid())
	assert.False(t, InvestmentType("").Valid())
}
