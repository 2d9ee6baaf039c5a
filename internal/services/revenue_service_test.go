// internal/services/revenue_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
)

type revenueFixture struct {
	*saleFixture
	revenue *RevenueService
}

func newRevenueFixture(t *testing.T) *revenueFixture {
	t.Helper()

	sf := newSaleFixture(t)
	revenue := NewRevenueService(sf.store, nil)
	revenue.now = func() time.Time { return testNow }
	return &revenueFixture{saleFixture: sf, revenue: revenue}
}

func (f *revenueFixture) distribute(t *testing.T, caller Caller, amount int64) (*DistributeResult, error) {
	t.Helper()
	return f.revenue.DistributeRevenue(caller, f.property.ID, &DistributeRequest{Amount: amount})
}

func TestDistributeRevenue(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()
	_, err := f.buy(t, investor, 40, 40_000)
	require.NoError(t, err)

	result, err := f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.Distribution.Seq)
	assert.Equal(t, int64(10_000), result.Distribution.TotalAmount)
	assert.Equal(t, int64(40), result.Distribution.SnapshotTokens)
	assert.Zero(t, result.Distribution.PaidOut)

	// Sequence numbers are per property, 0-based.
	second, err := f.distribute(t, f.owner, 5_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.Distribution.Seq)
}

func TestDistributeRevenueOnlyOwner(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()
	_, err := f.buy(t, investor, 40, 40_000)
	require.NoError(t, err)

	_, err = f.distribute(t, investor, 10_000)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	distributions, err := f.revenue.ListDistributions(f.property.ID)
	require.NoError(t, err)
	assert.Empty(t, distributions)
}

func TestDistributeRevenueNoTokensSold(t *testing.T) {
	f := newRevenueFixture(t)

	_, err := f.distribute(t, f.owner, 10_000)
	assert.ErrorIs(t, err, ledger.ErrNoTokensSold)
}

func TestDistributeRevenueRejectsNonPositiveAmount(t *testing.T) {
	f := newRevenueFixture(t)
	_, err := f.buy(t, investorCaller(), 40, 40_000)
	require.NoError(t, err)

	_, err = f.distribute(t, f.owner, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidParameter)
	_, err = f.distribute(t, f.owner, -100)
	assert.ErrorIs(t, err, ledger.ErrInvalidParameter)
}

// A property that expired with partial sales still distributes over the
// tokens that were sold.
func TestDistributeRevenueAfterExpiry(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()
	_, err := f.buy(t, investor, 40, 40_000)
	require.NoError(t, err)

	f.revenue.now = func() time.Time { return f.property.FundingDeadline.Add(time.Hour) }
	result, err := f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)
	assert.Equal(t, int64(40), result.Distribution.SnapshotTokens)
}

func TestClaimRevenueProRata(t *testing.T) {
	f := newRevenueFixture(t)
	alice := investorCaller()
	bob := investorCaller()

	_, err := f.buy(t, alice, 60, 60_000)
	require.NoError(t, err)
	_, err = f.buy(t, bob, 40, 40_000)
	require.NoError(t, err)

	_, err = f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)

	aliceClaim, err := f.revenue.ClaimRevenue(alice, f.property.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000), aliceClaim.PayoutAmount)

	bobClaim, err := f.revenue.ClaimRevenue(bob, f.property.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4_000), bobClaim.PayoutAmount)

	distribution, err := f.store.GetDistribution(f.property.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), distribution.PaidOut)
	assert.Zero(t, distribution.Residual())
}

func TestClaimRevenueExactlyOnce(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()
	_, err := f.buy(t, investor, 40, 40_000)
	require.NoError(t, err)
	_, err = f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)

	_, err = f.revenue.ClaimRevenue(investor, f.property.ID, 0)
	require.NoError(t, err)

	_, err = f.revenue.ClaimRevenue(investor, f.property.ID, 0)
	assert.ErrorIs(t, err, ledger.ErrAlreadyClaimed)

	// The double claim changed nothing.
	distribution, err := f.store.GetDistribution(f.property.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), distribution.PaidOut)
}

func TestClaimRevenueRequiresHolding(t *testing.T) {
	f := newRevenueFixture(t)
	_, err := f.buy(t, investorCaller(), 40, 40_000)
	require.NoError(t, err)
	_, err = f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)

	_, err = f.revenue.ClaimRevenue(investorCaller(), f.property.ID, 0)
	assert.ErrorIs(t, err, ledger.ErrNoHolding)
}

func TestClaimRevenueUnknownDistribution(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()
	_, err := f.buy(t, investor, 40, 40_000)
	require.NoError(t, err)

	_, err = f.revenue.ClaimRevenue(investor, f.property.ID, 7)
	assert.ErrorIs(t, err, ledger.ErrDistributionNotFound)
}

// Floor rounding keeps the payout sum at or below the deposit; the
// residual stays with the ledger.
func TestClaimRevenueRoundsDown(t *testing.T) {
	f := newRevenueFixture(t)
	alice := investorCaller()
	bob := investorCaller()
	carol := investorCaller()

	_, err := f.buy(t, alice, 33, 33_000)
	require.NoError(t, err)
	_, err = f.buy(t, bob, 33, 33_000)
	require.NoError(t, err)
	_, err = f.buy(t, carol, 34, 34_000)
	require.NoError(t, err)

	// 1000 over 100 snapshot tokens: 33 tokens pay 330, 34 pay 340.
	_, err = f.distribute(t, f.owner, 1_000)
	require.NoError(t, err)

	var total int64
	for _, investor := range []Caller{alice, bob, carol} {
		claim, err := f.revenue.ClaimRevenue(investor, f.property.ID, 0)
		require.NoError(t, err)
		total += claim.PayoutAmount
	}
	assert.Equal(t, int64(1_000), total)

	// An uneven deposit leaves a residual instead of overpaying.
	_, err = f.distribute(t, f.owner, 1_001)
	require.NoError(t, err)
	total = 0
	for _, investor := range []Caller{alice, bob, carol} {
		claim, err := f.revenue.ClaimRevenue(investor, f.property.ID, 1)
		require.NoError(t, err)
		total += claim.PayoutAmount
	}
	assert.Equal(t, int64(1_000), total)

	distribution, err := f.store.GetDistribution(f.property.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), distribution.Residual())
}

// A holding grown by purchases after the snapshot cannot overdraw the
// deposit: the conservation guard rejects the claim rather than pay out
// more than was distributed.
func TestClaimConservationGuard(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()

	_, err := f.buy(t, investor, 50, 50_000)
	require.NoError(t, err)
	_, err = f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)

	// Snapshot is 50; topping up to 75 would compute a 15000 share.
	_, err = f.buy(t, investor, 25, 25_000)
	require.NoError(t, err)

	_, err = f.revenue.ClaimRevenue(investor, f.property.ID, 0)
	assert.ErrorIs(t, err, ledger.ErrLedgerInconsistent)

	distribution, err := f.store.GetDistribution(f.property.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, distribution.PaidOut)
	claimed, err := f.store.HasClaim(f.property.ID, 0, investor.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

// Full lifecycle at a unit token price: fund the property across two
// investors, then pay out an even and an uneven distribution.
func TestRevenueLifecycleUnitPrice(t *testing.T) {
	store := ledger.NewMemoryStore()
	propertySvc := newTestPropertyService(store)
	owner := adminCaller()

	req := listingRequest()
	req.TotalValue = 1000
	req.TotalTokens = 1000
	req.MinInvestment = 1
	view, _, err := propertySvc.ListProperty(owner, req)
	require.NoError(t, err)

	sale := NewSaleService(store)
	sale.now = func() time.Time { return testNow }
	revenue := NewRevenueService(store, nil)
	revenue.now = func() time.Time { return testNow }

	alice := investorCaller()
	bob := investorCaller()

	result, err := sale.PurchaseTokens(alice, view.ID, &PurchaseRequest{TokenAmount: 400, PaidAmount: 400})
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStateFunding, result.State)

	result, err = sale.PurchaseTokens(bob, view.ID, &PurchaseRequest{TokenAmount: 600, PaidAmount: 600})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.NewTokensSold)
	assert.Equal(t, models.PropertyStateFunded, result.State)

	dist, err := revenue.DistributeRevenue(owner, view.ID, &DistributeRequest{Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), dist.Distribution.Seq)
	assert.Equal(t, int64(1000), dist.Distribution.SnapshotTokens)

	aliceClaim, err := revenue.ClaimRevenue(alice, view.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(40), aliceClaim.PayoutAmount)
	bobClaim, err := revenue.ClaimRevenue(bob, view.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bobClaim.PayoutAmount)

	d0, err := store.GetDistribution(view.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), d0.PaidOut)
	assert.Zero(t, d0.Residual())

	// 101 does not divide evenly; the single leftover unit is retained.
	_, err = revenue.DistributeRevenue(owner, view.ID, &DistributeRequest{Amount: 101})
	require.NoError(t, err)

	aliceClaim, err = revenue.ClaimRevenue(alice, view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), aliceClaim.PayoutAmount)
	bobClaim, err = revenue.ClaimRevenue(bob, view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bobClaim.PayoutAmount)

	d1, err := store.GetDistribution(view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), d1.PaidOut)
	assert.Equal(t, int64(1), d1.Residual())
}

// The share multiplication must survive values near the int64 range.
func TestProRataShareLargeValues(t *testing.T) {
	total := int64(4_000_000_000_000_000_000)
	assert.Equal(t, int64(3_000_000_000_000_000_000), proRataShare(total, 3, 4))
	assert.Equal(t, total, proRataShare(total, 1_000_000, 1_000_000))
	assert.Zero(t, proRataShare(total, 0, 1_000_000))
}

func TestPortfolio(t *testing.T) {
	f := newRevenueFixture(t)
	investor := investorCaller()

	_, err := f.buy(t, investor, 40, 40_000)
	require.NoError(t, err)
	_, err = f.distribute(t, f.owner, 10_000)
	require.NoError(t, err)
	_, err = f.distribute(t, f.owner, 4_000)
	require.NoError(t, err)

	entries, err := f.revenue.Portfolio(investor.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, f.property.ID, entries[0].Property.ID)
	assert.Equal(t, int64(40), entries[0].Holding.TokenAmount)
	require.Len(t, entries[0].Claimable, 2)
	assert.Equal(t, int64(10_000), entries[0].Claimable[0].PayoutAmount)
	assert.Equal(t, int64(4_000), entries[0].Claimable[1].PayoutAmount)

	// Claimed distributions drop out of the claimable list.
	_, err = f.revenue.ClaimRevenue(investor, f.property.ID, 0)
	require.NoError(t, err)

	entries, err = f.revenue.Portfolio(investor.ID)
	require.NoError(t, err)
	require.Len(t, entries[0].Claimable, 1)
	assert.Equal(t, uint64(1), entries[0].Claimable[0].Seq)
}
