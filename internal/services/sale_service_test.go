// internal/services/sale_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
)

// saleFixture lists one property with 100 tokens at 1000 each and a
// minimum investment of 5000 (5 tokens).
type saleFixture struct {
	store    *ledger.MemoryStore
	sale     *SaleService
	property *PropertyView
	owner    Caller
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()

	store := ledger.NewMemoryStore()
	propertySvc := newTestPropertyService(store)
	owner := adminCaller()

	req := listingRequest()
	req.TotalValue = 100_000
	req.TotalTokens = 100
	req.MinInvestment = 5000
	view, _, err := propertySvc.ListProperty(owner, req)
	require.NoError(t, err)

	sale := NewSaleService(store)
	sale.now = func() time.Time { return testNow }

	return &saleFixture{store: store, sale: sale, property: view, owner: owner}
}

func (f *saleFixture) buy(t *testing.T, caller Caller, tokens, paid int64) (*PurchaseResult, error) {
	t.Helper()
	return f.sale.PurchaseTokens(caller, f.property.ID, &PurchaseRequest{
		TokenAmount: tokens,
		PaidAmount:  paid,
	})
}

func TestPurchaseTokens(t *testing.T) {
	f := newSaleFixture(t)
	investor := investorCaller()

	result, err := f.buy(t, investor, 10, 10_000)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.NewTokensSold)
	assert.Equal(t, int64(10), result.Holding.TokenAmount)
	assert.Equal(t, int64(10_000), result.Holding.Invested)
	assert.Equal(t, models.PropertyStateFunding, result.State)

	property, err := f.store.GetProperty(f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), property.TokensSold)
}

func TestPurchaseRequiresExactPayment(t *testing.T) {
	f := newSaleFixture(t)
	investor := investorCaller()

	for _, paid := range []int64{9_999, 10_001, 20_000} {
		_, err := f.buy(t, investor, 10, paid)
		assert.ErrorIs(t, err, ledger.ErrInsufficientPayment)
	}

	// Nothing committed by the rejected attempts.
	property, err := f.store.GetProperty(f.property.ID)
	require.NoError(t, err)
	assert.Zero(t, property.TokensSold)
	_, err = f.store.GetHolding(f.property.ID, investor.ID)
	assert.ErrorIs(t, err, ledger.ErrNoHolding)
}

func TestPurchaseSupplyCap(t *testing.T) {
	f := newSaleFixture(t)
	alice := investorCaller()
	bob := investorCaller()

	_, err := f.buy(t, alice, 60, 60_000)
	require.NoError(t, err)

	// 41 of the remaining 40 must fail and leave the ledger unchanged.
	_, err = f.buy(t, bob, 41, 41_000)
	assert.ErrorIs(t, err, ledger.ErrExceedsSupply)

	property, err := f.store.GetProperty(f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), property.TokensSold)

	// Exactly the remaining 40 succeeds and funds the property.
	result, err := f.buy(t, bob, 40, 40_000)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.NewTokensSold)
	assert.Equal(t, models.PropertyStateFunded, result.State)
}

func TestPurchaseAfterSelloutIsClosed(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.buy(t, investorCaller(), 100, 100_000)
	require.NoError(t, err)

	_, err = f.buy(t, investorCaller(), 1, 1_000)
	assert.ErrorIs(t, err, ledger.ErrFundingClosed)
}

func TestPurchaseAfterDeadline(t *testing.T) {
	f := newSaleFixture(t)
	investor := investorCaller()

	f.sale.now = func() time.Time { return f.property.FundingDeadline.Add(time.Second) }
	_, err := f.buy(t, investor, 10, 10_000)
	assert.ErrorIs(t, err, ledger.ErrFundingClosed)

	property, err := f.store.GetProperty(f.property.ID)
	require.NoError(t, err)
	assert.Zero(t, property.TokensSold)
}

func TestPurchaseMinimumInvestment(t *testing.T) {
	f := newSaleFixture(t)
	investor := investorCaller()

	// 4 tokens is 4000, below the 5000 minimum.
	_, err := f.buy(t, investor, 4, 4_000)
	assert.ErrorIs(t, err, ledger.ErrBelowMinimumInvestment)

	_, err = f.buy(t, investor, 5, 5_000)
	require.NoError(t, err)

	// Existing holders may top up below the minimum.
	result, err := f.buy(t, investor, 1, 1_000)
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Holding.TokenAmount)
	assert.Equal(t, int64(6_000), result.Holding.Invested)
}

func TestPurchaseUnknownProperty(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.sale.PurchaseTokens(investorCaller(), 99, &PurchaseRequest{TokenAmount: 1, PaidAmount: 1_000})
	assert.ErrorIs(t, err, ledger.ErrPropertyNotFound)
}

func TestPurchaseRejectsNonPositiveAmounts(t *testing.T) {
	f := newSaleFixture(t)
	investor := investorCaller()

	_, err := f.buy(t, investor, 0, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidParameter)

	_, err = f.buy(t, investor, -5, 5_000)
	assert.ErrorIs(t, err, ledger.ErrInvalidParameter)
}

func TestPurchaseEmitsChainedEvents(t *testing.T) {
	f := newSaleFixture(t)
	investor := investorCaller()

	first, err := f.buy(t, investor, 10, 10_000)
	require.NoError(t, err)
	second, err := f.buy(t, investor, 5, 5_000)
	require.NoError(t, err)
	assert.NotEqual(t, first.Receipt.TransactionID, second.Receipt.TransactionID)

	events, err := f.store.ListEvents(f.property.ID, 10)
	require.NoError(t, err)
	// Newest first: purchase, purchase, listing.
	require.Len(t, events, 3)
	assert.Equal(t, models.EventTokensPurchased, events[0].Type)
	assert.Equal(t, events[1].Hash, events[0].PrevHash)
	assert.Equal(t, events[2].Hash, events[1].PrevHash)
}
