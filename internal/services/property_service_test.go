// internal/services/property_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPropertyService(store ledger.Store) *PropertyService {
	s := NewPropertyService(store, &config.Config{})
	s.now = func() time.Time { return testNow }
	return s
}

func adminCaller() Caller {
	return Caller{ID: uuid.New(), Type: models.UserTypeAdmin}
}

func investorCaller() Caller {
	return Caller{ID: uuid.New(), Type: models.UserTypeInvestor}
}

func listingRequest() *ListPropertyRequest {
	return &ListPropertyRequest{
		Name:            "Harborview Apartments",
		Location:        "Lisbon, PT",
		DocumentHash:    "c0ffee",
		TotalValue:      1_000_000,
		TotalTokens:     1000,
		MinInvestment:   5000,
		ExpectedROI:     850,
		InvestmentType:  models.InvestmentTypeRental,
		FundingDuration: 30 * 24 * 3600,
	}
}

func TestListPropertyAssignsSequentialIDs(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)
	owner := adminCaller()

	first, receipt, err := svc.ListProperty(owner, listingRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.ID)
	assert.NotEqual(t, uuid.Nil, receipt.TransactionID)

	second, _, err := svc.ListProperty(owner, listingRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.ID)

	count, err := svc.PropertyCounter()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListPropertyRejectsNonOwner(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)

	_, _, err := svc.ListProperty(investorCaller(), listingRequest())
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	count, err := svc.PropertyCounter()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListPropertyRejectsIndivisibleValuation(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)

	req := listingRequest()
	req.TotalValue = 1_000_001
	_, _, err := svc.ListProperty(adminCaller(), req)
	assert.ErrorIs(t, err, ledger.ErrInvalidParameter)
}

func TestListPropertyRejectsInvalidInput(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)
	owner := adminCaller()

	for name, mutate := range map[string]func(*ListPropertyRequest){
		"zero tokens":       func(r *ListPropertyRequest) { r.TotalTokens = 0 },
		"zero value":        func(r *ListPropertyRequest) { r.TotalValue = 0 },
		"empty name":        func(r *ListPropertyRequest) { r.Name = "" },
		"zero duration":     func(r *ListPropertyRequest) { r.FundingDuration = 0 },
		"bad investment":    func(r *ListPropertyRequest) { r.InvestmentType = "equity" },
		"zero min invest":   func(r *ListPropertyRequest) { r.MinInvestment = 0 },
		"missing doc hash":  func(r *ListPropertyRequest) { r.DocumentHash = "" },
	} {
		req := listingRequest()
		mutate(req)
		_, _, err := svc.ListProperty(owner, req)
		assert.ErrorIs(t, err, ledger.ErrInvalidParameter, name)
	}
}

func TestGetPropertyDerivesState(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)

	view, _, err := svc.ListProperty(adminCaller(), listingRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStateFunding, view.State)
	assert.Equal(t, int64(1000), view.PricePerToken)
	assert.Equal(t, int64(1000), view.RemainingTokens)
	assert.Equal(t, testNow.Add(30*24*time.Hour), view.FundingDeadline)

	// Read past the deadline; the same row now reports expired.
	svc.now = func() time.Time { return testNow.Add(31 * 24 * time.Hour) }
	got, err := svc.GetProperty(view.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStateExpired, got.State)
}

func TestGetPropertyNotFound(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)

	_, err := svc.GetProperty(42)
	assert.ErrorIs(t, err, ledger.ErrPropertyNotFound)
}

func TestSearchPropertiesFilters(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)
	owner := adminCaller()

	_, _, err := svc.ListProperty(owner, listingRequest())
	require.NoError(t, err)

	req := listingRequest()
	req.Name = "Dockside Lofts"
	req.InvestmentType = models.InvestmentTypeAppreciation
	_, _, err = svc.ListProperty(owner, req)
	require.NoError(t, err)

	views, total, err := svc.SearchProperties(PropertySearchParams{Search: "dockside"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, "Dockside Lofts", views[0].Name)

	it := models.InvestmentTypeRental
	views, total, err = svc.SearchProperties(PropertySearchParams{InvestmentType: &it})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Harborview Apartments", views[0].Name)
}

func TestListingEmitsChainedEvent(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestPropertyService(store)
	owner := adminCaller()

	view, receipt, err := svc.ListProperty(owner, listingRequest())
	require.NoError(t, err)

	events, err := svc.ListEvents(view.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventPropertyListed, events[0].Type)
	assert.Equal(t, receipt.TransactionID, events[0].ID)
	assert.Empty(t, events[0].PrevHash)
	assert.NotEmpty(t, events[0].Hash)
}
