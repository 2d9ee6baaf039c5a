// internal/ledger/store.go
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/propshare/propshare-backend/internal/models"
)

// PropertyFilter narrows property listings. State filtering is done
// against the state derived at AsOf, since state is never stored.
type PropertyFilter struct {
	State          *models.PropertyState
	InvestmentType *models.InvestmentType
	OwnerID        *uuid.UUID
	Search         string // matches name and location
	AsOf           time.Time
	Page           int
	Limit          int
}

// Store is the durable key-value state behind the ledger engine:
// properties, per-investor holdings, distributions, claims and the
// event feed. Update runs fn against a transactional view of the
// store; either every write inside fn commits, or none do. Reads
// inside Update observe current committed state, never a stale
// submission-time snapshot.
type Store interface {
	// Properties
	CreateProperty(p *models.Property) error
	GetProperty(id uint64) (*models.Property, error)
	// GetPropertyForUpdate locks the property row for the duration of
	// the enclosing Update, serializing concurrent mutations per
	// property.
	GetPropertyForUpdate(id uint64) (*models.Property, error)
	SaveProperty(p *models.Property) error
	ListProperties(filter PropertyFilter) ([]models.Property, int64, error)
	PropertyCount() (int64, error)

	// Holdings
	GetHolding(propertyID uint64, investorID uuid.UUID) (*models.Holding, error)
	SaveHolding(h *models.Holding) error
	ListInvestorHoldings(investorID uuid.UUID) ([]models.Holding, error)
	ListPropertyHoldings(propertyID uint64) ([]models.Holding, error)

	// Distributions and claims
	NextDistributionSeq(propertyID uint64) (uint64, error)
	CreateDistribution(d *models.Distribution) error
	GetDistribution(propertyID, seq uint64) (*models.Distribution, error)
	GetDistributionForUpdate(propertyID, seq uint64) (*models.Distribution, error)
	SaveDistribution(d *models.Distribution) error
	ListDistributions(propertyID uint64) ([]models.Distribution, error)
	HasClaim(propertyID, seq uint64, investorID uuid.UUID) (bool, error)
	CreateClaim(c *models.RevenueClaim) error
	ListClaims(propertyID, seq uint64) ([]models.RevenueClaim, error)
	ListInvestorClaims(investorID uuid.UUID) ([]models.RevenueClaim, error)

	// Events
	AppendEvent(e *models.LedgerEvent) error
	LastEvent(propertyID uint64) (*models.LedgerEvent, error)
	ListEvents(propertyID uint64, limit int) ([]models.LedgerEvent, error)

	// Update runs fn atomically. A non-nil error from fn rolls back
	// every write made through the store fn receives.
	Update(fn func(Store) error) error
}
