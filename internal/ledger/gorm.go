// internal/ledger/gorm.go
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propshare/propshare-backend/internal/models"
)

// GormStore is the production Store over PostgreSQL. Atomicity comes
// from database transactions; per-property serialization from SELECT
// ... FOR UPDATE on the property row.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Update(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

/* ---- Properties ---- */

func (s *GormStore) CreateProperty(p *models.Property) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (s *GormStore) GetProperty(id uint64) (*models.Property, error) {
	var p models.Property
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &p, nil
}

func (s *GormStore) GetPropertyForUpdate(id uint64) (*models.Property, error) {
	var p models.Property
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &p, nil
}

func (s *GormStore) SaveProperty(p *models.Property) error {
	if err := s.db.Save(p).Error; err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (s *GormStore) ListProperties(filter PropertyFilter) ([]models.Property, int64, error) {
	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	query := s.db.Model(&models.Property{})

	if filter.State != nil {
		switch *filter.State {
		case models.PropertyStateFunded:
			query = query.Where("tokens_sold >= total_tokens")
		case models.PropertyStateFunding:
			query = query.Where("tokens_sold < total_tokens AND funding_deadline > ?", asOf)
		case models.PropertyStateExpired:
			query = query.Where("tokens_sold < total_tokens AND funding_deadline <= ?", asOf)
		}
	}
	if filter.InvestmentType != nil {
		query = query.Where("investment_type = ?", *filter.InvestmentType)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Search != "" {
		needle := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR location ILIKE ?", needle, needle)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var properties []models.Property
	if err := query.Order("id ASC").Find(&properties).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	return properties, total, nil
}

func (s *GormStore) PropertyCount() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Property{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}

/* ---- Holdings ---- */

func (s *GormStore) GetHolding(propertyID uint64, investorID uuid.UUID) (*models.Holding, error) {
	var h models.Holding
	err := s.db.Where("property_id = ? AND investor_id = ?", propertyID, investorID).First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoHolding
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &h, nil
}

func (s *GormStore) SaveHolding(h *models.Holding) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "investor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_amount", "invested", "updated_at"}),
	}).Create(h).Error
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}

func (s *GormStore) ListInvestorHoldings(investorID uuid.UUID) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.Where("investor_id = ?", investorID).
		Preload("Property").Order("property_id ASC").Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return holdings, nil
}

func (s *GormStore) ListPropertyHoldings(propertyID uint64) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.Where("property_id = ?", propertyID).
		Order("investor_id ASC").Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return holdings, nil
}

/* ---- Distributions and claims ---- */

func (s *GormStore) NextDistributionSeq(propertyID uint64) (uint64, error) {
	var count int64
	err := s.db.Model(&models.Distribution{}).Where("property_id = ?", propertyID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	// Distributions are never deleted, so the count is also the next
	// 0-based sequence number.
	return uint64(count), nil
}

func (s *GormStore) CreateDistribution(d *models.Distribution) error {
	if err := s.db.Create(d).Error; err != nil {
		return fmt.Errorf("failed to create distribution: %w", err)
	}
	return nil
}

func (s *GormStore) GetDistribution(propertyID, seq uint64) (*models.Distribution, error) {
	var d models.Distribution
	err := s.db.Where("property_id = ? AND seq = ?", propertyID, seq).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDistributionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &d, nil
}

func (s *GormStore) GetDistributionForUpdate(propertyID, seq uint64) (*models.Distribution, error) {
	var d models.Distribution
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("property_id = ? AND seq = ?", propertyID, seq).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDistributionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &d, nil
}

func (s *GormStore) SaveDistribution(d *models.Distribution) error {
	err := s.db.Model(&models.Distribution{}).
		Where("property_id = ? AND seq = ?", d.PropertyID, d.Seq).
		Updates(map[string]interface{}{"paid_out": d.PaidOut, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to save distribution: %w", err)
	}
	return nil
}

func (s *GormStore) ListDistributions(propertyID uint64) ([]models.Distribution, error) {
	var distributions []models.Distribution
	err := s.db.Where("property_id = ?", propertyID).Order("seq ASC").Find(&distributions).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return distributions, nil
}

func (s *GormStore) HasClaim(propertyID, seq uint64, investorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.RevenueClaim{}).
		Where("property_id = ? AND distribution_seq = ? AND investor_id = ?", propertyID, seq, investorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) CreateClaim(c *models.RevenueClaim) error {
	if err := s.db.Create(c).Error; err != nil {
		// The composite primary key enforces at-most-one claim per
		// investor even if a race slips past the engine check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyClaimed
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (s *GormStore) ListClaims(propertyID, seq uint64) ([]models.RevenueClaim, error) {
	var claims []models.RevenueClaim
	err := s.db.Where("property_id = ? AND distribution_seq = ?", propertyID, seq).
		Order("created_at ASC").Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return claims, nil
}

func (s *GormStore) ListInvestorClaims(investorID uuid.UUID) ([]models.RevenueClaim, error) {
	var claims []models.RevenueClaim
	err := s.db.Where("investor_id = ?", investorID).Order("created_at ASC").Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return claims, nil
}

/* ---- Events ---- */

func (s *GormStore) AppendEvent(e *models.LedgerEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *GormStore) LastEvent(propertyID uint64) (*models.LedgerEvent, error) {
	var e models.LedgerEvent
	err := s.db.Where("property_id = ?", propertyID).Order("created_at DESC").First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &e, nil
}

func (s *GormStore) ListEvents(propertyID uint64, limit int) ([]models.LedgerEvent, error) {
	query := s.db.Where("property_id = ?", propertyID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var events []models.LedgerEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return events, nil
}
