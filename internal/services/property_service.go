// internal/services/property_service.go
package services

import (
	"fmt"
	"time"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/utils"
)

// PropertyService is the property lifecycle manager: it lists new
// properties, answers read queries and derives funding state. State is
// never stored; it is recomputed from tokens sold and the funding
// deadline every time a property is read.
type PropertyService struct {
	store ledger.Store
	cfg   *config.Config
	now   func() time.Time
}

type ListPropertyRequest struct {
	Name            string                `json:"name" validate:"required,min=1,max=255"`
	Location        string                `json:"location" validate:"required,min=1,max=255"`
	DocumentHash    string                `json:"document_hash" validate:"required"`
	Images          []string              `json:"images,omitempty"`
	TotalValue      int64                 `json:"total_value" validate:"required,gt=0"`
	TotalTokens     int64                 `json:"total_tokens" validate:"required,gt=0"`
	MinInvestment   int64                 `json:"min_investment" validate:"required,gt=0"`
	ExpectedROI     int64                 `json:"expected_roi" validate:"gte=0"` // basis points
	InvestmentType  models.InvestmentType `json:"investment_type" validate:"required"`
	FundingDuration int64                 `json:"funding_duration" validate:"required,gt=0"` // seconds
}

type PropertyView struct {
	models.Property
	State           models.PropertyState `json:"state"`
	PricePerToken   int64                `json:"price_per_token"`
	RemainingTokens int64                `json:"remaining_tokens"`
}

type PropertySearchParams struct {
	State          *models.PropertyState
	InvestmentType *models.InvestmentType
	Search         string
	Page           int
	Limit          int
}

func NewPropertyService(store ledger.Store, cfg *config.Config) *PropertyService {
	return &PropertyService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ListProperty creates a new tokenized property. Only the platform
// owner may list. The token supply must divide the valuation evenly so
// the per-token price has no remainder.
func (s *PropertyService) ListProperty(caller Caller, req *ListPropertyRequest) (*PropertyView, Receipt, error) {
	var receipt Receipt

	if caller.Type != models.UserTypeAdmin {
		return nil, receipt, ledger.ErrUnauthorized
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, receipt, fmt.Errorf("%w: %v", ledger.ErrInvalidParameter, err)
	}
	if !req.InvestmentType.Valid() {
		return nil, receipt, fmt.Errorf("%w: unknown investment type %q", ledger.ErrInvalidParameter, req.InvestmentType)
	}
	if req.TotalValue%req.TotalTokens != 0 {
		return nil, receipt, fmt.Errorf("%w: total value must be divisible by total tokens", ledger.ErrInvalidParameter)
	}

	now := s.now()
	property := &models.Property{
		OwnerID:         caller.ID,
		Name:            req.Name,
		Location:        req.Location,
		DocumentHash:    req.DocumentHash,
		Images:          req.Images,
		TotalValue:      req.TotalValue,
		TotalTokens:     req.TotalTokens,
		TokensSold:      0,
		MinInvestment:   req.MinInvestment,
		ExpectedROI:     req.ExpectedROI,
		InvestmentType:  req.InvestmentType,
		FundingDeadline: now.Add(time.Duration(req.FundingDuration) * time.Second),
	}

	err := s.store.Update(func(tx ledger.Store) error {
		if err := tx.CreateProperty(property); err != nil {
			return err
		}

		event, err := appendEvent(tx, models.EventPropertyListed, property.ID, caller.ID, models.JSONB{
			"property_id":      property.ID,
			"owner":            caller.ID.String(),
			"name":             property.Name,
			"location":         property.Location,
			"document_hash":    property.DocumentHash,
			"total_value":      property.TotalValue,
			"total_tokens":     property.TotalTokens,
			"min_investment":   property.MinInvestment,
			"expected_roi":     property.ExpectedROI,
			"investment_type":  string(property.InvestmentType),
			"funding_deadline": property.FundingDeadline.Unix(),
		})
		if err != nil {
			return err
		}
		receipt = newReceipt(event)
		return nil
	})
	if err != nil {
		return nil, Receipt{}, err
	}

	return s.view(property), receipt, nil
}

func (s *PropertyService) GetProperty(id uint64) (*PropertyView, error) {
	property, err := s.store.GetProperty(id)
	if err != nil {
		return nil, err
	}
	return s.view(property), nil
}

func (s *PropertyService) SearchProperties(params PropertySearchParams) ([]PropertyView, int64, error) {
	properties, total, err := s.store.ListProperties(ledger.PropertyFilter{
		State:          params.State,
		InvestmentType: params.InvestmentType,
		Search:         params.Search,
		AsOf:           s.now(),
		Page:           params.Page,
		Limit:          params.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	views := make([]PropertyView, 0, len(properties))
	for i := range properties {
		views = append(views, *s.view(&properties[i]))
	}
	return views, total, nil
}

// PropertyCounter reports the number of listed properties. IDs are
// assigned sequentially from 1, so this equals the highest id in use.
func (s *PropertyService) PropertyCounter() (int64, error) {
	return s.store.PropertyCount()
}

func (s *PropertyService) ListEvents(propertyID uint64, limit int) ([]models.LedgerEvent, error) {
	if _, err := s.store.GetProperty(propertyID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(propertyID, limit)
}

func (s *PropertyService) view(p *models.Property) *PropertyView {
	return &PropertyView{
		Property:        *p,
		State:           p.StateAt(s.now()),
		PricePerToken:   p.PricePerToken(),
		RemainingTokens: p.RemainingTokens(),
	}
}
