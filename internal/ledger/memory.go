// internal/ledger/memory.go
package ledger

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propshare/propshare-backend/internal/models"
)

type holdingKey struct {
	propertyID uint64
	investorID uuid.UUID
}

type distributionKey struct {
	propertyID uint64
	seq        uint64
}

type claimKey struct {
	propertyID uint64
	seq        uint64
	investorID uuid.UUID
}

type memoryState struct {
	properties     map[uint64]models.Property
	nextPropertyID uint64
	holdings       map[holdingKey]models.Holding
	distributions  map[distributionKey]models.Distribution
	claims         map[claimKey]models.RevenueClaim
	events         []models.LedgerEvent
}

func (st *memoryState) clone() *memoryState {
	cp := &memoryState{
		properties:     make(map[uint64]models.Property, len(st.properties)),
		nextPropertyID: st.nextPropertyID,
		holdings:       make(map[holdingKey]models.Holding, len(st.holdings)),
		distributions:  make(map[distributionKey]models.Distribution, len(st.distributions)),
		claims:         make(map[claimKey]models.RevenueClaim, len(st.claims)),
		events:         make([]models.LedgerEvent, len(st.events)),
	}
	for k, v := range st.properties {
		cp.properties[k] = v
	}
	for k, v := range st.holdings {
		cp.holdings[k] = v
	}
	for k, v := range st.distributions {
		cp.distributions[k] = v
	}
	for k, v := range st.claims {
		cp.claims[k] = v
	}
	copy(cp.events, st.events)
	return cp
}

// MemoryStore is the in-process Store used by tests and local
// development. A single mutex stands in for the row locks of the
// production store; Update snapshots the state and restores it when
// the closure fails, giving the same all-or-nothing semantics.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
	inTx  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			properties:     make(map[uint64]models.Property),
			nextPropertyID: 1,
			holdings:       make(map[holdingKey]models.Holding),
			distributions:  make(map[distributionKey]models.Distribution),
			claims:         make(map[claimKey]models.RevenueClaim),
		},
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Update(fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	tx := &MemoryStore{state: s.state, inTx: true}
	if err := fn(tx); err != nil {
		*s.state = *backup
		return err
	}
	return nil
}

/* ---- Properties ---- */

func (s *MemoryStore) CreateProperty(p *models.Property) error {
	defer s.lock()()

	if p.ID == 0 {
		p.ID = s.state.nextPropertyID
	}
	if p.ID >= s.state.nextPropertyID {
		s.state.nextPropertyID = p.ID + 1
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.state.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetProperty(id uint64) (*models.Property, error) {
	defer s.lock()()

	p, ok := s.state.properties[id]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetPropertyForUpdate(id uint64) (*models.Property, error) {
	// The Update mutex already serializes writers.
	return s.GetProperty(id)
}

func (s *MemoryStore) SaveProperty(p *models.Property) error {
	defer s.lock()()

	if _, ok := s.state.properties[p.ID]; !ok {
		return ErrPropertyNotFound
	}
	p.UpdatedAt = time.Now()
	s.state.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) ListProperties(filter PropertyFilter) ([]models.Property, int64, error) {
	defer s.lock()()

	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	matched := make([]models.Property, 0, len(s.state.properties))
	for _, p := range s.state.properties {
		if filter.State != nil && p.StateAt(asOf) != *filter.State {
			continue
		}
		if filter.InvestmentType != nil && p.InvestmentType != *filter.InvestmentType {
			continue
		}
		if filter.OwnerID != nil && p.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.Location), needle) {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) PropertyCount() (int64, error) {
	defer s.lock()()
	return int64(len(s.state.properties)), nil
}

/* ---- Holdings ---- */

func (s *MemoryStore) GetHolding(propertyID uint64, investorID uuid.UUID) (*models.Holding, error) {
	defer s.lock()()

	h, ok := s.state.holdings[holdingKey{propertyID, investorID}]
	if !ok {
		return nil, ErrNoHolding
	}
	return &h, nil
}

func (s *MemoryStore) SaveHolding(h *models.Holding) error {
	defer s.lock()()

	key := holdingKey{h.PropertyID, h.InvestorID}
	now := time.Now()
	if _, ok := s.state.holdings[key]; !ok {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	s.state.holdings[key] = *h
	return nil
}

func (s *MemoryStore) ListInvestorHoldings(investorID uuid.UUID) ([]models.Holding, error) {
	defer s.lock()()

	var out []models.Holding
	for k, h := range s.state.holdings {
		if k.investorID == investorID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyID < out[j].PropertyID })
	return out, nil
}

func (s *MemoryStore) ListPropertyHoldings(propertyID uint64) ([]models.Holding, error) {
	defer s.lock()()

	var out []models.Holding
	for k, h := range s.state.holdings {
		if k.propertyID == propertyID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InvestorID.String() < out[j].InvestorID.String()
	})
	return out, nil
}

/* ---- Distributions and claims ---- */

func (s *MemoryStore) NextDistributionSeq(propertyID uint64) (uint64, error) {
	defer s.lock()()

	var next uint64
	for k := range s.state.distributions {
		if k.propertyID == propertyID && k.seq+1 > next {
			next = k.seq + 1
		}
	}
	return next, nil
}

func (s *MemoryStore) CreateDistribution(d *models.Distribution) error {
	defer s.lock()()

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	s.state.distributions[distributionKey{d.PropertyID, d.Seq}] = *d
	return nil
}

func (s *MemoryStore) GetDistribution(propertyID, seq uint64) (*models.Distribution, error) {
	defer s.lock()()

	d, ok := s.state.distributions[distributionKey{propertyID, seq}]
	if !ok {
		return nil, ErrDistributionNotFound
	}
	return &d, nil
}

func (s *MemoryStore) GetDistributionForUpdate(propertyID, seq uint64) (*models.Distribution, error) {
	return s.GetDistribution(propertyID, seq)
}

func (s *MemoryStore) SaveDistribution(d *models.Distribution) error {
	defer s.lock()()

	key := distributionKey{d.PropertyID, d.Seq}
	if _, ok := s.state.distributions[key]; !ok {
		return ErrDistributionNotFound
	}
	d.UpdatedAt = time.Now()
	s.state.distributions[key] = *d
	return nil
}

func (s *MemoryStore) ListDistributions(propertyID uint64) ([]models.Distribution, error) {
	defer s.lock()()

	var out []models.Distribution
	for k, d := range s.state.distributions {
		if k.propertyID == propertyID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *MemoryStore) HasClaim(propertyID, seq uint64, investorID uuid.UUID) (bool, error) {
	defer s.lock()()

	_, ok := s.state.claims[claimKey{propertyID, seq, investorID}]
	return ok, nil
}

func (s *MemoryStore) CreateClaim(c *models.RevenueClaim) error {
	defer s.lock()()

	key := claimKey{c.PropertyID, c.DistributionSeq, c.InvestorID}
	if _, ok := s.state.claims[key]; ok {
		return ErrAlreadyClaimed
	}
	c.CreatedAt = time.Now()
	s.state.claims[key] = *c
	return nil
}

func (s *MemoryStore) ListClaims(propertyID, seq uint64) ([]models.RevenueClaim, error) {
	defer s.lock()()

	var out []models.RevenueClaim
	for k, c := range s.state.claims {
		if k.propertyID == propertyID && k.seq == seq {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListInvestorClaims(investorID uuid.UUID) ([]models.RevenueClaim, error) {
	defer s.lock()()

	var out []models.RevenueClaim
	for k, c := range s.state.claims {
		if k.investorID == investorID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

/* ---- Events ---- */

func (s *MemoryStore) AppendEvent(e *models.LedgerEvent) error {
	defer s.lock()()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.state.events = append(s.state.events, *e)
	return nil
}

func (s *MemoryStore) LastEvent(propertyID uint64) (*models.LedgerEvent, error) {
	defer s.lock()()

	for i := len(s.state.events) - 1; i >= 0; i-- {
		if s.state.events[i].PropertyID == propertyID {
			e := s.state.events[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListEvents(propertyID uint64, limit int) ([]models.LedgerEvent, error) {
	defer s.lock()()

	var out []models.LedgerEvent
	for i := len(s.state.events) - 1; i >= 0; i-- {
		if s.state.events[i].PropertyID == propertyID {
			out = append(out, s.state.events[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
