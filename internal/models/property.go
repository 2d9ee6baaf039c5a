// internal/models/property.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Property is one tokenized real-estate asset. IDs are assigned by the
// ledger in listing order starting at 1 and are never reused, so the
// platform property counter is always lastID.
type Property struct {
	ID              uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID         uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name            string         `json:"name" gorm:"size:255;not null"`
	Location        string         `json:"location" gorm:"size:255;not null"`
	DocumentHash    string         `json:"document_hash" gorm:"size:128;not null"`
	Images          pq.StringArray `json:"images" gorm:"type:text[]"`
	TotalValue      int64          `json:"total_value" gorm:"not null"`      // smallest currency unit
	TotalTokens     int64          `json:"total_tokens" gorm:"not null"`     // fixed supply, immutable
	TokensSold      int64          `json:"tokens_sold" gorm:"not null;default:0"`
	MinInvestment   int64          `json:"min_investment" gorm:"not null"`
	ExpectedROI     int64          `json:"expected_roi" gorm:"not null"` // basis points, informational only
	InvestmentType  InvestmentType `json:"investment_type" gorm:"type:varchar(20);not null"`
	FundingDeadline time.Time      `json:"funding_deadline" gorm:"not null;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Relationships
	Owner         *User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Holdings      []Holding      `json:"holdings,omitempty" gorm:"foreignKey:PropertyID"`
	Distributions []Distribution `json:"distributions,omitempty" gorm:"foreignKey:PropertyID"`
}

// PricePerToken returns TotalValue / TotalTokens. Listing rejects
// supplies that do not divide the valuation evenly, so there is never a
// remainder to account for.
func (p *Property) PricePerToken() int64 {
	return p.TotalValue / p.TotalTokens
}

// StateAt derives the funding state at the given instant. Funded wins
// over Expired: a fully sold property stays Funded even after the
// deadline passes.
func (p *Property) StateAt(now time.Time) PropertyState {
	if p.TokensSold >= p.TotalTokens {
		return PropertyStateFunded
	}
	if now.After(p.FundingDeadline) {
		return PropertyStateExpired
	}
	return PropertyStateFunding
}

func (p *Property) RemainingTokens() int64 {
	return p.TotalTokens - p.TokensSold
}

// Holding is one investor's token balance in one property. It is
// created on first purchase and only ever incremented; the core has no
// secondary transfers.
type Holding struct {
	PropertyID  uint64    `json:"property_id" gorm:"primaryKey;autoIncrement:false"`
	InvestorID  uuid.UUID `json:"investor_id" gorm:"type:uuid;primaryKey"`
	TokenAmount int64     `json:"token_amount" gorm:"not null"`
	Invested    int64     `json:"invested" gorm:"not null"` // total currency paid in
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Investor *User     `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
}

// Distribution is a single revenue payout event for a property. Seq is
// 0-based and unique per property. SnapshotTokens freezes the pro-rata
// denominator at creation time so later state changes can never dilute
// a past payout.
type Distribution struct {
	PropertyID     uint64    `json:"property_id" gorm:"primaryKey;autoIncrement:false"`
	Seq            uint64    `json:"seq" gorm:"primaryKey;autoIncrement:false"`
	TotalAmount    int64     `json:"total_amount" gorm:"not null"`
	SnapshotTokens int64     `json:"snapshot_tokens" gorm:"not null"`
	PaidOut        int64     `json:"paid_out" gorm:"not null;default:0"` // running sum of claimed payouts
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Property *Property      `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Claims   []RevenueClaim `json:"claims,omitempty" gorm:"foreignKey:PropertyID,DistributionSeq;references:PropertyID,Seq"`
}

// Residual is the part of TotalAmount that floor rounding keeps out of
// reach of any claimant. It is retained by the ledger.
func (d *Distribution) Residual() int64 {
	return d.TotalAmount - d.PaidOut
}

// RevenueClaim marks one investor's withdrawal from one distribution.
// The primary key makes a second claim by the same investor impossible
// at the storage layer as well as in the engine.
type RevenueClaim struct {
	PropertyID      uint64    `json:"property_id" gorm:"primaryKey;autoIncrement:false"`
	DistributionSeq uint64    `json:"distribution_seq" gorm:"primaryKey;autoIncrement:false"`
	InvestorID      uuid.UUID `json:"investor_id" gorm:"type:uuid;primaryKey"`
	Amount          int64     `json:"amount" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`

	Investor *User `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
}
