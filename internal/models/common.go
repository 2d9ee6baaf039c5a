// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeAdmin    UserType = "admin" // platform owner, authorized to list properties
	UserTypeInvestor UserType = "investor"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type InvestmentType string

const (
	InvestmentTypeRental       InvestmentType = "rental"
	InvestmentTypeAppreciation InvestmentType = "appreciation"
	InvestmentTypeBoth         InvestmentType = "both"
)

func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentTypeRental, InvestmentTypeAppreciation, InvestmentTypeBoth:
		return true
	}
	return false
}

// PropertyState is never stored; it is derived from tokens sold and the
// funding deadline at read time.
type PropertyState string

const (
	PropertyStateFunding PropertyState = "funding"
	PropertyStateFunded  PropertyState = "funded"
	PropertyStateExpired PropertyState = "expired"
)

type EventType string

const (
	EventPropertyListed     EventType = "PropertyListed"
	EventTokensPurchased    EventType = "TokensPurchased"
	EventRevenueDistributed EventType = "RevenueDistributed"
	EventRevenueClaimed     EventType = "RevenueClaimed"
)
