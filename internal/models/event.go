// internal/models/event.go
package models

import (
	"github.com/google/uuid"
)

// LedgerEvent is the audit record emitted by every successful mutating
// ledger operation. The payload carries every field an external
// observer needs to rebuild the data model without re-querying. The
// event ID doubles as the receipt transaction id returned to callers.
type LedgerEvent struct {
	BaseModel
	Type       EventType `json:"type" gorm:"type:varchar(30);not null;index"`
	PropertyID uint64    `json:"property_id" gorm:"not null;index"`
	ActorID    uuid.UUID `json:"actor_id" gorm:"type:uuid;not null;index"`
	Payload    JSONB     `json:"payload" gorm:"type:jsonb"`
	Hash       string    `json:"hash" gorm:"size:64;not null"`
	PrevHash   string    `json:"prev_hash" gorm:"size:64"`
}
