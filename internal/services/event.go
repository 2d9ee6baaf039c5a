// internal/services/event.go
package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/utils"
)

// Caller identifies the authenticated principal invoking a ledger
// operation, as established by the auth middleware.
type Caller struct {
	ID   uuid.UUID
	Type models.UserType
}

// appendEvent writes a ledger event inside the caller's transaction.
// Events form a per-property hash chain: each event commits to its
// payload and to the hash of the previous event, so an external
// observer can detect tampering or gaps in the feed.
func appendEvent(store ledger.Store, eventType models.EventType, propertyID uint64, actor uuid.UUID, payload models.JSONB) (*models.LedgerEvent, error) {
	prev, err := store.LastEvent(propertyID)
	if err != nil {
		return nil, err
	}

	event := &models.LedgerEvent{
		Type:       eventType,
		PropertyID: propertyID,
		ActorID:    actor,
		Payload:    payload,
	}
	event.ID = uuid.New()
	if prev != nil {
		event.PrevHash = prev.Hash
	}
	event.Hash = eventHash(event)

	if err := store.AppendEvent(event); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event":       string(eventType),
		"property_id": propertyID,
		"actor_id":    actor.String(),
		"tx_id":       event.ID.String(),
	}).Info("Ledger event emitted")

	return event, nil
}

func eventHash(e *models.LedgerEvent) string {
	payload, _ := json.Marshal(e.Payload)
	material := fmt.Sprintf("%s|%d|%s|%s|%s", e.Type, e.PropertyID, e.ActorID, payload, e.PrevHash)
	return utils.HashString(material)
}

// Receipt is returned by every successful write operation. The
// transaction id is the id of the emitted event.
type Receipt struct {
	TransactionID uuid.UUID          `json:"transaction_id"`
	Event         *models.LedgerEvent `json:"event"`
}

func newReceipt(event *models.LedgerEvent) Receipt {
	return Receipt{TransactionID: event.ID, Event: event}
}
