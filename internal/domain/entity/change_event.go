package entity

import "github.com/google/uuid"

// ChangeType is the kind of row change carried by a ChangeEvent.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is a row-level change notification published on a table channel.
type ChangeEvent struct {
	Table    string      `json:"table"`
	Type     ChangeType  `json:"type"`
	RecordID string      `json:"record_id"`
	Record   interface{} `json:"record,omitempty"`
	// Audience restricts delivery to these users. Empty means public.
	Audience []uuid.UUID `json:"audience,omitempty"`
}

// VisibleTo reports whether userID may receive the event.
func (e ChangeEvent) VisibleTo(userID uuid.UUID) bool {
	if len(e.Audience) == 0 {
		return true
	}
	for _, id := range e.Audience {
		if id == userID {
			return true
		}
	}
	return false
}

// Tables that clients may subscribe to.
var RealtimeTables = map[string]bool{
	"appointments":    true,
	"consultations":   true,
	"notifications":   true,
	"messages":        true,
	"community_posts": true,
}
