// Package journal records dialog lifecycle events for later auditing.
// Only lifecycle facts are stored; relayed message bodies never reach
// the journal.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event kinds written by the support service and the staleness sweeper.
const (
	KindCreated       = "created"
	KindClosedByAdmin = "closed_by_admin"
	KindClosedByUser  = "closed_by_user"
	KindStale         = "stale"
	KindRelayFailed   = "relay_failed"
)

// Event is a single dialog lifecycle fact.
type Event struct {
	ID      uuid.UUID `db:"id"`
	Kind    string    `db:"kind"`
	UserID  string    `db:"user_id"`
	AdminID string    `db:"admin_id"`
	At      time.Time `db:"created_at"`
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(kind, userID, adminID string) Event {
	return Event{
		ID:      uuid.New(),
		Kind:    kind,
		UserID:  userID,
		AdminID: adminID,
		At:      time.Now().UTC(),
	}
}

// Recorder persists dialog lifecycle events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }

// Nop returns a recorder that discards everything. Used when the journal
// is disabled in configuration.
func Nop() Recorder { return nopRecorder{} }
