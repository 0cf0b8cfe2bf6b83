// Package dialog implements the live support dialog registry. A dialog pairs
// exactly one user with exactly one admin; the registry is the single arbiter
// of who talks to whom.
package dialog

import (
	"errors"
	"strconv"
	"time"
)

// Participant roles returned by Manager.Participant.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// StatusOpen is the only status a stored dialog can have. Closed dialogs are
// removed from the registry rather than flagged.
const StatusOpen = "open"

// ErrInvalidID reports a participant identifier that is not a plain decimal
// Telegram ID.
var ErrInvalidID = errors.New("dialog: participant id must be a positive decimal number")

// Dialog is an active user/admin conversation.
type Dialog struct {
	UserID    string
	AdminID   string
	Status    string
	StartedAt time.Time
}

// Age returns how long the dialog has been open relative to now.
func (d Dialog) Age(now time.Time) time.Duration {
	return now.Sub(d.StartedAt)
}

// CanonicalID renders a Telegram numeric ID in the canonical form used as a
// registry key. All lookups must go through this so that int64 and string
// callers address the same dialog.
func CanonicalID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ValidID reports whether s is a well-formed participant identifier.
func ValidID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
