package dialog

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/skillsdiff/supportbot/core/logger"
)

// Manager owns the registry of active dialogs keyed by user ID. All methods
// are safe for concurrent use; Create is the atomic claim arbiter for both
// sides of the pairing, so racing claims for one user, or by one admin for
// several users, observe exactly one winner.
type Manager struct {
	mu      sync.Mutex
	dialogs map[string]Dialog

	// now is swappable in tests.
	now func() time.Time
}

// NewManager returns an empty dialog registry.
func NewManager() *Manager {
	return &Manager{
		dialogs: make(map[string]Dialog),
		now:     time.Now,
	}
}

// Create opens a dialog between userID and adminID. It returns false when the
// user already has an active dialog or the admin is already paired with any
// user, and ErrInvalidID when either identifier is malformed. Validation runs
// before the existence checks, so a bad admin ID never half-registers a
// dialog. Both conflict checks share one critical section with the insert, so
// concurrent claims cannot give a user two admins or an admin two users.
func (m *Manager) Create(userID, adminID string) (bool, error) {
	if !ValidID(userID) || !ValidID(adminID) {
		return false, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.dialogs[userID]; exists {
		return false, nil
	}
	for _, d := range m.dialogs {
		if d.AdminID == adminID {
			return false, nil
		}
	}

	d := Dialog{
		UserID:    userID,
		AdminID:   adminID,
		Status:    StatusOpen,
		StartedAt: m.now(),
	}
	m.dialogs[userID] = d

	logger.Dialog.LogAttrs(context.Background(), slog.LevelInfo, "dialog.created",
		slog.String("dialog_user", userID),
		slog.String("dialog_admin", adminID),
		slog.Int("dialogs", len(m.dialogs)),
	)
	return true, nil
}

// IsUserInDialog reports whether the user currently has an open dialog.
func (m *Manager) IsUserInDialog(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.dialogs[userID]
	return ok
}

// IsAdminInDialog reports whether the admin is currently paired with any user.
func (m *Manager) IsAdminInDialog(adminID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dialogs {
		if d.AdminID == adminID {
			return true
		}
	}
	return false
}

// ByUser returns the dialog owned by userID.
func (m *Manager) ByUser(userID string) (Dialog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dialogs[userID]
	return d, ok
}

// ByAdmin returns the dialog the admin participates in.
func (m *Manager) ByAdmin(adminID string) (Dialog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dialogs {
		if d.AdminID == adminID {
			return d, true
		}
	}
	return Dialog{}, false
}

// Participant resolves an arbitrary ID to its dialog role. The user side is
// checked first, so an ID present on both sides resolves as a user.
func (m *Manager) Participant(id string) (string, Dialog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[id]; ok {
		return RoleUser, d, true
	}
	for _, d := range m.dialogs {
		if d.AdminID == id {
			return RoleAdmin, d, true
		}
	}
	return "", Dialog{}, false
}

// Close removes the dialog owned by userID and reports whether one existed.
func (m *Manager) Close(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dialogs[userID]
	if !ok {
		return false
	}
	delete(m.dialogs, userID)

	logger.Dialog.LogAttrs(context.Background(), slog.LevelInfo, "dialog.closed",
		slog.String("dialog_user", d.UserID),
		slog.String("dialog_admin", d.AdminID),
		slog.Int("dialogs", len(m.dialogs)),
	)
	return true
}

// Count returns the number of open dialogs.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dialogs)
}

// CleanupStale removes every dialog older than timeout and returns the
// removed dialogs. Participants are not notified; the stale pair simply
// becomes claimable again.
func (m *Manager) CleanupStale(timeout time.Duration) []Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var removed []Dialog
	for key, d := range m.dialogs {
		if now.Sub(d.StartedAt) > timeout {
			delete(m.dialogs, key)
			removed = append(removed, d)
		}
	}

	if len(removed) > 0 {
		logger.Dialog.LogAttrs(context.Background(), slog.LevelInfo, "dialog.cleanup",
			slog.Int("removed", len(removed)),
			slog.Int("dialogs", len(m.dialogs)),
			slog.Duration("timeout", timeout),
		)
	}
	return removed
}
