package support

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/skillsdiff/supportbot/core/logger"
	"github.com/skillsdiff/supportbot/dialog"
	"github.com/skillsdiff/supportbot/journal"
)

// ClaimStatus reports how a claim attempt resolved.
type ClaimStatus int

const (
	// ClaimOK means the dialog was created and both sides were notified.
	ClaimOK ClaimStatus = iota
	// ClaimAdminBusy means the claiming admin already holds a dialog.
	ClaimAdminBusy
	// ClaimUserBusy means another admin already holds this user.
	ClaimUserBusy
	// ClaimRaceLost means the atomic create lost to a concurrent claim.
	ClaimRaceLost
	// ClaimNotifyFailed means the dialog was created but a notification
	// failed and the dialog was rolled back.
	ClaimNotifyFailed
)

// RelayOutcome reports what happened to a relayed message.
type RelayOutcome int

const (
	// RelayIgnored means the sender is not a dialog participant.
	RelayIgnored RelayOutcome = iota
	// RelayDelivered means the counterpart received the message.
	RelayDelivered
	// RelayFailed means delivery failed and the dialog was closed.
	RelayFailed
)

// Keyboards carries the reply markups the service attaches to notifications.
// Any field may be nil; the message is then sent without markup.
type Keyboards struct {
	// UserInDialog is shown to the user while paired (leave button).
	UserInDialog interface{}
	// AdminInDialog is shown to the admin while paired (close button).
	AdminInDialog interface{}
	// MainMenu restores the start keyboard after a dialog ends.
	MainMenu interface{}
	// AdminBack is shown to the admin after closing a dialog.
	AdminBack interface{}
}

// Service implements the human-handoff protocol on top of the dialog
// registry: claiming, closing, leaving and message relay.
type Service struct {
	dialogs *dialog.Manager
	msgr    Messenger
	journal journal.Recorder
	groupID int64
	kb      Keyboards
}

// NewService wires the support protocol together. A nil recorder is
// replaced with the no-op journal.
func NewService(dialogs *dialog.Manager, msgr Messenger, rec journal.Recorder, groupID int64, kb Keyboards) *Service {
	if rec == nil {
		rec = journal.Nop()
	}
	return &Service{
		dialogs: dialogs,
		msgr:    msgr,
		journal: rec,
		groupID: groupID,
		kb:      kb,
	}
}

// Dialogs exposes the underlying registry.
func (s *Service) Dialogs() *dialog.Manager { return s.dialogs }

// Claim pairs an admin with a waiting user. Checks run in a fixed order:
// admin availability, user availability, then the atomic create. After a
// successful create both sides are notified; if either notification fails
// the dialog is rolled back so the user stays claimable.
func (s *Service) Claim(ctx context.Context, adminID, userID int64) (ClaimStatus, error) {
	adminKey := dialog.CanonicalID(adminID)
	userKey := dialog.CanonicalID(userID)

	if s.dialogs.IsAdminInDialog(adminKey) {
		return ClaimAdminBusy, nil
	}
	if s.dialogs.IsUserInDialog(userKey) {
		return ClaimUserBusy, nil
	}

	created, err := s.dialogs.Create(userKey, adminKey)
	if err != nil {
		return ClaimRaceLost, fmt.Errorf("support: claim: %w", err)
	}
	if !created {
		return ClaimRaceLost, nil
	}

	if err := s.send(userID, TxtAdminJoined, s.kb.UserInDialog); err != nil {
		s.rollbackClaim(ctx, userKey, adminKey, "user", err)
		return ClaimNotifyFailed, err
	}
	if err := s.send(adminID, TxtDialogStarted, s.kb.AdminInDialog); err != nil {
		s.rollbackClaim(ctx, userKey, adminKey, "admin", err)
		return ClaimNotifyFailed, err
	}

	s.record(ctx, journal.KindCreated, userKey, adminKey)
	return ClaimOK, nil
}

func (s *Service) rollbackClaim(ctx context.Context, userKey, adminKey, side string, cause error) {
	s.dialogs.Close(userKey)
	logger.Support.LogAttrs(ctx, slog.LevelWarn, "claim.rollback",
		slog.String("dialog_user", userKey),
		slog.String("dialog_admin", adminKey),
		slog.String("side", side),
		slog.String("err", cause.Error()),
	)
}

// RequestSupport broadcasts a help request to the support group. The markup
// carries the claim and decline buttons bound to this user.
func (s *Service) RequestSupport(ctx context.Context, userID int64, handle string, markup interface{}) error {
	if err := s.send(s.groupID, SupportRequestText(handle, userID), markup); err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelError, "request.broadcast_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("support: broadcast request: %w", err)
	}
	return nil
}

// CloseFor ends the dialog with the given user on behalf of an admin (the
// decline/close button under the broadcast). The registry entry is removed
// first; the user notification is best-effort after that.
func (s *Service) CloseFor(ctx context.Context, adminID, userID int64) (bool, error) {
	userKey := dialog.CanonicalID(userID)
	d, found := s.dialogs.ByUser(userKey)
	if !found {
		return false, nil
	}

	s.dialogs.Close(userKey)
	s.record(ctx, journal.KindClosedByAdmin, d.UserID, d.AdminID)
	logger.Support.LogAttrs(ctx, slog.LevelInfo, "close.by_admin",
		slog.Int64("closer", adminID),
		slog.String("dialog_user", d.UserID),
		slog.String("dialog_admin", d.AdminID),
	)

	if err := s.send(userID, TxtDialogClosed, s.kb.MainMenu); err != nil {
		return true, fmt.Errorf("support: notify closed user: %w", err)
	}
	return true, nil
}

// CloseOwn ends the dialog held by the admin (the close control phrase).
// The user is notified before the registry entry is removed; if that
// notification fails the dialog stays open, matching the button flow the
// admins already know.
func (s *Service) CloseOwn(ctx context.Context, adminID int64) (bool, error) {
	adminKey := dialog.CanonicalID(adminID)
	d, found := s.dialogs.ByAdmin(adminKey)
	if !found {
		return false, nil
	}

	userChatID, err := ParseID(d.UserID)
	if err != nil {
		return false, fmt.Errorf("support: corrupt dialog user id %q: %w", d.UserID, err)
	}

	if err := s.send(userChatID, TxtDialogFinished, s.kb.MainMenu); err != nil {
		return true, fmt.Errorf("support: notify finished user: %w", err)
	}

	s.dialogs.Close(d.UserID)
	s.record(ctx, journal.KindClosedByAdmin, d.UserID, d.AdminID)
	return true, nil
}

// Leave ends the dialog on the user's initiative. The registry entry is
// removed first so the user is immediately free; the group notice after
// that is best-effort.
func (s *Service) Leave(ctx context.Context, userID int64, handle string) (bool, error) {
	userKey := dialog.CanonicalID(userID)
	d, found := s.dialogs.ByUser(userKey)
	if !found {
		return false, nil
	}

	s.dialogs.Close(userKey)
	s.record(ctx, journal.KindClosedByUser, d.UserID, d.AdminID)

	if err := s.send(s.groupID, UserLeftText(handle), nil); err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "leave.group_notice_failed",
			slog.String("dialog_user", d.UserID),
			slog.String("err", err.Error()),
		)
	}
	return true, nil
}

// Relay forwards a message from a dialog participant to its counterpart.
// User messages are tagged with the sender handle; admin messages arrive
// unmarked, as if from the bot itself. A delivery failure is terminal for
// the dialog: it is closed at once and never retried.
func (s *Service) Relay(ctx context.Context, senderID int64, username, text string) (RelayOutcome, error) {
	senderKey := dialog.CanonicalID(senderID)
	role, d, found := s.dialogs.Participant(senderKey)
	if !found {
		return RelayIgnored, nil
	}

	var (
		targetRaw string
		payload   string
	)
	switch role {
	case dialog.RoleUser:
		targetRaw = d.AdminID
		payload = RelayTag(username, senderKey) + text
	case dialog.RoleAdmin:
		targetRaw = d.UserID
		payload = text
	default:
		return RelayIgnored, nil
	}

	target, err := ParseID(targetRaw)
	if err != nil {
		return RelayIgnored, fmt.Errorf("support: corrupt dialog participant id %q: %w", targetRaw, err)
	}

	if err := s.send(target, payload, nil); err != nil {
		// The dialog is keyed by its user regardless of who hit the error.
		s.dialogs.Close(d.UserID)
		s.record(ctx, journal.KindRelayFailed, d.UserID, d.AdminID)
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "relay.failed",
			slog.String("dialog_user", d.UserID),
			slog.String("dialog_admin", d.AdminID),
			slog.String("role", role),
			slog.String("err", err.Error()),
		)
		return RelayFailed, err
	}

	return RelayDelivered, nil
}

// RecordStale journals dialogs evicted by the staleness sweeper.
func (s *Service) RecordStale(removed []dialog.Dialog) {
	ctx := context.Background()
	for _, d := range removed {
		s.record(ctx, journal.KindStale, d.UserID, d.AdminID)
	}
}

func (s *Service) send(chatID int64, text string, markup interface{}) error {
	if markup != nil {
		return s.msgr.Send(chatID, text, markup)
	}
	return s.msgr.Send(chatID, text)
}

func (s *Service) record(ctx context.Context, kind, userKey, adminKey string) {
	if err := s.journal.Record(ctx, journal.NewEvent(kind, userKey, adminKey)); err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "journal.record_failed",
			slog.String("kind", kind),
			slog.String("err", err.Error()),
		)
	}
}
