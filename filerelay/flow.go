// Package filerelay lets an admin push a document to an arbitrary user by ID.
package filerelay

import (
	"fmt"
	"strings"

	"log/slog"

	"github.com/skillsdiff/supportbot/core/logger"
	tghelpers "github.com/skillsdiff/supportbot/core/telegram/helpers"
	"github.com/skillsdiff/supportbot/core/telegram/state"
	"github.com/skillsdiff/supportbot/dialog"
	"github.com/skillsdiff/supportbot/support"

	tele "gopkg.in/telebot.v4"
)

// FSM states of the admin file-send session.
const (
	StateAwaitUserID state.State = "filerelay:await_user_id"
	StateAwaitFile   state.State = "filerelay:await_file"
)

const tempTargetUser = "filerelay_target"

const (
	PromptUserID   = "Введите ID пользователя, которому нужно отправить файл:"
	PromptFile     = "Отправьте файл, который нужно передать пользователю."
	PromptBadID    = "❗ Введите корректный числовой ID."
	TxtFileIntro   = "Админ отправил тебе презентацию от тренера:"
	TxtCancelled   = "Отправка файла отменена."
	TxtNoSession   = "Сейчас нет активной отправки."
	TxtSendFailed  = "⚠️ Не удалось отправить файл. Возможно, пользователь заблокировал бота или ID некорректен."
	fileSentFormat = "✅ Файл отправлен пользователю ID: %s"
)

// GroupNotice is the best-effort audit line sent to the support group.
func GroupNotice(adminHandle, userID string) string {
	return fmt.Sprintf("Админ @%s отправил файл пользователю ID: %s", adminHandle, userID)
}

// Flow drives the two-step send-a-file session over the FSM manager.
type Flow struct {
	states  state.Manager
	msgr    support.Messenger
	groupID int64
	// adminMenu is re-shown after the session ends.
	adminMenu interface{}
}

// NewFlow wires the file relay flow and registers its FSM handlers.
func NewFlow(states state.Manager, msgr support.Messenger, groupID int64, adminMenu interface{}) *Flow {
	f := &Flow{
		states:    states,
		msgr:      msgr,
		groupID:   groupID,
		adminMenu: adminMenu,
	}
	state.RegisterHandler(StateAwaitUserID, f.handleUserID)
	state.RegisterHandler(StateAwaitFile, f.handleFile)
	return f
}

// Begin opens a send session for the admin and asks for the target user ID.
func (f *Flow) Begin(c tele.Context) error {
	f.states.SetState(c.Sender().ID, StateAwaitUserID)
	return c.Send(PromptUserID)
}

// Cancel drops the admin's session and reports whether one was active.
func (f *Flow) Cancel(adminID int64) bool {
	st := f.states.GetState(adminID)
	if st != StateAwaitUserID && st != StateAwaitFile {
		return false
	}
	f.states.ClearTemp(adminID, tempTargetUser)
	f.states.ClearState(adminID)
	return true
}

// InProgress reports whether the admin has an open send session.
func (f *Flow) InProgress(adminID int64) bool {
	st := f.states.GetState(adminID)
	return st == StateAwaitUserID || st == StateAwaitFile
}

func (f *Flow) handleUserID(c tele.Context) error {
	adminID := c.Sender().ID
	target := strings.TrimSpace(c.Text())

	if !dialog.ValidID(target) {
		return c.Send(PromptBadID)
	}

	f.states.SetTemp(adminID, tempTargetUser, target)
	f.states.SetState(adminID, StateAwaitFile)
	return c.Send(PromptFile)
}

func (f *Flow) handleFile(c tele.Context) error {
	adminID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	doc := c.Message().Document
	if doc == nil {
		// Text received while a file was expected; keep waiting.
		return c.Send(PromptFile)
	}

	target, ok := f.states.GetTempString(adminID, tempTargetUser)
	if !ok {
		f.Cancel(adminID)
		return c.Send(TxtNoSession)
	}

	targetID, err := support.ParseID(target)
	if err != nil {
		f.Cancel(adminID)
		return c.Send(PromptBadID)
	}

	if err := f.deliver(targetID, doc); err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "filerelay.send_failed",
			slog.String("target", target),
			slog.String("err", err.Error()),
		)
		f.Cancel(adminID)
		if f.adminMenu != nil {
			return c.Send(TxtSendFailed, f.adminMenu)
		}
		return c.Send(TxtSendFailed)
	}

	handle := c.Sender().Username
	if err := f.msgr.Send(f.groupID, GroupNotice(handle, target)); err != nil {
		// Audit line only; the admin flow is not interrupted.
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "filerelay.group_notice_failed",
			slog.String("err", err.Error()),
		)
	}

	f.Cancel(adminID)
	confirmation := fmt.Sprintf(fileSentFormat, target)
	if f.adminMenu != nil {
		return c.Send(confirmation, f.adminMenu)
	}
	return c.Send(confirmation)
}

func (f *Flow) deliver(targetID int64, doc *tele.Document) error {
	if err := f.msgr.Send(targetID, TxtFileIntro); err != nil {
		return err
	}
	return f.msgr.Send(targetID, doc)
}
