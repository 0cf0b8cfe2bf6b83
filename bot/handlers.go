package bot

import (
	"strings"

	"log/slog"

	"github.com/skillsdiff/supportbot/core/logger"
	coretelegram "github.com/skillsdiff/supportbot/core/telegram"
	"github.com/skillsdiff/supportbot/core/telegram/callbacks"
	"github.com/skillsdiff/supportbot/core/telegram/commands"
	tghelpers "github.com/skillsdiff/supportbot/core/telegram/helpers"
	"github.com/skillsdiff/supportbot/dialog"
	"github.com/skillsdiff/supportbot/faq"
	"github.com/skillsdiff/supportbot/filerelay"
	"github.com/skillsdiff/supportbot/intake"
	"github.com/skillsdiff/supportbot/support"

	tele "gopkg.in/telebot.v4"
)

const (
	txtPrivateOnly = "Эта команда работает только в личных сообщениях с ботом."
	txtNeedHandle  = "❗ Пожалуйста, установите Username в Telegram для корректной связи.\n\n" +
		"Как это сделать:\n1. Откройте настройки Telegram\n2. Выберите 'Имя пользователя'\n3. Придумайте уникальный username"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.handleAdminPanel,
		Description: "Админ-панель",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) handleStart(c tele.Context) error {
	if c.Chat().Type != tele.ChatPrivate {
		return c.Send(txtPrivateOnly)
	}
	if c.Sender().Username == "" {
		return c.Send(txtNeedHandle)
	}
	return tghelpers.SendMDV2(c, txtGreeting, startMenu())
}

func (a *App) handleAdminPanel(c tele.Context) error {
	return c.Send(txtAdmin, adminMenu())
}

func (a *App) registerButtons(reg *coretelegram.Registry) {
	reg.RegisterButton(faq.BtnAsk, a.handleFAQ)
	reg.RegisterButton(faq.BtnNotFound, func(c tele.Context) error {
		return c.Send(faq.PromptEscalate, escalateInline())
	})
	reg.RegisterButton(intake.BtnPaid, func(c tele.Context) error {
		return c.Send(intake.PromptChooseGame, gameMenu())
	})
	for _, g := range intake.Games() {
		game := g
		reg.RegisterButton(game.Label, func(c tele.Context) error {
			return a.forms.Start(c, game.Key)
		})
	}
	reg.RegisterButton(support.BtnBack, func(c tele.Context) error {
		return tghelpers.SendKB(c, txtWentBack, startMenu())
	})
	reg.RegisterButton(support.BtnLeaveDialog, a.handleLeave)
	reg.RegisterButton(support.BtnCloseDialog, a.handleCloseOwn)
}

func (a *App) handleFAQ(c tele.Context) error {
	if err := c.Send(faq.ListText, faqInline(), tele.ModeMarkdownV2); err != nil {
		return err
	}
	return c.Send(faq.PromptNotFound, faqMenu())
}

func (a *App) handleLeave(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	handle := c.Sender().Username
	if handle == "" {
		handle = c.Sender().FirstName
	}

	left, err := a.svc.Leave(ctx, c.Sender().ID, handle)
	if err != nil {
		return err
	}
	if !left {
		return c.Send(support.TxtDialogNotFound)
	}
	return c.Send(support.TxtYouLeftDialog, startMenu())
}

func (a *App) handleCloseOwn(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	closed, err := a.svc.CloseOwn(ctx, c.Sender().ID)
	if !closed && err == nil {
		return c.Send(support.TxtNoActiveDialogs)
	}
	if err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "close.failed",
			slog.Int64("admin_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
		return c.Send(support.TxtCloseError)
	}
	return c.Send(support.TxtDialogShut, backMenu())
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	cbs := map[string]tele.HandlerFunc{
		cbStartConv:   a.handleStartConv,
		cbCancel:      a.handleCancelConv,
		cbAnswer:      a.handleClaim,
		cbClose:       a.handleDecline,
		cbAdminSend:   a.handleAdminSendFile,
		cbAdminCancel: a.handleAdminCancelFile,
	}
	for _, ans := range faq.Answers() {
		text := ans.Text
		cbs[ans.Key] = func(c tele.Context) error {
			return tghelpers.SendMDV2(c, text)
		}
	}

	for key, h := range cbs {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) handleStartConv(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	if err := c.Send(support.TxtAwaitHelper, leaveMenu()); err != nil {
		return err
	}
	return a.svc.RequestSupport(ctx, userID, c.Sender().Username, requestMarkup(dialog.CanonicalID(userID)))
}

func (a *App) handleCancelConv(c tele.Context) error {
	return tghelpers.SendKB(c, txtAnything, startMenu())
}

func (a *App) handleClaim(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	userID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send(support.TxtClaimRaceLost)
	}

	status, err := a.svc.Claim(ctx, c.Sender().ID, userID)
	switch status {
	case support.ClaimAdminBusy:
		return c.Send(support.TxtAdminBusy)
	case support.ClaimUserBusy:
		return c.Send(support.TxtUserBusy)
	case support.ClaimRaceLost:
		return c.Send(support.TxtClaimRaceLost)
	case support.ClaimNotifyFailed:
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "claim.notify_failed",
			slog.Int64("admin_id", c.Sender().ID),
			slog.Int64("user_id", userID),
			slog.String("err", errText(err)),
		)
		return c.Send(support.TxtClaimFailed)
	}

	// Strip the claim buttons from the broadcast so the request cannot be
	// claimed twice from the group message.
	if editErr := c.Edit(support.DialogStartedText(dialog.CanonicalID(userID), c.Sender().Username)); editErr != nil {
		logger.Support.LogAttrs(ctx, slog.LevelDebug, "claim.edit_failed",
			slog.String("err", editErr.Error()),
		)
	}
	return nil
}

func (a *App) handleDecline(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	userID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send(support.TxtDialogNotFound)
	}

	closed, err := a.svc.CloseFor(ctx, c.Sender().ID, userID)
	if !closed {
		return c.Send(support.TxtDialogNotFound)
	}
	if err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelWarn, "decline.notify_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return c.Send(support.TxtCloseError)
	}

	if err := c.Send(support.TxtYouClosedDialog); err != nil {
		return err
	}
	if editErr := c.Edit(support.DialogClosedText(dialog.CanonicalID(userID), c.Sender().Username)); editErr != nil {
		logger.Support.LogAttrs(ctx, slog.LevelDebug, "decline.edit_failed",
			slog.String("err", editErr.Error()),
		)
	}
	return nil
}

func (a *App) handleAdminSendFile(c tele.Context) error {
	if !a.cfg.Support.IsAdmin(c.Sender().ID) {
		return c.Send(txtNoAccess)
	}
	return a.files.Begin(c)
}

func (a *App) handleAdminCancelFile(c tele.Context) error {
	if !a.cfg.Support.IsAdmin(c.Sender().ID) {
		return c.Send(txtNoAccess)
	}
	if a.files.Cancel(c.Sender().ID) {
		return c.Send(filerelay.TxtCancelled)
	}
	return c.Send(filerelay.TxtNoSession)
}

// handleRelay is the text fallback: anything that is not a control phrase,
// a command or an FSM answer is treated as dialog traffic.
func (a *App) handleRelay(c tele.Context) error {
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	outcome, err := a.svc.Relay(ctx, c.Sender().ID, c.Sender().Username, text)
	if outcome == support.RelayFailed {
		// Delivery failure already closed the dialog; tell the sender.
		return c.Send(support.TxtRelayFailed)
	}
	return err
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
