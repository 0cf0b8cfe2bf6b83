package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/skillsdiff/supportbot/core/telegram/keyboard"
	"github.com/skillsdiff/supportbot/faq"
	"github.com/skillsdiff/supportbot/intake"
	"github.com/skillsdiff/supportbot/support"
)

// Callback keys used by inline menus. The claim and decline keys carry the
// target user ID as payload.
const (
	cbStartConv   = "start-conv"
	cbCancel      = "cancel"
	cbAnswer      = "answer"
	cbClose       = "close"
	cbAdminSend   = "admin_sendfile"
	cbAdminCancel = "admin_cancel"
)

const (
	txtGreeting = "Привет\\! Я бот [SkillsDiff](https://example.com)\nВыбери что тебя интересует ниже 👇"
	txtWentBack = "Вы вернулись назад"
	txtAnything = "Чем могу помочь еще?"
	txtAdmin    = "🛠 Админ-панель"
	txtNoAccess = "⛔ У вас нет доступа."
)

func startMenu() *tele.ReplyMarkup {
	return keyboard.OneTimeReplyButtons(
		[]string{faq.BtnAsk},
		[]string{intake.BtnPaid},
	)
}

func gameMenu() *tele.ReplyMarkup {
	labels := make([]string, 0, 2)
	for _, g := range intake.Games() {
		labels = append(labels, g.Label)
	}
	return keyboard.OneTimeReplyButtons(labels, []string{intake.BtnBack})
}

func leaveMenu() *tele.ReplyMarkup {
	return keyboard.OneTimeReplyButtons([]string{support.BtnLeaveDialog})
}

func closeMenu() *tele.ReplyMarkup {
	return keyboard.OneTimeReplyButtons([]string{support.BtnCloseDialog})
}

func backMenu() *tele.ReplyMarkup {
	return keyboard.OneTimeReplyButtons([]string{support.BtnBack})
}

func faqMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{faq.BtnNotFound, support.BtnBack})
}

func faqInline() *tele.ReplyMarkup {
	answers := faq.Answers()
	var rows [][]keyboard.InlineBtn
	var row []keyboard.InlineBtn
	for _, a := range answers {
		row = append(row, keyboard.InlineBtn{Text: a.Label, Unique: a.Key})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return keyboard.InlineButtonsRows(rows...)
}

func escalateInline() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Да", Unique: cbStartConv},
		{Text: "Нет", Unique: cbCancel},
	})
}

func adminMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "📤 Отправить файл пользователю", Unique: cbAdminSend},
		{Text: "❌ Отменить отправку", Unique: cbAdminCancel},
	})
}

// requestMarkup builds the claim/decline buttons attached to a support
// request broadcast. The user ID rides in the callback payload.
func requestMarkup(userID string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: support.TxtButtonAnswer, Unique: cbAnswer, Data: userID},
		{Text: support.TxtButtonCloseShort, Unique: cbClose, Data: userID},
	})
}
