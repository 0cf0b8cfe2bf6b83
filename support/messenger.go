package support

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// Messenger sends outbound messages to a chat by numeric ID. Dialog-critical
// sends go through it synchronously so that a delivery failure is observed by
// the caller, not swallowed by a retry queue.
type Messenger interface {
	Send(chatID int64, what interface{}, opts ...interface{}) error
}

type botMessenger struct {
	bot *tele.Bot
}

// NewBotMessenger adapts a telebot instance to the Messenger port.
func NewBotMessenger(bot *tele.Bot) Messenger {
	return &botMessenger{bot: bot}
}

func (m *botMessenger) Send(chatID int64, what interface{}, opts ...interface{}) error {
	_, err := m.bot.Send(tele.ChatID(chatID), what, opts...)
	return err
}

// ParseID converts a canonical dialog participant ID back to a chat ID.
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
