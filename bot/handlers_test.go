package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsdiff/supportbot/support"

	tele "gopkg.in/telebot.v4"
)

type fakeMessenger struct {
	sent    []string
	failFor map[int64]error
}

func (f *fakeMessenger) Send(chatID int64, what interface{}, _ ...interface{}) error {
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

type fakeCtx struct {
	tele.Context
	sender *tele.User
	text   string
	store  map[string]interface{}
	sent   []string
}

func newFakeCtx(sender *tele.User, text string) *fakeCtx {
	return &fakeCtx{sender: sender, text: text, store: map[string]interface{}{}}
}

func (f *fakeCtx) Update() tele.Update         { return tele.Update{Message: &tele.Message{Text: f.text}} }
func (f *fakeCtx) Sender() *tele.User          { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat            { return &tele.Chat{ID: f.sender.ID, Type: tele.ChatPrivate} }
func (f *fakeCtx) Text() string                { return f.text }
func (f *fakeCtx) Set(k string, v interface{}) { f.store[k] = v }
func (f *fakeCtx) Get(k string) interface{}    { return f.store[k] }

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func TestRelayFallbackIgnoresSlashText(t *testing.T) {
	a := testApp()
	// a.svc is nil until the bot starts; slash text must bail out before it.
	c := newFakeCtx(&tele.User{ID: 100, Username: "someone"}, "/unknown")
	require.NoError(t, a.handleRelay(c))
	assert.Empty(t, c.sent)
}

func TestRelayFallbackReportsDeliveryFailure(t *testing.T) {
	a := testApp()
	msgr := &fakeMessenger{failFor: map[int64]error{200: errors.New("blocked")}}
	a.svc = support.NewService(a.dialogs, msgr, nil, a.cfg.Support.GroupID, support.Keyboards{})

	ok, err := a.dialogs.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	c := newFakeCtx(&tele.User{ID: 100, Username: "someone"}, "привет")
	require.NoError(t, a.handleRelay(c))

	assert.Equal(t, []string{support.TxtRelayFailed}, c.sent)
	assert.False(t, a.dialogs.IsUserInDialog("100"))
}

func TestRelayFallbackDelivers(t *testing.T) {
	a := testApp()
	msgr := &fakeMessenger{}
	a.svc = support.NewService(a.dialogs, msgr, nil, a.cfg.Support.GroupID, support.Keyboards{})

	ok, err := a.dialogs.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	c := newFakeCtx(&tele.User{ID: 100, Username: "someone"}, "привет")
	require.NoError(t, a.handleRelay(c))

	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "привет")
	assert.Empty(t, c.sent)
}
