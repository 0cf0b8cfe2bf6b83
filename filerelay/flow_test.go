package filerelay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsdiff/supportbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const testGroupID int64 = -100500

type sentItem struct {
	chatID int64
	what   interface{}
}

type fakeMessenger struct {
	sent    []sentItem
	failFor map[int64]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failFor: map[int64]error{}}
}

func (f *fakeMessenger) Send(chatID int64, what interface{}, _ ...interface{}) error {
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.sent = append(f.sent, sentItem{chatID: chatID, what: what})
	return nil
}

func (f *fakeMessenger) itemsFor(chatID int64) []interface{} {
	var out []interface{}
	for _, s := range f.sent {
		if s.chatID == chatID {
			out = append(out, s.what)
		}
	}
	return out
}

type fakeCtx struct {
	tele.Context
	sender *tele.User
	text   string
	msg    *tele.Message
	store  map[string]interface{}
	sent   []string
}

func newFakeCtx(sender *tele.User) *fakeCtx {
	return &fakeCtx{sender: sender, store: map[string]interface{}{}}
}

func (f *fakeCtx) Update() tele.Update     { return tele.Update{} }
func (f *fakeCtx) Sender() *tele.User      { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat        { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeCtx) Text() string            { return f.text }
func (f *fakeCtx) Message() *tele.Message  { return f.msg }
func (f *fakeCtx) Set(k string, v interface{}) { f.store[k] = v }
func (f *fakeCtx) Get(k string) interface{}    { return f.store[k] }

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func TestFileSendSession(t *testing.T) {
	states := state.NewMemoryManager()
	msgr := newFakeMessenger()
	flow := NewFlow(states, msgr, testGroupID, nil)

	admin := &tele.User{ID: 200, Username: "helper"}
	c := newFakeCtx(admin)

	require.NoError(t, flow.Begin(c))
	assert.True(t, flow.InProgress(admin.ID))
	assert.Equal(t, []string{PromptUserID}, c.sent)

	// Malformed ID keeps the session on the same step.
	c.text = "not-an-id"
	require.NoError(t, flow.handleUserID(c))
	assert.Equal(t, PromptBadID, c.sent[len(c.sent)-1])
	assert.Equal(t, StateAwaitUserID, states.GetState(admin.ID))

	c.text = "100"
	require.NoError(t, flow.handleUserID(c))
	assert.Equal(t, PromptFile, c.sent[len(c.sent)-1])
	assert.Equal(t, StateAwaitFile, states.GetState(admin.ID))

	doc := &tele.Document{FileName: "plan.pdf"}
	c.msg = &tele.Message{Document: doc}
	require.NoError(t, flow.handleFile(c))

	// User got the intro line and the document itself.
	items := msgr.itemsFor(100)
	require.Len(t, items, 2)
	assert.Equal(t, TxtFileIntro, items[0])
	assert.Equal(t, doc, items[1])

	// Group got the audit line; the session is over.
	group := msgr.itemsFor(testGroupID)
	require.Len(t, group, 1)
	assert.Equal(t, "Админ @helper отправил файл пользователю ID: 100", group[0])

	assert.False(t, flow.InProgress(admin.ID))
	assert.Equal(t, "✅ Файл отправлен пользователю ID: 100", c.sent[len(c.sent)-1])
}

func TestFileSendDeliveryFailure(t *testing.T) {
	states := state.NewMemoryManager()
	msgr := newFakeMessenger()
	msgr.failFor[100] = errors.New("forbidden")
	flow := NewFlow(states, msgr, testGroupID, nil)

	admin := &tele.User{ID: 200}
	c := newFakeCtx(admin)

	require.NoError(t, flow.Begin(c))
	c.text = "100"
	require.NoError(t, flow.handleUserID(c))

	c.msg = &tele.Message{Document: &tele.Document{}}
	require.NoError(t, flow.handleFile(c))

	assert.Equal(t, TxtSendFailed, c.sent[len(c.sent)-1])
	assert.False(t, flow.InProgress(admin.ID))
	assert.Empty(t, msgr.itemsFor(testGroupID))
}

func TestCancel(t *testing.T) {
	states := state.NewMemoryManager()
	flow := NewFlow(states, newFakeMessenger(), testGroupID, nil)

	admin := &tele.User{ID: 200}
	c := newFakeCtx(admin)

	assert.False(t, flow.Cancel(admin.ID))

	require.NoError(t, flow.Begin(c))
	assert.True(t, flow.Cancel(admin.ID))
	assert.False(t, flow.InProgress(admin.ID))
}

func TestTextWhileAwaitingFile(t *testing.T) {
	states := state.NewMemoryManager()
	flow := NewFlow(states, newFakeMessenger(), testGroupID, nil)

	admin := &tele.User{ID: 200}
	c := newFakeCtx(admin)

	require.NoError(t, flow.Begin(c))
	c.text = "100"
	require.NoError(t, flow.handleUserID(c))

	// A text message instead of a document re-prompts for the file.
	c.msg = &tele.Message{Text: "где файл?"}
	require.NoError(t, flow.handleFile(c))
	assert.Equal(t, PromptFile, c.sent[len(c.sent)-1])
	assert.Equal(t, StateAwaitFile, states.GetState(admin.ID))
}
