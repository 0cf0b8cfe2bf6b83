package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsdiff/supportbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const testGroupID int64 = -100500

type groupMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent []groupMessage
}

func (f *fakeMessenger) Send(chatID int64, what interface{}, _ ...interface{}) error {
	text, _ := what.(string)
	f.sent = append(f.sent, groupMessage{chatID: chatID, text: text})
	return nil
}

// fakeCtx stubs the small slice of tele.Context the flow touches.
type fakeCtx struct {
	tele.Context
	sender *tele.User
	text   string
	store  map[string]interface{}
	sent   []string
}

func newFakeCtx(sender *tele.User) *fakeCtx {
	return &fakeCtx{sender: sender, store: map[string]interface{}{}}
}

func (f *fakeCtx) Update() tele.Update { return tele.Update{} }
func (f *fakeCtx) Sender() *tele.User  { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat    { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeCtx) Text() string        { return f.text }

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeCtx) Set(k string, v interface{}) { f.store[k] = v }
func (f *fakeCtx) Get(k string) interface{}    { return f.store[k] }

func TestQuestionnaireRunsToCompletion(t *testing.T) {
	states := state.NewMemoryManager()
	msgr := &fakeMessenger{}
	flow := NewFlow(states, msgr, testGroupID, nil)
	flow.now = func() time.Time {
		return time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	}

	user := &tele.User{ID: 100, Username: "player"}
	c := newFakeCtx(user)

	require.NoError(t, flow.Start(c, "valorant"))
	assert.True(t, states.InProgress(user.ID))
	require.Equal(t, []string{"Сколько тебе лет?"}, c.sent)

	answers := []string{"19", "Immortal", "Jett, Sova", "выйти в радиант"}
	for _, a := range answers {
		c.text = a
		require.NoError(t, flow.handleAnswer(c))
	}

	// Session is done and the thank-you message closes it out.
	assert.False(t, states.InProgress(user.ID))
	assert.Equal(t, TxtThanks, c.sent[len(c.sent)-1])

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, testGroupID, msgr.sent[0].chatID)
	assert.Equal(t,
		"@player оплатил Valorant\n"+
			"age: 19\n"+
			"rank: Immortal\n"+
			"agents: Jett, Sova\n"+
			"goals: выйти в радиант\n"+
			"Время СET: 15:04:05",
		msgr.sent[0].text)
}

func TestQuestionnaireUsesFirstNameWithoutUsername(t *testing.T) {
	states := state.NewMemoryManager()
	msgr := &fakeMessenger{}
	flow := NewFlow(states, msgr, testGroupID, nil)

	user := &tele.User{ID: 100, FirstName: "Иван"}
	c := newFakeCtx(user)

	require.NoError(t, flow.Start(c, "dota"))
	for _, a := range []string{"22", "5400", "мид, инвокер", "поднять ммр"} {
		c.text = a
		require.NoError(t, flow.handleAnswer(c))
	}

	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0].text, "Иван оплатил Dota 2")
	assert.Contains(t, msgr.sent[0].text, "mmr: 5400")
}

func TestStartUnknownGame(t *testing.T) {
	flow := NewFlow(state.NewMemoryManager(), &fakeMessenger{}, testGroupID, nil)
	c := newFakeCtx(&tele.User{ID: 100})

	err := flow.Start(c, "chess")
	assert.Error(t, err)
	assert.Empty(t, c.sent)
}

func TestGameLookup(t *testing.T) {
	g, ok := GameByLabel("Valorant")
	require.True(t, ok)
	assert.Equal(t, "valorant", g.Key)

	_, ok = GameByLabel("Chess")
	assert.False(t, ok)

	g, ok = GameByKey("dota")
	require.True(t, ok)
	assert.Len(t, g.Questions, 4)
}
