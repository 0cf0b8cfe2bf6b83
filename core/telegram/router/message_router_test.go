package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/skillsdiff/supportbot/core/telegram"
	"github.com/skillsdiff/supportbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type stubFSM struct {
	active  bool
	handled int
}

func (s *stubFSM) InProgress(int64) bool { return s.active }

func (s *stubFSM) ManagerHandler(tele.Context) error {
	s.handled++
	return nil
}

// fakeCtx stubs the slice of tele.Context the text router and its middleware
// touch.
type fakeCtx struct {
	tele.Context
	text  string
	store map[string]interface{}
}

func newFakeCtx(text string) *fakeCtx {
	return &fakeCtx{text: text, store: map[string]interface{}{}}
}

func (f *fakeCtx) Update() tele.Update          { return tele.Update{Message: &tele.Message{Text: f.text}} }
func (f *fakeCtx) Sender() *tele.User           { return &tele.User{ID: 100, Username: "someone"} }
func (f *fakeCtx) Chat() *tele.Chat             { return &tele.Chat{ID: 100, Type: tele.ChatPrivate} }
func (f *fakeCtx) Text() string                 { return f.text }
func (f *fakeCtx) Set(k string, v interface{})  { f.store[k] = v }
func (f *fakeCtx) Get(k string) interface{}     { return f.store[k] }
func (f *fakeCtx) Send(interface{}, ...interface{}) error { return nil }

type recorder struct {
	buttons  int
	commands int
	fallback int
}

func routerFixture(fsm *stubFSM) (*recorder, tele.HandlerFunc) {
	rec := &recorder{}
	reg := tg.NewRegistry()
	reg.RegisterButton("Закрыть диалог", func(tele.Context) error {
		rec.buttons++
		return nil
	})
	reg.RegisterCommand("/start", commands.Command{
		Handler: func(tele.Context) error {
			rec.commands++
			return nil
		},
		Description: "start",
	})
	reg.SetTextFallback(func(tele.Context) error {
		rec.fallback++
		return nil
	})

	routes := TextRoutes(fsm, reg, TextOptions{})
	for _, r := range routes {
		if r.Endpoint == tele.OnText {
			return rec, r.Handler
		}
	}
	return rec, nil
}

func TestTextRouteControlPhraseNeverFallsThrough(t *testing.T) {
	rec, handler := routerFixture(&stubFSM{})
	require.NotNil(t, handler)

	require.NoError(t, handler(newFakeCtx("Закрыть диалог")))
	assert.Equal(t, 1, rec.buttons)
	assert.Equal(t, 0, rec.fallback, "control phrase must not reach the relay fallback")
}

func TestTextRouteCommandBeforeFallback(t *testing.T) {
	rec, handler := routerFixture(&stubFSM{})
	require.NotNil(t, handler)

	require.NoError(t, handler(newFakeCtx("/start")))
	assert.Equal(t, 1, rec.commands)
	assert.Equal(t, 0, rec.fallback)
}

func TestTextRoutePlainWordIsNotACommand(t *testing.T) {
	rec, handler := routerFixture(&stubFSM{})
	require.NotNil(t, handler)

	// "start" without the slash is dialog content, not a command.
	require.NoError(t, handler(newFakeCtx("start")))
	assert.Equal(t, 0, rec.commands)
	assert.Equal(t, 1, rec.fallback)
}

func TestTextRouteFallbackGetsPlainText(t *testing.T) {
	rec, handler := routerFixture(&stubFSM{})
	require.NotNil(t, handler)

	require.NoError(t, handler(newFakeCtx("обычное сообщение")))
	assert.Equal(t, 0, rec.buttons)
	assert.Equal(t, 1, rec.fallback)
}

func TestTextRouteSessionWinsOverButtons(t *testing.T) {
	fsm := &stubFSM{active: true}
	rec, handler := routerFixture(fsm)
	require.NotNil(t, handler)

	require.NoError(t, handler(newFakeCtx("Закрыть диалог")))
	assert.Equal(t, 1, fsm.handled)
	assert.Equal(t, 0, rec.buttons)
	assert.Equal(t, 0, rec.fallback)
}
