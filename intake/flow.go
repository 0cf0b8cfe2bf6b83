package intake

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/skillsdiff/supportbot/core/logger"
	tghelpers "github.com/skillsdiff/supportbot/core/telegram/helpers"
	"github.com/skillsdiff/supportbot/core/telegram/state"
	"github.com/skillsdiff/supportbot/support"

	tele "gopkg.in/telebot.v4"
)

// StateQuestionnaire marks a user progressing through an intake questionnaire.
const StateQuestionnaire state.State = "intake:questionnaire"

const (
	tempGame    = "intake_game"
	tempStep    = "intake_step"
	tempAnswers = "intake_answers"
)

// Flow drives a questionnaire over the FSM session manager and broadcasts
// the collected answers to the coaching group.
type Flow struct {
	states  state.Manager
	msgr    support.Messenger
	groupID int64
	// menu restores the start keyboard when the questionnaire completes.
	menu interface{}

	now func() time.Time
}

// NewFlow wires the questionnaire flow.
func NewFlow(states state.Manager, msgr support.Messenger, groupID int64, menu interface{}) *Flow {
	f := &Flow{
		states:  states,
		msgr:    msgr,
		groupID: groupID,
		menu:    menu,
		now:     time.Now,
	}
	state.RegisterHandler(StateQuestionnaire, f.handleAnswer)
	return f
}

// Start begins the questionnaire for the given game and asks the first question.
func (f *Flow) Start(c tele.Context, gameKey string) error {
	game, ok := GameByKey(gameKey)
	if !ok {
		return fmt.Errorf("intake: unknown game %q", gameKey)
	}

	userID := c.Sender().ID
	f.states.SetTemp(userID, tempGame, game.Key)
	f.states.SetTemp(userID, tempStep, int64(0))
	f.states.SetTemp(userID, tempAnswers, map[string]string{})
	f.states.SetState(userID, StateQuestionnaire)

	return c.Send(game.Questions[0].Text)
}

func (f *Flow) handleAnswer(c tele.Context) error {
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	gameKey, _ := f.states.GetTempString(userID, tempGame)
	game, ok := GameByKey(gameKey)
	if !ok {
		f.abort(userID)
		return nil
	}

	step, _ := f.states.GetTempInt64(userID, tempStep)
	if step < 0 || int(step) >= len(game.Questions) {
		f.abort(userID)
		return nil
	}

	answers := f.answers(userID)
	answers[game.Questions[step].Key] = c.Text()
	f.states.SetTemp(userID, tempAnswers, answers)

	next := step + 1
	if int(next) < len(game.Questions) {
		f.states.SetTemp(userID, tempStep, next)
		return c.Send(game.Questions[next].Text)
	}

	summary := f.summarize(c.Sender(), game, answers)
	if err := f.msgr.Send(f.groupID, summary); err != nil {
		logger.Support.LogAttrs(ctx, slog.LevelError, "intake.broadcast_failed",
			slog.String("game", game.Key),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	f.abort(userID)
	if f.menu != nil {
		return c.Send(TxtThanks, f.menu)
	}
	return c.Send(TxtThanks)
}

func (f *Flow) answers(userID int64) map[string]string {
	raw, ok := f.states.GetTemp(userID, tempAnswers)
	if ok {
		if m, cast := raw.(map[string]string); cast {
			return m
		}
	}
	return map[string]string{}
}

func (f *Flow) abort(userID int64) {
	f.states.ClearTemp(userID, tempGame)
	f.states.ClearTemp(userID, tempStep)
	f.states.ClearTemp(userID, tempAnswers)
	f.states.ClearState(userID)
}

func (f *Flow) summarize(sender *tele.User, game Game, answers map[string]string) string {
	who := sender.FirstName
	if sender.Username != "" {
		who = "@" + sender.Username
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	// Keep question order, not map order.
	sort.Slice(keys, func(i, j int) bool {
		return questionIndex(game, keys[i]) < questionIndex(game, keys[j])
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s оплатил %s\n", who, game.Label)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, answers[k])
	}
	fmt.Fprintf(&b, "Время СET: %s", f.now().Format("15:04:05"))
	return b.String()
}

func questionIndex(game Game, key string) int {
	for i, q := range game.Questions {
		if q.Key == key {
			return i
		}
	}
	return len(game.Questions)
}
