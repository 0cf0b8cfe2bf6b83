// Package intake runs the post-payment questionnaires and forwards the
// answers to the coaching group.
package intake

// Reply-keyboard labels for the intake entry points.
const (
	BtnPaid = "Я оплатил услугу"
	BtnBack = "Назад"
)

const (
	PromptChooseGame = "Выбери игру"
	TxtThanks        = "Спасибо! Ваши данные отправлены тренерам."
)

// Question is a single questionnaire step.
type Question struct {
	Key  string
	Text string
}

// Game describes one questionnaire.
type Game struct {
	// Key identifies the game internally.
	Key string
	// Label is both the display name and the keyboard button text.
	Label     string
	Questions []Question
}

// Games returns the supported questionnaires in menu order.
func Games() []Game {
	return []Game{
		{
			Key:   "valorant",
			Label: "Valorant",
			Questions: []Question{
				{Key: "age", Text: "Сколько тебе лет?"},
				{Key: "rank", Text: "Какой у тебя ранг в Valorant?"},
				{Key: "agents", Text: "На каких агентах играешь?"},
				{Key: "goals", Text: "Какие цели и ожидания от тренировок?"},
			},
		},
		{
			Key:   "dota",
			Label: "Dota 2",
			Questions: []Question{
				{Key: "age", Text: "Сколько тебе лет?"},
				{Key: "mmr", Text: "Сколько у тебя ммр?"},
				{Key: "heroes", Text: "На какой позиции играешь?\nИ какие персонажи интересуют?"},
				{Key: "goals", Text: "Какие цели и ожидания от тренировок?"},
			},
		},
	}
}

// GameByKey returns the questionnaire for the given key.
func GameByKey(key string) (Game, bool) {
	for _, g := range Games() {
		if g.Key == key {
			return g, true
		}
	}
	return Game{}, false
}

// GameByLabel resolves a keyboard button press to its questionnaire.
func GameByLabel(label string) (Game, bool) {
	for _, g := range Games() {
		if g.Label == label {
			return g, true
		}
	}
	return Game{}, false
}
