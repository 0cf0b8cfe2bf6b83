// Package faq holds the static question list shown before a user escalates
// to a live dialog.
package faq

import "github.com/skillsdiff/supportbot/core/telegram/format"

// Reply-keyboard labels for the FAQ entry points.
const (
	BtnAsk      = "Хочу задать вопрос"
	BtnNotFound = "Не нашел свой вопрос!"
)

// ListText is the MarkdownV2 question index.
const ListText = "*Часто задаваемые вопросы:*\n\n" +
	"1\\. Как оплатить услугу?\n" +
	"2\\. Что делать после того как оплатил?\n" +
	"3\\. Как определяется время тренировок? Можно ли перенести занятие?\n" +
	"4\\. Какие гарантии роста вы даете? Что если не будет результата?\n" +
	"5\\. Могу ли я записывать тренировку?\n" +
	"6\\. Как стать тренером?\n\n\n" +
	"Чтобы узнать ответ выберите свой вопрос ниже 👇"

// PromptNotFound nudges the user towards the escalation keyboard.
const PromptNotFound = "Не нашел свой вопрос? 👇"

// PromptEscalate asks whether to open a support dialog.
const PromptEscalate = "Хотите начать диалог с техподдержкой?"

// Answer is one FAQ entry bound to an inline callback key.
type Answer struct {
	Key   string
	Label string
	Text  string
}

// Answers returns the FAQ entries in display order. Texts are MarkdownV2;
// plain answers are escaped here so punctuation never breaks the parse mode.
func Answers() []Answer {
	return []Answer{
		{Key: "answer-1", Label: "1", Text: "Оплата происходит на нашем [сайте](https://example.com)"},
		{Key: "answer-2", Label: "2", Text: format.EscapeMarkdownV2("После оплаты вам нужно зайти в этого бота и нажать кнопку \"Я оплатил услугу\"\nЗаполнить небольшую анкету и позже свами свяжется тренер! ")},
		{Key: "answer-3", Label: "3", Text: "Время тренировок согласовывается индивидуально с тренером\\.\nПеренос занятия возможен не позднее чем за 24 часа до начала тренировки"},
		{Key: "answer-4", Label: "4", Text: format.EscapeMarkdownV2("Мы гарантируем улучшение ваших навыков при условии выполнения всех рекомендаций тренера")},
		{Key: "answer-5", Label: "5", Text: format.EscapeMarkdownV2("Да вы можете записывать тренировку в случае необходимости")},
		{Key: "answer-6", Label: "6", Text: "Если вы хотите стать тренером заполните форму на [SkillsDiff](https://www.skillsdiff.com)"},
	}
}
