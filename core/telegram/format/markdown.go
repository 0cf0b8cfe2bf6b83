package format

import "strings"

const mdV2Specials = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 escapes the MarkdownV2 special characters in text so that
// user-provided values (handles, free-form answers) can be embedded safely.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(mdV2Specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
