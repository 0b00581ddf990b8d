// Package dispatch renders completed questionnaires and delivers them to reviewers.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/xiaot623/anketa/internal/domain"
)

// Captions for forwarded media.
const (
	VoiceCaption = "📢 Nomzod ovozli javobi (9/22)"
	VideoCaption = "🎥 Nomzod video javobi (11/22)"
)

// RenderReport builds the Markdown summary sent to reviewers. Media answers
// are left out; they are forwarded separately.
func RenderReport(user domain.User, answers *domain.Answers) string {
	username := user.Username
	if username == "" {
		username = "-"
	}
	category := "-"
	if v, ok := answers.Get(domain.LabelCategory); ok {
		category = v.Value
	}

	lines := []string{
		"📝 *Yangi anketa*",
		fmt.Sprintf("👤 Nomzod: %s (@%s)", user.FullName, username),
		fmt.Sprintf("🆔 ID: `%s`", user.ID),
		fmt.Sprintf("💼 Ish turi: %s", category),
		"",
	}
	answers.Each(func(label string, v domain.Answer) {
		if isAttachment(label, v) {
			return
		}
		lines = append(lines, fmt.Sprintf("*%s:* %s", label, v.Value))
	})
	return strings.Join(lines, "\n")
}

func isAttachment(label string, v domain.Answer) bool {
	return label == domain.LabelVoice || label == domain.LabelVideo || v.Kind == domain.AnswerMedia
}
