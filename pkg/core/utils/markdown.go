package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// Model replies often arrive wrapped in a fenced code block even when
// the prompt forbids it. CleanMarkdown unwraps one outer fence and
// trims the result so the report renders the content, not the fence.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	for _, opener := range []string{"```markdown", "```md", "```"} {
		if strings.HasPrefix(cleaned, opener) && strings.HasSuffix(cleaned, "```") && len(cleaned) > len(opener)+3 {
			cleaned = strings.TrimPrefix(cleaned, opener)
			cleaned = strings.TrimSuffix(cleaned, "```")
			cleaned = strings.TrimSpace(cleaned)
			break
		}
	}

	return cleaned
}

// ValidateMarkdown reports whether goldmark can parse the input.
// Goldmark accepts almost anything, so false means the text is badly
// broken, not merely unpolished.
func ValidateMarkdown(input string) bool {
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	return doc != nil
}
