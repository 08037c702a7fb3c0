package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"finnie/src/helpers"
	"finnie/src/models"
)

const (
	DefaultConversationTitle = "New Chat"
	DefaultConversationLimit = 20
	DefaultMessageLimit      = 100

	titleLength          = 50
	summaryConversations = 5
	summaryMessages      = 4
	topicLength          = 80
)

// TitleFromMessage names a conversation after its first message: the first
// 50 characters, an ellipsis when cut, newlines flattened.
func TitleFromMessage(first string) string {
	title := first
	if utf8.RuneCountInString(first) > titleLength {
		title = string([]rune(first)[:titleLength])
	}
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(first) > titleLength {
		title += "…"
	}
	return strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
}

// -----------------------------------------------------------------------------

// summaryLine renders one conversation for ConversationSummary. recent holds
// the newest messages, newest first. Empty means the conversation is skipped.
func summaryLine(c models.MConversation, recent []models.MChatMessage) string {
	date := c.UpdatedAt.UTC().Format("2006-01-02")
	if c.Summary != "" {
		return fmt.Sprintf("- [%s] %s: %s", date, c.Title, c.Summary)
	}

	var topics []string
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role != "user" {
			continue
		}
		text := recent[i].Content
		if utf8.RuneCountInString(text) > topicLength {
			text = string([]rune(text)[:topicLength])
		}
		topics = append(topics, text)
	}
	if len(topics) == 0 {
		return ""
	}
	return fmt.Sprintf("- [%s] %s: Asked about %s", date, c.Title, strings.Join(topics, "; "))
}

func renderSummary(lines []string) string {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "Recent conversation history:\n" + strings.Join(kept, "\n")
}

// -----------------------------------------------------------------------------

func validateRole(role string) error {
	if role != "user" && role != "assistant" {
		return helpers.NewValidationError("message role must be user or assistant, got %q", role)
	}
	return nil
}

// -----------------------------------------------------------------------------

// clock hands out strictly increasing microsecond timestamps so messages
// saved within the same tick keep their order.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newClock() *clock {
	return &clock{now: time.Now}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
