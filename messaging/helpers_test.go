package messaging

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
)

func TestNewHTMLMessage(t *testing.T) {
	chatID := int64(123456)
	text := "Hello <b>world</b>!"

	msg := NewHTMLMessage(chatID, text)

	assert.Equal(t, chatID, msg.ChatID)
	assert.Equal(t, text, msg.Text)
	assert.Equal(t, "HTML", msg.ParseMode)
}

func TestNewHTMLEditMessage(t *testing.T) {
	chatID := int64(123456)
	messageID := 789
	text := "Updated <i>text</i>"

	editMsg := NewHTMLEditMessage(chatID, messageID, text)

	assert.Equal(t, chatID, editMsg.ChatID)
	assert.Equal(t, messageID, editMsg.MessageID)
	assert.Equal(t, text, editMsg.Text)
	assert.Equal(t, "HTML", editMsg.ParseMode)
}

func TestNewHTMLKeyboardMessage(t *testing.T) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", "confirm"),
			tgbotapi.NewInlineKeyboardButtonData("No", "cancel"),
		),
	)

	msg := NewHTMLKeyboardMessage(123456, "Pick one", keyboard)

	assert.Equal(t, int64(123456), msg.ChatID)
	assert.Equal(t, "HTML", msg.ParseMode)
	assert.Equal(t, keyboard, msg.ReplyMarkup)
}

func TestHTMLMessageWithSpecialCharacters(t *testing.T) {
	// Test that HTML messages work with characters that break Markdown
	problematicTexts := []string{
		"User: @some_user",               // underscore
		"Message: user*name",             // asterisk
		"Bot: test[bot]",                 // brackets
		"Code: `user`",                   // backticks
		"Strike: ~through~",              // tilde
		"HTML: <script>alert()</script>", // HTML tags
	}

	for _, text := range problematicTexts {
		t.Run("Text: "+text, func(t *testing.T) {
			msg := NewHTMLMessage(123, text)
			assert.Equal(t, "HTML", msg.ParseMode)
			assert.Equal(t, text, msg.Text)
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain title", "plain title"},
		{"<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
		{"a & b", "a &amp; b"},
		{`say "hi"`, "say &#34;hi&#34;"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Escape(tt.input))
	}
}
