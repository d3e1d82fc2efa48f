package main

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// A handler panic must be swallowed per update, not kill the producer loop
func TestHandleUpdateRecoversFromPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("handleUpdate let a panic escape: %v", r)
		}
	}()

	// A nil context makes any handler panic on first use
	handleUpdate(nil, tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: "/start",
			From: &tgbotapi.User{ID: 1},
			Chat: &tgbotapi.Chat{ID: 1},
		},
	})
}
