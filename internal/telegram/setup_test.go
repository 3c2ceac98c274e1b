package telegram

import (
	"testing"

	"github.com/go-telegram/bot"
)

func TestNewTelegramBotRejectsEmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramBot("", nil); err == nil {
		t.Fatal("NewTelegramBot accepted an empty token")
	}
}

func TestNewTelegramBotShortToken(t *testing.T) {
	t.Parallel()

	b, err := NewTelegramBot("abc", nil, bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("NewTelegramBot error: %v", err)
	}
	if b == nil {
		t.Fatal("NewTelegramBot returned a nil bot")
	}
}
