package telegram

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"outfitapi/agent"
	"outfitapi/services"
	"outfitapi/wardrobe"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// RunOutfitBot long-polls Telegram and answers each text message with one
// agent run. Same loop, same request log as the HTTP generate endpoint.
func RunOutfitBot(db *gorm.DB, llm services.LLMProvider, stepClient agent.StepClient, files services.FileStoreProvider) {
	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		println("Error tg bot init")
		log.Panic(err)
	}
	bot.Debug = true

	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	store := wardrobe.NewStore(db)

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		if update.Message.Command() == "start" {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Ask me for an outfit, e.g. `what should I wear to a casual dinner?`")
			msg.ParseMode = "markdown"
			bot.Send(msg)
			continue
		}

		query := update.Message.Text
		snapshot, err := store.Snapshot()
		if err != nil {
			sentry.CaptureException(err)
			bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Could not load the wardrobe, try again later"))
			continue
		}

		registry := agent.NewRegistry(store, llm, files)
		loop := agent.NewLoop(stepClient, registry)
		answer, err := loop.Run(context.Background(), snapshot, query)
		if err != nil {
			fmt.Println("Agent run failed:", err)
			sentry.CaptureException(err)
			store.LogRequest(query, answer)
			bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "The stylist is unavailable right now, try again later"))
			continue
		}
		if err := store.LogRequest(query, answer); err != nil {
			sentry.CaptureException(err)
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, EscapeMessage(answer))
		if _, err := bot.Send(msg); err != nil {
			fmt.Println("Failed to send telegram message:", err)
		}
	}
}
