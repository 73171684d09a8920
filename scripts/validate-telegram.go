package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/Rippin918/hummingbot-daily-auto/internal/config"
)

func main() {
	fmt.Println("Validating Telegram bot configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Telegram.BotToken == "" {
		fmt.Println("TELEGRAM_BOT_TOKEN is not configured; alerts will be log-only")
		os.Exit(1)
	}
	fmt.Printf("TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.Telegram.BotToken))

	if cfg.Telegram.ChatID == 0 {
		fmt.Println("warning: telegram.chat_id is not set; alerts have no destination")
	}

	b, err := bot.New(cfg.Telegram.BotToken)
	if err != nil {
		fmt.Printf("failed to create Telegram bot: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	me, err := b.GetMe(ctx)
	if err != nil {
		fmt.Printf("bot API call failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("bot API connection successful: @%s (id %d)\n", me.Username, me.ID)
	fmt.Println("all Telegram configuration checks passed")
}
