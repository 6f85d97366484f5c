package main

import (
	"context"
	"log"
	"os"
	"time"

	"outfitapi/agent"
	"outfitapi/controllers"
	"outfitapi/dbhelper"
	"outfitapi/services"
	"outfitapi/telegram"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              os.Getenv("SENTRY_DSN"),
		Environment:      services.GetEnv("ENV", "local"),
		Release:          "outfitapi@1.0.0",
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	db := dbhelper.SetupDB()

	files, err := services.SetupFileStore(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: services.GetEnv("ASYNC_BROKER_ADDRESS", "localhost:6379")})

	llm := services.GoogleLLM{}
	stepClient := agent.GoogleStepClient{Model: services.Flash25}

	if os.Getenv("TELEGRAM_BOT") == "true" {
		telegram.RunOutfitBot(db, llm, stepClient, files)
		return
	}

	e := controllers.SetupServer(db, llm, stepClient, files, asynqClient)
	e.Debug = true
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(3)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Logger.Fatal(e.Start(":8083"))
}
