package main

import (
	"context"
	"log"
	"os"

	"outfitapi/services"
	"outfitapi/tasks"

	"github.com/hibiken/asynq"
)

func main() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"default": 5,
		}},
	)

	files, err := services.SetupFileStore(context.Background())
	if err != nil {
		log.Fatalf("[Queue] Failed to initialize file store: %v", err)
	}

	mux := asynq.NewServeMux()
	processor := &tasks.ImageCleanupProcessor{Files: files}
	mux.HandleFunc(tasks.TypeImageCleanup, processor.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
