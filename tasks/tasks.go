package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"outfitapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

const TypeImageCleanup = "image:cleanup"

type ImageCleanupPayload struct {
	ImagePath string `json:"image_path"`
}

// NewClient initializes an asynq client for enqueuing tasks
func NewClient() (*asynq.Client, error) {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: services.GetEnv("ASYNC_BROKER_ADDRESS", "localhost:6379")}), nil
}

// NewImageCleanupTask enqueues removal of an orphaned clothing photo.
func NewImageCleanupTask(imagePath string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageCleanupPayload{ImagePath: imagePath})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageCleanup, payload, asynq.MaxRetry(3)), nil
}

// ImageCleanupProcessor deletes image files whose clothing item is gone.
type ImageCleanupProcessor struct {
	Files services.FileStoreProvider
}

// ProcessTask is best effort by contract: the item row is already deleted,
// so a stuck file must never bubble an error back to the delete flow. We
// log, report and ack.
func (processor *ImageCleanupProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		fmt.Println("Failed to unmarshal image cleanup payload:", err)
		sentry.CaptureException(err)
		return nil
	}
	if payload.ImagePath == "" {
		return nil
	}
	fmt.Println("Cleaning up image:", payload.ImagePath)
	if err := processor.Files.Remove(payload.ImagePath); err != nil {
		fmt.Println("Failed to remove image", payload.ImagePath, err)
		sentry.CaptureException(err)
	}
	return nil
}
