package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"outfitapi/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageCleanupTask(t *testing.T) {
	task, err := NewImageCleanupTask("uploads/cloth_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, TypeImageCleanup, task.Type())

	var payload ImageCleanupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "uploads/cloth_1.jpg", payload.ImagePath)
}

func TestProcessImageCleanup(t *testing.T) {
	files := test.NewFileStoreMock()
	files.Files["uploads/cloth_1.jpg"] = []byte("bytes")
	processor := &ImageCleanupProcessor{Files: files}

	task, err := NewImageCleanupTask("uploads/cloth_1.jpg")
	require.NoError(t, err)

	require.NoError(t, processor.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"uploads/cloth_1.jpg"}, files.Removed)
}

func TestProcessImageCleanupNeverFails(t *testing.T) {
	processor := &ImageCleanupProcessor{Files: test.NewFileStoreMock()}

	// garbage payload is acked, not retried
	assert.NoError(t, processor.ProcessTask(context.Background(), asynq.NewTask(TypeImageCleanup, []byte("not json"))))

	// empty path is a no-op
	task, err := NewImageCleanupTask("")
	require.NoError(t, err)
	assert.NoError(t, processor.ProcessTask(context.Background(), task))
}
