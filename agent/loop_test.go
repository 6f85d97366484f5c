package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type scriptedClient struct {
	script          []StepResult
	calls           int
	transcriptSizes []int
}

func (mock *scriptedClient) Step(ctx context.Context, system string, transcript []Turn, decls []*genai.FunctionDeclaration) (*StepResult, error) {
	mock.transcriptSizes = append(mock.transcriptSizes, len(transcript))
	if mock.calls >= len(mock.script) {
		return nil, fmt.Errorf("script exhausted after %d steps", mock.calls)
	}
	result := mock.script[mock.calls]
	mock.calls++
	return &result, nil
}

func emptyRegistry() *Registry {
	return &Registry{tools: map[string]*Tool{}}
}

func echoRegistry() *Registry {
	r := emptyRegistry()
	r.add(&Tool{
		Name:        "echo",
		Declaration: &genai.FunctionDeclaration{Name: "echo"},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			return fmt.Sprint(args["value"]), nil
		},
	})
	r.add(&Tool{
		Name:        "fail",
		Declaration: &genai.FunctionDeclaration{Name: "fail"},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			return "", fmt.Errorf("tool exploded")
		},
	})
	return r
}

func TestLoopAnswersDirectly(t *testing.T) {
	client := &scriptedClient{script: []StepResult{
		{Text: "wear the blue coat [ID:1]"},
	}}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "what do I wear?")
	require.NoError(t, err)
	assert.Equal(t, "wear the blue coat [ID:1]", answer)
	assert.Equal(t, 1, client.calls)
}

func TestLoopExecutesToolThenAnswers(t *testing.T) {
	client := &scriptedClient{script: []StepResult{
		{Call: &ToolCall{Name: "echo", Args: map[string]any{"value": "hello"}}},
		{Text: "done"},
	}}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "query")
	require.NoError(t, err)
	assert.Equal(t, "done", answer)
	// first step sees the user turn, second sees user + call + observation
	assert.Equal(t, []int{1, 3}, client.transcriptSizes)
}

func TestLoopFeedsToolErrorBack(t *testing.T) {
	client := &scriptedClient{script: []StepResult{
		{Call: &ToolCall{Name: "fail", Args: map[string]any{}}},
		{Text: "recovered"},
	}}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "query")
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)
}

func TestLoopUnknownToolIsObservation(t *testing.T) {
	client := &scriptedClient{script: []StepResult{
		{Call: &ToolCall{Name: "bogus", Args: map[string]any{}}},
		{Text: "ok then"},
	}}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "query")
	require.NoError(t, err)
	assert.Equal(t, "ok then", answer)
}

func TestLoopStopsAtBudgetWithLastText(t *testing.T) {
	var script []StepResult
	for i := 1; i <= 15; i++ {
		script = append(script, StepResult{
			Call: &ToolCall{Name: "echo", Args: map[string]any{"value": i}},
			Text: fmt.Sprintf("draft %d", i),
		})
	}
	client := &scriptedClient{script: script}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "query")
	require.NoError(t, err)
	// exactly MaxIters model calls, never an extra one to wrap up
	assert.Equal(t, MaxIters, client.calls)
	assert.Equal(t, "draft 10", answer)
}

func TestLoopBudgetWithoutAnyText(t *testing.T) {
	var script []StepResult
	for i := 0; i < 15; i++ {
		script = append(script, StepResult{
			Call: &ToolCall{Name: "echo", Args: map[string]any{"value": i}},
		})
	}
	client := &scriptedClient{script: script}
	loop := NewLoop(client, echoRegistry())

	_, err := loop.Run(context.Background(), "[]", "query")
	assert.ErrorIs(t, err, ErrReasoning)
	assert.Equal(t, MaxIters, client.calls)
}

func TestLoopStepErrorAborts(t *testing.T) {
	client := &scriptedClient{}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent step 1")
	assert.Equal(t, "", answer)
}

func TestLoopStepErrorReturnsDraft(t *testing.T) {
	// one step with a draft, then the client dies
	client := &scriptedClient{script: []StepResult{
		{Call: &ToolCall{Name: "echo", Args: map[string]any{"value": "x"}}, Text: "half an answer"},
	}}
	loop := NewLoop(client, echoRegistry())

	answer, err := loop.Run(context.Background(), "[]", "query")
	require.Error(t, err)
	assert.Equal(t, "half an answer", answer)
}
