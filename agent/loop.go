package agent

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrReasoning means the model produced neither a tool call nor any usable
// answer text within the step budget.
var ErrReasoning = errors.New("agent: no answer within step budget")

// MaxIters caps reasoning steps per request. When the budget runs out the
// loop returns the last text the model produced instead of asking again.
const MaxIters = 10

type ToolCall struct {
	Name string
	Args map[string]any
}

// Observation is a tool result fed back into the transcript.
type Observation struct {
	Name   string
	Output string
}

// Turn is one entry of the conversation transcript. Exactly one of Text,
// Call or Observation is set.
type Turn struct {
	Role        string // "user" or "model"
	Text        string
	Call        *ToolCall
	Observation *Observation
}

// StepResult is one model step: either a tool call to execute or final text.
// A step may carry both, in which case the call is executed and the text is
// kept as the latest draft answer.
type StepResult struct {
	Call            *ToolCall
	Text            string
	TotalTokenCount int32
}

// StepClient runs a single model step over the transcript with the given
// tool declarations available.
type StepClient interface {
	Step(ctx context.Context, system string, transcript []Turn, decls []*genai.FunctionDeclaration) (*StepResult, error)
}

// Loop is the tool-calling agent: it alternates model steps and tool
// executions until the model answers in plain text or the budget is spent.
type Loop struct {
	Client   StepClient
	Registry *Registry
	MaxIters int
}

func NewLoop(client StepClient, registry *Registry) *Loop {
	return &Loop{Client: client, Registry: registry, MaxIters: MaxIters}
}

// Run drives one request to completion and returns the final answer text.
// Tool failures are not fatal: the error text goes back to the model as an
// observation and the loop continues. When a model step fails, the latest
// draft text is returned alongside the error so callers can still log it.
func (l *Loop) Run(ctx context.Context, snapshot string, query string) (string, error) {
	transcript := []Turn{
		{Role: "user", Text: BuildUserTurn(snapshot, query)},
	}
	decls := l.Registry.Declarations()

	lastText := ""
	for iter := 0; iter < l.MaxIters; iter++ {
		result, err := l.Client.Step(ctx, SystemPrompt, transcript, decls)
		if err != nil {
			return lastText, fmt.Errorf("agent step %d: %w", iter+1, err)
		}
		if result.Text != "" {
			lastText = result.Text
		}
		if result.Call == nil {
			if lastText == "" {
				return "", ErrReasoning
			}
			return lastText, nil
		}

		fmt.Println("Agent tool call:", result.Call.Name)
		transcript = append(transcript, Turn{Role: "model", Call: result.Call})

		output, err := l.Registry.Run(ctx, result.Call)
		if err != nil {
			// the model gets to see the failure and try another route
			output = "Error: " + err.Error()
		}
		transcript = append(transcript, Turn{
			Role:        "user",
			Observation: &Observation{Name: result.Call.Name, Output: output},
		})
	}

	// budget exhausted: no extra model call, hand back the latest draft
	if lastText == "" {
		return "", ErrReasoning
	}
	return lastText, nil
}
