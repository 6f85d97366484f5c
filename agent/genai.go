package agent

import (
	"context"
	"fmt"

	"outfitapi/services"

	"google.golang.org/genai"
)

// GoogleStepClient runs agent steps on Gemini with native function calling.
type GoogleStepClient struct {
	Model services.LLMModelName
}

func (g GoogleStepClient) Step(ctx context.Context, system string, transcript []Turn, decls []*genai.FunctionDeclaration) (*StepResult, error) {
	client, err := services.NewGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	var contents []*genai.Content
	for _, turn := range transcript {
		switch {
		case turn.Call != nil:
			contents = append(contents, &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: turn.Call.Name, Args: turn.Call.Args}},
				},
			})
		case turn.Observation != nil:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{
					{FunctionResponse: &genai.FunctionResponse{
						Name:     turn.Observation.Name,
						Response: map[string]any{"output": turn.Observation.Output},
					}},
				},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  turn.Role,
				Parts: []*genai.Part{{Text: turn.Text}},
			})
		}
	}

	result, err := client.Models.GenerateContent(ctx, g.Model.String(), contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 8192,
		Tools: []*genai.Tool{
			{FunctionDeclarations: decls},
		},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}

	step := &StepResult{Text: result.Text()}
	if result.UsageMetadata != nil {
		step.TotalTokenCount = result.UsageMetadata.TotalTokenCount
		fmt.Println("Total token count:", result.UsageMetadata.TotalTokenCount)
	}
	if calls := result.FunctionCalls(); len(calls) > 0 {
		call := calls[0]
		step.Call = &ToolCall{Name: call.Name, Args: call.Args}
	}
	return step, nil
}
