package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the Gemini model to use for a request.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

type LLMResponse struct {
	Response         string `json:"response"`
	InputTokenCount  int32  `json:"input_token_count"`
	OutputTokenCount int32  `json:"output_token_count"`
	TotalTokenCount  int32  `json:"total_token_count"`
	IsTest           bool   `json:"is_test"`
}

const clothingVisionPrompt = `Analyze this clothing item image and return a JSON object with exactly these keys,
each holding a list of strings:
{"type": [...], "color": [...], "category": [...], "occasion": [...], "style": [...]}
type is the garment kind (e.g. shirt, pants, jacket, shoes, accessory).
color lists the dominant colors. category is the broad group (top, bottom, outerwear, footwear, accessory).
occasion values come from: casual, formal, business, sport, party.
style describes the look (e.g. basic, streetwear, elegant). Return only the JSON object, nothing else.`

// StripCodeFence removes a surrounding markdown code fence from model output,
// tolerating a language hint after the opening backticks.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// drop the language hint line ("json", "JSON", ...)
		firstLine := strings.TrimSpace(trimmed[:idx])
		if len(firstLine) <= 10 {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// LLMProvider analyzes a single clothing photo into structured attributes.
type LLMProvider interface {
	AnalyzeClothing(ctx context.Context, filePath string, modelName LLMModelName) (*LLMResponse, error)
}

type GoogleLLM struct{}

// NewGenAIClient builds a Gemini API client from GOOGLE_API_KEY.
func NewGenAIClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
}

// AnalyzeClothing sends the image inline and returns the model's attribute
// JSON with any markdown fence already stripped.
func (GoogleLLM) AnalyzeClothing(ctx context.Context, filePath string, modelName LLMModelName) (*LLMResponse, error) {
	client, err := NewGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Println("Error reading image file:", filePath, err)
		return nil, fmt.Errorf("error reading image file %s: %v", filePath, err)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported file type: %s", mimeType)
	}

	parts := []*genai.Part{
		{
			InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     data,
			},
		},
		{Text: clothingVisionPrompt},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		MaxOutputTokens: 2048,
		Temperature:     floatPointer(0.2),
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s %s", filePath, result.PromptFeedback.BlockReasonMessage)
	}

	inputTokenCount := result.UsageMetadata.PromptTokenCount
	outputTokenCount := result.UsageMetadata.CandidatesTokenCount
	totalTokenCount := result.UsageMetadata.TotalTokenCount
	fmt.Println("Input token count:", inputTokenCount)
	fmt.Println("Output token count:", outputTokenCount)
	fmt.Println("Total token count:", totalTokenCount)

	return &LLMResponse{
		Response:         StripCodeFence(result.Text()),
		InputTokenCount:  inputTokenCount,
		OutputTokenCount: outputTokenCount,
		TotalTokenCount:  totalTokenCount,
		IsTest:           false,
	}, nil
}
