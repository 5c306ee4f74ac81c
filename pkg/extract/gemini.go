package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiExtractor sends page images to the Gemini API and returns the
// raw CSV text the model produces.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a GeminiExtractor. An empty model selects
// DefaultModel.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

// ExtractPage sends one page image with the user prompt and returns the
// model's text reply. Temperature is pinned to zero so repeated runs of
// the same page produce the same rows.
func (extractor *GeminiExtractor) ExtractPage(ctx context.Context, imageData []byte, mimeType, userPrompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imageData, mimeType),
			genai.NewPartFromText(userPrompt),
		}, genai.RoleUser),
	}

	response, err := extractor.client.Models.GenerateContent(ctx, extractor.model, contents,
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0),
			MaxOutputTokens:   maxResponseTokens,
		})
	if err != nil {
		return "", fmt.Errorf("Gemini extraction failed: %w", err)
	}

	text := response.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini returned no text content")
	}
	return text, nil
}
