package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider runs Google's Gemini models through the official GenAI
// SDK. It is the preferred backend for report commentary because of the
// optional search grounding, which lets the writer cite market sources.
type GeminiProvider struct {
	// Model overrides the default "gemini-2.0-flash-exp" when set.
	Model string
}

var _ Provider = (*GeminiProvider)(nil)

func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	model = optString(options, "model", model)

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), p.buildConfig(prompt, systemPrompt, options))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return withCitations(result), nil
}

// buildConfig assembles the generation config: low temperature for
// stable structured replies, JSON mode when the caller or the prompts
// ask for it, and search grounding on request.
func (p *GeminiProvider) buildConfig(prompt, systemPrompt string, options map[string]interface{}) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if val, ok := options["temperature"].(float64); ok {
		config.Temperature = genai.Ptr(float32(val))
	}

	if wantsJSON(prompt, systemPrompt, options) {
		config.ResponseMIMEType = "application/json"
	}

	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	if val, ok := options["google_search"].(bool); ok && val {
		config.Tools = []*genai.Tool{
			{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
		}
	}
	return config
}

// wantsJSON decides whether to force a JSON response. An explicit
// response_format option wins; otherwise any mention of JSON in either
// prompt is read as intent. The navigation prompt relies on this.
func wantsJSON(prompt, systemPrompt string, options map[string]interface{}) bool {
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		return val["type"] == "json_object"
	}
	return strings.Contains(strings.ToLower(systemPrompt), "json") ||
		strings.Contains(strings.ToLower(prompt), "json")
}

// withCitations appends grounding sources as a markdown list so report
// commentary can show where a market claim came from.
func withCitations(result *genai.GenerateContentResponse) string {
	text := result.Text()
	if len(result.Candidates) == 0 {
		return text
	}
	meta := result.Candidates[0].GroundingMetadata
	if meta == nil || len(meta.GroundingChunks) == 0 {
		return text
	}

	var citations []string
	for _, chunk := range meta.GroundingChunks {
		if chunk.Web != nil {
			citations = append(citations, fmt.Sprintf("[%s](%s)", chunk.Web.Title, chunk.Web.URI))
		}
	}
	if len(citations) == 0 {
		return text
	}
	return fmt.Sprintf("%s\n\n**Sources:**\n%s", text, strings.Join(citations, "\n"))
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
