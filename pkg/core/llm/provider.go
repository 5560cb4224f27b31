// Package llm contains the chat-completion backends used by the
// dashboard's AI features: the navigation assistant and the report
// commentary writer. Each vendor is wrapped in a Provider so the agent
// manager can swap models per agent without the callers noticing.
package llm

import (
	"context"
	"net/http"
	"os"
	"time"
)

// Provider is one chat-completion backend.
//
// GenerateResponse sends a single user prompt with an optional system
// prompt and returns the reply text. The options map carries per-call
// overrides ("model", "api_key", "temperature", "response_format");
// providers ignore keys they do not understand.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions reshapes raw instructions into the vendor's
	// preferred prompting style before they are sent.
	AdaptInstructions(rawInstructions string) string
}

// restClient is shared by the providers that speak plain HTTPS. Gemini
// goes through the official SDK and manages its own transport.
var restClient = &http.Client{Timeout: 90 * time.Second}

// resolveKey picks the API credential for a call. An explicit "api_key"
// option wins, then the given environment variables in order.
func resolveKey(options map[string]interface{}, envVars ...string) string {
	if val, ok := options["api_key"].(string); ok && val != "" {
		return val
	}
	for _, name := range envVars {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// optString reads a string option, falling back when absent or empty.
func optString(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

// chatMessage is the role/content pair shared by the OpenAI-compatible
// chat payloads.
type chatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// OpenAIProvider is a placeholder. The dashboard ships with DeepSeek,
// Gemini and Qwen wired end to end; GPT support waits on an account.
type OpenAIProvider struct{}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return "Not implemented: OpenAI Response", nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return "OpenAI Style: " + raw
}

// KimiProvider is a placeholder for Moonshot's long-context models.
type KimiProvider struct{}

func (p *KimiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return "Not implemented: Kimi Response", nil
}

func (p *KimiProvider) AdaptInstructions(raw string) string {
	return "Kimi Style: " + raw
}

// DoubaoProvider is a placeholder for ByteDance's Doubao models.
type DoubaoProvider struct{}

func (p *DoubaoProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return "Not implemented: Doubao Response", nil
}

func (p *DoubaoProvider) AdaptInstructions(raw string) string {
	return "Doubao Style: " + raw
}
