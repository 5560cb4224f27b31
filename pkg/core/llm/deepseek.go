package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DeepSeekProvider speaks the DeepSeek chat completions API. It is the
// default backend for the navigation assistant in config/models.yaml.
type DeepSeekProvider struct{}

var _ Provider = (*DeepSeekProvider)(nil)

const deepseekEndpoint = "https://api.deepseek.com/chat/completions"

// deepseekRequest is the full payload DeepSeek documents. Fields we do
// not tune are still sent at their documented defaults; the API rejects
// some absent fields depending on model.
type deepseekRequest struct {
	Messages         []chatMessage  `json:"messages"`
	Model            string         `json:"model"`
	Thinking         *thinkingParam `json:"thinking,omitempty"`
	FrequencyPenalty float64        `json:"frequency_penalty"`
	MaxTokens        int            `json:"max_tokens"`
	PresencePenalty  float64        `json:"presence_penalty"`
	ResponseFormat   responseFormat `json:"response_format"`
	Stop             interface{}    `json:"stop"`
	Stream           bool           `json:"stream"`
	StreamOptions    interface{}    `json:"stream_options"`
	Temperature      float64        `json:"temperature"`
	TopP             float64        `json:"top_p"`
	Tools            interface{}    `json:"tools"`
	ToolChoice       string         `json:"tool_choice"`
	LogProbs         bool           `json:"logprobs"`
	TopLogProbs      interface{}    `json:"top_logprobs"`
}

type thinkingParam struct {
	Type string `json:"type"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type deepseekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := resolveKey(options, "DEEPSEEK_API_KEY")
	if key == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY_MISSING: Please set DEEPSEEK_API_KEY env var")
	}

	payload := deepseekRequest{
		Messages: []chatMessage{
			{Content: systemPrompt, Role: "system"},
			{Content: prompt, Role: "user"},
		},
		Model:          optString(options, "model", "deepseek-chat"),
		Thinking:       &thinkingParam{Type: "disabled"},
		MaxTokens:      4096,
		ResponseFormat: responseFormat{Type: "text"},
		Temperature:    1.0,
		TopP:           1.0,
		ToolChoice:     "none",
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", deepseekEndpoint, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	res, err := restClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DEEPSEEK_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var parsed deepseekResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("DEEPSEEK_UNMARSHAL_ERROR: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("DEEPSEEK_NO_CHOICES: %s", string(body))
	}
	return parsed.Choices[0].Message.Content, nil
}

// DeepSeek takes instructions verbatim.
func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}
