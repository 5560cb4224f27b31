package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// QwenProvider calls Alibaba's DashScope text-generation endpoint in its
// native shape rather than the OpenAI-compatible one.
type QwenProvider struct{}

var _ Provider = (*QwenProvider)(nil)

const qwenEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

type qwenRequest struct {
	Model      string     `json:"model"`
	Input      qwenInput  `json:"input"`
	Parameters qwenParams `json:"parameters"`
}

type qwenInput struct {
	Messages []chatMessage `json:"messages"`
}

type qwenParams struct {
	ResultFormat string `json:"result_format"`
}

// qwenResponse covers both reply shapes DashScope uses: chat models fill
// output.choices, older text models fill output.text. A non-empty code
// means the call failed even under HTTP 200.
type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Text string `json:"text"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *QwenProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := resolveKey(options, "DASHSCOPE_API_KEY", "QWEN_API_KEY")
	if key == "" {
		return "", fmt.Errorf("QWEN_API_KEY_MISSING: Please set DASHSCOPE_API_KEY or QWEN_API_KEY")
	}

	payload := qwenRequest{
		Model: optString(options, "model", "qwen-max"),
		Input: qwenInput{
			Messages: []chatMessage{
				{Content: systemPrompt, Role: "system"},
				{Content: prompt, Role: "user"},
			},
		},
		Parameters: qwenParams{ResultFormat: "message"},
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qwen request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", qwenEndpoint, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	res, err := restClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("qwen api call failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("qwen api returned status %d: %s", res.StatusCode, string(body))
	}

	var parsed qwenResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode qwen response: %w", err)
	}
	if parsed.Code != "" {
		return "", fmt.Errorf("qwen api error: %s - %s", parsed.Code, parsed.Message)
	}

	if len(parsed.Output.Choices) > 0 {
		return parsed.Output.Choices[0].Message.Content, nil
	}
	if parsed.Output.Text != "" {
		return parsed.Output.Text, nil
	}
	return "", fmt.Errorf("empty response from qwen api")
}

func (p *QwenProvider) AdaptInstructions(raw string) string {
	return raw
}
