package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"land_proforma/pkg/core/agent"
	"land_proforma/pkg/core/prompt"
	"land_proforma/pkg/core/utils"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Commentator drafts the commentary section that WithCommentary appends to a
// project summary.
type Commentator interface {
	// Name returns the display name of the backing model
	Name() string
	// Draft produces commentary markdown for the given summary
	Draft(ctx context.Context, summary string) (string, error)
}

const defaultCommentaryPrompt = `You are a land development analyst reviewing a project summary for internal planning.
Write a short commentary (3-5 paragraphs of plain Markdown, no headings) covering:
- whether the growth-rate schedules look reasonable for the project type
- pricing observations, including the effect of the appreciation schedule
- anything in the land plan or assumptions that deserves a second look
Do not repeat the tables. Do not wrap the output in a code block.`

// commentarySystemPrompt prefers the prompt library, falling back to the
// built-in text when no resources directory was loaded.
func commentarySystemPrompt() string {
	if p, err := prompt.GetReportPrompt("commentary"); err == nil && p != "" {
		return p
	}
	return defaultCommentaryPrompt
}

// GeminiCommentator talks to Gemini directly. It carries its own client
// instead of going through the provider manager so report generation keeps
// working when config/models.yaml points the rest of the app elsewhere.
type GeminiCommentator struct {
	modelName string
	client    *genai.Client
}

// Ensure interface compliance
var _ Commentator = (*GeminiCommentator)(nil)
var _ Commentator = (*ManagedCommentator)(nil)

func NewGeminiCommentator(ctx context.Context) (*GeminiCommentator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiCommentator{
		modelName: "gemini-2.0-flash",
		client:    client,
	}, nil
}

func (c *GeminiCommentator) Name() string {
	return "gemini"
}

func (c *GeminiCommentator) Draft(ctx context.Context, summary string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(0.7)

	fullPrompt := fmt.Sprintf("%s\n\nProject summary:\n\n%s", commentarySystemPrompt(), summary)

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty commentary response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return utils.CleanMarkdown(sb.String()), nil
}

// ManagedCommentator routes through the provider manager so the commentary
// model follows config/models.yaml like every other agent.
type ManagedCommentator struct {
	agentManager *agent.Manager
}

func NewManagedCommentator(mgr *agent.Manager) *ManagedCommentator {
	return &ManagedCommentator{agentManager: mgr}
}

func (c *ManagedCommentator) Name() string {
	return c.agentManager.GetActiveProvider()
}

func (c *ManagedCommentator) Draft(ctx context.Context, summary string) (string, error) {
	userPrompt := fmt.Sprintf("Draft the commentary for this project summary:\n\n%s", summary)

	options := map[string]interface{}{
		"temperature": 0.7,
	}
	content, err := c.agentManager.ExecutePrompt("report", userPrompt, commentarySystemPrompt(), options)
	if err != nil {
		return "", err
	}

	return utils.CleanMarkdown(content), nil
}
