// Package prompt keeps the AI prompt text out of the binaries. Prompts
// live as JSON files under resources/prompts, one folder per feature
// (assistant, report), and are loaded into a process-wide registry at
// startup. Handlers fetch the role text by ID and append the runtime
// context themselves, so wording changes never need a rebuild.
package prompt

// PromptTemplate is one prompt file. ID and Category may be left out of
// the file; the loader derives them from the path, so
// prompts/assistant/navigation.json becomes "assistant.navigation" in
// category "assistant".
type PromptTemplate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
	Version      string `json:"version"`
}
