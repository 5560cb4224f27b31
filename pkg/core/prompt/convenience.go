package prompt

// GetAssistantPrompt returns an assistant prompt's system text by name.
func GetAssistantPrompt(name string) (string, error) {
	return Get().GetSystemPrompt("assistant." + name)
}

// GetReportPrompt returns a report prompt's system text by name.
func GetReportPrompt(name string) (string, error) {
	return Get().GetSystemPrompt("report." + name)
}
