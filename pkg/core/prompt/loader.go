package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFromDirectory loads every .json prompt under baseDir/prompts into
// the registry. The expected layout mirrors resources/:
//
//	resources/
//	  prompts/
//	    assistant/
//	      navigation.json
//	    report/
//	      commentary.json
func LoadFromDirectory(baseDir string) error {
	registry := Get()

	promptDir := filepath.Join(baseDir, "prompts")
	if _, err := os.Stat(promptDir); os.IsNotExist(err) {
		return fmt.Errorf("prompts directory not found: %s", promptDir)
	}

	err := filepath.Walk(promptDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		pt, err := readPromptFile(path, promptDir)
		if err != nil {
			return err
		}
		return registry.Register(pt)
	})
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	fmt.Printf("[prompt.Loader] Loaded %d prompts from %s\n", registry.Count(), baseDir)
	return nil
}

// readPromptFile parses one prompt file, filling in ID and Category
// from the path when the file leaves them out.
func readPromptFile(path, promptDir string) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pt PromptTemplate
	if err := json.Unmarshal(data, &pt); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if pt.ID == "" {
		pt.ID = idFromPath(path, promptDir)
	}
	if pt.Category == "" {
		pt.Category = categoryFromPath(path, promptDir)
	}
	return &pt, nil
}

// idFromPath turns prompts/assistant/navigation.json into
// "assistant.navigation".
func idFromPath(path, promptDir string) string {
	rel, _ := filepath.Rel(promptDir, path)
	rel = strings.TrimSuffix(rel, ".json")
	return strings.ReplaceAll(rel, string(filepath.Separator), ".")
}

// categoryFromPath uses the first folder under prompts/ as the category.
func categoryFromPath(path, promptDir string) string {
	rel, _ := filepath.Rel(promptDir, path)
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}
