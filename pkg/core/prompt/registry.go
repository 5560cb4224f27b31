package prompt

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the in-memory prompt store. Writes only happen at load
// time; everything after that is concurrent reads from the handlers.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*PromptTemplate
}

var (
	global *Registry
	once   sync.Once
)

// Get returns the process-wide registry.
func Get() *Registry {
	once.Do(func() {
		global = &Registry{prompts: make(map[string]*PromptTemplate)}
	})
	return global
}

// Register adds or replaces a prompt.
func (r *Registry) Register(pt *PromptTemplate) error {
	if pt.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[pt.ID] = pt
	return nil
}

// GetPrompt retrieves a prompt by ID.
func (r *Registry) GetPrompt(id string) (*PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.prompts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("prompt not found: %s", id)
}

// GetSystemPrompt returns just the system prompt text for an ID.
func (r *Registry) GetSystemPrompt(id string) (string, error) {
	pt, err := r.GetPrompt(id)
	if err != nil {
		return "", err
	}
	return pt.SystemPrompt, nil
}

// ListPrompts returns the registered IDs in sorted order.
func (r *Registry) ListPrompts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count reports how many prompts are loaded.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

// Clear empties the registry. Tests use this to reset the singleton.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = make(map[string]*PromptTemplate)
}
