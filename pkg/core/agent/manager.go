// Package agent routes each AI feature to a chat provider. Features are
// addressed by agent type ("assistant", "report"); config/models.yaml
// decides which provider serves each one, with a global default and
// optional per-agent overrides.
package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"land_proforma/pkg/core/llm"
)

// Config mirrors the agents section of config/models.yaml.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig pins one agent to a provider. An empty Provider follows
// the global active provider.
type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// Manager owns the provider instances and the routing table. The global
// provider can be switched at runtime from the settings tab, so reads
// and writes are guarded.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai":   &llm.OpenAIProvider{},
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
			"qwen":     &llm.QwenProvider{},
			"kimi":     &llm.KimiProvider{},
			"doubao":   &llm.DoubaoProvider{},
		},
	}
}

// GetProvider resolves the provider for an agent type: per-agent
// override first, then the global active provider, then openai as the
// terminal fallback so callers never see a nil provider.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	return m.providers["openai"]
}

// ExecutePrompt resolves the agent's provider, lets it reshape the
// system prompt, and runs the generation.
func (m *Manager) ExecutePrompt(agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)
	fmt.Printf("[AGENT] %s -> %T\n", agentType, provider)

	adapted := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(context.Background(), rawPrompt, adapted, options)
}

// SetGlobalProvider switches the active provider for every agent
// without an override.
func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	fmt.Printf("[AGENT] Global provider set to: %s\n", newProvider)
	return nil
}

// GetActiveProvider returns the current global provider name.
func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// ProviderNames lists the registered providers in sorted order.
func (m *Manager) ProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AgentOverrides reports which agents pin a specific provider. Agents
// without an override follow the active provider and are omitted.
func (m *Manager) AgentOverrides() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	overrides := make(map[string]string)
	for agentType, cfg := range m.config.Agents {
		if cfg.Provider != "" {
			overrides[agentType] = cfg.Provider
		}
	}
	return overrides
}
