//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package ai

import (
	"context"
	"errors"
	"strings"
)

const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

var (
	ErrMissingAPIKey   = errors.New("ai api key is required")
	ErrMissingModel    = errors.New("ai model is required")
	ErrInvalidProvider = errors.New("invalid ai provider")
	ErrMissingBaseURL  = errors.New("base url is required for compatible provider")
)

// Role of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one provider-neutral conversation turn. Assistant turns may carry
// tool calls; tool turns answer one call by ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a function call requested by the model. Arguments is raw JSON.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition describes a callable tool. Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Completion is one model reply.
type Completion struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// Provider is a chat model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (Completion, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

// NewProvider builds the provider named by cfg.Provider. An empty name means
// OpenAI.
func NewProvider(cfg Config) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrMissingModel
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case ProviderCompatible:
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, ErrMissingBaseURL
		}
		return NewCompatibleProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	default:
		return nil, ErrInvalidProvider
	}
}

// splitSystem separates system turns from the conversation. Providers that
// take the system prompt out of band use it.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if m.Content != "" {
				system = append(system, m.Content)
			}
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
