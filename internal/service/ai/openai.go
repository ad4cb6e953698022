package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements Provider on the Chat Completions API. It also
// serves OpenAI-compatible endpoints.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	maxTokens int64
	name      string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, baseURL, model string, maxTokens int64) (*OpenAIProvider, error) {
	return newOpenAIProvider(ProviderOpenAI, apiKey, baseURL, model, maxTokens), nil
}

// NewCompatibleProvider creates a provider for an OpenAI-compatible endpoint.
func NewCompatibleProvider(apiKey, baseURL, model string, maxTokens int64) (*OpenAIProvider, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	return newOpenAIProvider(ProviderCompatible, apiKey, baseURL, model, maxTokens), nil
}

func newOpenAIProvider(name, apiKey, baseURL, model string, maxTokens int64) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Retries are the caller's decision.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		name:      name,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete sends the conversation and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: toOpenAIMessages(messages),
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(p.maxTokens)
	}
	if len(tools) > 0 {
		params.Tools = toOpenAITools(tools)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, nil
	}

	choice := resp.Choices[0]
	completion := Completion{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}
	for _, call := range choice.Message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return completion, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Content)}
			}
			for _, call := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: call.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

func toOpenAITools(tools []ToolDefinition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  openai.FunctionParameters(tool.Parameters),
		}))
	}
	return out
}
