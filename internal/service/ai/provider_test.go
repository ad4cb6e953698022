package ai_test

import (
	"testing"

	"persona/backend/internal/service/ai"

	"github.com/stretchr/testify/require"
)

func TestNewProvider_Errors(t *testing.T) {
	_, err := ai.NewProvider(ai.Config{})
	require.ErrorIs(t, err, ai.ErrMissingAPIKey)

	_, err = ai.NewProvider(ai.Config{APIKey: "key"})
	require.ErrorIs(t, err, ai.ErrMissingModel)

	_, err = ai.NewProvider(ai.Config{APIKey: "key", Model: "model", Provider: "unknown"})
	require.ErrorIs(t, err, ai.ErrInvalidProvider)

	_, err = ai.NewProvider(ai.Config{APIKey: "key", Model: "model", Provider: ai.ProviderCompatible})
	require.ErrorIs(t, err, ai.ErrMissingBaseURL)
}

func TestNewProvider_OpenAI(t *testing.T) {
	provider, err := ai.NewProvider(ai.Config{
		Provider: ai.ProviderOpenAI,
		APIKey:   "key",
		Model:    "gpt-4o-mini",
	})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderOpenAI, provider.Name())

	provider, err = ai.NewProvider(ai.Config{APIKey: "key", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderOpenAI, provider.Name())
}

func TestNewProvider_Compatible(t *testing.T) {
	provider, err := ai.NewProvider(ai.Config{
		Provider: ai.ProviderCompatible,
		APIKey:   "key",
		Model:    "model",
		BaseURL:  "https://example.com",
	})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderCompatible, provider.Name())
}

func TestNewProvider_Anthropic(t *testing.T) {
	provider, err := ai.NewProvider(ai.Config{
		Provider: "Anthropic",
		APIKey:   "key",
		Model:    "claude-3-5-haiku-latest",
	})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderAnthropic, provider.Name())
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := ai.BuildSystemPrompt(ai.PersonaPrompt{Name: "Ada Lovelace", Profile: "Mathematician."})
	require.Contains(t, prompt, "You are acting as Ada Lovelace")
	require.Contains(t, prompt, "<profile>\nMathematician.\n</profile>")
	require.Contains(t, prompt, "record_unknown_question")
	require.NotContains(t, prompt, "<visitor>")

	prompt = ai.BuildSystemPrompt(ai.PersonaPrompt{VisitorEmail: "bob@example.com"})
	require.Contains(t, prompt, "You are acting as Assistant")
	require.Contains(t, prompt, "email: bob@example.com")
	require.NotContains(t, prompt, "name:")
}
