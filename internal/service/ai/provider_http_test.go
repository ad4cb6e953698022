package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"persona/backend/internal/service/ai"
)

var detailsTool = ai.ToolDefinition{
	Name:        "record_user_details",
	Description: "Record contact details",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"email": map[string]interface{}{"type": "string"},
		},
		"required": []string{"email"},
	},
}

type capturedRequests struct {
	mu     sync.Mutex
	bodies []map[string]interface{}
}

func (c *capturedRequests) add(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	_ = r.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	c.mu.Lock()
	c.bodies = append(c.bodies, body)
	c.mu.Unlock()
	return body
}

func (c *capturedRequests) last() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bodies[len(c.bodies)-1]
}

func TestOpenAIProvider_CompleteWithToolCall(t *testing.T) {
	captured := &capturedRequests{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		body := captured.add(t, r)

		w.Header().Set("Content-Type", "application/json")
		messages := body["messages"].([]interface{})
		last := messages[len(messages)-1].(map[string]interface{})
		if last["role"] == "tool" {
			writeOpenAIText(w, "Thanks, noted!")
			return
		}
		writeOpenAIToolCall(w)
	}))
	defer server.Close()

	provider, err := ai.NewOpenAIProvider("key", server.URL+"/v1/", "gpt-4o-mini", 256)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	history := []ai.Message{
		{Role: ai.RoleSystem, Content: "sys"},
		{Role: ai.RoleUser, Content: "my email is ada@example.com"},
	}
	completion, err := provider.Complete(ctx, history, []ai.ToolDefinition{detailsTool})
	require.NoError(t, err)
	require.Len(t, completion.ToolCalls, 1)
	require.Equal(t, "call_1", completion.ToolCalls[0].ID)
	require.Equal(t, "record_user_details", completion.ToolCalls[0].Name)
	require.JSONEq(t, `{"email":"ada@example.com"}`, completion.ToolCalls[0].Arguments)

	tools := captured.last()["tools"].([]interface{})
	require.Len(t, tools, 1)

	history = append(history,
		ai.Message{Role: ai.RoleAssistant, ToolCalls: completion.ToolCalls},
		ai.Message{Role: ai.RoleTool, ToolCallID: "call_1", Content: `{"recorded":true}`},
	)
	completion, err = provider.Complete(ctx, history, []ai.ToolDefinition{detailsTool})
	require.NoError(t, err)
	require.Equal(t, "Thanks, noted!", completion.Content)
	require.Empty(t, completion.ToolCalls)

	messages := captured.last()["messages"].([]interface{})
	require.Len(t, messages, 4)
	assistant := messages[2].(map[string]interface{})
	require.Equal(t, "assistant", assistant["role"])
	require.Len(t, assistant["tool_calls"], 1)
	tool := messages[3].(map[string]interface{})
	require.Equal(t, "call_1", tool["tool_call_id"])
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer server.Close()

	provider, err := ai.NewOpenAIProvider("key", server.URL+"/v1/", "gpt-4o-mini", 0)
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), []ai.Message{{Role: ai.RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
}

func TestAnthropicProvider_CompleteWithToolUse(t *testing.T) {
	captured := &capturedRequests{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		body := captured.add(t, r)

		w.Header().Set("Content-Type", "application/json")
		messages := body["messages"].([]interface{})
		if len(messages) > 1 {
			writeAnthropicMessage(w, []interface{}{
				map[string]interface{}{"type": "text", "text": "Recorded."},
			}, "end_turn")
			return
		}
		writeAnthropicMessage(w, []interface{}{
			map[string]interface{}{"type": "text", "text": "Let me note that. "},
			map[string]interface{}{
				"type":  "tool_use",
				"id":    "toolu_1",
				"name":  "record_user_details",
				"input": map[string]interface{}{"email": "ada@example.com"},
			},
		}, "tool_use")
	}))
	defer server.Close()

	provider, err := ai.NewAnthropicProvider("key", server.URL+"/", "claude-3-5-haiku-latest", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	history := []ai.Message{
		{Role: ai.RoleSystem, Content: "persona prompt"},
		{Role: ai.RoleUser, Content: "my email is ada@example.com"},
	}
	completion, err := provider.Complete(ctx, history, []ai.ToolDefinition{detailsTool})
	require.NoError(t, err)
	require.Equal(t, "Let me note that. ", completion.Content)
	require.Equal(t, "tool_use", completion.FinishReason)
	require.Len(t, completion.ToolCalls, 1)
	require.Equal(t, "toolu_1", completion.ToolCalls[0].ID)
	require.JSONEq(t, `{"email":"ada@example.com"}`, completion.ToolCalls[0].Arguments)

	first := captured.last()
	system := first["system"].([]interface{})
	require.Equal(t, "persona prompt", system[0].(map[string]interface{})["text"])
	require.Len(t, first["tools"], 1)

	history = append(history,
		ai.Message{Role: ai.RoleAssistant, Content: completion.Content, ToolCalls: completion.ToolCalls},
		ai.Message{Role: ai.RoleTool, ToolCallID: "toolu_1", Content: `{"recorded":true}`},
	)
	completion, err = provider.Complete(ctx, history, []ai.ToolDefinition{detailsTool})
	require.NoError(t, err)
	require.Equal(t, "Recorded.", completion.Content)

	messages := captured.last()["messages"].([]interface{})
	require.Len(t, messages, 3)
	require.Equal(t, "assistant", messages[1].(map[string]interface{})["role"])
	require.Equal(t, "user", messages[2].(map[string]interface{})["role"])
}

func writeOpenAIText(w http.ResponseWriter, text string) {
	writeOpenAIChoice(w, map[string]interface{}{
		"role":    "assistant",
		"content": text,
		"refusal": "",
	}, "stop")
}

func writeOpenAIToolCall(w http.ResponseWriter) {
	writeOpenAIChoice(w, map[string]interface{}{
		"role":    "assistant",
		"content": "",
		"refusal": "",
		"tool_calls": []interface{}{
			map[string]interface{}{
				"id":   "call_1",
				"type": "function",
				"function": map[string]interface{}{
					"name":      "record_user_details",
					"arguments": `{"email":"ada@example.com"}`,
				},
			},
		},
	}, "tool_calls")
}

func writeOpenAIChoice(w http.ResponseWriter, message map[string]interface{}, finish string) {
	resp := map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []interface{}{
			map[string]interface{}{
				"index":         0,
				"finish_reason": finish,
				"message":       message,
				"logprobs": map[string]interface{}{
					"content": []interface{}{},
					"refusal": []interface{}{},
				},
			},
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeAnthropicMessage(w http.ResponseWriter, content []interface{}, stopReason string) {
	resp := map[string]interface{}{
		"id":            "msg-1",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-3-5-haiku-latest",
		"content":       content,
		"stop_reason":   stopReason,
		"stop_sequence": "",
		"usage": map[string]interface{}{
			"cache_creation_input_tokens": 0,
			"cache_read_input_tokens":     0,
			"input_tokens":                1,
			"output_tokens":               1,
			"service_tier":                "standard",
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}
