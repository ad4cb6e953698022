package service

import (
	"context"
	"encoding/json"
	"errors"

	"persona/backend/internal/metrics"
	"persona/backend/internal/model"
	"persona/backend/internal/service/ai"
	"persona/backend/pkg/logger"
)

const (
	ToolRecordUserDetails     = "record_user_details"
	ToolRecordUnknownQuestion = "record_unknown_question"
)

// ChatTools are offered to the model on every round.
var ChatTools = []ai.ToolDefinition{
	{
		Name:        ToolRecordUserDetails,
		Description: "Use this tool to record that a visitor is interested in being in touch and provided an email address or other details.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"email": map[string]interface{}{
					"type":        "string",
					"description": "The email address of the visitor",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "The visitor's name, if they provided it",
				},
				"notes": map[string]interface{}{
					"type":        "string",
					"description": "Any additional information about the conversation worth recording",
				},
			},
			"required":             []string{"email"},
			"additionalProperties": false,
		},
	},
	{
		Name:        ToolRecordUnknownQuestion,
		Description: "Always use this tool to record any question that could not be answered.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question that could not be answered",
				},
			},
			"required":             []string{"question"},
			"additionalProperties": false,
		},
	},
}

type userDetailsArgs struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type unknownQuestionArgs struct {
	Question string `json:"question"`
}

// toolDispatcher executes tool calls on behalf of one visitor. Results are
// JSON documents fed back to the model; failures never abort the chat.
type toolDispatcher struct {
	users UserService
	user  model.UserProfile
}

func (d toolDispatcher) call(ctx context.Context, call ai.ToolCall) string {
	result, outcome := d.dispatch(ctx, call)
	metrics.ObserveToolCall(metricToolName(call.Name), outcome)
	data, err := json.Marshal(result)
	if err != nil {
		return `{"error":"internal error"}`
	}
	return string(data)
}

func (d toolDispatcher) dispatch(ctx context.Context, call ai.ToolCall) (map[string]interface{}, string) {
	switch call.Name {
	case ToolRecordUserDetails:
		var args userDetailsArgs
		if err := decodeArguments(call.Arguments, &args); err != nil {
			return toolError("invalid arguments"), "invalid"
		}
		changed, err := d.users.UpdateDetails(ctx, d.user.ID, Details{Name: args.Name, Email: args.Email, Notes: args.Notes})
		if err != nil {
			logger.Warn("record user details failed", "user_id", d.user.ID, "error", err)
			if errors.Is(err, ErrInvalid) {
				return toolError("invalid details"), "invalid"
			}
			return toolError("could not record details"), "error"
		}
		return map[string]interface{}{"recorded": true, "changed": changed}, "ok"

	case ToolRecordUnknownQuestion:
		var args unknownQuestionArgs
		if err := decodeArguments(call.Arguments, &args); err != nil {
			return toolError("invalid arguments"), "invalid"
		}
		userID := d.user.ID
		if _, err := d.users.RecordUnknownQuestion(ctx, &userID, args.Question); err != nil {
			logger.Warn("record unknown question failed", "user_id", d.user.ID, "error", err)
			if errors.Is(err, ErrInvalid) {
				return toolError("question is required"), "invalid"
			}
			return toolError("could not record question"), "error"
		}
		return map[string]interface{}{"recorded": true}, "ok"

	default:
		logger.Warn("unknown tool requested", "tool", call.Name)
		return toolError("unknown tool"), "unknown"
	}
}

func decodeArguments(arguments string, target interface{}) error {
	if arguments == "" {
		arguments = "{}"
	}
	return json.Unmarshal([]byte(arguments), target)
}

func toolError(message string) map[string]interface{} {
	return map[string]interface{}{"error": message}
}

// metricToolName keeps the label set bounded.
func metricToolName(name string) string {
	switch name {
	case ToolRecordUserDetails, ToolRecordUnknownQuestion:
		return name
	}
	return "unknown"
}
