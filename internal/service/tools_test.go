package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"persona/backend/internal/model"
	"persona/backend/internal/service"
	"persona/backend/internal/service/ai"
	"persona/backend/internal/service/mock"
)

func TestDispatchTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock.NewMockUserService(ctrl)
	user := model.UserProfile{ID: 42}
	ctx := context.Background()

	tests := []struct {
		name   string
		call   ai.ToolCall
		setup  func()
		expect string
	}{
		{
			name: "details recorded",
			call: ai.ToolCall{Name: service.ToolRecordUserDetails, Arguments: `{"email":"a@b.c","notes":"wants a call"}`},
			setup: func() {
				users.EXPECT().UpdateDetails(gomock.Any(), int64(42), service.Details{Email: "a@b.c", Notes: "wants a call"}).Return(false, nil)
			},
			expect: `{"recorded":true,"changed":false}`,
		},
		{
			name: "details invalid",
			call: ai.ToolCall{Name: service.ToolRecordUserDetails, Arguments: `{"email":"nope"}`},
			setup: func() {
				users.EXPECT().UpdateDetails(gomock.Any(), int64(42), gomock.Any()).Return(false, service.ErrInvalid)
			},
			expect: `{"error":"invalid details"}`,
		},
		{
			name: "details store failure",
			call: ai.ToolCall{Name: service.ToolRecordUserDetails, Arguments: `{"email":"a@b.c"}`},
			setup: func() {
				users.EXPECT().UpdateDetails(gomock.Any(), int64(42), gomock.Any()).Return(false, errors.New("db down"))
			},
			expect: `{"error":"could not record details"}`,
		},
		{
			name:   "malformed arguments",
			call:   ai.ToolCall{Name: service.ToolRecordUserDetails, Arguments: `{"email":`},
			setup:  func() {},
			expect: `{"error":"invalid arguments"}`,
		},
		{
			name: "question recorded",
			call: ai.ToolCall{Name: service.ToolRecordUnknownQuestion, Arguments: `{"question":"Do you ski?"}`},
			setup: func() {
				users.EXPECT().RecordUnknownQuestion(gomock.Any(), gomock.Any(), "Do you ski?").
					DoAndReturn(func(_ context.Context, userID *int64, question string) (model.UnknownQuestion, error) {
						require.Equal(t, int64(42), *userID)
						return model.UnknownQuestion{ID: 1, UserID: userID, Question: question}, nil
					})
			},
			expect: `{"recorded":true}`,
		},
		{
			name: "question empty",
			call: ai.ToolCall{Name: service.ToolRecordUnknownQuestion},
			setup: func() {
				users.EXPECT().RecordUnknownQuestion(gomock.Any(), gomock.Any(), "").Return(model.UnknownQuestion{}, service.ErrInvalid)
			},
			expect: `{"error":"question is required"}`,
		},
		{
			name:   "unknown tool",
			call:   ai.ToolCall{Name: "delete_everything", Arguments: `{}`},
			setup:  func() {},
			expect: `{"error":"unknown tool"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setup()
			got := service.DispatchToolHelper(ctx, users, user, tc.call)
			require.JSONEq(t, tc.expect, got)
		})
	}
}

func TestChatTools_Definitions(t *testing.T) {
	require.Len(t, service.ChatTools, 2)
	names := []string{service.ChatTools[0].Name, service.ChatTools[1].Name}
	require.ElementsMatch(t, []string{service.ToolRecordUserDetails, service.ToolRecordUnknownQuestion}, names)
	for _, tool := range service.ChatTools {
		require.Equal(t, "object", tool.Parameters["type"])
		require.NotEmpty(t, tool.Description)
	}
}
