package service

import (
	"context"

	"persona/backend/internal/model"
	"persona/backend/internal/service/ai"
)

func DispatchToolHelper(ctx context.Context, users UserService, user model.UserProfile, call ai.ToolCall) string {
	return toolDispatcher{users: users, user: user}.call(ctx, call)
}
