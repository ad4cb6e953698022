package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"persona/backend/internal/counter"
	"persona/backend/internal/identity"
	"persona/backend/internal/model"
	"persona/backend/internal/ratelimit"
	"persona/backend/internal/repository"
	"persona/backend/internal/repository/testutil"
	"persona/backend/internal/service"
	"persona/backend/internal/service/ai"
	aimock "persona/backend/internal/service/ai/mock"
	svcmock "persona/backend/internal/service/mock"
)

type chatFixture struct {
	chat     service.ChatService
	provider *aimock.MockProvider
	users    repository.UserRepository
	sessions repository.SessionRepository
	engine   *ratelimit.Engine
}

func newChatFixture(t *testing.T, ctrl *gomock.Controller, limits ratelimit.Config) chatFixture {
	t.Helper()
	return buildChatFixture(t, ctrl, limits, false)
}

// newDurableChatFixture counts in sqlite instead of the memory tier.
func newDurableChatFixture(t *testing.T, ctrl *gomock.Controller, limits ratelimit.Config) chatFixture {
	t.Helper()
	return buildChatFixture(t, ctrl, limits, true)
}

func buildChatFixture(t *testing.T, ctrl *gomock.Controller, limits ratelimit.Config, durable bool) chatFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	userService := service.NewUserService(users, sessions, repository.NewUnknownQuestionRepository(db))

	var backend counter.Backend
	if durable {
		backend = counter.NewSQLBackend(repository.NewRateLimitRepository(db))
	}
	store := counter.NewStore(backend, counter.Options{})
	limiter, err := ratelimit.NewLimiter(store, limits)
	require.NoError(t, err)
	engine := ratelimit.NewEngine(limiter, ratelimit.NewQuotaCache(time.Minute))

	provider := aimock.NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()

	chat := service.NewChatService(engine, userService, provider, ai.NewRateLimiter(600), service.ChatConfig{
		PersonaName:     "Ada Lovelace",
		Profile:         "Mathematician.",
		MaxMessageChars: 50,
		UpstreamTimeout: time.Second,
	})
	return chatFixture{chat: chat, provider: provider, users: users, sessions: sessions, engine: engine}
}

func visitor(addr, token string) identity.RequestContext {
	return identity.RequestContext{Addr: addr, Token: token}
}

func TestChatService_Chat_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 3})
	ctx := context.Background()

	f.provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []ai.Message, tools []ai.ToolDefinition) (ai.Completion, error) {
			require.Len(t, messages, 2)
			require.Equal(t, ai.RoleSystem, messages[0].Role)
			require.Contains(t, messages[0].Content, "Ada Lovelace")
			require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Hello there"}, messages[1])
			require.Len(t, tools, 2)
			return ai.Completion{Content: " Hi! "}, nil
		})

	result, err := f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", ""), Message: "  Hello there "})
	require.NoError(t, err)
	require.Equal(t, "Hi!", result.Reply)
	require.NotEmpty(t, result.SessionID)
	require.True(t, identity.ValidToken(result.Token))
	require.Equal(t, 5, result.Quota.DailyLimit)
	require.Equal(t, 4, result.Quota.DailyRemaining)
	require.Equal(t, 2, result.Quota.HourlyRemaining)

	messages, err := f.sessions.ListMessages(ctx, result.SessionID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "Hello there", messages[0].Content)
	require.Equal(t, "Hi!", messages[1].Content)

	user, err := f.users.GetByToken(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, 1, user.MessageCount)
}

func TestChatService_Chat_ContinuesSessionWithHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	ctx := context.Background()

	gomock.InOrder(
		f.provider.EXPECT().Complete(gomock.Any(), gomock.Len(2), gomock.Any()).Return(ai.Completion{Content: "first"}, nil),
		f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, messages []ai.Message, _ []ai.ToolDefinition) (ai.Completion, error) {
				require.Len(t, messages, 4)
				require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "one"}, messages[1])
				require.Equal(t, ai.Message{Role: ai.RoleAssistant, Content: "first"}, messages[2])
				require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "two"}, messages[3])
				return ai.Completion{Content: "second"}, nil
			}),
	)

	first, err := f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", ""), Message: "one"})
	require.NoError(t, err)

	second, err := f.chat.Chat(ctx, service.ChatRequest{
		Context:   visitor("192.0.2.1", first.Token),
		SessionID: first.SessionID,
		Message:   "two",
	})
	require.NoError(t, err)
	require.Equal(t, first.SessionID, second.SessionID)
	require.Equal(t, first.Token, second.Token)
	require.Equal(t, 3, second.Quota.DailyRemaining)
}

func TestChatService_Chat_ToolLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	ctx := context.Background()

	gomock.InOrder(
		f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{
			ToolCalls: []ai.ToolCall{
				{ID: "call_1", Name: service.ToolRecordUserDetails, Arguments: `{"email":"ada@example.com","name":"Ada"}`},
				{ID: "call_2", Name: "launch_rockets", Arguments: `{}`},
			},
		}, nil),
		f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{
			ToolCalls: []ai.ToolCall{
				{ID: "call_3", Name: service.ToolRecordUnknownQuestion, Arguments: `{"question":"Favourite colour?"}`},
			},
		}, nil),
		f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, messages []ai.Message, _ []ai.ToolDefinition) (ai.Completion, error) {
				require.Len(t, messages, 7)
				require.Equal(t, ai.RoleAssistant, messages[2].Role)
				require.Len(t, messages[2].ToolCalls, 2)

				require.Equal(t, ai.RoleTool, messages[3].Role)
				require.Equal(t, "call_1", messages[3].ToolCallID)
				require.JSONEq(t, `{"recorded":true,"changed":true}`, messages[3].Content)

				require.Equal(t, "call_2", messages[4].ToolCallID)
				require.JSONEq(t, `{"error":"unknown tool"}`, messages[4].Content)

				require.Equal(t, "call_3", messages[6].ToolCallID)
				require.JSONEq(t, `{"recorded":true}`, messages[6].Content)
				return ai.Completion{Content: "Thanks Ada, I'll be in touch."}, nil
			}),
	)

	result, err := f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", "tok-tools"), Message: "I'm Ada, ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Thanks Ada, I'll be in touch.", result.Reply)
	require.Equal(t, "tok-tools", result.Token)

	user, err := f.users.GetByToken(ctx, "tok-tools")
	require.NoError(t, err)
	require.True(t, user.Named())
	require.True(t, user.Emailed())
	require.Equal(t, "ada@example.com", *user.Email)
}

func TestChatService_Chat_ToolRoundsExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	ctx := context.Background()

	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{
		ToolCalls: []ai.ToolCall{{ID: "loop", Name: service.ToolRecordUnknownQuestion, Arguments: `{"question":"again?"}`}},
	}, nil).Times(service.MaxToolRounds)

	rc := visitor("192.0.2.1", "tok-loop")
	_, err := f.chat.Chat(ctx, service.ChatRequest{Context: rc, Message: "hi"})
	require.ErrorIs(t, err, service.ErrUpstreamUnavailable)

	headers, err := f.chat.Status(ctx, rc)
	require.NoError(t, err)
	require.Equal(t, 5, headers.DailyRemaining, "failed requests are not counted")
}

func TestChatService_Chat_DeniesOverQuota(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 2, HourlyLimit: 10})
	ctx := context.Background()

	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{Content: "ok"}, nil).Times(2)

	rc := visitor("192.0.2.7", "")
	for i := 0; i < 2; i++ {
		_, err := f.chat.Chat(ctx, service.ChatRequest{Context: rc, Message: "hello"})
		require.NoError(t, err)
	}

	_, err := f.chat.Chat(ctx, service.ChatRequest{Context: rc, Message: "hello"})
	require.ErrorIs(t, err, service.ErrQuotaExceeded)

	var quotaErr *service.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	require.Equal(t, ratelimit.WindowDaily, quotaErr.Decision.LimitingWindow)
	require.Equal(t, model.KindNetwork, quotaErr.Decision.TriggeredBy)
	require.Equal(t, 2, quotaErr.Decision.DailyCount)

	// A fresh token does not escape the shared network identifier.
	_, err = f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.7", "new-token"), Message: "hello"})
	require.ErrorIs(t, err, service.ErrQuotaExceeded)
}

func TestChatService_Chat_UpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	ctx := context.Background()

	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{}, errors.New("503 overloaded"))

	rc := visitor("192.0.2.1", "tok-up")
	_, err := f.chat.Chat(ctx, service.ChatRequest{Context: rc, Message: "hi"})
	require.ErrorIs(t, err, service.ErrUpstreamUnavailable)

	headers, err := f.chat.Status(ctx, rc)
	require.NoError(t, err)
	require.Equal(t, 5, headers.DailyRemaining)
}

func TestChatService_Chat_UpstreamTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})

	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []ai.Message, _ []ai.ToolDefinition) (ai.Completion, error) {
			<-ctx.Done()
			return ai.Completion{}, ctx.Err()
		})

	start := time.Now()
	_, err := f.chat.Chat(context.Background(), service.ChatRequest{Context: visitor("192.0.2.1", ""), Message: "hi"})
	require.ErrorIs(t, err, service.ErrUpstreamUnavailable)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestChatService_Chat_EmptyCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})

	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{Content: "   "}, nil)

	_, err := f.chat.Chat(context.Background(), service.ChatRequest{Context: visitor("192.0.2.1", ""), Message: "hi"})
	require.ErrorIs(t, err, service.ErrUpstreamUnavailable)
}

func TestChatService_Chat_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	ctx := context.Background()

	_, err := f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", ""), Message: "   "})
	require.ErrorIs(t, err, service.ErrInvalid)

	_, err = f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", ""), Message: strings.Repeat("x", 51)})
	require.ErrorIs(t, err, service.ErrInvalid)

	_, err = f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", ""), SessionID: "bad session", Message: "hi"})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestChatService_Chat_SessionOwnedByOther(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	ctx := context.Background()

	f.provider.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(ai.Completion{Content: "hello"}, nil)

	first, err := f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.1", "owner"), Message: "hi"})
	require.NoError(t, err)

	_, err = f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.2", "intruder"), SessionID: first.SessionID, Message: "hi"})
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestChatService_Chat_PersistenceFailureStillReplies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := counter.NewStore(nil, counter.Options{})
	limiter, err := ratelimit.NewLimiter(store, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})
	require.NoError(t, err)
	engine := ratelimit.NewEngine(limiter, nil)

	users := svcmock.NewMockUserService(ctrl)
	provider := aimock.NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()
	chat := service.NewChatService(engine, users, provider, nil, service.ChatConfig{})

	user := model.UserProfile{ID: 7, Token: "tok-p"}
	session := model.ChatSession{ID: "sess-p", UserID: &user.ID}
	users.EXPECT().ResolveUser(gomock.Any(), "tok-p", "192.0.2.1", model.DeviceInfo{}).Return(user, nil)
	users.EXPECT().ContinueSession(gomock.Any(), user, "sess-p").Return(session, nil)
	users.EXPECT().History(gomock.Any(), "sess-p", 20).Return(nil, nil)
	provider.EXPECT().Complete(gomock.Any(), gomock.Len(2), gomock.Any()).Return(ai.Completion{Content: "still here"}, nil)
	users.EXPECT().RecordExchange(gomock.Any(), session, user, "hi", "still here").Return(errors.New("disk full"))

	result, err := chat.Chat(context.Background(), service.ChatRequest{
		Context:   visitor("192.0.2.1", "tok-p"),
		SessionID: "sess-p",
		Message:   "hi",
	})
	require.NoError(t, err)
	require.Equal(t, "still here", result.Reply)
	require.Equal(t, 4, result.Quota.DailyRemaining)
}

func TestChatService_Status_DoesNotCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 3})
	ctx := context.Background()

	rc := visitor("192.0.2.9", "tok-s")
	for i := 0; i < 3; i++ {
		headers, err := f.chat.Status(ctx, rc)
		require.NoError(t, err)
		require.Equal(t, 5, headers.DailyRemaining)
		require.Equal(t, 3, headers.HourlyRemaining)
	}
}

func TestChatService_Chat_CountsWhenClientHangsUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newDurableChatFixture(t, ctrl, ratelimit.Config{DailyLimit: 5, HourlyLimit: 5})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.provider.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []ai.Message, []ai.ToolDefinition) (ai.Completion, error) {
			// The client disconnects while the reply is on its way back.
			cancel()
			return ai.Completion{Content: "late reply"}, nil
		})

	result, err := f.chat.Chat(ctx, service.ChatRequest{Context: visitor("192.0.2.44", ""), Message: "hello"})
	require.NoError(t, err)
	require.Equal(t, "late reply", result.Reply)
	require.Equal(t, 4, result.Quota.DailyRemaining)

	live := context.Background()
	headers, err := f.engine.HeadersFor(live, visitor("192.0.2.44", result.Token))
	require.NoError(t, err)
	require.Equal(t, 4, headers.DailyRemaining)

	messages, err := f.sessions.ListMessages(live, result.SessionID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
}
