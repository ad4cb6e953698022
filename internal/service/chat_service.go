//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"persona/backend/internal/identity"
	"persona/backend/internal/metrics"
	"persona/backend/internal/model"
	"persona/backend/internal/ratelimit"
	"persona/backend/internal/service/ai"
	"persona/backend/pkg/logger"
)

// MaxToolRounds bounds the model/tool exchange of one chat request.
const MaxToolRounds = 5

const (
	defaultHistoryLimit    = 20
	defaultMaxMessageChars = 4000
	defaultUpstreamTimeout = 60 * time.Second
)

// ChatRequest is one inbound visitor message.
type ChatRequest struct {
	Context   identity.RequestContext
	SessionID string
	Message   string
}

// ChatResult is the persona reply plus the identity the client should keep.
type ChatResult struct {
	Reply     string
	SessionID string
	Token     string
	Quota     ratelimit.Headers
}

// ChatConfig tunes the orchestrator.
type ChatConfig struct {
	PersonaName     string
	Profile         string
	HistoryLimit    int
	MaxMessageChars int
	UpstreamTimeout time.Duration
}

// QuotaEngine is the part of ratelimit.Engine the orchestrator needs.
type QuotaEngine interface {
	Evaluate(ctx context.Context, rc identity.RequestContext) (ratelimit.Decision, error)
	Commit(ctx context.Context, rc identity.RequestContext) (ratelimit.Counts, error)
	HeadersFor(ctx context.Context, rc identity.RequestContext) (ratelimit.Headers, error)
	HeadersFromCounts(c ratelimit.Counts) ratelimit.Headers
	HeadersFromDecision(d ratelimit.Decision) ratelimit.Headers
}

// ChatService answers visitor messages within quota.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResult, error)
	Status(ctx context.Context, rc identity.RequestContext) (ratelimit.Headers, error)
}

type chatService struct {
	engine   QuotaEngine
	users    UserService
	provider ai.Provider
	pacer    *ai.RateLimiter
	cfg      ChatConfig
}

func NewChatService(engine QuotaEngine, users UserService, provider ai.Provider, pacer *ai.RateLimiter, cfg ChatConfig) ChatService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.MaxMessageChars <= 0 {
		cfg.MaxMessageChars = defaultMaxMessageChars
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}
	return &chatService{
		engine:   engine,
		users:    users,
		provider: provider,
		pacer:    pacer,
		cfg:      cfg,
	}
}

func (s *chatService) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ChatResult{}, fmt.Errorf("%w: message is required", ErrInvalid)
	}
	if utf8.RuneCountInString(message) > s.cfg.MaxMessageChars {
		return ChatResult{}, fmt.Errorf("%w: message longer than %d characters", ErrInvalid, s.cfg.MaxMessageChars)
	}

	rc := req.Context
	if !identity.ValidToken(rc.Token) {
		rc.Token = ""
	}

	decision, err := s.engine.Evaluate(ctx, rc)
	if err != nil {
		return ChatResult{}, fmt.Errorf("evaluate quota: %w", err)
	}
	if !decision.Allowed {
		logger.Info("chat denied", "window", decision.LimitingWindow, "triggered_by", decision.TriggeredBy)
		return ChatResult{}, &QuotaExceededError{Decision: decision}
	}

	user, err := s.users.ResolveUser(ctx, rc.Token, rc.Addr, rc.Device)
	if err != nil {
		return ChatResult{}, err
	}
	session, err := s.users.ContinueSession(ctx, user, req.SessionID)
	if err != nil {
		return ChatResult{}, err
	}
	history, err := s.users.History(ctx, session.ID, s.cfg.HistoryLimit)
	if err != nil {
		return ChatResult{}, err
	}

	reply, err := s.converse(ctx, user, history, message)
	if err != nil {
		return ChatResult{}, err
	}

	// A minted token is counted from the first successful exchange on.
	rc.Token = user.Token
	// The model call already happened, so a client hanging up now must not
	// skip counting or persisting it.
	commitCtx := context.WithoutCancel(ctx)
	quota := s.engine.HeadersFromDecision(decision)
	if counts, err := s.engine.Commit(commitCtx, rc); err != nil {
		logger.Error("commit quota failed", "session_id", session.ID, "error", err)
	} else {
		quota = s.engine.HeadersFromCounts(counts)
	}
	if err := s.users.RecordExchange(commitCtx, session, user, message, reply); err != nil {
		logger.Error("persist exchange failed", "session_id", session.ID, "user_id", user.ID, "error", err)
	}

	return ChatResult{
		Reply:     reply,
		SessionID: session.ID,
		Token:     user.Token,
		Quota:     quota,
	}, nil
}

// Status reports the remaining quota without counting a request.
func (s *chatService) Status(ctx context.Context, rc identity.RequestContext) (ratelimit.Headers, error) {
	if !identity.ValidToken(rc.Token) {
		rc.Token = ""
	}
	headers, err := s.engine.HeadersFor(ctx, rc)
	if err != nil {
		return ratelimit.Headers{}, fmt.Errorf("quota status: %w", err)
	}
	return headers, nil
}

func (s *chatService) converse(ctx context.Context, user model.UserProfile, history []model.ChatMessage, message string) (string, error) {
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: s.systemPrompt(user)})
	for _, m := range history {
		role := ai.RoleUser
		if m.Role == model.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: message})

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	tools := toolDispatcher{users: s.users, user: user}
	for round := 0; round < MaxToolRounds; round++ {
		completion, err := s.complete(ctx, messages)
		if err != nil {
			return "", err
		}
		if len(completion.ToolCalls) == 0 {
			reply := strings.TrimSpace(completion.Content)
			if reply == "" {
				return "", fmt.Errorf("%w: empty completion", ErrUpstreamUnavailable)
			}
			return reply, nil
		}

		messages = append(messages, ai.Message{
			Role:      ai.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				ToolCallID: call.ID,
				Content:    tools.call(ctx, call),
			})
		}
	}
	return "", fmt.Errorf("%w: no reply after %d tool rounds", ErrUpstreamUnavailable, MaxToolRounds)
}

func (s *chatService) complete(ctx context.Context, messages []ai.Message) (ai.Completion, error) {
	if s.pacer != nil {
		if err := s.pacer.Wait(ctx); err != nil {
			metrics.ObserveUpstream(s.provider.Name(), "throttled", 0)
			return ai.Completion{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	start := time.Now()
	completion, err := s.provider.Complete(ctx, messages, ChatTools)
	if err != nil {
		metrics.ObserveUpstream(s.provider.Name(), "error", time.Since(start))
		logger.Warn("model call failed", "provider", s.provider.Name(), "error", err)
		return ai.Completion{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	metrics.ObserveUpstream(s.provider.Name(), "ok", time.Since(start))
	return completion, nil
}

func (s *chatService) systemPrompt(user model.UserProfile) string {
	prompt := ai.PersonaPrompt{Name: s.cfg.PersonaName, Profile: s.cfg.Profile}
	if user.Named() {
		prompt.VisitorName = *user.Name
	}
	if user.Emailed() {
		prompt.VisitorEmail = *user.Email
	}
	return ai.BuildSystemPrompt(prompt)
}
