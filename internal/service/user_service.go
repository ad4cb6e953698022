//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"persona/backend/internal/identity"
	"persona/backend/internal/model"
	"persona/backend/internal/repository"
	"persona/backend/pkg/sanitizer"
)

const (
	maxNameRunes     = 120
	maxEmailRunes    = 254
	maxNotesRunes    = 1000
	maxQuestionRunes = 1000
)

// Details are visitor-supplied profile fields. Empty fields are not provided.
type Details struct {
	Name  string
	Email string
	Notes string
}

// UserService maps client tokens to profiles and sessions.
type UserService interface {
	ResolveUser(ctx context.Context, token, addr string, device model.DeviceInfo) (model.UserProfile, error)
	ContinueSession(ctx context.Context, user model.UserProfile, sessionID string) (model.ChatSession, error)
	History(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
	RecordExchange(ctx context.Context, session model.ChatSession, user model.UserProfile, message, reply string) error
	UpdateDetails(ctx context.Context, userID int64, details Details) (bool, error)
	RecordUnknownQuestion(ctx context.Context, userID *int64, question string) (model.UnknownQuestion, error)
}

type userService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	questions repository.UnknownQuestionRepository
}

func NewUserService(users repository.UserRepository, sessions repository.SessionRepository, questions repository.UnknownQuestionRepository) UserService {
	return &userService{users: users, sessions: sessions, questions: questions}
}

// ResolveUser returns the profile behind token, creating it on first contact.
// A missing or malformed token is replaced by a freshly minted one.
func (s *userService) ResolveUser(ctx context.Context, token, addr string, device model.DeviceInfo) (model.UserProfile, error) {
	if !identity.ValidToken(token) {
		token = uuid.NewString()
	}
	user, err := s.users.Upsert(ctx, token, addr, device)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// ContinueSession attaches sessionID to user. An empty id starts a new
// session; a session owned by someone else is a conflict.
func (s *userService) ContinueSession(ctx context.Context, user model.UserProfile, sessionID string) (model.ChatSession, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if !identity.ValidToken(sessionID) {
		return model.ChatSession{}, ErrInvalid
	}

	session, err := s.sessions.Attach(ctx, sessionID, user.ID)
	if err != nil {
		return model.ChatSession{}, fmt.Errorf("attach session: %w", err)
	}
	if session.UserID != nil && *session.UserID != user.ID {
		return model.ChatSession{}, ErrConflict
	}
	return session, nil
}

func (s *userService) History(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	messages, err := s.sessions.ListMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return messages, nil
}

// RecordExchange appends both turns and bumps the session and user counters.
func (s *userService) RecordExchange(ctx context.Context, session model.ChatSession, user model.UserProfile, message, reply string) error {
	if err := s.sessions.AppendExchange(ctx, session.ID, user.ID, message, reply); err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}
	return nil
}

// UpdateDetails stores each provided field. It reports whether anything
// changed; re-supplying known values is a no-op.
func (s *userService) UpdateDetails(ctx context.Context, userID int64, details Details) (bool, error) {
	name := cleanDetail(details.Name, maxNameRunes)
	email := cleanDetail(details.Email, maxEmailRunes)
	notes := cleanDetail(details.Notes, maxNotesRunes)
	if name == nil && email == nil && notes == nil {
		return false, nil
	}
	if email != nil && !strings.Contains(*email, "@") {
		return false, fmt.Errorf("%w: email address", ErrInvalid)
	}

	changed, err := s.users.UpdateDetails(ctx, userID, name, email, notes)
	if err != nil {
		return false, fmt.Errorf("update details: %w", err)
	}
	if changed {
		return true, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *userService) RecordUnknownQuestion(ctx context.Context, userID *int64, question string) (model.UnknownQuestion, error) {
	text := cleanDetail(question, maxQuestionRunes)
	if text == nil {
		return model.UnknownQuestion{}, ErrInvalid
	}
	q, err := s.questions.Create(ctx, userID, *text)
	if err != nil {
		return model.UnknownQuestion{}, fmt.Errorf("record question: %w", err)
	}
	return q, nil
}

func cleanDetail(value string, maxRunes int) *string {
	cleaned := sanitizer.CleanDetail(value, maxRunes)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
