package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"persona/backend/internal/identity"
	"persona/backend/internal/model"
	"persona/backend/internal/repository"
	"persona/backend/internal/repository/mock"
	"persona/backend/internal/repository/testutil"
	"persona/backend/internal/service"
)

func newUserService(t *testing.T) (service.UserService, repository.UserRepository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db)
	return service.NewUserService(users, repository.NewSessionRepository(db), repository.NewUnknownQuestionRepository(db)), users
}

func TestUserService_ResolveUser(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	device := model.DeviceInfo{Browser: "Firefox", OS: "Linux"}

	first, err := svc.ResolveUser(ctx, "tok-1", "192.0.2.1", device)
	require.NoError(t, err)
	require.Equal(t, "tok-1", first.Token)
	require.Equal(t, "192.0.2.1", first.FirstSeenAddr)

	again, err := svc.ResolveUser(ctx, "tok-1", "192.0.2.2", model.DeviceInfo{})
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, "192.0.2.1", again.FirstSeenAddr)
	require.Equal(t, "192.0.2.2", again.LastSeenAddr)
	require.Equal(t, "Firefox", again.Device.Browser)
}

func TestUserService_ResolveUser_MintsToken(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	for _, supplied := range []string{"", "bad token!", "<script>"} {
		user, err := svc.ResolveUser(ctx, supplied, "192.0.2.1", model.DeviceInfo{})
		require.NoError(t, err)
		require.NotEqual(t, supplied, user.Token)
		require.True(t, identity.ValidToken(user.Token))
	}

	a, err := svc.ResolveUser(ctx, "", "192.0.2.1", model.DeviceInfo{})
	require.NoError(t, err)
	b, err := svc.ResolveUser(ctx, "", "192.0.2.1", model.DeviceInfo{})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestUserService_ResolveUser_ConcurrentFirstContact(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := svc.ResolveUser(ctx, "shared-token", "192.0.2.1", model.DeviceInfo{})
			require.NoError(t, err)
			ids[i] = user.ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	list, err := users.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUserService_ContinueSession(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	alice, err := svc.ResolveUser(ctx, "alice", "192.0.2.1", model.DeviceInfo{})
	require.NoError(t, err)
	bob, err := svc.ResolveUser(ctx, "bob", "192.0.2.2", model.DeviceInfo{})
	require.NoError(t, err)

	minted, err := svc.ContinueSession(ctx, alice, "")
	require.NoError(t, err)
	require.NotEmpty(t, minted.ID)
	require.Equal(t, alice.ID, *minted.UserID)

	same, err := svc.ContinueSession(ctx, alice, minted.ID)
	require.NoError(t, err)
	require.Equal(t, minted.ID, same.ID)

	_, err = svc.ContinueSession(ctx, bob, minted.ID)
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.ContinueSession(ctx, bob, "not a valid id")
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestUserService_RecordExchangeAndHistory(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	user, err := svc.ResolveUser(ctx, "tok-h", "192.0.2.1", model.DeviceInfo{})
	require.NoError(t, err)
	session, err := svc.ContinueSession(ctx, user, "sess-h")
	require.NoError(t, err)

	require.NoError(t, svc.RecordExchange(ctx, session, user, "hello", "hi there"))
	require.NoError(t, svc.RecordExchange(ctx, session, user, "how are you", "fine"))

	history, err := svc.History(ctx, session.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "hi there", history[0].Content)
	require.Equal(t, model.RoleAssistant, history[0].Role)
	require.Equal(t, "fine", history[2].Content)

	stored, err := users.GetByToken(ctx, "tok-h")
	require.NoError(t, err)
	require.Equal(t, 2, stored.MessageCount)
}

func TestUserService_UpdateDetails(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	user, err := svc.ResolveUser(ctx, "tok-d", "192.0.2.1", model.DeviceInfo{})
	require.NoError(t, err)

	changed, err := svc.UpdateDetails(ctx, user.ID, service.Details{Email: "  ada@example.com "})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = svc.UpdateDetails(ctx, user.ID, service.Details{Email: "ada@example.com"})
	require.NoError(t, err)
	require.False(t, changed, "same value is a no-op")

	changed, err = svc.UpdateDetails(ctx, user.ID, service.Details{Name: "<b>Ada</b> Lovelace"})
	require.NoError(t, err)
	require.True(t, changed)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.Named())
	require.True(t, stored.Emailed())
	require.Equal(t, "Ada Lovelace", *stored.Name)
	require.Equal(t, "ada@example.com", *stored.Email)
	require.Nil(t, stored.Notes)

	changed, err = svc.UpdateDetails(ctx, user.ID, service.Details{})
	require.NoError(t, err)
	require.False(t, changed)

	_, err = svc.UpdateDetails(ctx, user.ID, service.Details{Email: "not-an-email"})
	require.ErrorIs(t, err, service.ErrInvalid)

	_, err = svc.UpdateDetails(ctx, 987654, service.Details{Name: "Ghost"})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUserService_RecordUnknownQuestion(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.ResolveUser(ctx, "tok-q", "192.0.2.1", model.DeviceInfo{})
	require.NoError(t, err)

	q, err := svc.RecordUnknownQuestion(ctx, &user.ID, "  What is your favourite <i>colour</i>? ")
	require.NoError(t, err)
	require.Equal(t, "What is your favourite colour?", q.Question)
	require.Equal(t, user.ID, *q.UserID)

	_, err = svc.RecordUnknownQuestion(ctx, nil, "   ")
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestUserService_RepositoryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock.NewMockUserRepository(ctrl)
	sessions := mock.NewMockSessionRepository(ctrl)
	questions := mock.NewMockUnknownQuestionRepository(ctrl)
	svc := service.NewUserService(users, sessions, questions)
	ctx := context.Background()
	boom := errors.New("db down")

	users.EXPECT().Upsert(gomock.Any(), "tok", "addr", gomock.Any()).Return(model.UserProfile{}, boom)
	_, err := svc.ResolveUser(ctx, "tok", "addr", model.DeviceInfo{})
	require.ErrorIs(t, err, boom)

	sessions.EXPECT().Attach(gomock.Any(), "sess", int64(1)).Return(model.ChatSession{}, boom)
	_, err = svc.ContinueSession(ctx, model.UserProfile{ID: 1}, "sess")
	require.ErrorIs(t, err, boom)

	sessions.EXPECT().AppendExchange(gomock.Any(), "sess", int64(1), "m", "r").Return(boom)
	err = svc.RecordExchange(ctx, model.ChatSession{ID: "sess"}, model.UserProfile{ID: 1}, "m", "r")
	require.ErrorIs(t, err, boom)

	questions.EXPECT().Create(gomock.Any(), gomock.Nil(), "why?").Return(model.UnknownQuestion{}, boom)
	_, err = svc.RecordUnknownQuestion(ctx, nil, "why?")
	require.ErrorIs(t, err, boom)
}
