package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"persona/backend/internal/handler"
	"persona/backend/internal/identity"
	"persona/backend/internal/model"
	"persona/backend/internal/ratelimit"
	"persona/backend/internal/service"
	"persona/backend/internal/service/mock"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type staticDevices struct {
	info model.DeviceInfo
}

func (d staticDevices) Lookup(context.Context, string, string) model.DeviceInfo {
	return d.info
}

func TestChatHandler_Chat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mock.NewMockChatService(ctrl)
	h := handler.NewChatHandler(chat, staticDevices{info: model.DeviceInfo{Browser: "Firefox", Country: "DE"}})

	e := newTestEcho()
	e.IPExtractor = echo.ExtractIPDirect()
	req := newJSONRequest(http.MethodPost, "/api/chat", map[string]string{
		"message":   "hello",
		"sessionId": "sess-1",
		"token":     "body-token",
	})
	req.Header.Set(handler.HeaderClientToken, "header-token")
	req.Header.Set(echo.HeaderXRealIP, "1.1.1.1")
	req.RemoteAddr = "203.0.113.7:51234"
	c, rec := newTestContext(e, req)

	quota := ratelimit.Headers{DailyLimit: 50, DailyRemaining: 49, HourlyLimit: 10, HourlyRemaining: 9}
	chat.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r service.ChatRequest) (service.ChatResult, error) {
		require.Equal(t, "hello", r.Message)
		require.Equal(t, "sess-1", r.SessionID)
		require.Equal(t, "header-token", r.Context.Token)
		require.Equal(t, "203.0.113.7", r.Context.Addr)
		require.Equal(t, "Firefox", r.Context.Device.Browser)
		return service.ChatResult{Reply: "hi there", SessionID: "sess-1", Token: "header-token", Quota: quota}, nil
	})

	require.NoError(t, h.Chat(c))

	var resp handler.ChatResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, "hi there", resp.Reply)
	require.Equal(t, "sess-1", resp.SessionID)
	require.Equal(t, 49, resp.Quota.DailyRemaining)
	require.Equal(t, "header-token", rec.Header().Get(handler.HeaderClientToken))
	require.Equal(t, "49", rec.Header().Get(handler.HeaderDailyRemaining))
	require.Equal(t, "10", rec.Header().Get(handler.HeaderHourlyLimit))
}

func TestChatHandler_ChatBodyTokenFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mock.NewMockChatService(ctrl)
	h := handler.NewChatHandler(chat, nil)

	e := newTestEcho()
	req := newJSONRequest(http.MethodPost, "/api/chat", map[string]string{"message": "hello", "token": " body-token "})
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
	c, rec := newTestContext(e, req)

	chat.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r service.ChatRequest) (service.ChatResult, error) {
		require.Equal(t, "body-token", r.Context.Token)
		require.Equal(t, "Firefox", r.Context.Device.Browser)
		return service.ChatResult{Reply: "ok", SessionID: "s", Token: "body-token"}, nil
	})

	require.NoError(t, h.Chat(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChatHandler_ChatInvalidJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := handler.NewChatHandler(mock.NewMockChatService(ctrl), nil)

	e := newTestEcho()
	c, rec := newTestContext(e, newJSONRequestRaw(http.MethodPost, "/api/chat", "{"))

	require.NoError(t, h.Chat(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_ChatErrors(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Minute).UTC()
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid", err: service.ErrInvalid, status: http.StatusBadRequest},
		{name: "conflict", err: service.ErrConflict, status: http.StatusConflict},
		{name: "upstream", err: service.ErrUpstreamUnavailable, status: http.StatusServiceUnavailable},
		{name: "quota", err: &service.QuotaExceededError{Decision: ratelimit.Decision{
			LimitingWindow: ratelimit.WindowDaily,
			DailyResetAt:   resetAt,
		}}, status: http.StatusTooManyRequests},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			chat := mock.NewMockChatService(ctrl)
			h := handler.NewChatHandler(chat, nil)
			chat.EXPECT().Chat(gomock.Any(), gomock.Any()).Return(service.ChatResult{}, tc.err)

			e := newTestEcho()
			c, rec := newTestContext(e, newJSONRequest(http.MethodPost, "/api/chat", map[string]string{"message": "hi"}))

			require.NoError(t, h.Chat(c))
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestChatHandler_Status(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mock.NewMockChatService(ctrl)
	h := handler.NewChatHandler(chat, nil)

	e := newTestEcho()
	req := newJSONRequest(http.MethodGet, "/api/chat/status?token=query-token", nil)
	c, rec := newTestContext(e, req)

	dailyReset := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	chat.EXPECT().Status(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rc identity.RequestContext) (ratelimit.Headers, error) {
		require.Equal(t, "query-token", rc.Token)
		return ratelimit.Headers{DailyLimit: 50, DailyRemaining: 50, HourlyLimit: 10, HourlyRemaining: 10, DailyResetAt: dailyReset}, nil
	})

	require.NoError(t, h.Status(c))

	var resp handler.QuotaResponse
	assertJSONResponse(t, rec, http.StatusOK, &resp)
	require.Equal(t, 50, resp.DailyRemaining)
	require.Equal(t, "2025-03-11T00:00:00Z", resp.DailyResetAt)
	require.Empty(t, resp.HourlyResetAt)
	require.Equal(t, "50", rec.Header().Get(handler.HeaderDailyLimit))
}

func TestParseLimitParam(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{query: "", want: 0},
		{query: "?limit=25", want: 25},
		{query: "?limit=1000", want: 1000},
		{query: "?limit=1001", wantErr: true},
		{query: "?limit=-1", wantErr: true},
		{query: "?limit=abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			e := newTestEcho()
			c, _ := newTestContext(e, newJSONRequest(http.MethodGet, "/"+tc.query, nil))
			got, err := handler.ParseLimitParam(c, "limit")
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
