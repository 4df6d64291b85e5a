package server_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/UnknownOlympus/storekeeper/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	ShouldFail bool
}

func (m *MockPinger) Ping(_ context.Context) error {
	if m.ShouldFail {
		return errors.New("mock ping error")
	}
	return nil
}

func TestHealthChecker(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name         string
		db           server.Pinger
		redis        server.Pinger
		expectedCode int
		expectedBody string
	}{
		{
			name:         "all systems ok",
			db:           &MockPinger{},
			redis:        &MockPinger{},
			expectedCode: http.StatusOK,
			expectedBody: `{"database":"ok", "sessions":"ok"}`,
		},
		{
			name:         "memory sessions",
			db:           &MockPinger{},
			expectedCode: http.StatusOK,
			expectedBody: `{"database":"ok", "sessions":"memory"}`,
		},
		{
			name:         "database unavailable",
			db:           &MockPinger{ShouldFail: true},
			redis:        &MockPinger{},
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"database":"unavailable", "sessions":"ok"}`,
		},
		{
			name:         "redis unreachable",
			db:           &MockPinger{},
			redis:        &MockPinger{ShouldFail: true},
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"database":"ok", "sessions":"unreachable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			healthChecker := server.NewHealthChecker(logger, tt.db, tt.redis)
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rr := httptest.NewRecorder()
			healthChecker.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedCode, rr.Code)
			require.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestRedisPinger_Unreachable(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	require.Error(t, server.RedisPinger{Client: client}.Ping(context.Background()))
}
