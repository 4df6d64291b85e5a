package server_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/UnknownOlympus/storekeeper/internal/notify"
	"github.com/UnknownOlympus/storekeeper/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	admins []models.Account
	err    error
}

func (f fakeDirectory) AdminRecipients(_ context.Context) ([]models.Account, error) {
	return f.admins, f.err
}

type sentAlert struct {
	admins []models.Account
	text   string
}

type fakeAlertSender struct {
	sent chan sentAlert
}

func (f *fakeAlertSender) Alert(_ context.Context, admins []models.Account, text string) notify.Report {
	f.sent <- sentAlert{admins: admins, text: text}
	return notify.Report{}
}

const firingPayload = `{
  "receiver": "telegram",
  "status": "firing",
  "alerts": [{
    "status": "firing",
    "labels": {"job": "storekeeper", "severity": "critical"},
    "annotations": {"summary": "Database down", "description": "pool exhausted"}
  }]
}`

func TestAlertHandler(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	admins := []models.Account{{TelegramID: 1}, {TelegramID: 2}}

	t.Run("forwards alerts to admins", func(t *testing.T) {
		t.Parallel()

		sender := &fakeAlertSender{sent: make(chan sentAlert, 1)}
		handler := server.NewAlertHandler(logger, fakeDirectory{admins: admins}, sender)

		req := httptest.NewRequest(http.MethodPost, "/webhook/alertmanager", strings.NewReader(firingPayload))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		select {
		case got := <-sender.sent:
			assert.Equal(t, admins, got.admins)
			assert.Contains(t, got.text, "🔥 *FIRING* (critical)")
			assert.Contains(t, got.text, "*Summary*: Database down")
			assert.Contains(t, got.text, "*Description*: pool exhausted")
			assert.Contains(t, got.text, "`storekeeper`")
		case <-time.After(time.Second):
			t.Fatal("alert was not forwarded")
		}
	})

	t.Run("rejects non-post", func(t *testing.T) {
		t.Parallel()

		handler := server.NewAlertHandler(logger, fakeDirectory{admins: admins}, &fakeAlertSender{})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook/alertmanager", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("bad payload", func(t *testing.T) {
		t.Parallel()

		handler := server.NewAlertHandler(logger, fakeDirectory{admins: admins}, &fakeAlertSender{})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook/alertmanager", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no admins", func(t *testing.T) {
		t.Parallel()

		sender := &fakeAlertSender{sent: make(chan sentAlert, 1)}
		handler := server.NewAlertHandler(logger, fakeDirectory{err: errors.New("db down")}, sender)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook/alertmanager", strings.NewReader(firingPayload)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, sender.sent)
	})
}

func TestNewMux(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "storekeeper_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	mux := server.NewMux(
		reg,
		server.NewHealthChecker(logger, &MockPinger{}, nil),
		server.NewAlertHandler(logger, fakeDirectory{}, &fakeAlertSender{}),
	)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "storekeeper_test_total 1")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
