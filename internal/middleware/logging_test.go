package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddlewareRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms?page=1", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "/rooms", entry.Data["path"])
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, http.MethodGet, entry.Data["method"])
}

func TestHijackRequiresSupport(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rec.Hijack()
	assert.Error(t, err)
}

func TestWebSocketLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	LogWebSocketConnect(logger, "1.2.3.4:5", "/ws")
	LogWebSocketDisconnect(logger, "1.2.3.4:5", "/ws", errors.New("reset"))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "WebSocket connected", hook.AllEntries()[0].Message)
	assert.NotNil(t, hook.LastEntry().Data["error"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, err = NewLogger("warn", "")
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	_, err = NewLogger("loud", "text")
	assert.Error(t, err)
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}
