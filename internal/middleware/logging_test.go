package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LogsAuthenticatedRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	token := generateTestToken(t, jwtSvc, userID, "test@example.com")

	app := drift.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Use(Auth(jwtSvc))
	app.Get("/protected", okHandler)

	rec := serve(app, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request handled", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/protected", fields["path"])
	assert.Equal(t, userID.String(), fields["user_id"])
}

func TestRequestLogger_AnonymousRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := drift.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/health", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, 1, logs.Len())
	_, hasUser := logs.All()[0].ContextMap()["user_id"]
	assert.False(t, hasUser)
}
