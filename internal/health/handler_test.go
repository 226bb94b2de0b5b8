package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("unreachable") }

func checkStatus(t *testing.T, h *Handler) (int, Status) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Check(rec, req)
	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return rec.Code, status
}

func TestCheckAllHealthy(t *testing.T) {
	h := NewHandler(zap.NewNop(), PingFunc(ok), PingFunc(ok), PingFunc(ok))
	code, status := checkStatus(t, h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, map[string]string{
		"database":     "healthy",
		"cache":        "healthy",
		"object_store": "healthy",
	}, status.Services)
	assert.NotEmpty(t, status.Timestamp)
}

func TestCheckDegraded(t *testing.T) {
	cases := []struct {
		name    string
		db, kv  PingFunc
		store   PingFunc
		failing string
	}{
		{"database down", down, ok, ok, "database"},
		{"cache down", ok, down, ok, "cache"},
		{"object store down", ok, ok, down, "object_store"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(zap.NewNop(), tc.db, tc.kv, tc.store)
			code, status := checkStatus(t, h)

			assert.Equal(t, http.StatusServiceUnavailable, code)
			assert.Equal(t, "degraded", status.Status)
			assert.Equal(t, "unhealthy", status.Services[tc.failing])
		})
	}
}
