package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aidom "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
)

func callHealth(t *testing.T, checkers map[string]HealthChecker, stats func() aidom.CacheStats) (*httptest.ResponseRecorder, HealthStatus) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler(checkers, stats)(rec, req)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthAllChecksPass(t *testing.T) {
	checkers := map[string]HealthChecker{
		"llm": CheckerFunc(func(ctx context.Context) error { return nil }),
	}
	rec, body := callHealth(t, checkers, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["llm"].Status)
}

func TestHealthFailingBackendDegradesButNeverErrors(t *testing.T) {
	checkers := map[string]HealthChecker{
		"llm": CheckerFunc(func(ctx context.Context) error {
			return errors.New("llm backend unreachable: connection refused")
		}),
		"database": CheckerFunc(func(ctx context.Context) error { return nil }),
	}
	rec, body := callHealth(t, checkers, nil)

	assert.Equal(t, http.StatusOK, rec.Code, "health must answer 200 even with a dead dependency")
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Checks["llm"].Status)
	assert.Contains(t, body.Checks["llm"].Message, "unreachable")
	assert.Equal(t, "healthy", body.Checks["database"].Status)
}

func TestHealthReportsCacheStats(t *testing.T) {
	stats := func() aidom.CacheStats {
		return aidom.CacheStats{Entries: 3, MaxEntries: 200, TTL: 12 * time.Hour, Hits: 7, Misses: 4}
	}
	rec, body := callHealth(t, nil, stats)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body.Cache)
	assert.Equal(t, 3, body.Cache.Entries)
	assert.Equal(t, 200, body.Cache.MaxEntries)
	assert.Equal(t, uint64(7), body.Cache.Hits)
}
