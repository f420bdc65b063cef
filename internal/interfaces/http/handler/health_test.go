package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePinger struct {
	err   error
	stats sql.DBStats
}

func (p fakePinger) PingContext(context.Context) error { return p.err }
func (p fakePinger) Stats() sql.DBStats                { return p.stats }

type fakeAuditStatus struct {
	run *scheduler.RunSummary
}

func (f fakeAuditStatus) LastRun() *scheduler.RunSummary { return f.run }

func TestHealthHandler_Check(t *testing.T) {
	s := newTestScope()

	t.Run("healthy with audit summary", func(t *testing.T) {
		run := &scheduler.RunSummary{
			StartedAt: time.Now().Add(-time.Hour),
			Duration:  1500 * time.Millisecond,
			Tenants:   3,
			Drifted:   []uuid.UUID{uuid.New()},
		}
		h := NewHealthHandler(fakePinger{stats: sql.DBStats{OpenConnections: 4, InUse: 1, Idle: 3}}, fakeAuditStatus{run: run}, zap.NewNop())
		r := s.engine()
		r.GET("/health", h.Check)

		w := doJSON(r, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "ok", resp.Status)
		if assert.NotNil(t, resp.Pool) {
			assert.Equal(t, 4, resp.Pool.OpenConnections)
			assert.Equal(t, 3, resp.Pool.Idle)
		}
		if assert.NotNil(t, resp.LedgerAudit) {
			assert.Equal(t, int64(1500), resp.LedgerAudit.DurationMS)
			assert.Equal(t, 1, resp.LedgerAudit.Drifted)
		}
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{err: errors.New("dial tcp: refused")}, nil, zap.NewNop())
		r := s.engine()
		r.GET("/health", h.Check)

		w := doJSON(r, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "unreachable")
	})
}
