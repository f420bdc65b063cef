package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/restaurant/backend/internal/infrastructure/scheduler"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DBPinger is the slice of *sql.DB the health check needs
type DBPinger interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// AuditStatus exposes the last scheduled ledger audit
type AuditStatus interface {
	LastRun() *scheduler.RunSummary
}

// PoolStats is the connection pool part of the health report
type PoolStats struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
}

// AuditRunStatus summarizes the last ledger audit without naming tenants
type AuditRunStatus struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Tenants    int       `json:"tenants"`
	Drifted    int       `json:"drifted"`
	Failed     int       `json:"failed"`
	ListFailed bool      `json:"list_failed,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string          `json:"status"`
	Database    string          `json:"database"`
	Pool        *PoolStats      `json:"pool,omitempty"`
	LedgerAudit *AuditRunStatus `json:"ledger_audit,omitempty"`
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	BaseHandler
	db    DBPinger
	audit AuditStatus
}

// NewHealthHandler creates a new HealthHandler. audit may be nil.
func NewHealthHandler(db DBPinger, audit AuditStatus, log *zap.Logger) *HealthHandler {
	return &HealthHandler{BaseHandler: newBaseHandler(log), db: db, audit: audit}
}

// Check answers 200 when the database responds and 503 otherwise
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		resp.Status, resp.Database = "degraded", "unreachable"
	}

	var pool PoolStats
	if err := copier.Copy(&pool, h.db.Stats()); err == nil {
		resp.Pool = &pool
	}

	if h.audit != nil {
		if run := h.audit.LastRun(); run != nil {
			resp.LedgerAudit = &AuditRunStatus{
				StartedAt:  run.StartedAt,
				DurationMS: run.Duration.Milliseconds(),
				Tenants:    run.Tenants,
				Drifted:    len(run.Drifted),
				Failed:     len(run.Failed),
				ListFailed: run.ListFailed,
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
