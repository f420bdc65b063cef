package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/ledger"
	"go.uber.org/zap"
)

// LedgerAuditor compares a tenant's caches with their ledgers
type LedgerAuditor interface {
	Audit(ctx context.Context, tenantID uuid.UUID) (*ledger.DriftReport, error)
}

// TenantProvider lists the tenants to audit
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// LedgerAuditConfig holds the audit schedule
type LedgerAuditConfig struct {
	Enabled bool
	// Cron is a five-field crontab expression
	Cron string
	// Timeout bounds one full run over all tenants
	Timeout time.Duration
}

// RunSummary describes one audit run
type RunSummary struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Tenants    int           `json:"tenants"`
	Drifted    []uuid.UUID   `json:"drifted"`
	Failed     []uuid.UUID   `json:"failed"`
	ListFailed bool          `json:"list_failed,omitempty"`
}

// LedgerAuditScheduler runs the read-only ledger audit for every tenant on
// a cron schedule. Drift is only reported, never repaired automatically.
type LedgerAuditScheduler struct {
	cfg     LedgerAuditConfig
	auditor LedgerAuditor
	tenants TenantProvider
	logger  *zap.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
	lastRun   *RunSummary
}

// NewLedgerAuditScheduler creates a new LedgerAuditScheduler
func NewLedgerAuditScheduler(cfg LedgerAuditConfig, auditor LedgerAuditor, tenants TenantProvider, logger *zap.Logger) *LedgerAuditScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &LedgerAuditScheduler{
		cfg:     cfg,
		auditor: auditor,
		tenants: tenants,
		logger:  logger.Named("ledger_audit"),
	}
}

// Start registers the cron job. It is a no-op when disabled or already running.
func (s *LedgerAuditScheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("Ledger audit disabled")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	job, err := sched.NewJob(
		gocron.CronJob(s.cfg.Cron, false),
		gocron.NewTask(func() { s.RunOnce(context.Background()) }),
		gocron.WithName("ledger-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule ledger audit %q: %w", s.cfg.Cron, err)
	}
	sched.Start()
	s.scheduler = sched

	fields := []zap.Field{zap.String("cron", s.cfg.Cron), zap.Duration("timeout", s.cfg.Timeout)}
	if next, err := job.NextRun(); err == nil {
		fields = append(fields, zap.Time("next_run", next))
	}
	s.logger.Info("Ledger audit scheduled", fields...)
	return nil
}

// Stop waits for a running audit and stops the scheduler
func (s *LedgerAuditScheduler) Stop() error {
	s.mu.Lock()
	sched := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()
	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

// RunOnce audits every active tenant. A failing tenant does not stop the run.
func (s *LedgerAuditScheduler) RunOnce(ctx context.Context) RunSummary {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	summary := RunSummary{StartedAt: time.Now()}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		s.mu.Lock()
		last := summary
		s.lastRun = &last
		s.mu.Unlock()
	}()

	tenantIDs, err := s.tenants.GetActiveTenantIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list tenants for ledger audit", zap.Error(err))
		summary.ListFailed = true
		return summary
	}
	summary.Tenants = len(tenantIDs)

	for i, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			s.logger.Warn("Ledger audit timed out", zap.Int("remaining", len(tenantIDs)-i))
			break
		}
		report, err := s.auditor.Audit(ctx, tenantID)
		if err != nil {
			summary.Failed = append(summary.Failed, tenantID)
			s.logger.Error("Ledger audit failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		if report.HasDrift() {
			summary.Drifted = append(summary.Drifted, tenantID)
		}
	}

	s.logger.Info("Ledger audit finished",
		zap.Int("tenants", summary.Tenants),
		zap.Int("drifted", len(summary.Drifted)),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary
}

// LastRun returns the most recent summary, nil before the first run
func (s *LedgerAuditScheduler) LastRun() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	last := *s.lastRun
	return &last
}
