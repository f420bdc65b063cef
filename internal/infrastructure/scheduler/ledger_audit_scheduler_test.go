package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTenants struct {
	ids []uuid.UUID
	err error
}

func (s stubTenants) GetActiveTenantIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubAuditor struct {
	reports map[uuid.UUID]*ledger.DriftReport
	errs    map[uuid.UUID]error
	calls   []uuid.UUID
}

func (a *stubAuditor) Audit(_ context.Context, tenantID uuid.UUID) (*ledger.DriftReport, error) {
	a.calls = append(a.calls, tenantID)
	if err := a.errs[tenantID]; err != nil {
		return nil, err
	}
	if r, ok := a.reports[tenantID]; ok {
		return r, nil
	}
	return &ledger.DriftReport{TenantID: tenantID}, nil
}

func TestLedgerAuditScheduler_RunOnce(t *testing.T) {
	clean, drifted, broken := uuid.New(), uuid.New(), uuid.New()
	auditor := &stubAuditor{
		reports: map[uuid.UUID]*ledger.DriftReport{
			drifted: {
				TenantID: drifted,
				Registers: []ledger.RegisterDrift{{
					CashRegisterID: uuid.New(),
					Cached:         decimal.NewFromInt(135),
					Ledger:         decimal.NewFromInt(130),
				}},
			},
		},
		errs: map[uuid.UUID]error{broken: errors.New("connection reset")},
	}
	s := NewLedgerAuditScheduler(LedgerAuditConfig{Enabled: true, Cron: "30 3 * * *"}, auditor,
		stubTenants{ids: []uuid.UUID{clean, drifted, broken}}, zap.NewNop())

	assert.Nil(t, s.LastRun())
	summary := s.RunOnce(context.Background())

	assert.Equal(t, 3, summary.Tenants)
	assert.Equal(t, []uuid.UUID{drifted}, summary.Drifted)
	assert.Equal(t, []uuid.UUID{broken}, summary.Failed)
	assert.Equal(t, []uuid.UUID{clean, drifted, broken}, auditor.calls)

	last := s.LastRun()
	require.NotNil(t, last)
	assert.Equal(t, summary.Tenants, last.Tenants)
}

func TestLedgerAuditScheduler_RunOnce_TenantListFails(t *testing.T) {
	auditor := &stubAuditor{}
	s := NewLedgerAuditScheduler(LedgerAuditConfig{}, auditor, stubTenants{err: errors.New("db down")}, nil)

	summary := s.RunOnce(context.Background())
	assert.True(t, summary.ListFailed)
	assert.Empty(t, auditor.calls)
}

func TestLedgerAuditScheduler_StartStop(t *testing.T) {
	s := NewLedgerAuditScheduler(LedgerAuditConfig{Enabled: true, Cron: "30 3 * * *", Timeout: time.Minute},
		&stubAuditor{}, stubTenants{}, zap.NewNop())

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}

func TestLedgerAuditScheduler_InvalidCron(t *testing.T) {
	s := NewLedgerAuditScheduler(LedgerAuditConfig{Enabled: true, Cron: "every night"},
		&stubAuditor{}, stubTenants{}, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestLedgerAuditScheduler_Disabled(t *testing.T) {
	s := NewLedgerAuditScheduler(LedgerAuditConfig{Enabled: false, Cron: "not parsed"},
		&stubAuditor{}, stubTenants{}, zap.NewNop())
	assert.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
}
