package ledger

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/finance"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/loyalty"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RebuildService recomputes the cached balances (branch stock, register
// balances and customer loyalty caches) from their append-only ledgers.
type RebuildService struct {
	txScope unitofwork.TransactionScope
	logger  *zap.Logger
}

// NewRebuildService creates a new RebuildService
func NewRebuildService(txScope unitofwork.TransactionScope, logger *zap.Logger) *RebuildService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RebuildService{txScope: txScope, logger: logger}
}

// RebuildBranchStock folds every item's movements at the branch into its
// BranchStock row. Only rows that drifted are returned.
func (s *RebuildService) RebuildBranchStock(ctx context.Context, tenantID, branchID uuid.UUID) ([]StockDrift, error) {
	return s.branchStock(ctx, tenantID, branchID, true)
}

func (s *RebuildService) branchStock(ctx context.Context, tenantID, branchID uuid.UUID, fix bool) ([]StockDrift, error) {
	var drifts []StockDrift
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		itemIDs, cached, err := stockItems(ctx, repos, tenantID, branchID)
		if err != nil {
			return err
		}
		for _, itemID := range itemIDs {
			var stock *inventory.BranchStock
			if fix {
				stock, err = repos.BranchStock().GetForUpdate(ctx, tenantID, branchID, itemID)
				if err != nil {
					return err
				}
				cached[itemID] = stock.Quantity
			}
			movements, err := repos.StockMovements().FindByItem(ctx, tenantID, branchID, itemID)
			if err != nil {
				return err
			}
			expected := valueobject.RoundQuantity(inventory.FoldMovements(movements))
			current, ok := cached[itemID]
			if !ok {
				current = decimal.Zero
			}
			if current.Equal(expected) {
				continue
			}
			drifts = append(drifts, StockDrift{
				BranchID:        branchID,
				InventoryItemID: itemID,
				Cached:          current,
				Ledger:          expected,
			})
			if fix {
				stock.Quantity = expected
				if err := repos.BranchStock().Save(ctx, stock); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fix && len(drifts) > 0 {
		s.logger.Warn("Branch stock rebuilt from ledger",
			zap.String("tenant_id", tenantID.String()),
			zap.String("branch_id", branchID.String()),
			zap.Int("drifted_items", len(drifts)),
		)
	}
	return drifts, nil
}

// stockItems is the union of items with a cache row or a ledger row, sorted
// so rows are always locked in the same order, plus the cached quantities.
func stockItems(ctx context.Context, repos unitofwork.Repositories, tenantID, branchID uuid.UUID) ([]uuid.UUID, map[uuid.UUID]decimal.Decimal, error) {
	fromLedger, err := repos.StockMovements().DistinctItems(ctx, tenantID, branchID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := repos.BranchStock().ListByBranch(ctx, tenantID, branchID)
	if err != nil {
		return nil, nil, err
	}
	cached := make(map[uuid.UUID]decimal.Decimal, len(rows))
	ids := make([]uuid.UUID, 0, len(fromLedger)+len(rows))
	for i := range rows {
		cached[rows[i].InventoryItemID] = rows[i].Quantity
		ids = append(ids, rows[i].InventoryItemID)
	}
	for _, id := range fromLedger {
		if _, ok := cached[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, cached, nil
}

// RebuildCashRegister resets a register's balance to the net of its cash rows
func (s *RebuildService) RebuildCashRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*RegisterDrift, error) {
	return s.cashRegister(ctx, tenantID, registerID, true)
}

func (s *RebuildService) cashRegister(ctx context.Context, tenantID, registerID uuid.UUID, fix bool) (*RegisterDrift, error) {
	var drift *RegisterDrift
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var (
			register *finance.CashRegister
			err      error
		)
		if fix {
			register, err = repos.CashRegisters().FindByIDForUpdate(ctx, tenantID, registerID)
		} else {
			register, err = repos.CashRegisters().FindByID(ctx, tenantID, registerID)
		}
		if err != nil {
			return err
		}
		txns, err := repos.FinancialTransactions().FindCashByRegister(ctx, tenantID, registerID)
		if err != nil {
			return err
		}
		expected := valueobject.RoundMoney(finance.SumTransactions(txns, true).Net())
		if register.CurrentBalance.Equal(expected) {
			return nil
		}
		drift = &RegisterDrift{CashRegisterID: registerID, Cached: register.CurrentBalance, Ledger: expected}
		if !fix {
			return nil
		}
		register.CurrentBalance = expected
		return repos.CashRegisters().Save(ctx, register)
	})
	if err != nil {
		return nil, err
	}
	if fix && drift != nil {
		s.logger.Warn("Cash register balance rebuilt from ledger",
			zap.String("tenant_id", tenantID.String()),
			zap.String("cash_register_id", registerID.String()),
			zap.String("cached", drift.Cached.StringFixed(2)),
			zap.String("ledger", drift.Ledger.StringFixed(2)),
		)
	}
	return drift, nil
}

// RebuildCustomer recomputes points from the points ledger and spend, visits
// and tier from the credit stamped on the customer's non-cancelled orders.
func (s *RebuildService) RebuildCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerDrift, error) {
	var drift *CustomerDrift
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		customer, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		txns, err := repos.LoyaltyTransactions().FindByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		spend, err := repos.Customers().PaidOrderSpend(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		program, err := repos.LoyaltyPrograms().FindActive(ctx, tenantID)
		if err != nil && !isNotFound(err) {
			return err
		}

		points := loyalty.FoldPoints(txns)
		spent := valueobject.RoundMoney(spend.TotalSpent)
		tier := customer.Tier
		if program != nil {
			tier = program.TierFor(spent)
		}
		if customer.LoyaltyPoints == points && customer.TotalSpent.Equal(spent) &&
			customer.VisitCount == spend.Visits && customer.Tier == tier {
			return nil
		}

		drift = &CustomerDrift{
			CustomerID:   customerID,
			CachedPoints: customer.LoyaltyPoints,
			LedgerPoints: points,
			CachedSpent:  customer.TotalSpent,
			LedgerSpent:  spent,
			CachedVisits: customer.VisitCount,
			LedgerVisits: spend.Visits,
		}
		customer.LoyaltyPoints = points
		customer.TotalSpent = spent
		customer.VisitCount = spend.Visits
		customer.Tier = tier
		return repos.Customers().Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	if drift != nil {
		s.logger.Warn("Customer loyalty caches rebuilt",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.Int("cached_points", drift.CachedPoints),
			zap.Int("ledger_points", drift.LedgerPoints),
		)
	}
	return drift, nil
}

// Audit compares every register of the tenant and the stock of each branch
// that has a register against their ledgers without changing anything.
func (s *RebuildService) Audit(ctx context.Context, tenantID uuid.UUID) (*DriftReport, error) {
	var registers []finance.CashRegister
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		registers, err = repos.CashRegisters().ListByTenant(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	report := &DriftReport{TenantID: tenantID}
	branches := make(map[uuid.UUID]bool)
	for i := range registers {
		branches[registers[i].BranchID] = true
		drift, err := s.cashRegister(ctx, tenantID, registers[i].ID, false)
		if err != nil {
			return nil, err
		}
		if drift != nil {
			report.Registers = append(report.Registers, *drift)
		}
	}
	for branchID := range branches {
		drifts, err := s.branchStock(ctx, tenantID, branchID, false)
		if err != nil {
			return nil, err
		}
		report.Stock = append(report.Stock, drifts...)
	}

	if report.HasDrift() {
		s.logger.Warn("Ledger audit found drift",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("registers", len(report.Registers)),
			zap.Int("stock_items", len(report.Stock)),
		)
	}
	return report, nil
}

func isNotFound(err error) bool {
	de, ok := shared.AsDomainError(err)
	return ok && de.Code == shared.ErrNotFound.Code
}
