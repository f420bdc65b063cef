package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	ledgerapp "github.com/restaurant/backend/internal/application/ledger"
	"go.uber.org/zap"
)

// RebuildService recomputes cached balances from their ledgers
type RebuildService interface {
	RebuildBranchStock(ctx context.Context, tenantID, branchID uuid.UUID) ([]ledgerapp.StockDrift, error)
	RebuildCashRegister(ctx context.Context, tenantID, registerID uuid.UUID) (*ledgerapp.RegisterDrift, error)
	RebuildCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*ledgerapp.CustomerDrift, error)
	Audit(ctx context.Context, tenantID uuid.UUID) (*ledgerapp.DriftReport, error)
}

// RebuildStockRequest selects the branch whose stock is rebuilt
type RebuildStockRequest struct {
	BranchID uuid.UUID `json:"branch_id" binding:"required"`
}

// RebuildResponse reports what a rebuild corrected
type RebuildResponse struct {
	Corrected bool `json:"corrected"`
	Drift     any  `json:"drift,omitempty"`
}

// AuditResponse is a tenant's drift report
type AuditResponse struct {
	TenantID  uuid.UUID                 `json:"tenant_id"`
	Registers []ledgerapp.RegisterDrift `json:"registers"`
	Stock     []ledgerapp.StockDrift    `json:"stock"`
	HasDrift  bool                      `json:"has_drift"`
	CheckedAt time.Time                 `json:"checked_at"`
}

// LedgerHandler serves /ledger
type LedgerHandler struct {
	BaseHandler
	rebuild RebuildService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(rebuild RebuildService, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{BaseHandler: newBaseHandler(log), rebuild: rebuild}
}

// RebuildStock godoc
// @Summary      Rebuild branch stock
// @Description  Recompute a branch's cached stock from its movement ledger
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body RebuildStockRequest true "Branch to rebuild"
// @Success      200 {object} dto.Response{data=RebuildResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/rebuild/stock [post]
func (h *LedgerHandler) RebuildStock(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req RebuildStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	drifts, err := h.rebuild.RebuildBranchStock(c.Request.Context(), tenantID, req.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := RebuildResponse{Corrected: len(drifts) > 0}
	if resp.Corrected {
		resp.Drift = drifts
	}
	h.Success(c, resp)
}

// RebuildCashRegister godoc
// @Summary      Rebuild a cash register balance
// @Description  Reset a register balance from its cash ledger rows
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Cash register ID" format(uuid)
// @Success      200 {object} dto.Response{data=RebuildResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/rebuild/cash-registers/{id} [post]
func (h *LedgerHandler) RebuildCashRegister(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	registerID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	drift, err := h.rebuild.RebuildCashRegister(c.Request.Context(), tenantID, registerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := RebuildResponse{Corrected: drift != nil}
	if drift != nil {
		resp.Drift = drift
	}
	h.Success(c, resp)
}

// RebuildCustomer godoc
// @Summary      Rebuild customer loyalty caches
// @Description  Recompute points from the points ledger and spend and visits from the customer's orders
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=RebuildResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/rebuild/customers/{id} [post]
func (h *LedgerHandler) RebuildCustomer(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	customerID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	drift, err := h.rebuild.RebuildCustomer(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := RebuildResponse{Corrected: drift != nil}
	if drift != nil {
		resp.Drift = drift
	}
	h.Success(c, resp)
}

// Audit godoc
// @Summary      Audit cached balances
// @Description  Compare the tenant's cached balances with their ledgers without changing them
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=AuditResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/audit [get]
func (h *LedgerHandler) Audit(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	report, err := h.rebuild.Audit(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var resp AuditResponse
	if err := copier.Copy(&resp, report); err != nil {
		h.HandleError(c, fmt.Errorf("map drift report: %w", err))
		return
	}
	if resp.Registers == nil {
		resp.Registers = []ledgerapp.RegisterDrift{}
	}
	if resp.Stock == nil {
		resp.Stock = []ledgerapp.StockDrift{}
	}
	resp.HasDrift = report.HasDrift()
	resp.CheckedAt = time.Now().UTC()
	h.Success(c, resp)
}
