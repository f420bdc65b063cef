package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	"go.uber.org/zap"
)

// ShiftService opens, closes and moves cash on register shifts
type ShiftService interface {
	OpenShift(ctx context.Context, tenantID uuid.UUID, req financeapp.OpenShiftRequest) (*financeapp.ShiftResponse, error)
	CloseShift(ctx context.Context, tenantID, shiftID uuid.UUID, req financeapp.CloseShiftRequest) (*financeapp.ShiftResponse, error)
	RecordCashMovement(ctx context.Context, tenantID, shiftID uuid.UUID, req financeapp.CashMovementRequest) (*financeapp.TransactionResponse, error)
	GetShift(ctx context.Context, tenantID, shiftID uuid.UUID) (*financeapp.ShiftResponse, error)
}

// FinanceHandler serves /finance
type FinanceHandler struct {
	BaseHandler
	shifts ShiftService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(shifts ShiftService, log *zap.Logger) *FinanceHandler {
	return &FinanceHandler{BaseHandler: newBaseHandler(log), shifts: shifts}
}

// OpenShift godoc
// @Summary      Open a shift
// @Description  Open a cash register shift with its opening float
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        request body financeapp.OpenShiftRequest true "Shift opening"
// @Success      201 {object} dto.Response{data=financeapp.ShiftResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/shifts [post]
func (h *FinanceHandler) OpenShift(c *gin.Context) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	var req financeapp.OpenShiftRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.OperatorID = actorID

	resp, err := h.shifts.OpenShift(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CloseShift godoc
// @Summary      Close a shift
// @Description  Close a shift against the counted drawer and record the discrepancy
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        id path string true "Shift ID" format(uuid)
// @Param        request body financeapp.CloseShiftRequest true "Counted amount"
// @Success      200 {object} dto.Response{data=financeapp.ShiftResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/shifts/{id}/close [post]
func (h *FinanceHandler) CloseShift(c *gin.Context) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	shiftID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req financeapp.CloseShiftRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ClosedBy = actorID

	resp, err := h.shifts.CloseShift(c.Request.Context(), tenantID, shiftID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordMovement godoc
// @Summary      Record a cash movement
// @Description  Book a manual expense or adjustment on an open shift
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        id path string true "Shift ID" format(uuid)
// @Param        request body financeapp.CashMovementRequest true "Cash movement"
// @Success      201 {object} dto.Response{data=financeapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/shifts/{id}/movements [post]
func (h *FinanceHandler) RecordMovement(c *gin.Context) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	shiftID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req financeapp.CashMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.RecordedBy = actorID

	resp, err := h.shifts.RecordCashMovement(c.Request.Context(), tenantID, shiftID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetShift godoc
// @Summary      Get shift by ID
// @Description  Return a shift with its running revenue, expense and adjustment totals
// @Tags         finance
// @Produce      json
// @Param        id path string true "Shift ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.ShiftResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/shifts/{id} [get]
func (h *FinanceHandler) GetShift(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	shiftID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.shifts.GetShift(c.Request.Context(), tenantID, shiftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
