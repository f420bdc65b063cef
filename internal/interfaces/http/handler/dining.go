package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	diningapp "github.com/restaurant/backend/internal/application/dining"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// TableSessionService drives tables, sessions, guests and bill splits
type TableSessionService interface {
	StartSession(ctx context.Context, tenantID, tableID uuid.UUID, req diningapp.StartSessionRequest) (*diningapp.SessionResponse, error)
	UpdateTableStatus(ctx context.Context, tenantID, tableID uuid.UUID, req diningapp.UpdateTableStatusRequest) (*diningapp.TableResponse, error)
	CalculateTableTotal(ctx context.Context, tenantID, tableID uuid.UUID) (*diningapp.TableTotalResponse, error)
	GetSessionSummary(ctx context.Context, tenantID, sessionID uuid.UUID) (*diningapp.SessionSummaryResponse, error)
	JoinGuest(ctx context.Context, tenantID, sessionID uuid.UUID, req diningapp.JoinGuestRequest) (*diningapp.GuestJoinResponse, error)
	RecalculateGuestTotal(ctx context.Context, tenantID, guestID uuid.UUID) (*diningapp.GuestResponse, error)
	ReassignOrderItem(ctx context.Context, tenantID, itemID uuid.UUID, req diningapp.ReassignItemRequest) (*diningapp.ReassignResponse, error)
	CreateBillSplit(ctx context.Context, tenantID, sessionID uuid.UUID, req diningapp.CreateSplitRequest) (*diningapp.SplitResponse, error)
	FinalizeBillSplit(ctx context.Context, tenantID, splitID uuid.UUID) (*diningapp.SplitResponse, error)
	MarkAllocationPaid(ctx context.Context, tenantID, splitID, guestID uuid.UUID) (*diningapp.SplitResponse, error)
	EndSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*diningapp.SessionResponse, error)
	GuestQRCode(ctx context.Context, tenantID, sessionID, guestID uuid.UUID, size int) ([]byte, error)
}

// DiningHandler serves /dining
type DiningHandler struct {
	BaseHandler
	sessions TableSessionService
}

// NewDiningHandler creates a new DiningHandler
func NewDiningHandler(sessions TableSessionService, log *zap.Logger) *DiningHandler {
	return &DiningHandler{BaseHandler: newBaseHandler(log), sessions: sessions}
}

// respond runs call with the tenant scope and writes its result
func (h *DiningHandler) respond(c *gin.Context, status int, call func(ctx context.Context, tenantID, actorID uuid.UUID) (any, error)) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	resp, err := call(c.Request.Context(), tenantID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// StartSession godoc
// @Summary      Start a table session
// @Description  Seat a party at a free table
// @Tags         dining
// @Accept       json
// @Produce      json
// @Param        id path string true "Table ID" format(uuid)
// @Param        request body diningapp.StartSessionRequest true "Session details"
// @Success      201 {object} dto.Response{data=diningapp.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/tables/{id}/sessions [post]
func (h *DiningHandler) StartSession(c *gin.Context) {
	tableID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req diningapp.StartSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusCreated, func(ctx context.Context, tenantID, actorID uuid.UUID) (any, error) {
		req.OpenedBy = actorID
		return h.sessions.StartSession(ctx, tenantID, tableID, req)
	})
}

// UpdateTableStatus godoc
// @Summary      Update table status
// @Description  Move a table along its status machine
// @Tags         dining
// @Accept       json
// @Produce      json
// @Param        id path string true "Table ID" format(uuid)
// @Param        request body diningapp.UpdateTableStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=diningapp.TableResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/tables/{id}/status [put]
func (h *DiningHandler) UpdateTableStatus(c *gin.Context) {
	tableID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req diningapp.UpdateTableStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.UpdateTableStatus(ctx, tenantID, tableID, req)
	})
}

// TableTotal godoc
// @Summary      Get table total
// @Description  Return the running total of the table's active session
// @Tags         dining
// @Produce      json
// @Param        id path string true "Table ID" format(uuid)
// @Success      200 {object} dto.Response{data=diningapp.TableTotalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/tables/{id}/total [get]
func (h *DiningHandler) TableTotal(c *gin.Context) {
	tableID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.CalculateTableTotal(ctx, tenantID, tableID)
	})
}

// SessionSummary godoc
// @Summary      Get session summary
// @Description  Return a session with its guests, orders and bill splits
// @Tags         dining
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=diningapp.SessionSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/sessions/{id} [get]
func (h *DiningHandler) SessionSummary(c *gin.Context) {
	sessionID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.GetSessionSummary(ctx, tenantID, sessionID)
	})
}

// JoinGuest godoc
// @Summary      Join a guest
// @Description  Add a guest to the session. The access token is returned only here.
// @Tags         dining
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body diningapp.JoinGuestRequest true "Guest details"
// @Success      201 {object} dto.Response{data=diningapp.GuestJoinResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/sessions/{id}/guests [post]
func (h *DiningHandler) JoinGuest(c *gin.Context) {
	sessionID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req diningapp.JoinGuestRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusCreated, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.JoinGuest(ctx, tenantID, sessionID, req)
	})
}

// RecalculateGuest godoc
// @Summary      Recalculate guest subtotal
// @Description  Recompute a guest's subtotal from the items assigned to them
// @Tags         dining
// @Produce      json
// @Param        id path string true "Guest ID" format(uuid)
// @Success      200 {object} dto.Response{data=diningapp.GuestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/guests/{id}/recalculate [post]
func (h *DiningHandler) RecalculateGuest(c *gin.Context) {
	guestID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.RecalculateGuestTotal(ctx, tenantID, guestID)
	})
}

// ReassignItem godoc
// @Summary      Reassign an order item
// @Description  Move an order item to another guest of the same session, or unassign it
// @Tags         dining
// @Accept       json
// @Produce      json
// @Param        id path string true "Order item ID" format(uuid)
// @Param        request body diningapp.ReassignItemRequest true "Target guest"
// @Success      200 {object} dto.Response{data=diningapp.ReassignResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/order-items/{id}/reassign [post]
func (h *DiningHandler) ReassignItem(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req diningapp.ReassignItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, actorID uuid.UUID) (any, error) {
		req.ActorID = actorID
		return h.sessions.ReassignOrderItem(ctx, tenantID, itemID, req)
	})
}

// CreateSplit godoc
// @Summary      Create a bill split
// @Description  Divide the session's outstanding balance equally, by guest subtotal or by custom amounts
// @Tags         dining
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body diningapp.CreateSplitRequest true "Split request"
// @Success      201 {object} dto.Response{data=diningapp.SplitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/sessions/{id}/splits [post]
func (h *DiningHandler) CreateSplit(c *gin.Context) {
	sessionID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req diningapp.CreateSplitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusCreated, func(ctx context.Context, tenantID, actorID uuid.UUID) (any, error) {
		req.CreatedBy = actorID
		return h.sessions.CreateBillSplit(ctx, tenantID, sessionID, req)
	})
}

// FinalizeSplit godoc
// @Summary      Finalize a bill split
// @Description  Lock a split's allocations so guests can settle them
// @Tags         dining
// @Produce      json
// @Param        id path string true "Split ID" format(uuid)
// @Success      200 {object} dto.Response{data=diningapp.SplitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/splits/{id}/finalize [post]
func (h *DiningHandler) FinalizeSplit(c *gin.Context) {
	splitID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.FinalizeBillSplit(ctx, tenantID, splitID)
	})
}

// MarkAllocationPaid godoc
// @Summary      Mark a guest's share paid
// @Description  Settle one guest's allocation of a finalized split
// @Tags         dining
// @Produce      json
// @Param        id path string true "Split ID" format(uuid)
// @Param        guestId path string true "Guest ID" format(uuid)
// @Success      200 {object} dto.Response{data=diningapp.SplitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/splits/{id}/allocations/{guestId}/paid [post]
func (h *DiningHandler) MarkAllocationPaid(c *gin.Context) {
	splitID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	guestID, ok := h.uuidParam(c, "guestId")
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.MarkAllocationPaid(ctx, tenantID, splitID, guestID)
	})
}

// EndSession godoc
// @Summary      End a table session
// @Description  Close the session and free its table
// @Tags         dining
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=diningapp.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/sessions/{id}/end [post]
func (h *DiningHandler) EndSession(c *gin.Context) {
	sessionID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context, tenantID, _ uuid.UUID) (any, error) {
		return h.sessions.EndSession(ctx, tenantID, sessionID)
	})
}

// GuestQRCode godoc
// @Summary      Get a guest QR code
// @Description  Render the guest's join link as a PNG image
// @Tags         dining
// @Produce      image/png
// @Param        id path string true "Session ID" format(uuid)
// @Param        guestId path string true "Guest ID" format(uuid)
// @Param        size query integer false "Image size in pixels, 64 to 1024" default(256)
// @Success      200 {file} binary "PNG image"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dining/sessions/{id}/guests/{guestId}/qrcode [get]
func (h *DiningHandler) GuestQRCode(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	sessionID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	guestID, ok := h.uuidParam(c, "guestId")
	if !ok {
		return
	}

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
				"Invalid query parameter", c.GetString(logger.GinRequestIDKey),
				[]dto.ValidationDetail{{Field: "size", Message: "Must be between 64 and 1024"}},
			))
			return
		}
		size = n
	}

	png, err := h.sessions.GuestQRCode(c.Request.Context(), tenantID, sessionID, guestID, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
