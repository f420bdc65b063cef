package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	"go.uber.org/zap"
)

// StockService writes stock movements and recipes
type StockService interface {
	RecordMovement(ctx context.Context, tenantID uuid.UUID, req inventoryapp.RecordMovementRequest) ([]inventoryapp.StockMovementResponse, error)
	SetRecipe(ctx context.Context, tenantID, menuItemID uuid.UUID, req inventoryapp.SetRecipeRequest) ([]inventoryapp.RecipeIngredientResponse, error)
}

// InventoryHandler serves /inventory
type InventoryHandler struct {
	BaseHandler
	stock StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock StockService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{BaseHandler: newBaseHandler(log), stock: stock}
}

// RecordMovement godoc
// @Summary      Record a stock movement
// @Description  Record a manual stock movement. Transfers answer with both legs.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RecordMovementRequest true "Stock movement"
// @Success      201 {object} dto.Response{data=[]inventoryapp.StockMovementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	tenantID, actorID, ok := h.scope(c)
	if !ok {
		return
	}
	var req inventoryapp.RecordMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actorID

	resp, err := h.stock.RecordMovement(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// SetRecipe godoc
// @Summary      Set a recipe
// @Description  Replace the ingredients deducted when a menu item is served
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        menuItemId path string true "Menu item ID" format(uuid)
// @Param        request body inventoryapp.SetRecipeRequest true "Recipe ingredients"
// @Success      200 {object} dto.Response{data=[]inventoryapp.RecipeIngredientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/recipes/{menuItemId} [put]
func (h *InventoryHandler) SetRecipe(c *gin.Context) {
	tenantID, _, ok := h.scope(c)
	if !ok {
		return
	}
	menuItemID, ok := h.uuidParam(c, "menuItemId")
	if !ok {
		return
	}
	var req inventoryapp.SetRecipeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.stock.SetRecipe(c.Request.Context(), tenantID, menuItemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
