package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService records staff-initiated stock movements and maintains recipes
type StockService struct {
	txScope unitofwork.TransactionScope
	policy  inventory.DeductionPolicy
	logger  *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(txScope unitofwork.TransactionScope, policy inventory.DeductionPolicy, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{txScope: txScope, policy: policy, logger: logger}
}

// RecordMovement applies a manual movement. A transfer writes a transfer row
// at the source branch and an in row at the target branch.
func (s *StockService) RecordMovement(ctx context.Context, tenantID uuid.UUID, req RecordMovementRequest) ([]StockMovementResponse, error) {
	movementType := inventory.MovementType(req.Type)
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if movementType == inventory.MovementTypeTransfer {
		if req.TargetBranchID == nil || *req.TargetBranchID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_TRANSFER", "Transfers need a target branch")
		}
		if *req.TargetBranchID == req.BranchID {
			return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and target branch must differ")
		}
	}

	var movements []inventory.StockMovement
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		actor := req.CreatedBy
		referenceType := inventory.ReferenceTypeManual
		var referenceID *uuid.UUID
		if movementType == inventory.MovementTypeTransfer {
			id := uuid.New()
			referenceType = inventory.ReferenceTypeTransfer
			referenceID = &id
		}

		out, err := applyMovement(ctx, repos, tenantID, req.BranchID, req.InventoryItemID, inventory.MovementRequest{
			Type:          movementType,
			Quantity:      req.Quantity,
			Reason:        req.Reason,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
			CreatedBy:     &actor,
			AllowNegative: s.policy.AllowNegativeOnManual,
		})
		if err != nil {
			return err
		}
		movements = append(movements, *out)

		if movementType == inventory.MovementTypeTransfer {
			in, err := applyMovement(ctx, repos, tenantID, *req.TargetBranchID, req.InventoryItemID, inventory.MovementRequest{
				Type:          inventory.MovementTypeIn,
				Quantity:      out.Quantity,
				Reason:        req.Reason,
				ReferenceType: referenceType,
				ReferenceID:   referenceID,
				CreatedBy:     &actor,
			})
			if err != nil {
				return err
			}
			movements = append(movements, *in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock movement recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("inventory_item_id", req.InventoryItemID.String()),
		zap.String("type", req.Type),
		zap.String("quantity", movements[0].Quantity.String()),
	)
	return ToStockMovementResponses(movements), nil
}

// SetRecipe replaces the ingredients of a menu item. An empty list removes
// the recipe, after which the dish has no stock effect.
func (s *StockService) SetRecipe(ctx context.Context, tenantID, menuItemID uuid.UUID, req SetRecipeRequest) ([]RecipeIngredientResponse, error) {
	seen := make(map[uuid.UUID]bool, len(req.Ingredients))
	ingredients := make([]inventory.RecipeIngredient, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		if seen[in.InventoryItemID] {
			return nil, shared.NewDomainError("INVALID_RECIPE", "Each inventory item may appear once per recipe")
		}
		seen[in.InventoryItemID] = true
		ri, err := inventory.NewRecipeIngredient(tenantID, menuItemID, in.InventoryItemID, in.QuantityPerUnit)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, *ri)
	}

	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		return repos.Recipes().ReplaceForMenuItem(ctx, tenantID, menuItemID, ingredients)
	})
	if err != nil {
		return nil, err
	}

	out := make([]RecipeIngredientResponse, len(ingredients))
	for i, ri := range ingredients {
		out[i] = RecipeIngredientResponse{InventoryItemID: ri.InventoryItemID, QuantityPerUnit: ri.QuantityPerUnit}
	}
	return out, nil
}
