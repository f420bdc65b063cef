// Package router assembles the gin engine of the restaurant API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/restaurant/backend/docs"
	"github.com/restaurant/backend/internal/infrastructure/auth"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	apiPrefix   = "/api/v1"
	healthPath  = "/health"
	swaggerPath = "/swagger/*any"
)

// Config holds what the engine needs besides the handlers
type Config struct {
	ServiceName    string
	TracerProvider trace.TracerProvider
	TracingEnabled bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Auth           middleware.AuthConfig
	Logger         *zap.Logger
	// SwaggerEnabled mounts the API docs at /swagger. SwaggerRequireAuth puts
	// them behind the same JWT check as the API.
	SwaggerEnabled     bool
	SwaggerRequireAuth bool
}

// Handlers bundles the HTTP handlers. A nil handler leaves its routes out.
type Handlers struct {
	Orders    *handler.OrderHandler
	Dining    *handler.DiningHandler
	Finance   *handler.FinanceHandler
	Inventory *handler.InventoryHandler
	Ledger    *handler.LedgerHandler
	Health    *handler.HealthHandler
}

// Route is one API endpoint and the roles allowed to call it
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Roles   []string
}

var (
	floorStaff = []string{auth.RoleManager, auth.RoleCashier, auth.RoleWaiter}
	kitchen    = []string{auth.RoleManager, auth.RoleCashier, auth.RoleWaiter, auth.RoleKitchen}
	tillStaff  = []string{auth.RoleManager, auth.RoleCashier}
	managers   = []string{auth.RoleManager}
	stockStaff = []string{auth.RoleManager, auth.RoleKitchen}
)

// Routes lists every API endpoint relative to /api/v1
func Routes(h Handlers) []Route {
	var routes []Route

	if o := h.Orders; o != nil {
		routes = append(routes,
			Route{http.MethodPost, "/orders", o.Create, floorStaff},
			Route{http.MethodGet, "/orders/:id", o.Get, kitchen},
			Route{http.MethodPost, "/orders/:id/items", o.AddItem, floorStaff},
			Route{http.MethodPatch, "/orders/:id/items/:itemId", o.UpdateItemQuantity, floorStaff},
			Route{http.MethodDelete, "/orders/:id/items/:itemId", o.RemoveItem, floorStaff},
			Route{http.MethodPut, "/orders/:id/discount", o.ApplyDiscount, tillStaff},
			Route{http.MethodPut, "/orders/:id/coupon", o.ApplyCoupon, floorStaff},
			Route{http.MethodDelete, "/orders/:id/coupon", o.RemoveCoupon, floorStaff},
			Route{http.MethodPut, "/orders/:id/fees", o.SetFees, tillStaff},
			Route{http.MethodPost, "/orders/:id/loyalty-redemptions", o.RedeemPoints, tillStaff},
			Route{http.MethodPut, "/orders/:id/status", o.UpdateStatus, kitchen},
			Route{http.MethodPost, "/orders/:id/recalculate", o.Recalculate, floorStaff},
			Route{http.MethodPost, "/orders/:id/payments", o.RecordPayment, tillStaff},
			Route{http.MethodPost, "/orders/:id/cancel", o.Cancel, tillStaff},
		)
	}

	if d := h.Dining; d != nil {
		routes = append(routes,
			Route{http.MethodPost, "/dining/tables/:id/sessions", d.StartSession, floorStaff},
			Route{http.MethodPut, "/dining/tables/:id/status", d.UpdateTableStatus, floorStaff},
			Route{http.MethodGet, "/dining/tables/:id/total", d.TableTotal, floorStaff},
			Route{http.MethodGet, "/dining/sessions/:id", d.SessionSummary, floorStaff},
			Route{http.MethodPost, "/dining/sessions/:id/guests", d.JoinGuest, floorStaff},
			Route{http.MethodGet, "/dining/sessions/:id/guests/:guestId/qrcode", d.GuestQRCode, floorStaff},
			Route{http.MethodPost, "/dining/sessions/:id/splits", d.CreateSplit, floorStaff},
			Route{http.MethodPost, "/dining/sessions/:id/end", d.EndSession, floorStaff},
			Route{http.MethodPost, "/dining/guests/:id/recalculate", d.RecalculateGuest, floorStaff},
			Route{http.MethodPost, "/dining/order-items/:id/reassign", d.ReassignItem, floorStaff},
			Route{http.MethodPost, "/dining/splits/:id/finalize", d.FinalizeSplit, floorStaff},
			Route{http.MethodPost, "/dining/splits/:id/allocations/:guestId/paid", d.MarkAllocationPaid, tillStaff},
		)
	}

	if f := h.Finance; f != nil {
		routes = append(routes,
			Route{http.MethodPost, "/finance/shifts", f.OpenShift, tillStaff},
			Route{http.MethodGet, "/finance/shifts/:id", f.GetShift, tillStaff},
			Route{http.MethodPost, "/finance/shifts/:id/close", f.CloseShift, tillStaff},
			Route{http.MethodPost, "/finance/shifts/:id/movements", f.RecordMovement, tillStaff},
		)
	}

	if i := h.Inventory; i != nil {
		routes = append(routes,
			Route{http.MethodPost, "/inventory/movements", i.RecordMovement, stockStaff},
			Route{http.MethodPut, "/inventory/recipes/:menuItemId", i.SetRecipe, managers},
		)
	}

	if l := h.Ledger; l != nil {
		routes = append(routes,
			Route{http.MethodPost, "/ledger/rebuild/stock", l.RebuildStock, managers},
			Route{http.MethodPost, "/ledger/rebuild/cash-registers/:id", l.RebuildCashRegister, managers},
			Route{http.MethodPost, "/ledger/rebuild/customers/:id", l.RebuildCustomer, managers},
			Route{http.MethodGet, "/ledger/audit", l.Audit, managers},
		)
	}

	return routes
}

// New builds the engine with the middleware chain and every route
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.TracingEnabled {
		engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracerProvider))
	}

	if h.Health != nil {
		engine.GET(healthPath, h.Health.Check)
	}

	authCfg := cfg.Auth
	if authCfg.Logger == nil {
		authCfg.Logger = log
	}

	if cfg.SwaggerEnabled {
		docs := []gin.HandlerFunc{ginSwagger.WrapHandler(swaggerFiles.Handler)}
		if cfg.SwaggerRequireAuth {
			docs = append([]gin.HandlerFunc{middleware.JWTAuth(authCfg)}, docs...)
		}
		engine.GET(swaggerPath, docs...)
	}

	api := engine.Group(apiPrefix,
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.JWTAuth(authCfg),
		middleware.SpanIdentity(),
		middleware.IdempotencyKey(),
	)
	for _, r := range Routes(h) {
		api.Handle(r.Method, r.Path, middleware.RequireRole(r.Roles...), r.Handler)
	}

	return engine, nil
}
