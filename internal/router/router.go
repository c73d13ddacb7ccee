package router

import (
	"context"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/config"
	"github.com/boring-ventures/billar-sub000/internal/handler"
	"github.com/boring-ventures/billar-sub000/internal/infra"
	"github.com/boring-ventures/billar-sub000/internal/metrics"
	"github.com/boring-ventures/billar-sub000/internal/middleware"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/service"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const limiterPurgeInterval = 5 * time.Minute

var (
	anyRole     = []string{model.RoleSeller, model.RoleAdmin, model.RoleSuperAdmin}
	adminRoles  = []string{model.RoleAdmin, model.RoleSuperAdmin}
	superAdmins = []string{model.RoleSuperAdmin}
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// rdb may be nil: stock changes are then not published, the SSE feed answers
// 503 and low-stock alerts are not queued. mailBreaker is only reported on
// /health. ctx bounds the background goroutines the router starts.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailBreaker *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.Middleware())
	if cfg.RateLimitPerMinute > 0 {
		apiLimiter := middleware.NewIPLimiter(cfg.RateLimitPerMinute, time.Minute)
		go apiLimiter.RunPurger(ctx, limiterPurgeInterval)
		r.Use(middleware.RateLimiter(apiLimiter))
	}
	loginLimiter := middleware.NewIPLimiter(20, time.Minute)
	go loginLimiter.RunPurger(ctx, limiterPurgeInterval)

	// ── Change notification ──────────────────────────────────────────────────
	var (
		notifier service.StockNotifier
		feed     handler.StockSubscriber
	)
	if rdb != nil {
		n := worker.NewNotifier(rdb, worker.NewDispatcher(rdb))
		notifier, feed = n, n
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	tableRepo := repository.NewTableRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, companyRepo, cfg)
	companySvc := service.NewCompanyService(companyRepo)
	tableSvc := service.NewTableService(tableRepo, companyRepo, nil)
	sessionSvc := service.NewSessionService(sessionRepo, tableRepo, inventoryRepo, notifier, nil)
	inventorySvc := service.NewInventoryService(inventoryRepo, notifier, nil)
	orderSvc := service.NewOrderService(orderRepo, sessionRepo, inventoryRepo, notifier, nil)
	expenseSvc := service.NewExpenseService(expenseRepo)
	reportSvc := service.NewReportService(reportRepo, companyRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	companiesH := handler.NewCompaniesHandler(companySvc)
	tablesH := handler.NewTablesHandler(tableSvc)
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc, feed)
	ordersH := handler.NewOrdersHandler(orderSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailBreaker))
	r.GET("/metrics", metrics.Handler())

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginLimiter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.POST("/users", middleware.RequireRole(adminRoles...), usersH.Create)

		companies := v1.Group("/companies")
		{
			companies.POST("", middleware.RequireRole(superAdmins...), companiesH.Create)
			companies.GET("", middleware.RequireRole(superAdmins...), companiesH.List)
			companies.GET("/:id", middleware.RequireRole(anyRole...), companiesH.Get)
			companies.PUT("/:id/business-hours", middleware.RequireRole(adminRoles...), companiesH.UpdateBusinessHours)
		}

		tables := v1.Group("/tables")
		{
			tables.GET("", middleware.RequireRole(anyRole...), tablesH.List)
			tables.GET("/:id", middleware.RequireRole(anyRole...), tablesH.Get)
			tables.POST("", middleware.RequireRole(adminRoles...), tablesH.Create)
			tables.PATCH("/:id", middleware.RequireRole(adminRoles...), tablesH.Update)
			tables.POST("/:id/maintenance", middleware.RequireRole(adminRoles...), tablesH.AddMaintenance)
			tables.GET("/:id/maintenance", middleware.RequireRole(adminRoles...), tablesH.ListMaintenance)
		}

		// Sessions and tracked items: every staff role
		sessions := v1.Group("/table-sessions", middleware.RequireRole(anyRole...))
		{
			sessions.POST("", sessionsH.Start)
			sessions.GET("", sessionsH.List)
			sessions.GET("/:id", sessionsH.Get)
			sessions.PATCH("/:id/end", sessionsH.End)
			sessions.PATCH("/:id/cancel", sessionsH.Cancel)
			sessions.GET("/:id/tracked-items", sessionsH.ListTracked)
			sessions.POST("/:id/tracked-items", sessionsH.TrackItems)
			sessions.PATCH("/:id/tracked-items/:trackedItemId", sessionsH.UpdateTracked)
			sessions.DELETE("/:id/tracked-items/:trackedItemId", sessionsH.RemoveTracked)
			sessions.GET("/:id/availability", sessionsH.Availability)
		}

		items := v1.Group("/inventory-items")
		{
			items.GET("", middleware.RequireRole(anyRole...), inventoryH.ListItems)
			items.GET("/alerts", middleware.RequireRole(anyRole...), inventoryH.Alerts)
			items.GET("/events", middleware.RequireRole(anyRole...), inventoryH.Events)
			items.GET("/:id", middleware.RequireRole(anyRole...), inventoryH.GetItem)
			items.GET("/:id/ledger", middleware.RequireRole(anyRole...), inventoryH.Ledger)
			items.POST("", middleware.RequireRole(adminRoles...), inventoryH.CreateItem)
			items.PUT("/:id", middleware.RequireRole(adminRoles...), inventoryH.UpdateItem)
		}

		v1.GET("/inventory-categories", middleware.RequireRole(anyRole...), inventoryH.ListCategories)
		v1.POST("/inventory-categories", middleware.RequireRole(adminRoles...), inventoryH.CreateCategory)

		v1.GET("/stock-movements", middleware.RequireRole(anyRole...), inventoryH.ListMovements)
		v1.POST("/stock-movements", middleware.RequireRole(adminRoles...), inventoryH.RecordMovement)

		orders := v1.Group("/pos-orders")
		{
			orders.POST("", middleware.RequireRole(anyRole...), ordersH.Create)
			orders.GET("", middleware.RequireRole(anyRole...), ordersH.List)
			orders.GET("/:id", middleware.RequireRole(anyRole...), ordersH.Get)
			orders.PATCH("/:id", middleware.RequireRole(anyRole...), ordersH.UpdatePayment)
			orders.DELETE("/:id", middleware.RequireRole(adminRoles...), ordersH.Delete)
		}

		expenses := v1.Group("/expenses", middleware.RequireRole(adminRoles...))
		{
			expenses.POST("", expensesH.Create)
			expenses.GET("", expensesH.List)
			expenses.PUT("/:id", expensesH.Update)
			expenses.DELETE("/:id", expensesH.Delete)
		}

		reports := v1.Group("/financial-reports", middleware.RequireRole(adminRoles...))
		{
			reports.GET("/data", reportsH.Data)
			reports.POST("/generate", reportsH.Generate)
			reports.GET("", reportsH.List)
			reports.GET("/:id", reportsH.Get)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
