package router

import (
	"time"

	"backoffice/internal/config"
	"backoffice/internal/handler"
	"backoffice/internal/infra"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer, shared by the HTTP router, the scheduler
// and the command-line tool.
type Services struct {
	Auth       service.AuthService
	Products   service.ProductService
	Inventory  service.InventoryService
	Sales      service.SaleService
	Bank       service.BankService
	Drawings   service.DrawingService
	Historical service.HistoricalSaleService
	Reports    service.ReportService
}

// NewServices wires Service ← Repository ← DB/Redis. rdb and queue may be
// nil, which disables caching and low-stock alerts.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, queue worker.Enqueuer) (*Services, error) {
	policy, err := service.ParseOversellPolicy(cfg.OversellPolicy)
	if err != nil {
		return nil, err
	}
	var cache *infra.Cache
	if rdb != nil {
		cache = infra.NewCache(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	receiptRepo := repository.NewStockReceiptRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	historyRepo := repository.NewCostHistoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	bankRepo := repository.NewBankRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	historicalRepo := repository.NewHistoricalSaleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	bankSvc := service.NewBankService(bankRepo, cache, cfg.Currency)
	return &Services{
		Auth:      service.NewAuthService(userRepo, cfg),
		Products:  service.NewProductService(productRepo, historyRepo, cache, cfg.Currency),
		Inventory: service.NewInventoryService(productRepo, receiptRepo, movementRepo, historyRepo, bankSvc, cache),
		Sales: service.NewSaleService(saleRepo, productRepo, movementRepo, bankSvc, cache, queue, service.SaleOptions{
			Policy:       policy,
			NotifyEmail:  cfg.NotifyEmail,
			BusinessName: cfg.BusinessName,
			Currency:     cfg.Currency,
		}),
		Bank:       bankSvc,
		Drawings:   service.NewDrawingService(drawingRepo, bankSvc, cache),
		Historical: service.NewHistoricalSaleService(historicalRepo, cache),
		Reports: service.NewReportService(productRepo, saleRepo, historicalRepo, bankRepo, drawingRepo,
			cache, cfg.Currency, cfg.BusinessName),
	}, nil
}

// New returns a configured Gin engine. Dependency graph: Handler ← Service.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svc *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(200, time.Minute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	usersH := handler.NewUsersHandler(svc.Auth)
	productsH := handler.NewProductsHandler(svc.Products)
	inventoryH := handler.NewInventoryHandler(svc.Inventory)
	salesH := handler.NewSalesHandler(svc.Sales)
	bankH := handler.NewBankHandler(svc.Bank, svc.Drawings)
	historicalH := handler.NewHistoricalSalesHandler(svc.Historical)
	reportsH := handler.NewReportsHandler(svc.Reports)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	r.GET("/v1/price/:sku", productsH.PriceLookup)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	staff := middleware.RequireRole(model.RoleClerk, model.RoleOwner)
	owner := middleware.RequireRole(model.RoleOwner)
	{
		v1.GET("/products", staff, productsH.List)
		v1.GET("/products/:id", staff, productsH.Get)
		v1.GET("/products/:id/cost-history", staff, productsH.CostHistory)
		v1.POST("/products", owner, productsH.Create)
		v1.PUT("/products/:id", owner, productsH.Update)

		inv := v1.Group("/inventory", staff)
		{
			inv.POST("/receipts", inventoryH.ReceiveStock)
			inv.GET("/receipts", inventoryH.ListReceipts)
			inv.GET("/movements", inventoryH.ListMovements)
		}

		sales := v1.Group("/sales", staff)
		{
			sales.POST("", salesH.RecordSale)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt", salesH.Receipt)
		}

		bank := v1.Group("/bank", owner)
		{
			bank.POST("/accounts", bankH.CreateAccount)
			bank.GET("/accounts", bankH.ListAccounts)
			bank.GET("/accounts/:id/reconcile", bankH.Reconcile)
			bank.POST("/transactions", bankH.RecordTransaction)
			bank.GET("/transactions", bankH.ListTransactions)
			bank.POST("/transactions/:id/reverse", bankH.ReverseTransaction)
			bank.GET("/dashboard", bankH.Dashboard)
		}

		drawings := v1.Group("/drawings", owner)
		{
			drawings.POST("", bankH.RecordDrawing)
			drawings.GET("", bankH.ListDrawings)
			drawings.POST("/:id/post", bankH.PostDrawing)
		}

		hist := v1.Group("/historical-sales", owner)
		{
			hist.POST("", historicalH.Create)
			hist.GET("", historicalH.List)
			hist.POST("/import", historicalH.Import)
		}

		v1.GET("/reports/dashboard", staff, reportsH.Dashboard)

		users := v1.Group("/users", owner)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
