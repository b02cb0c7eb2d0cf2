package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/handlers"
	"game_store_backend/internal/middleware"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/realtime"
	"game_store_backend/internal/repositories"
	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "game_store_backend/internal/docs"
)

// Deps carries the infrastructure the routes are built on. Redis, Cache,
// Carts, Limiter and Hub may be nil; the matching features then degrade.
type Deps struct {
	DB             *sql.DB
	Redis          *redis.Client
	Cache          *cache.Cache
	Carts          *cache.CartStore
	Limiter        *cache.SlidingWindowLimiter
	Notifier       notify.Notifier
	Tokens         *utils.TokenManager
	Hub            *realtime.Hub
	AllowedOrigins []string
}

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Staff     *handlers.StaffHandler
	Client    *handlers.ClientHandler
	Gaming    *handlers.GamingHandler
	Inventory *handlers.InventoryHandler
	Order     *handlers.OrderHandler
	Booking   *handlers.BookingHandler
	Repair    *handlers.RepairHandler
	Content   *handlers.ContentHandler
	Setting   *handlers.SettingHandler
	Report    *handlers.ReportHandler
	Admin     *handlers.AdminHandler
	Platform  *handlers.PlatformHandler
}

// NewHandlers wires repositories and services into handlers.
func NewHandlers(d Deps) Handlers {
	db := d.DB

	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	pointsRepo := repositories.NewPointsRepository(db)
	consoleRepo := repositories.NewConsoleRepository(db)
	pricingRepo := repositories.NewPricingRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	productRepo := repositories.NewProductRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	repairRepo := repositories.NewRepairRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	blogRepo := repositories.NewBlogRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	statsRepo := repositories.NewStatsRepository(db)
	tx := repositories.NewTxRunner(db)

	// A nil *CartStore must not reach the interface as a typed nil.
	var carts services.CartStore
	if d.Carts != nil {
		carts = d.Carts
	}

	// Services
	settingService := services.NewSettingService(settingRepo, d.Cache)
	authService := services.NewAuthService(authRepo, db, tx, d.Tokens, d.Notifier)
	staffService := services.NewStaffService(authRepo, db, d.Notifier)
	shiftService := services.NewShiftService(shiftRepo, db)
	clientService := services.NewClientService(clientRepo, db)
	pointsService := services.NewPointsService(clientRepo, pointsRepo, tx)
	consoleService := services.NewConsoleService(consoleRepo, tx, db, d.Cache)
	pricingService := services.NewPricingService(pricingRepo, db, d.Cache)
	sessionService := services.NewSessionService(services.SessionDeps{
		Sessions:  sessionRepo,
		Consoles:  consoleRepo,
		Pricing:   pricingRepo,
		Products:  productRepo,
		Movements: movementRepo,
		Sales:     saleRepo,
		Clients:   clientRepo,
		Points:    pointsRepo,
		Tx:        tx,
		DB:        db,
		Config:    settingService,
		Notifier:  d.Notifier,
		Cache:     d.Cache,
	})
	productService := services.NewProductService(productRepo, movementRepo, tx, db, d.Cache)
	saleService := services.NewSaleService(saleRepo, productRepo, movementRepo, clientRepo, pointsRepo, tx, settingService)
	cartService := services.NewCartService(carts, productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, movementRepo, clientRepo, carts, tx, settingService)
	reservationService := services.NewReservationService(reservationRepo, consoleRepo, db, d.Notifier)
	repairService := services.NewRepairService(repairRepo, clientRepo, db, d.Notifier, d.Cache)
	blogService := services.NewBlogService(blogRepo, db, d.Cache)
	contactService := services.NewContactService(d.Notifier)
	expenseService := services.NewExpenseService(expenseRepo, db)
	statsService := services.NewStatsService(statsRepo, expenseRepo)
	adminService := services.NewAdminService(adminRepo, db, d.Cache)

	checks := map[string]handlers.HealthCheck{"database": db.PingContext}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }
	}

	return Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Staff:     handlers.NewStaffHandler(staffService, shiftService),
		Client:    handlers.NewClientHandler(clientService, pointsService),
		Gaming:    handlers.NewGamingHandler(consoleService, pricingService, sessionService),
		Inventory: handlers.NewInventoryHandler(productService, saleService),
		Order:     handlers.NewOrderHandler(cartService, orderService),
		Booking:   handlers.NewBookingHandler(reservationService),
		Repair:    handlers.NewRepairHandler(repairService),
		Content:   handlers.NewContentHandler(blogService, contactService),
		Setting:   handlers.NewSettingHandler(settingService),
		Report:    handlers.NewReportHandler(statsService, expenseService),
		Admin:     handlers.NewAdminHandler(adminService),
		Platform:  handlers.NewPlatformHandler(checks, d.Hub),
	}
}

// New builds the gin engine with the full route tree.
func New(d Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), utils.GinLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = d.AllowedOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", handlers.HeaderCartID}
	corsCfg.ExposeHeaders = []string{handlers.HeaderCartID, "X-Request-ID", "Retry-After"}
	corsCfg.AllowCredentials = true
	corsCfg.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsCfg))

	Setup(engine, d, NewHandlers(d))
	return engine
}

// Setup registers every route on engine.
func Setup(engine *gin.Engine, d Deps, h Handlers) {
	// A nil *SlidingWindowLimiter must not become a non-nil interface.
	var limiter middleware.Limiter
	if d.Limiter != nil {
		limiter = d.Limiter
	}
	limit := func(scope string) gin.HandlerFunc { return middleware.RateLimit(limiter, scope) }

	engine.GET("/ping", h.Platform.Ping)
	engine.GET("/health", h.Platform.Health)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Route not found.", c.Request.URL.Path))
	})

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), h.Auth, limit)
	SetupPublicRoutes(apiV1.Group("/public"), h, limit)
	SetupCartRoutes(apiV1, h.Order, limit)

	apiV1.GET("/realtime", middleware.WebSocketAuthMiddleware(d.Tokens), h.Platform.Realtime)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(d.Tokens))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), h.Auth)
		SetupStaffRoutes(authenticated, h.Staff)
		SetupShiftRoutes(authenticated, h.Staff)
		SetupClientRoutes(authenticated, h.Client)
		SetupConsoleRoutes(authenticated, h.Gaming)
		SetupPricingRoutes(authenticated, h.Gaming)
		SetupSessionRoutes(authenticated, h.Gaming)
		SetupProductRoutes(authenticated, h.Inventory)
		SetupSaleRoutes(authenticated, h.Inventory)
		SetupOrderRoutes(authenticated, h.Order)
		SetupReservationRoutes(authenticated, h.Booking)
		SetupRepairRoutes(authenticated, h.Repair)
		SetupBlogRoutes(authenticated, h.Content)
		SetupSettingsRoutes(authenticated, h.Setting)
		SetupReportRoutes(authenticated, h.Report)
		SetupAdminRoutes(authenticated, h.Admin, limit)
	}
}

// SetupPublicAuthRoutes registers login, refresh and password reset.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler, limit func(string) gin.HandlerFunc) {
	group.POST("/login", limit("login"), authHandler.Login)
	group.POST("/refresh", authHandler.Refresh)
	group.POST("/password-reset", limit("password_reset"), authHandler.RequestPasswordReset)
	group.POST("/password-reset/confirm", limit("password_reset"), authHandler.ResetPassword)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.Logout)
	group.GET("/me", authHandler.Me)
	group.PUT("/password", authHandler.ChangePassword)
	group.PATCH("/onboarding", authHandler.UpdateOnboarding)
}
