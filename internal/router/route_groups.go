package router

import (
	"game_store_backend/internal/handlers"
	"game_store_backend/internal/middleware"
	"game_store_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	ownerOnly = middleware.RoleAuthMiddleware(models.RoleOwner)
	anyStaff  = middleware.RoleAuthMiddleware(models.RoleOwner, models.RoleWorker)
)

// SetupPublicRoutes sets up the storefront routes that need no account.
func SetupPublicRoutes(public *gin.RouterGroup, h Handlers, limit func(string) gin.HandlerFunc) {
	public.GET("/products", h.Inventory.ListPublicProducts)
	public.GET("/products/:id", h.Inventory.GetPublicProduct)
	public.GET("/categories", h.Inventory.Categories)

	public.GET("/consoles/counter", h.Gaming.ConsoleCounter)
	public.GET("/pricing", h.Gaming.ListActivePricing)

	public.GET("/services", h.Repair.ListPublicServices)
	public.POST("/service-requests", limit("service_request"), h.Repair.CreateRequest)

	public.POST("/reservations", limit("reservation"), h.Booking.CreateReservation)

	public.GET("/posts", h.Content.ListPublishedPosts)
	public.GET("/posts/:id", h.Content.GetPublishedPost)
	public.POST("/posts/:id/view", h.Content.RegisterView)

	public.POST("/contact", limit("contact"), h.Content.SendContact)

	public.GET("/theme", h.Setting.Theme)
	public.GET("/features", h.Setting.Features)
}

// SetupCartRoutes sets up the anonymous cart, checkout and order tracking.
func SetupCartRoutes(apiGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, limit func(string) gin.HandlerFunc) {
	cartRoutes := apiGroup.Group("/cart")
	{
		cartRoutes.GET("", orderHandler.GetCart)
		cartRoutes.DELETE("", orderHandler.ClearCart)
		cartRoutes.POST("/items", orderHandler.AddToCart)
		cartRoutes.PATCH("/items/:productId", orderHandler.UpdateCartItem)
		cartRoutes.DELETE("/items/:productId", orderHandler.RemoveCartItem)
	}
	apiGroup.POST("/checkout", limit("checkout"), orderHandler.Checkout)
	apiGroup.GET("/track/:number", orderHandler.TrackOrder)
}

// SetupStaffRoutes sets up the staff account routes (owner only).
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	staffRoutes := authenticatedGroup.Group("/staff")
	staffRoutes.Use(ownerOnly)
	{
		staffRoutes.POST("", staffHandler.CreateStaff)
		staffRoutes.GET("", staffHandler.ListStaff)
		staffRoutes.GET("/:id", staffHandler.GetStaff)
		staffRoutes.PUT("/:id", staffHandler.UpdateStaff)
		staffRoutes.DELETE("/:id", staffHandler.DeleteStaff)
	}
}

// SetupShiftRoutes sets up clock in/out. Workers only see their own history.
func SetupShiftRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	shiftRoutes.Use(anyStaff)
	{
		shiftRoutes.POST("/clock-in", staffHandler.ClockIn)
		shiftRoutes.POST("/clock-out", staffHandler.ClockOut)
		shiftRoutes.GET("/me", staffHandler.MyShiftStatus)
		shiftRoutes.GET("", staffHandler.ShiftHistory)
		shiftRoutes.GET("/active", ownerOnly, staffHandler.ActiveShifts)
	}
}

// SetupClientRoutes sets up client records and the points ledger.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	clientRoutes.Use(anyStaff)
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/phone/:phone", clientHandler.GetClientByPhone)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", ownerOnly, clientHandler.DeleteClient)
		clientRoutes.GET("/:id/points", clientHandler.PointsBalance)
		clientRoutes.POST("/:id/points/reconcile", ownerOnly, clientHandler.ReconcilePoints)
	}

	pointsRoutes := authenticatedGroup.Group("/points")
	pointsRoutes.Use(anyStaff)
	{
		pointsRoutes.GET("", clientHandler.PointsHistory)
		pointsRoutes.POST("", ownerOnly, clientHandler.CreatePointsTransaction)
		pointsRoutes.POST("/redeem", clientHandler.RedeemPoints)
	}
}

func SetupConsoleRoutes(authenticatedGroup *gin.RouterGroup, gamingHandler *handlers.GamingHandler) {
	consoleRoutes := authenticatedGroup.Group("/consoles")
	consoleRoutes.Use(anyStaff)
	{
		consoleRoutes.GET("", gamingHandler.ListConsoles)
		consoleRoutes.GET("/counter", gamingHandler.ConsoleCounter)
		consoleRoutes.GET("/:id", gamingHandler.GetConsole)
		consoleRoutes.PATCH("/:id/maintenance", gamingHandler.SetMaintenance)
		consoleRoutes.POST("", ownerOnly, gamingHandler.CreateConsole)
		consoleRoutes.PUT("/:id", ownerOnly, gamingHandler.UpdateConsole)
		consoleRoutes.DELETE("/:id", ownerOnly, gamingHandler.DeleteConsole)
	}
}

func SetupPricingRoutes(authenticatedGroup *gin.RouterGroup, gamingHandler *handlers.GamingHandler) {
	pricingRoutes := authenticatedGroup.Group("/pricing")
	pricingRoutes.Use(anyStaff)
	{
		pricingRoutes.GET("", gamingHandler.ListAllPricing)
		pricingRoutes.GET("/active", gamingHandler.ListActivePricing)
		pricingRoutes.GET("/:id", gamingHandler.GetPricing)
		pricingRoutes.POST("", ownerOnly, gamingHandler.CreatePricing)
		pricingRoutes.PUT("/:id", ownerOnly, gamingHandler.UpdatePricing)
		pricingRoutes.DELETE("/:id", ownerOnly, gamingHandler.DeletePricing)
	}
}

// SetupSessionRoutes sets up gaming session lifecycle routes.
func SetupSessionRoutes(authenticatedGroup *gin.RouterGroup, gamingHandler *handlers.GamingHandler) {
	sessionRoutes := authenticatedGroup.Group("/sessions")
	sessionRoutes.Use(anyStaff)
	{
		sessionRoutes.POST("", gamingHandler.StartSession)
		sessionRoutes.GET("", gamingHandler.ListSessions)
		sessionRoutes.GET("/active", gamingHandler.ActiveSessions)
		sessionRoutes.GET("/today", gamingHandler.TodaySessions)
		sessionRoutes.GET("/:id", gamingHandler.GetSession)
		sessionRoutes.PATCH("/:id/progress", gamingHandler.UpdateProgress)
		sessionRoutes.POST("/:id/end", gamingHandler.EndSession)
		sessionRoutes.GET("/:id/consumptions", gamingHandler.ListConsumptions)
		sessionRoutes.POST("/:id/consumptions", gamingHandler.AddConsumption)
		sessionRoutes.DELETE("/:id/consumptions/:itemId", gamingHandler.RemoveConsumption)
	}
}

// SetupProductRoutes sets up the catalog and stock movement routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(anyStaff)
	{
		productRoutes.GET("", inventoryHandler.ListProducts)
		productRoutes.GET("/categories", inventoryHandler.Categories)
		productRoutes.GET("/low-stock", inventoryHandler.LowStock)
		productRoutes.GET("/:id", inventoryHandler.GetProduct)
		productRoutes.POST("/:id/stock", inventoryHandler.AdjustStock)
		productRoutes.POST("", ownerOnly, inventoryHandler.CreateProduct)
		productRoutes.PUT("/:id", ownerOnly, inventoryHandler.UpdateProduct)
		productRoutes.DELETE("/:id", ownerOnly, inventoryHandler.DeleteProduct)
	}
	authenticatedGroup.GET("/stock-movements", anyStaff, inventoryHandler.ListMovements)
}

func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	saleRoutes.Use(anyStaff)
	{
		saleRoutes.POST("", inventoryHandler.CreateSale)
		saleRoutes.GET("", inventoryHandler.ListSales)
		saleRoutes.GET("/today", inventoryHandler.TodaySales)
		saleRoutes.GET("/:id", inventoryHandler.GetSale)
		saleRoutes.DELETE("/:id", ownerOnly, inventoryHandler.DeleteSale)
	}
}

// SetupOrderRoutes sets up back-office management of online orders.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(anyStaff)
	{
		orderRoutes.GET("", orderHandler.ListOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrder)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		orderRoutes.PATCH("/:id/payment", orderHandler.UpdateOrderPayment)
		orderRoutes.DELETE("/:id", ownerOnly, orderHandler.DeleteOrder)
	}
}

func SetupReservationRoutes(authenticatedGroup *gin.RouterGroup, bookingHandler *handlers.BookingHandler) {
	reservationRoutes := authenticatedGroup.Group("/reservations")
	reservationRoutes.Use(anyStaff)
	{
		reservationRoutes.GET("", bookingHandler.ListReservations)
		reservationRoutes.GET("/:id", bookingHandler.GetReservation)
		reservationRoutes.PATCH("/:id/confirm", bookingHandler.ConfirmReservation)
		reservationRoutes.PATCH("/:id/cancel", bookingHandler.CancelReservation)
		reservationRoutes.PATCH("/:id/complete", bookingHandler.CompleteReservation)
		reservationRoutes.PATCH("/:id/no-show", bookingHandler.NoShowReservation)
		reservationRoutes.DELETE("/:id", ownerOnly, bookingHandler.DeleteReservation)
	}
}

// SetupRepairRoutes sets up the repair catalog and request desk.
func SetupRepairRoutes(authenticatedGroup *gin.RouterGroup, repairHandler *handlers.RepairHandler) {
	serviceRoutes := authenticatedGroup.Group("/services")
	serviceRoutes.Use(anyStaff)
	{
		serviceRoutes.GET("", repairHandler.ListServices)
		serviceRoutes.GET("/:id", repairHandler.GetService)
		serviceRoutes.POST("", ownerOnly, repairHandler.CreateService)
		serviceRoutes.PUT("/:id", ownerOnly, repairHandler.UpdateService)
		serviceRoutes.DELETE("/:id", ownerOnly, repairHandler.DeleteService)
	}

	requestRoutes := authenticatedGroup.Group("/service-requests")
	requestRoutes.Use(anyStaff)
	{
		requestRoutes.POST("", repairHandler.CreateRequest)
		requestRoutes.GET("", repairHandler.ListRequests)
		requestRoutes.GET("/today", repairHandler.TodayRequests)
		requestRoutes.GET("/:id", repairHandler.GetRequest)
		requestRoutes.PUT("/:id", repairHandler.UpdateRequest)
		requestRoutes.DELETE("/:id", ownerOnly, repairHandler.DeleteRequest)
	}
}

func SetupBlogRoutes(authenticatedGroup *gin.RouterGroup, contentHandler *handlers.ContentHandler) {
	blogRoutes := authenticatedGroup.Group("/posts")
	blogRoutes.Use(anyStaff)
	{
		blogRoutes.GET("", contentHandler.ListPosts)
		blogRoutes.GET("/:id", contentHandler.GetPost)
		blogRoutes.POST("", ownerOnly, contentHandler.CreatePost)
		blogRoutes.PUT("/:id", ownerOnly, contentHandler.UpdatePost)
		blogRoutes.DELETE("/:id", ownerOnly, contentHandler.DeletePost)
	}
}

// SetupSettingsRoutes sets up store settings. Reads are open to staff.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	settingsRoutes := authenticatedGroup.Group("/settings")
	settingsRoutes.Use(anyStaff)
	{
		settingsRoutes.GET("", settingHandler.GetSettings)
		settingsRoutes.GET("/config", settingHandler.StoreConfig)
		settingsRoutes.PUT("/:key", ownerOnly, settingHandler.UpsertSetting)
		settingsRoutes.DELETE("/:key", ownerOnly, settingHandler.DeleteSetting)
	}
}

// SetupReportRoutes sets up statistics and the expense ledger (owner only).
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	statsRoutes := authenticatedGroup.Group("/stats")
	statsRoutes.Use(ownerOnly)
	{
		statsRoutes.GET("/today", reportHandler.TodayStats)
		statsRoutes.GET("/monthly", reportHandler.MonthlyStats)
		statsRoutes.GET("/analytics", reportHandler.Analytics)
	}

	expenseRoutes := authenticatedGroup.Group("/expenses")
	expenseRoutes.Use(ownerOnly)
	{
		expenseRoutes.POST("", reportHandler.CreateExpense)
		expenseRoutes.GET("", reportHandler.ListExpenses)
		expenseRoutes.GET("/:id", reportHandler.GetExpense)
		expenseRoutes.PUT("/:id", reportHandler.UpdateExpense)
		expenseRoutes.DELETE("/:id", reportHandler.DeleteExpense)
	}
}

// SetupAdminRoutes sets up the owner data export and retention cleanup.
func SetupAdminRoutes(authenticatedGroup *gin.RouterGroup, adminHandler *handlers.AdminHandler, limit func(string) gin.HandlerFunc) {
	adminRoutes := authenticatedGroup.Group("/admin")
	adminRoutes.Use(ownerOnly)
	{
		adminRoutes.GET("/export", limit("admin_export"), adminHandler.Export)
		adminRoutes.DELETE("/cleanup", limit("admin_cleanup"), adminHandler.Cleanup)
	}
}
