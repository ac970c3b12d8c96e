package router

import (
	"time"

	"inventorywise/internal/handlers"
	"inventorywise/internal/middleware"
	"inventorywise/internal/models"
	"inventorywise/internal/services"
	"inventorywise/pkg/jwt"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由依赖
type Deps struct {
	DB            *gorm.DB
	AlertHub      *services.AlertHub
	ReportService *services.StockReportService
}

// SetupRouter 设置路由
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	registerRoutes(router, deps)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, deps Deps) {
	userService := services.NewUserService(deps.DB)
	roleService := services.NewRoleService(deps.DB)
	permissionService := services.NewPermissionService(deps.DB)
	categoryService := services.NewCategoryService(deps.DB)
	productService := services.NewProductService(deps.DB, deps.AlertHub)
	inventoryService := services.NewInventoryService(deps.DB)

	jwtManager := jwt.GetJWTManager()
	auth := middleware.NewAuthMiddleware(userService, jwtManager)

	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由
		authHandler := handlers.NewAuthHandler(userService, jwtManager)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/profile", auth.RequireAuth(), authHandler.Profile)
		}

		// 用户路由
		userHandler := handlers.NewUserHandler(userService)
		users := api.Group("/users", auth.RequireAuth())
		{
			users.POST("", auth.RequirePermission(models.PermCreateUser), userHandler.Create)
			users.GET("", auth.RequirePermission(models.PermCreateUser), userHandler.List)
			users.GET("/:id", auth.RequirePermission(models.PermCreateUser), userHandler.Get)
			users.PUT("/:id", auth.RequirePermission(models.PermUpdateUser), userHandler.Update)
			users.DELETE("/:id", auth.RequirePermission(models.PermDeleteUser), userHandler.Delete)

			users.POST("/:id/activate", auth.RequirePermission(models.PermUpdateUser), userHandler.Activate)
			users.POST("/:id/deactivate", auth.RequirePermission(models.PermUpdateUser), userHandler.Deactivate)
			users.POST("/:id/reset-password", auth.RequirePermission(models.PermUpdateUser), userHandler.ResetPassword)

			// 用户角色管理
			users.POST("/:id/roles", auth.RequirePermission(models.PermUpdateUser), userHandler.AssignRole)
			users.DELETE("/:id/roles/:role_id", auth.RequirePermission(models.PermUpdateUser), userHandler.RevokeRole)
			users.GET("/:id/roles", auth.RequirePermission(models.PermCreateUser), userHandler.Roles)
			users.GET("/:id/permissions", auth.RequirePermission(models.PermCreateUser), userHandler.Permissions)
		}

		// 角色路由（仅admin角色可管理）
		roleHandler := handlers.NewRoleHandler(roleService)
		roles := api.Group("/roles", auth.RequireAuth(), auth.RequireRole(models.RoleAdmin))
		{
			roles.POST("", roleHandler.Create)
			roles.GET("", roleHandler.List)
			roles.GET("/:name", roleHandler.Get)
			roles.PUT("/:name", roleHandler.Update)
			roles.DELETE("/:name", roleHandler.Delete)

			roles.POST("/:name/permissions", roleHandler.AddPermission)
			roles.DELETE("/:name/permissions", roleHandler.RemovePermission)
			roles.GET("/:name/permissions", roleHandler.Permissions)
		}

		// 权限路由（只读）
		permissionHandler := handlers.NewPermissionHandler(permissionService)
		permissions := api.Group("/permissions", auth.RequireAuth(), auth.RequireRole(models.RoleAdmin))
		{
			permissions.GET("", permissionHandler.List)
			permissions.GET("/:name", permissionHandler.Get)
			permissions.GET("/:name/roles", permissionHandler.Roles)
		}

		// 分类路由
		categoryHandler := handlers.NewCategoryHandler(categoryService)
		categories := api.Group("/categories", auth.RequireAuth())
		{
			categories.POST("", auth.RequirePermission(models.PermEditItem), categoryHandler.Create)
			categories.GET("", auth.RequirePermission(models.PermViewItem), categoryHandler.List)
			categories.GET("/:id", auth.RequirePermission(models.PermViewItem), categoryHandler.Get)
			categories.PUT("/:id", auth.RequirePermission(models.PermEditItem), categoryHandler.Update)
			categories.DELETE("/:id", auth.RequirePermission(models.PermDeleteItem), categoryHandler.Delete)
		}

		// 商品路由
		productHandler := handlers.NewProductHandler(productService)
		products := api.Group("/products", auth.RequireAuth())
		{
			products.POST("", auth.RequirePermission(models.PermEditItem), productHandler.Create)
			products.GET("", auth.RequirePermission(models.PermViewItem), productHandler.List)
			products.GET("/low-stock", auth.RequirePermission(models.PermViewItem), productHandler.LowStock)
			products.GET("/:id", auth.RequirePermission(models.PermViewItem), productHandler.Get)
			products.PUT("/:id", auth.RequirePermission(models.PermEditItem), productHandler.Update)
			products.PATCH("/:id/stock", auth.RequirePermission(models.PermEditItem), productHandler.PatchStock)
			products.DELETE("/:id", auth.RequirePermission(models.PermDeleteItem), productHandler.Delete)
		}

		// 库存台账路由
		inventoryHandler := handlers.NewInventoryHandler(inventoryService)
		inventories := api.Group("/inventories", auth.RequireAuth())
		{
			inventories.GET("", auth.RequirePermission(models.PermViewItem), inventoryHandler.List)
			inventories.GET("/product/:id", auth.RequirePermission(models.PermViewItem), inventoryHandler.GetByProduct)
		}

		// 低库存报告路由
		if deps.ReportService != nil {
			reportHandler := handlers.NewReportHandler(deps.ReportService)
			reports := api.Group("/reports", auth.RequireAuth())
			{
				reports.POST("/stock", auth.RequireRole(models.RoleAdmin), reportHandler.Trigger)
				reports.GET("/stock", auth.RequirePermission(models.PermViewItem), reportHandler.List)
				reports.GET("/stock/preview", auth.RequirePermission(models.PermViewItem), reportHandler.Preview)
			}
		}
	}

	// WebSocket路由（token走查询参数）
	if deps.AlertHub != nil {
		wsHandler := handlers.NewWebSocketHandler(deps.AlertHub, userService, jwtManager)
		router.GET("/ws/stock-alerts", wsHandler.StockAlerts)
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.SuccessRaw(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ping 连通性检查
func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
