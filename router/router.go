package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/controllers"
	"github.com/yeremiapane/queue-app/middlewares"
	"github.com/yeremiapane/queue-app/services"
	"gorm.io/gorm"
)

// Deps are the shared services the handlers are built from.
type Deps struct {
	DB           *gorm.DB
	Queue        *services.QueueService
	Analytics    *services.AnalyticsService
	Settings     *services.SettingsService
	CORSOrigin   string
	SecureCookie bool
	// AuthLimiter guards login and register; nil means the strict default.
	AuthLimiter gin.HandlerFunc
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))

	userCtrl := controllers.NewUserController(d.DB)
	userCtrl.SecureCookie = d.SecureCookie
	tokenCtrl := controllers.NewTokenController(d.Queue, d.Analytics)
	tableCtrl := controllers.NewTableController(d.Queue)
	queueCtrl := controllers.NewQueueController(d.Queue, d.Analytics)
	settingsCtrl := controllers.NewSettingsController(d.Settings, d.Queue)
	logCtrl := controllers.NewLogController(d.DB)
	analyticsCtrl := controllers.NewAnalyticsController(d.Analytics)
	controllers.AllowedOrigin = d.CORSOrigin

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.GET("/public/queue", queueCtrl.PublicQueue)

	// Rate limiter for login/register
	authPublic := api.Group("/auth")
	if d.AuthLimiter == nil {
		d.AuthLimiter = middlewares.NewStrictRateLimiter()
	}
	authPublic.Use(d.AuthLimiter)
	{
		authPublic.POST("/register", middlewares.OptionalAuth(), userCtrl.Register)
		authPublic.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/auth/logout", userCtrl.Logout)
	auth.GET("/auth/me", userCtrl.GetProfile)
	auth.GET("/ws", controllers.QueueSocketHandler)

	// TOKENS
	auth.GET("/tokens", tokenCtrl.GetTokens)
	auth.POST("/tokens", tokenCtrl.CreateToken)
	auth.GET("/tokens/:id", tokenCtrl.GetTokenByID)
	auth.PATCH("/tokens/:id", tokenCtrl.UpdateToken)
	auth.DELETE("/tokens/:id", tokenCtrl.CancelToken)
	auth.POST("/tokens/:id/assign", tokenCtrl.AssignTable)
	auth.POST("/tokens/:id/complete", tokenCtrl.CompleteToken)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/:id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:id", tableCtrl.UpdateTable)

	// QUEUE
	auth.POST("/queue/auto-assign", queueCtrl.AutoAssign)
	auth.POST("/queue/check-timeouts", queueCtrl.CheckTimeouts)
	auth.GET("/queue/match", queueCtrl.Match)

	auth.GET("/settings", settingsCtrl.GetSettings)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := auth.Group("")
	admin.Use(middlewares.RequireAdmin())
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.DELETE("/tables/:id", tableCtrl.DeleteTable)
		admin.PATCH("/settings", settingsCtrl.UpdateSettings)
		admin.GET("/logs", logCtrl.GetLogs)
		admin.GET("/analytics", analyticsCtrl.GetAnalytics)
		admin.POST("/analytics/refresh", analyticsCtrl.RefreshAnalytics)
	}

	return r
}
