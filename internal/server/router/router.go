package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/server/handlers"
	authsvc "github.com/legnamegusta-ctrl/apporgania/internal/service/auth"
)

// New wires the Gin engine with required routes and middlewares.
func New(
	authSvc *authsvc.Service,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	orderHandler *handlers.OrderHandler,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(authMiddleware(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/properties", dashboardHandler.ListProperties)
		authed.GET("/properties/:id/activities", dashboardHandler.ListActivities)
		authed.GET("/properties/:id/kpis", dashboardHandler.GetKPIs)
		authed.GET("/properties/:id/dashboard", dashboardHandler.GetDashboard)
		authed.GET("/properties/:id/report", dashboardHandler.ExportPDF)
		authed.POST("/properties/:id/report/sheet", dashboardHandler.ExportSheet)
		authed.GET("/activities/:id", dashboardHandler.GetActivity)

		authed.GET("/orders", orderHandler.ListOrders)
		authed.PATCH("/orders/:id/checklist", orderHandler.UpdateChecklistItem)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// authMiddleware verifies the bearer token and stores the session on the
// context for handlers downstream.
func authMiddleware(svc *authsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := handlers.BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sessão inválida"})
			return
		}

		session, err := svc.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sessão expirada. Faça login novamente"})
			return
		}

		c.Set(handlers.SessionKey, session)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
