package router

import (
	"usertemplate/backend/internal/auth"
	"usertemplate/backend/internal/handlers"
	"usertemplate/backend/internal/middleware"
	"usertemplate/backend/internal/models"
	"usertemplate/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the router wires into routes.
type Deps struct {
	Handler  *handlers.Handler
	Tokens   *auth.TokenManager
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// SetupRouter builds the gin engine with middleware and every route.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.GinZap(d.Logger))
	router.Use(middleware.GinRecovery(d.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	router.GET("/health", d.Handler.HealthHandler)

	setupAuthRoutes(router, d)
	setupV1Routes(router, d)

	return router
}

func setupAuthRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterHandler)
		authRoutes.POST("/login", h.LoginHandler)
		authRoutes.POST("/logout", d.Tokens.AuthMiddleware(), h.LogoutHandler)
		authRoutes.POST("/forgot-password", h.ForgotPasswordHandler)
		authRoutes.POST("/reset-password", h.ResetPasswordHandler)
		authRoutes.GET("/email-available", h.EmailAvailableHandler)
	}
}

func setupV1Routes(r *gin.Engine, d Deps) {
	h := d.Handler
	apiV1 := r.Group("/api/v1")
	apiV1.Use(d.Tokens.AuthMiddleware())
	{
		me := apiV1.Group("/me")
		{
			me.GET("", h.GetMeHandler)
			me.PUT("", h.UpdateMeHandler)
			me.PUT("/password", h.UpdateMyPasswordHandler)
		}

		users := apiV1.Group("/users")
		{
			users.GET("", auth.RequireRoles(models.RoleAdmin, models.RoleManager), h.ListUsersHandler)

			admin := users.Group("/:userId", auth.RequireRoles(models.RoleAdmin))
			{
				admin.GET("", h.GetUserHandler)
				admin.PUT("", h.UpdateUserHandler)
				admin.DELETE("", h.DeleteUserHandler)
			}
		}
	}
}
