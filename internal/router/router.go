package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pagecrafter/internal/config"
	"pagecrafter/internal/handler"
	"pagecrafter/internal/middleware"
	"pagecrafter/internal/port"
	"pagecrafter/internal/service"
)

// Deps carries everything the router wires into routes. Limiter may be nil
// when rate limiting is disabled.
type Deps struct {
	AuthService service.AuthService
	Limiter     port.RateLimiter
	CORS        config.CORSConfig
	Logger      *zap.Logger

	Auth     *handler.AuthHandler
	Generate *handler.GenerateHandler
	Projects *handler.ProjectHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log.Named("http")))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(d.CORS))

	// Operational endpoints
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Stateless generation API used by the editor
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(d.AuthService))
	api.Use(middleware.RateLimit(d.Limiter, "generate", middleware.StylePlain, log))
	api.POST("/generate", d.Generate.Code)
	api.POST("/generate-pdf", d.Generate.Document)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.RefreshToken)

	// Protected routes - require valid JWT
	projects := v1.Group("/projects")
	projects.Use(middleware.AuthMiddleware(d.AuthService))
	projects.POST("", d.Projects.Create)
	projects.GET("", d.Projects.List)
	projects.GET("/:id", d.Projects.GetByID)
	projects.DELETE("/:id", d.Projects.Delete)
	projects.POST("/:id/messages",
		middleware.RateLimit(d.Limiter, "generate", middleware.StyleEnvelope, log),
		d.Projects.SendMessage)
	projects.GET("/:id/export", d.Projects.Export)
	projects.POST("/:id/exports", d.Projects.Publish)

	return r
}
