package router

import (
	"net/http"
	"time"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/handler"
	"github.com/catprepedge/catprep-backend/internal/logger"
	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Question *handler.QuestionHandler
	WS       *handler.WSHandler
	Progress *handler.ProgressHandler
	Post     *handler.PostHandler
	Library  *handler.LibraryHandler
	College  *handler.CollegeHandler
	Payment  *handler.PaymentHandler
	Media    *handler.MediaHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Uploaded images are immutable (UUID names).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(365*24*time.Hour, "immutable"))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(authService)
	optionalAuth := middleware.OptionalAuth(authService)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware(), middleware.NoStore())
	{
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. Public Content (Optional Auth) ─────────────────────────────
	publicAPI := router.Group("/api/v1")
	publicAPI.Use(optionalAuth)
	{
		catalog := publicAPI.Group("")
		catalog.Use(middleware.CacheControl(5 * time.Minute))
		{
			catalog.GET("/mock-tests", handlers.Catalog.ListSections)
			catalog.GET("/mock-tests/:code", handlers.Catalog.GetSection)
			catalog.GET("/colleges", handlers.College.ListColleges)
			catalog.GET("/colleges/:id", handlers.College.GetCollege)
		}

		publicAPI.GET("/questions", handlers.Question.ListQuestions)
		publicAPI.GET("/library", handlers.Library.ListResources)

		publicAPI.GET("/posts", handlers.Post.ListPosts)
		publicAPI.GET("/posts/:slug", handlers.Post.GetPost)
		publicAPI.POST("/posts/:slug/like", handlers.Post.LikePost)
		publicAPI.GET("/posts/:slug/comments", handlers.Post.ListComments)
	}

	// ─── 3. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(requireAuth, middleware.NoStore())
	{
		userAPI.GET("/progress", handlers.Progress.ListProgress)
		userAPI.POST("/progress", handlers.Progress.RecordProgress)
		userAPI.POST("/comments", handlers.Post.AddComment)
		userAPI.GET("/library/premium", middleware.RequirePremium(), handlers.Library.ListPremiumResources)
		userAPI.POST("/payments/orders", handlers.Payment.CreateOrder)
		userAPI.POST("/payments/verify", handlers.Payment.VerifyPayment)
	}

	// ─── 4. WebSocket Group (Optional Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(optionalAuth)
	{
		ws.GET("/tests/stream", handlers.WS.TestStream)
	}

	// ─── 5. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireAuth, middleware.RequireRole(model.RoleAdmin), middleware.NoStore())
	{
		adminAPI.POST("/posts", handlers.Post.CreatePost)
		adminAPI.POST("/media/:folder", handlers.Media.UploadMedia)
		adminAPI.DELETE("/questions/cache", handlers.Question.InvalidateCache)
		adminAPI.GET("/system/stats", handlers.System.GetStats)
	}

	return router
}
