package handlers

import (
	_ "catframe/docs"
	"catframe/internal/logger"
	"catframe/internal/metrics"
	"catframe/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options tune optional HTTP behaviour.
type Options struct {
	// DebugEchoResetToken includes the generated reset token in the
	// forgot-password response. Never enable outside local testing.
	DebugEchoResetToken bool
	// Metrics receives request and auth metrics. Nil disables recording.
	Metrics *metrics.Recorder
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestID, h.accessLog, h.opts.Metrics.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))

	router.GET("/", h.welcome)
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerMovieRoutes(router)
	h.registerUserRoutes(router)

	// Live comment feed (HTTP upgrade) on the same port
	router.GET("/ws/movies/:id/comments", h.commentStream)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/token", h.login)
		auth.POST("/register", h.register)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/reset-password", h.resetPassword)
		auth.GET("/users/me", h.requireUser, h.me)
	}
}

func (h *Handler) registerMovieRoutes(r *gin.Engine) {
	movies := r.Group("/movies")
	{
		movies.GET("", h.listMovies)
		movies.GET("/:id", h.getMovie)
		movies.POST("", h.requireUser, h.requireAdmin, h.createMovie)
		movies.PUT("/:id", h.requireUser, h.requireAdmin, h.replaceMovie)
		movies.PATCH("/:id", h.requireUser, h.requireAdmin, h.patchMovie)
		movies.DELETE("/:id", h.requireUser, h.requireAdmin, h.deleteMovie)

		movies.GET("/:id/comments", h.listComments)
		movies.POST("/:id/comments", h.requireUser, h.createComment)
		movies.DELETE("/:id/comments/:comment_id", h.requireUser, h.deleteComment)
	}
}

func (h *Handler) registerUserRoutes(r *gin.Engine) {
	users := r.Group("/users", h.requireUser, h.requireAdmin)
	{
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id/admin", h.toggleAdmin)
		users.DELETE("/:id", h.deleteUser)
	}
}
