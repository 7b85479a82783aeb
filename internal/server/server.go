// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"strings"
	"time"

	"campusmap/internal/cache"
	"campusmap/internal/config"
	"campusmap/internal/database"
	"campusmap/internal/middleware"
	"campusmap/internal/models"
	"campusmap/internal/repository"
	"campusmap/internal/service"
	"campusmap/internal/session"
	"campusmap/internal/sweeper"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionCookie = "campusmap_session"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Store
	sweeper        *sweeper.Sweeper
	userRepo       repository.UserRepository
	placeRepo      repository.PlaceRepository
	commentRepo    repository.CommentRepository
	authService    service.AuthService
	placeService   service.PlaceService
	commentService service.CommentService
	userService    service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	prom := middleware.InitMetrics("campusmap-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		placeRepo:      placeRepo,
		commentRepo:    commentRepo,
	}

	server.sessions = session.NewStore(redisClient, cfg.SessionTTL)
	server.authService = service.NewAuthService(userRepo, cfg.ResetTokenTTL)
	server.placeService = service.NewPlaceService(placeRepo, cfg.AnonymousPlacesAllowed)
	server.commentService = service.NewCommentService(commentRepo, placeRepo)
	server.userService = service.NewUserService(userRepo)
	server.sweeper = sweeper.New(placeRepo, cfg.SweepInterval, cfg.PlaceRetention, middleware.Logger)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Campus Map Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/check", s.CheckAuth)
	auth.Post("/password-reset/request", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "password_reset"), s.RequestPasswordReset)
	auth.Post("/password-reset/confirm", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "password_reset_confirm"), s.ConfirmPasswordReset)

	// Public place routes (browse)
	publicPlaces := api.Group("/places")
	publicPlaces.Get("/", s.GetPlaces)
	publicPlaces.Get("/:id/comments", s.GetComments)
	publicPlaces.Get("/:id", s.GetPlace)

	// Creation is public when anonymous pins are enabled; the service decides.
	publicPlaces.Post("/", s.WithIdentity(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_place"), s.CreatePlace)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me/avatar", s.UpdateMyAvatar)

	places := protected.Group("/places")
	places.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	places.Put("/:id", s.UpdatePlace)
	places.Delete("/:id", s.DeletePlace)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Sessions live in Redis, so readiness requires it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns middleware that resolves the session cookie to an
// identity and rejects requests without one.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := s.resolveIdentity(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if identity == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError())
		}

		s.storeIdentity(c, identity)
		return c.Next()
	}
}

// WithIdentity resolves the session if present but lets anonymous requests
// through. Handlers read the identity from locals and decide for themselves.
func (s *Server) WithIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := s.resolveIdentity(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if identity != nil {
			s.storeIdentity(c, identity)
		}
		return c.Next()
	}
}

// resolveIdentity looks up the session token from the cookie or, as a
// fallback for non-browser clients, a Bearer Authorization header. Returns
// (nil, nil) when no live session matches.
func (s *Server) resolveIdentity(c *fiber.Ctx) (*models.Identity, error) {
	token := c.Cookies(sessionCookie)
	if token == "" {
		authHeader := c.Get("Authorization")
		if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return nil, nil
	}

	identity, err := s.sessions.Get(c.Context(), token)
	if err != nil {
		if err == session.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return identity, nil
}

func (s *Server) storeIdentity(c *fiber.Ctx, identity *models.Identity) {
	c.Locals("identity", identity)
	c.Locals("userID", identity.UserID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, identity.UserID)
	c.SetUserContext(ctx)
}

// currentIdentity returns the identity stored by AuthRequired or WithIdentity,
// or nil for anonymous requests.
func (s *Server) currentIdentity(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals("identity").(*models.Identity)
	return identity
}

// setSessionCookie writes the session cookie; an empty token clears it.
func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	cookie := &fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
	}
	if token == "" {
		cookie.Expires = time.Now().Add(-time.Hour)
	} else {
		cookie.MaxAge = int(s.config.SessionTTL.Seconds())
	}
	c.Cookie(cookie)
}

// Start starts the server and the retention sweeper
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Campus Map API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	s.sweeper.Start()

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
