package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aiflashlang/flashlang-web/config"
	"github.com/aiflashlang/flashlang-web/internal/bulk"
	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/handlers"
	"github.com/aiflashlang/flashlang-web/internal/middleware"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/aiflashlang/flashlang-web/internal/session"
	"github.com/aiflashlang/flashlang-web/internal/web"
	"github.com/aiflashlang/flashlang-web/pkg/flashapi"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	"github.com/aiflashlang/flashlang-web/pkg/profiling"
	"github.com/aiflashlang/flashlang-web/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerPublicRoutes registers the pages anyone can open
func registerPublicRoutes(
	group *gin.RouterGroup,
	authRateLimiter, registrationRateLimiter *middleware.RateLimiter,
	pagesHandler *handlers.PagesHandler,
	authHandler *handlers.AuthHandler,
) {
	group.GET(routes.PathIndex, pagesHandler.Index)
	group.GET(routes.PathFeatures, pagesHandler.Features)
	group.GET(routes.PathVerified, pagesHandler.Verified)

	group.GET(routes.PathLogin, authHandler.ShowLogin)
	group.POST(routes.PathLogin, authRateLimiter.Middleware(), authHandler.Login)
	group.GET(routes.PathRegister, authHandler.ShowRegister)
	group.POST(routes.PathRegister, registrationRateLimiter.Middleware(), authHandler.Register)
	group.GET(routes.PathResendVerification, authHandler.ShowResendVerification)
	group.POST(routes.PathResendVerification, authRateLimiter.Middleware(), authHandler.ResendVerification)
	group.POST("/logout", authHandler.Logout)
}

// registerPrivateRoutes registers the pages that need a signed-in user;
// verified pages additionally need a confirmed email address
func registerPrivateRoutes(
	group *gin.RouterGroup,
	wordsHandler *handlers.WordsHandler,
	accountHandler *handlers.AccountHandler,
	importHandler *handlers.ImportHandler,
) {
	private := group.Group("", middleware.AuthGuard())
	private.GET(routes.PathCreate, wordsHandler.ShowCreate)
	private.POST(routes.PathCreate, wordsHandler.GenerateWord)
	private.POST("/audio", middleware.BodySizeLimitMiddleware(16*1024), wordsHandler.GenerateAudio)

	verified := group.Group("", middleware.AuthGuard(), middleware.VerifiedGuard())
	verified.GET(routes.PathMyWords, wordsHandler.ShowMyWords)
	verified.POST(routes.PathMyWords+"/delete", wordsHandler.DeleteWords)
	verified.POST(routes.PathMyWords+"/download", wordsHandler.DownloadDeck)

	verified.GET(routes.PathMyAccount, accountHandler.ShowAccount)
	verified.POST(routes.PathMyAccount, accountHandler.UpdateProfile)
	verified.POST(routes.PathMyAccount+"/password", accountHandler.ChangePassword)
	verified.POST(routes.PathMyAccount+"/delete", accountHandler.DeleteAccount)

	verified.GET(routes.PathImport, importHandler.ShowImport)
	verified.GET(routes.PathImport+"/template", importHandler.Template)
	verified.POST(routes.PathImport, middleware.BodySizeLimitMiddleware(2*1024*1024), importHandler.Upload)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting AIFlashLang web client",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Continuous profiling (optional)
	if cfg.Profiling.Enabled {
		stopProfiler, err := profiling.InitProfiler(
			cfg.Profiling,
			cfg.Observability.ServiceName,
			cfg.Observability.ServiceNamespace,
			cfg.Observability.ServiceVersion,
			cfg.Observability.ServiceInstanceID,
			cfg.Server.AppEnv,
		)
		if err != nil {
			logger.Error("Failed to initialize profiler", zap.Error(err))
		} else {
			defer stopProfiler()
		}
	}

	// Initialize the vocabulary API client
	apiClient, err := flashapi.NewClient(
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		logger.Fatal("Failed to initialize vocabulary API client", zap.Error(err))
	}

	// Initialize the language catalog cache synchronously before accepting
	// requests so every page render has the dropdown data locally
	languagesCache := cache.NewLanguagesCache(
		func(ctx context.Context) ([]models.Language, error) {
			return apiClient.Languages(ctx, "")
		},
		cfg.Cache.LanguagesTTLSeconds,
	)
	if err := languagesCache.Initialize(); err != nil {
		logger.Fatal("Failed to initialize languages cache", zap.Error(err))
	}

	avatarCache := cache.NewAvatarCache(cfg.Session.AvatarTTLHours)

	// Bulk generation orchestrator for the CSV import flow
	orchestrator := bulk.NewOrchestrator(apiClient, cfg.Bulk.MaxConcurrent)

	// Initialize handlers
	pagesHandler := handlers.NewPagesHandler(avatarCache)
	authHandler := handlers.NewAuthHandler(apiClient, avatarCache)
	accountHandler := handlers.NewAccountHandler(apiClient, avatarCache)
	wordsHandler := handlers.NewWordsHandler(apiClient, orchestrator, languagesCache, avatarCache)
	importHandler := handlers.NewImportHandler(orchestrator, languagesCache, avatarCache)
	healthHandler := handlers.NewHealthHandler(languagesCache.IsReady)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	templates, err := web.Templates()
	if err != nil {
		logger.Fatal("Failed to parse page templates", zap.Error(err))
	}
	router.SetHTMLTemplate(templates)

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: pages are same-origin, but the audio JSON endpoint may be called
	// from configured origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true, // session cookies
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters: tight on credential endpoints, loose everywhere else
	generalRateLimiter := middleware.NewRateLimiter(100, 200)       // 100 req/sec, burst of 200
	authRateLimiter := middleware.NewRateLimiter(1, 5)              // 1 req/sec, burst of 5 (login abuse prevention)
	registrationRateLimiter := middleware.NewRateLimiter(0.0333, 3) // 2 req/min, burst of 3

	// Operational endpoints, outside the session middleware
	router.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	router.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))
	router.StaticFS("/static", web.Static())

	// Every page runs inside the session middleware: the session is restored
	// from cookies before any guard or handler sees the request
	pages := router.Group("",
		generalRateLimiter.Middleware(),
		middleware.SessionMiddleware(apiClient, avatarCache, session.CookieOptions{
			Domain: cfg.Session.CookieDomain,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.CookieMaxAge,
		}),
	)
	registerPublicRoutes(pages, authRateLimiter, registrationRateLimiter, pagesHandler, authHandler)
	registerPrivateRoutes(pages, wordsHandler, accountHandler, importHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // deck downloads proxy large bodies
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
