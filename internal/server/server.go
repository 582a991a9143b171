package server

import (
	"context"
	"fmt"
	"time"

	"learn-persona/internal/adapter"
	"learn-persona/internal/cache"
	"learn-persona/internal/config"
	"learn-persona/internal/domain"
	"learn-persona/internal/handler"
	"learn-persona/internal/logger"
	"learn-persona/internal/metrics"
	"learn-persona/internal/middleware"
	"learn-persona/internal/repository"
	"learn-persona/internal/scheduler"
	"learn-persona/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Minute

// Options carries the already-opened resources the server is built on.
type Options struct {
	Config *config.Config
	DB     *sqlx.DB
	// Cache may be nil, in which case nothing is cached.
	Cache    domain.Cache
	Bank     *domain.QuestionBank
	Registry *prometheus.Registry
}

// Server is the wired HTTP application plus its background jobs.
type Server struct {
	App       *fiber.App
	Scheduler *scheduler.Scheduler

	AuthService           service.AuthService
	UserService           service.UserService
	QuizService           service.QuizService
	RecommendationService service.RecommendationService
	ProgressService       service.ProgressService
	DashboardService      service.DashboardService
}

// New wires repositories, services, handlers and routes. It does not start
// listening or schedule jobs.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	appLogger := logger.Get()

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.MustNewMetrics(reg)
	}

	// Initialize repositories
	userRepo := repository.NewSQLXUserRepository(opts.DB)
	courseRepo := repository.NewSQLXCourseRepository(opts.DB)
	strategyRepo := repository.NewSQLXStrategyRepository(opts.DB)
	progressRepo := repository.NewSQLXProgressRepository(opts.DB)
	responseRepo := repository.NewSQLXQuizResponseRepository(opts.DB)
	snapshotRepo := repository.NewSQLXSnapshotRepository(opts.DB)
	txManager := repository.NewTransactionManagerAdapter(opts.DB)

	// Initialize services
	authService, err := service.NewAuthService(userRepo, cfg.JWT, cfg.GoogleOAuth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	userService := service.NewUserService(userRepo)
	recommendationService := service.NewRecommendationService(userRepo, courseRepo, strategyRepo, opts.Cache,
		config.ParseTTLStringOrDefault(cfg.Cache.RecommendationTTL, 10*time.Minute), m)
	quizService := service.NewQuizService(opts.Bank, domain.NewClassifier(), userRepo, responseRepo, txManager,
		recommendationService, m)
	progressService := service.NewProgressService(progressRepo, courseRepo, userRepo, txManager)
	dashboardService := service.NewDashboardService(userRepo, progressRepo, snapshotRepo, opts.Cache,
		config.ParseTTLStringOrDefault(cfg.Cache.DashboardTTL, time.Minute), m)
	appLogger.Info("Services initialized")

	srv := &Server{
		AuthService:           authService,
		UserService:           userService,
		QuizService:           quizService,
		RecommendationService: recommendationService,
		ProgressService:       progressService,
		DashboardService:      dashboardService,
	}
	if cfg.Scheduler.Enabled {
		srv.Scheduler = scheduler.New(cfg.Scheduler, dashboardService, userService, m)
	}

	app := fiber.New(fiber.Config{
		AppName:      "learn-persona",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(m))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/healthz", handler.NewHealthHandler(opts.DB, opts.Cache).Health)
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	registerRoutes(app.Group("/api", middleware.RateLimit(cfg.Server.RateLimit, rateLimitWindow)), routeHandlers{
		auth:      handler.NewAuthHandler(authService),
		user:      handler.NewUserHandler(userService),
		persona:   handler.NewPersonaHandler(),
		quiz:      handler.NewQuizHandler(quizService),
		catalog:   handler.NewCatalogHandler(recommendationService),
		progress:  handler.NewProgressHandler(progressService),
		dashboard: handler.NewDashboardHandler(dashboardService),
		validator: authService,
	})

	srv.App = app
	return srv, nil
}

type routeHandlers struct {
	auth      *handler.AuthHandler
	user      *handler.UserHandler
	persona   *handler.PersonaHandler
	quiz      *handler.QuizHandler
	catalog   *handler.CatalogHandler
	progress  *handler.ProgressHandler
	dashboard *handler.DashboardHandler
	validator middleware.TokenValidator
}

func registerRoutes(api fiber.Router, h routeHandlers) {
	protected := middleware.Protected(h.validator)
	vm := middleware.NewValidationMiddleware()

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.auth.Register)
	authGroup.Post("/login", h.auth.Login)
	authGroup.Post("/refresh", h.auth.RefreshToken)
	authGroup.Post("/logout", protected, h.auth.Logout)
	authGroup.Get("/google/login", h.auth.GoogleLogin)
	authGroup.Get("/google/callback", h.auth.GoogleCallback)

	api.Get("/user", protected, h.user.GetMyProfile)

	api.Get("/personas", h.persona.ListPersonas)
	api.Get("/personas/:persona", h.persona.GetPersona)

	quizGroup := api.Group("/quiz")
	quizGroup.Get("/questions", h.quiz.GetQuestions)
	quizGroup.Post("/submit", protected, h.quiz.SubmitQuiz)
	quizGroup.Get("/history", protected, h.quiz.GetHistory)
	quizGroup.Get("/latest", protected, h.quiz.GetLatest)

	// Static segments are registered before :id so they are not captured by it.
	courses := api.Group("/courses")
	courses.Get("/", vm.ValidateTagsQuery(), h.catalog.ListCourses)
	courses.Get("/recommended", protected, h.catalog.RecommendedCourses)
	courses.Get("/persona/:persona", protected, h.catalog.CoursesByPersona)
	courses.Get("/:id", vm.ValidateIDParam("id", "course_id"), h.catalog.GetCourse)

	strategies := api.Group("/strategies")
	strategies.Get("/", h.catalog.ListStrategies)
	strategies.Get("/recommended", protected, h.catalog.RecommendedStrategies)
	strategies.Get("/persona/:persona", protected, h.catalog.StrategiesByPersona)
	strategies.Get("/:id", vm.ValidateIDParam("id", "strategy_id"), h.catalog.GetStrategy)

	api.Get("/recommendations", protected, h.catalog.Recommendations)

	progress := api.Group("/progress", protected)
	progress.Get("/", h.progress.ListProgress)
	progress.Post("/start", h.progress.StartCourse)
	progress.Put("/:id", vm.ValidateIDParam("id", "progress_id"), h.progress.UpdateProgress)

	dashboard := api.Group("/dashboard", protected, middleware.RequireRole(domain.RoleLDProfessional))
	query := vm.ValidateDashboardQuery()
	dashboard.Get("/personas", h.dashboard.PersonaDistribution)
	dashboard.Get("/trends", query, h.dashboard.ActivityTrends)
	dashboard.Get("/activity", query, h.dashboard.RecentActivity)
	dashboard.Get("/summary", query, h.dashboard.Summary)
	dashboard.Get("/export", query, h.dashboard.Export)
}

// NewCache builds the configured cache backend. The returned close function
// is never nil.
func NewCache(ctx context.Context, cfg *config.Config) (domain.Cache, func() error, error) {
	noop := func() error { return nil }
	ttl := config.ParseTTLStringOrDefault(cfg.Cache.RecommendationTTL, 10*time.Minute)

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		logger.Get().Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		return adapter.NewRedisCacheAdapter(client, ttl), client.Close, nil
	case config.CacheBackendMemory, "":
		maxTTL := ttl
		if d := config.ParseTTLStringOrDefault(cfg.Cache.DashboardTTL, time.Minute); d > maxTTL {
			maxTTL = d
		}
		logger.Get().Info("Using in-memory cache", zap.Int("size", cfg.Cache.LRUSize))
		return adapter.NewMemoryCacheAdapter(cfg.Cache.LRUSize, ttl, maxTTL), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}
