package router

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/handlers"
	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/internal/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is wired from
type Deps struct {
	DB           *gorm.DB
	Services     *services.Services
	Verifier     middleware.TokenVerifier
	Logger       *zap.Logger
	RateLimitRPS float64
}

// New builds the echo instance with global middleware and every route
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = errorHandler(d.Logger, e)

	SetupMiddleware(e, d.Logger)
	SetupRoutes(e, d)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *zap.Logger) {
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := d.Logger
	svc := d.Services

	e.GET("/health", handlers.NewHealthHandler(d.DB).HealthCheck)

	mediaHandler := handlers.NewMediaHandler(svc.Media)
	mediaHandler.RegisterPublicRoutes(e)

	// Every /api/v1 route needs a verified token. Only registration may be
	// called before the caller has a profile.
	authenticate := middleware.Authenticate(d.Verifier)
	limit := middleware.RateLimit(d.RateLimitRPS)

	signup := e.Group("/api/v1", authenticate, limit)
	userHandler := handlers.NewUserHandler(svc.Identity, svc.Presence)
	userHandler.RegisterSignupRoutes(signup)

	api := e.Group("/api/v1", authenticate, limit, handlers.RequireUser(svc.Identity))
	userHandler.RegisterProfileRoutes(api)
	log.Info("user routes configured")

	handlers.NewFollowHandler(svc.Graph).RegisterFollowRoutes(api)
	handlers.NewFeedHandler(svc.Posts).RegisterFeedRoutes(api)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api)
	handlers.NewLikeHandler(svc.Posts).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(svc.Posts).RegisterCommentRoutes(api)
	handlers.NewBookmarkHandler(svc.Posts).RegisterBookmarkRoutes(api)
	log.Info("post routes configured")

	handlers.NewStoryHandler(svc.Stories).RegisterStoryRoutes(api)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)
	handlers.NewChatHandler(svc.Chat).RegisterChatRoutes(api)
	mediaHandler.RegisterUploadRoutes(api)

	log.Info("all routes configured", zap.Int("routes", len(e.Routes())))
}

// errorHandler classifies service errors and logs the ones that are our fault
func errorHandler(log *zap.Logger, e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		he := apperr.ToHTTP(err)
		if he.Code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}
