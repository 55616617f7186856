package router

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	fbstorage "firebase.google.com/go/v4/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appforge-dev/chirper/backend/internal/fanout"
	"github.com/appforge-dev/chirper/backend/internal/handlers"
	"github.com/appforge-dev/chirper/backend/internal/middleware"
	"github.com/appforge-dev/chirper/backend/internal/models"
	"github.com/appforge-dev/chirper/backend/internal/realtime"
	"github.com/appforge-dev/chirper/backend/internal/repositories"
	"github.com/appforge-dev/chirper/backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware and the error envelope.
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.HTTPErrorHandler = errorHandler(logger)
}

// errorHandler renders every error as {success:false, message}. Internal
// errors are logged and masked.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"

		if httpErr, ok := err.(*echo.HTTPError); ok {
			code = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			}
		}

		if code == http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, echo.Map{"success": false, "message": message})
	}
}

// SetupRoutes wires repositories, the fan-out bus, the realtime hub and
// every handler onto the Echo instance. It returns a stop function that
// drains the fan-out bus on shutdown.
func SetupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	rdb *redis.Client,
	firebaseAuthClient *auth.Client,
	storageClient *fbstorage.Client,
	logger *zap.Logger,
) (stop func(), err error) {
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Block{},
		&models.Mute{},
		&models.Like{},
		&models.Repost{},
		&models.Bookmark{},
		&models.PollVote{},
		&models.Notification{},
	); err != nil {
		return nil, err
	}
	logger.Info("PostgreSQL auto-migrations completed")

	mongoDB := mgClient.Database(cfg.MongoDatabase)

	// Repositories
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	blockRepo := repositories.NewPostgresBlockRepository(pgdb)
	engagementRepo := repositories.NewPostgresEngagementRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	hashtagRepo := repositories.NewMongoHashtagRepository(mongoDB)
	messageRepo := repositories.NewMongoMessageRepository(mongoDB)

	// Fan-out bus: notification creation happens off the request path
	bus := fanout.NewBus(notificationRepo, userRepo, logger, 1024)
	stop = bus.Start()

	// Realtime hub and websocket endpoint
	hub := realtime.NewHub(logger)
	channelHandler := realtime.NewChannelHandler(hub, messageRepo, bus, logger)
	channelHandler.RegisterRoutes(e)

	e.GET("/health", handlers.HealthCheck)

	limit := func(class string) echo.MiddlewareFunc {
		rl, ok := cfg.RateLimits[class]
		if !ok {
			rl = cfg.RateLimits["default"]
		}
		return middleware.RateLimitMiddleware(rdb, class, rl)
	}

	// Unprotected auth routes
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// Protected routes
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(limit("default"))

	userHandler := handlers.NewUserHandler(userRepo, followRepo, blockRepo)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, blockRepo, userRepo, bus)
	followHandler.RegisterFollowRoutes(api, limit("follows"))

	blockHandler := handlers.NewBlockHandler(blockRepo, followRepo, userRepo)
	blockHandler.RegisterBlockRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, followRepo, engagementRepo, hashtagRepo, bus)
	postHandler.RegisterPostRoutes(api, limit("posts"))

	engagementHandler := handlers.NewEngagementHandler(engagementRepo, postRepo, userRepo, bus)
	engagementHandler.RegisterEngagementRoutes(api, limit("likes"))

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo, blockRepo, engagementRepo, hashtagRepo)
	feedHandler.RegisterFeedRoutes(api)

	searchHandler := handlers.NewSearchHandler(postRepo, userRepo)
	searchHandler.RegisterSearchRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, blockRepo, hub, bus)
	messageHandler.RegisterMessageRoutes(api, limit("messages"))

	mediaHandler := handlers.NewMediaHandler(storageClient, cfg.StorageBucket)
	mediaHandler.RegisterMediaRoutes(api)

	logger.Info("routes configured")
	return stop, nil
}
