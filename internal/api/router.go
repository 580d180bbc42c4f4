package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ghola/conversation-api/internal/api/handler"
	"github.com/ghola/conversation-api/internal/api/middleware"
	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/service"
	mongodb "github.com/ghola/conversation-api/internal/infrastructure/db/mongo"
	redisdb "github.com/ghola/conversation-api/internal/infrastructure/db/redis"
	"github.com/ghola/conversation-api/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the usage dispatcher (started by the caller).
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, workers int, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ghola"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	usageRepo := mongodb.NewUsageRepository(db)
	conversationRepo := mongodb.NewConversationRepository(db)

	issuer, err := service.NewCredentialIssuer(jwtSecret, time.Hour)
	if err != nil {
		return nil, nil, err
	}

	chatService := service.NewChatService(userRepo, profileRepo, usageRepo, conversationRepo, issuer, log)
	profileService := service.NewProfileService(profileRepo, log)
	usageService := service.NewUsageService(conversationRepo, usageRepo, redisdb.NewDedupChecker(rdb), log)
	dispatcher := queue.NewDispatcher(workers, usageService, log)

	chatHandler := handler.NewChatHandler(chatService)
	messageHandler := handler.NewMessageHandler(dispatcher)
	profileHandler := handler.NewProfileHandler(profileService)
	usageHandler := handler.NewUsageHandler(usageService)

	credential := middleware.Credential(jwtSecret)
	identity := middleware.Identity(userRepo)

	// --- Chat handshake + credential-protected routes ---
	v1 := e.Group("/api/v1")
	v1.POST("/chat/init", chatHandler.Init)
	v1.GET("/chat/conversation", chatHandler.Conversation, credential)
	v1.POST("/chat/messages", messageHandler.Post, credential)

	// --- Profiles ---
	v1.GET("/profile/public", profileHandler.ListPublic)

	// --- Usage reporting ---
	v1.GET("/usage/today", usageHandler.Today, identity)
	v1.GET("/admin/usage/today", usageHandler.TodayAll, identity, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes + metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e, dispatcher, nil
}
