package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/lexcaraig/wheelbase-business/internal/config"
	"github.com/lexcaraig/wheelbase-business/internal/controller"
	"github.com/lexcaraig/wheelbase-business/internal/handler"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/internal/repository/memory"
	"github.com/lexcaraig/wheelbase-business/internal/service"
	"github.com/lexcaraig/wheelbase-business/internal/websocket"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
	"github.com/lexcaraig/wheelbase-business/pkg/realtime"
	"github.com/lexcaraig/wheelbase-business/pkg/storage"
)

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	ClaimController       controller.IClaimController
	ChatController        controller.IChatController
	BusinessController    controller.IBusinessController
	CatalogController     controller.ICatalogController
	OrderController       controller.IOrderController
	AppointmentController controller.IAppointmentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Realtime
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub
	ChatService     service.IChatService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.AnonKey)
	uploader := storage.NewFunctionUploader(backendClient)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// Redis
	opt, err := redis.ParseURL(cfg.Realtime.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Realtime.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Realtime message store (NATS JetStream)
	realtimeStore := realtime.NewNatsStore(cfg.Realtime.NatsURL)

	// WebSocket Hub
	chatLogger := logger.NewIsolatedLogger(cfg.App.ChatLogFilePath)
	wsHub := websocket.NewHub(rdb, chatLogger)
	go wsHub.Run()

	// In-memory wizard sessions
	wizardRepo := memory.NewWizardRepository(cfg.Cache.WizardSessionTTL)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Realtime.EventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Realtime.EventTopic,
		wsHub, // Hub implements NotificationDelivery
		sysLogger,
	)

	authService := service.NewAuthService(backendClient, sysLogger)
	claimService := service.NewClaimService(backendClient, uploader, wizardRepo, publisherService, sysLogger)
	chatService := service.NewChatService(backendClient, realtimeStore, wsHub, publisherService, chatLogger)
	analyticsService := service.NewAnalyticsService(backendClient, rdb, cfg.Cache.AnalyticsTTL, sysLogger)
	businessService := service.NewBusinessService(backendClient, uploader, analyticsService, sysLogger)
	catalogService := service.NewCatalogService(backendClient, uploader, sysLogger)
	orderService := service.NewOrderService(backendClient, chatService, publisherService, sysLogger)
	appointmentService := service.NewAppointmentService(backendClient, sysLogger)

	realtimeHandler := handler.NewRealtimeHandler(wsHub, chatService, chatLogger)

	// 4. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		AuthController:        controller.NewAuthController(authService),
		ClaimController:       controller.NewClaimController(claimService),
		ChatController:        controller.NewChatController(chatService, authService),
		BusinessController:    controller.NewBusinessController(businessService, analyticsService),
		CatalogController:     controller.NewCatalogController(catalogService),
		OrderController:       controller.NewOrderController(orderService, authService),
		AppointmentController: controller.NewAppointmentController(appointmentService),
		ConsumerService:       consumerService,
		RealtimeHandler:       realtimeHandler,
		WebSocketHub:          wsHub,
		ChatService:           chatService,
	}
}
