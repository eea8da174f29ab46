package api

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberws "github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/yourorg/chat-app/services/dm-service/internal/config"
	"github.com/yourorg/chat-app/services/dm-service/internal/service"
	"github.com/yourorg/chat-app/services/dm-service/internal/ws"
)

type Server struct {
	users  *service.UserService
	convs  *service.ConversationService
	msgs   *service.MessageService
	typing *service.TypingService
	hub    *ws.Hub
	log    *zap.SugaredLogger
}

func NewServer(
	cfg *config.Config,
	users *service.UserService,
	convs *service.ConversationService,
	msgs *service.MessageService,
	typingSvc *service.TypingService,
	hub *ws.Hub,
	log *zap.SugaredLogger,
) *fiber.App {
	app := fiber.New()
	app.Use(fiberlogger.New())

	s := &Server{users: users, convs: convs, msgs: msgs, typing: typingSvc, hub: hub, log: log}

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := app.Group("/api/v1")
	api.Use(JWTAuth(cfg.App.JWTSecret))

	api.Post("/users/sync", s.syncUser)
	api.Get("/users", s.listUsers)

	api.Post("/conversations", s.getOrCreateConversation)
	api.Get("/conversations", s.listConversations)
	api.Post("/conversations/:id/read", s.markRead)
	api.Get("/conversations/:id/unread", s.unreadCount)
	api.Post("/conversations/:id/messages", s.sendMessage)
	api.Get("/conversations/:id/messages", s.listMessages)

	// keystroke-frequency signals
	signals := api.Group("", RateLimit(10, 20))
	signals.Post("/conversations/:id/typing", s.setTyping)
	signals.Get("/conversations/:id/typing", s.listTyping)
	signals.Post("/presence", s.setPresence)

	app.Use("/ws", wsUpgrade)
	app.Get("/ws", fiberws.New(s.wsHandler(cfg.App.JWTSecret)))

	return app
}
