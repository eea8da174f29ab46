package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/yourorg/chat-app/services/dm-service/internal/api"
	"github.com/yourorg/chat-app/services/dm-service/internal/config"
	"github.com/yourorg/chat-app/services/dm-service/internal/events"
	"github.com/yourorg/chat-app/services/dm-service/internal/logger"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
	"github.com/yourorg/chat-app/services/dm-service/internal/service"
	"github.com/yourorg/chat-app/services/dm-service/internal/typing"
	"github.com/yourorg/chat-app/services/dm-service/internal/ws"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	sugar, err := logger.New(cfg.App.Env == "development")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer sugar.Sync()
	sugar.Infof("starting dm-service (env=%s)", cfg.App.Env)

	// Mongo
	mc, err := repository.NewMongoClient(cfg)
	if err != nil {
		sugar.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	db := mc.Database(cfg.Mongo.Database)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := repository.EnsureIndexes(ctx, db, &cfg.Mongo); err != nil {
		cancel()
		sugar.Fatalf("mongo indexes: %v", err)
	}
	cancel()

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		sugar.Fatalf("redis ping: %v", err)
	}
	pingCancel()

	// Kafka producer
	pub := events.NewKafkaPublisher(&cfg.Kafka)
	defer pub.Close()

	// repositories
	users := repository.NewMongoUsers(db.Collection(cfg.Mongo.UsersCollection))
	convs := repository.NewMongoConversations(db.Collection(cfg.Mongo.ConversationsCollection))
	msgs := repository.NewMongoMessages(db.Collection(cfg.Mongo.MessagesCollection))
	members := repository.NewMongoMembers(db.Collection(cfg.Mongo.MembersCollection))
	typingStore := typing.NewRedisStore(rdb, cfg.Redis.Prefix)

	// services
	userSvc := service.NewUserService(users, pub, sugar)
	convSvc := service.NewConversationService(convs, msgs, members, users, pub, sugar)
	msgSvc := service.NewMessageService(msgs, convs, users, pub, sugar)
	typingSvc := service.NewTypingService(typingStore, cfg.TypingTTL)

	hub := ws.NewHub()

	app := api.NewServer(cfg, userSvc, convSvc, msgSvc, typingSvc, hub, sugar)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		if err := app.Listen(addr); err != nil {
			sugar.Fatalf("server listen: %v", err)
		}
	}()
	sugar.Infof("dm-service listening on :%d", cfg.App.Port)

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down dm-service...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = app.ShutdownWithContext(shutCtx)
	sugar.Info("shutdown complete")
}
