package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authsvc "socialnet/internal/app/services/auth"
	contentsvc "socialnet/internal/app/services/content"
	messagingsvc "socialnet/internal/app/services/messaging"
	notificationsvc "socialnet/internal/app/services/notification"
	profilesvc "socialnet/internal/app/services/profile"
	socialsvc "socialnet/internal/app/services/social"
	domainauth "socialnet/internal/domain/auth"
	domaincontent "socialnet/internal/domain/content"
	domainmessaging "socialnet/internal/domain/messaging"
	domainnotification "socialnet/internal/domain/notification"
	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
	"socialnet/internal/infra/broker/kafka"
	"socialnet/internal/infra/config"
	mongostore "socialnet/internal/infra/db/mongo"
	ginserver "socialnet/internal/infra/http/gin"
	"socialnet/internal/infra/obs"
	"socialnet/internal/infra/push"
	"socialnet/internal/infra/security"
	"socialnet/internal/infra/storage/memory"
	"socialnet/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	useMongo := err == nil
	if err != nil {
		logger.Warn("using in-memory storage, configuration incomplete", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.SessionTTL = 24 * time.Hour
		cfg.PushTimeout = 5 * time.Second
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	repos, ready, err := buildRepositories(ctx, cfg, useMongo, logger)
	if err != nil {
		logger.Error("storage initialization failed", "error", err)
		os.Exit(1)
	}

	var producer notificationsvc.EventProducer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka producer unavailable, notification events disabled", "error", err)
		} else {
			defer kafkaProducer.Close()
			producer = kafkaProducer
			logger.Info("kafka producer connected", "brokers", cfg.KafkaBrokers)
		}
	}

	var pushSender notificationsvc.PushSender = push.NoopSender{}
	if cfg.PushGatewayURL != "" {
		pushSender = push.New(cfg.PushGatewayURL, cfg.PushTimeout)
		logger.Info("push gateway configured", "endpoint", cfg.PushGatewayURL)
	}

	var uploader s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("s3 uploader unavailable", "error", err)
		} else {
			uploader = s3Client
		}
	}

	notifications := &notificationsvc.Service{
		Notifications: repos.notifications,
		Users:         repos.users,
		Push:          pushSender,
		Producer:      producer,
		TopicPrefix:   cfg.KafkaTopicPrefix,
		Logger:        logger,
	}
	authService := &authsvc.Service{
		Users:      repos.users,
		Sessions:   repos.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	profiles := &profilesvc.Service{
		Users:    repos.users,
		Sessions: repos.sessions,
		Logger:   logger,
	}
	social := &socialsvc.Service{
		Follows:  repos.follows,
		Users:    repos.users,
		Notifier: notifications,
		Logger:   logger,
	}
	content := &contentsvc.Service{
		Posts:    repos.posts,
		Comments: repos.comments,
		Likes:    repos.likes,
		Follows:  repos.follows,
		Users:    repos.users,
		Notifier: notifications,
		Logger:   logger,
	}
	messaging := &messagingsvc.Service{
		Messages: repos.messages,
		Users:    repos.users,
		Logger:   logger,
	}

	handlers := ginserver.Handlers{
		Auth:         ginserver.AuthHandler{Service: authService, Logger: logger},
		User:         ginserver.UserHandler{Service: profiles, Logger: logger},
		Social:       ginserver.SocialHandler{Service: social, Logger: logger},
		Post:         ginserver.PostHandler{Service: content, Logger: logger},
		Message:      ginserver.MessageHandler{Service: messaging, Logger: logger},
		Notification: ginserver.NotificationHandler{Service: notifications, Logger: logger},
		Upload:       ginserver.UploadHandler{Uploader: uploader, Logger: logger},
		Admin:        ginserver.AdminHandler{Profiles: profiles, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{
			Service: authService,
			Logger:  logger,
		}.Handle,
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", storageKind(useMongo))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type repositories struct {
	users         domainuser.Repository
	sessions      domainauth.SessionStore
	messages      domainmessaging.Repository
	follows       domainsocial.Repository
	posts         domaincontent.PostRepository
	comments      domaincontent.CommentRepository
	likes         domaincontent.LikeRepository
	notifications domainnotification.Repository
}

func buildRepositories(ctx context.Context, cfg config.Config, useMongo bool, logger *slog.Logger) (repositories, func() error, error) {
	if !useMongo {
		return repositories{
			users:         memory.NewUserRepository(),
			sessions:      memory.NewSessionStore(),
			messages:      memory.NewMessageRepository(),
			follows:       memory.NewFollowRepository(),
			posts:         memory.NewPostRepository(),
			comments:      memory.NewCommentRepository(),
			likes:         memory.NewLikeRepository(),
			notifications: memory.NewNotificationRepository(),
		}, func() error { return nil }, nil
	}

	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB, cfg.RetryBackoff)
	if err != nil {
		return repositories{}, nil, err
	}

	users := mongostore.NewUserRepository(client)
	sessions := mongostore.NewSessionStore(client)
	messages := mongostore.NewMessageRepository(client)
	follows := mongostore.NewFollowRepository(client)
	posts := mongostore.NewPostRepository(client)
	comments := mongostore.NewCommentRepository(client)
	likes := mongostore.NewLikeRepository(client)
	notifications := mongostore.NewNotificationRepository(client)

	indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	ensures := []func(context.Context) error{
		users.EnsureIndexes,
		sessions.EnsureIndexes,
		messages.EnsureIndexes,
		follows.EnsureIndexes,
		posts.EnsureIndexes,
		comments.EnsureIndexes,
		likes.EnsureIndexes,
		notifications.EnsureIndexes,
	}
	for _, ensure := range ensures {
		if err := ensure(indexCtx); err != nil {
			logger.Warn("index creation failed", "error", err)
		}
	}

	ready := func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx)
	}
	return repositories{
		users:         users,
		sessions:      sessions,
		messages:      messages,
		follows:       follows,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		notifications: notifications,
	}, ready, nil
}

func storageKind(useMongo bool) string {
	if useMongo {
		return "mongo"
	}
	return "memory"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
