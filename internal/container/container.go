package container

import (
	"context"
	"fmt"

	"camphub-be/internal/config"
	"camphub-be/internal/handler"
	"camphub-be/internal/middleware"
	"camphub-be/internal/repository"
	"camphub-be/internal/service"
	"camphub-be/pkg/database"
	"camphub-be/pkg/logger"
	"camphub-be/pkg/redis"

	"go.uber.org/zap"
)

// Container wires configuration, infrastructure, services, and handlers.
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *database.PostgresDB
	Redis  *redis.Client

	AuthMiddleware *middleware.AuthMiddleware

	ApplicationHandler *handler.ApplicationHandler
	CallSlotHandler    *handler.CallSlotHandler
	InviteHandler      *handler.InviteHandler
	RosterHandler      *handler.RosterHandler
	HealthHandler      *handler.HealthHandler
}

// New builds the full dependency graph. Redis is optional: without
// REDIS_URL the services run DB-only.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		}
	}

	// Repositories
	appRepo := repository.NewPgApplicationRepository(db)
	slotRepo := repository.NewPgCallSlotRepository(db)
	inviteRepo := repository.NewPgInviteRepository(db)
	memberRepo := repository.NewPgMemberRepository(db)
	rosterRepo := repository.NewPgRosterRepository(db)
	campRepo := repository.NewPgCampRepository(db)
	profileRepo := repository.NewPgProfileRepository(db)
	activityRepo := repository.NewPgActivityRepository(db)

	// Collaborators
	var profiles service.ProfileService
	if cfg.ProfileServiceURL != "" {
		profiles = service.NewHTTPProfileService(cfg.ProfileServiceURL)
	} else {
		profiles = service.NewRepoProfileService(profileRepo)
	}
	notifier := service.NewWebhookNotifier(cfg.NotifyWebhookURL, log.Logger)
	activity := service.NewDBActivityRecorder(activityRepo, log.Logger)

	// Services
	cache := service.NewCacheService(redisClient, log.Logger)
	slotService := service.NewCallSlotService(slotRepo, appRepo, cache, log.Logger)
	inviteService := service.NewInviteService(inviteRepo, campRepo, cache, notifier, log.Logger, cfg.InviteLinkBase)
	membershipService := service.NewMembershipService(memberRepo, rosterRepo, appRepo, slotRepo, campRepo, profileRepo, activity, log.Logger)
	applicationService := service.NewApplicationService(appRepo, campRepo, profiles, slotService, inviteService, membershipService, notifier, activity, cache, log.Logger)
	rosterService := service.NewRosterService(rosterRepo, memberRepo, activity, log.Logger)

	return &Container{
		Config:             cfg,
		Logger:             log,
		DB:                 db,
		Redis:              redisClient,
		AuthMiddleware:     middleware.NewAuthMiddleware(cfg.JWTSecret, log.Logger),
		ApplicationHandler: handler.NewApplicationHandler(applicationService, log.Logger),
		CallSlotHandler:    handler.NewCallSlotHandler(slotService, log.Logger),
		InviteHandler:      handler.NewInviteHandler(inviteService, log.Logger),
		RosterHandler:      handler.NewRosterHandler(rosterService, membershipService, log.Logger),
		HealthHandler:      handler.NewHealthHandler(db, redisClient),
	}, nil
}

// Close releases infrastructure resources.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	_ = c.Logger.Sync()
}
