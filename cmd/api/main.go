// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Marga-Ghale/ora-casework/internal/api/handlers"
	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/config"
	"github.com/Marga-Ghale/ora-casework/internal/cron"
	"github.com/Marga-Ghale/ora-casework/internal/db"
	"github.com/Marga-Ghale/ora-casework/internal/id"
	"github.com/Marga-Ghale/ora-casework/internal/metrics"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/notification"
	"github.com/Marga-Ghale/ora-casework/internal/repository"
	"github.com/Marga-Ghale/ora-casework/internal/seed"
	"github.com/Marga-Ghale/ora-casework/internal/socket"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

func main() {
	// ============================================
	// Logging
	// ============================================
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENVIRONMENT") != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server exited")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, _ := cfg.Location()
	policy, err := workspace.ParseRolePolicy(cfg.Policy())
	if err != nil {
		return fmt.Errorf("invalid ROLE_POLICY: %w", err)
	}
	eventIDs, err := id.NewGenerator(cfg.NodeID)
	if err != nil {
		return fmt.Errorf("invalid NODE_ID: %w", err)
	}

	m := metrics.New()
	g, gctx := errgroup.WithContext(ctx)

	// ============================================
	// Journal (optional)
	// ============================================
	var events repository.EventRepository
	var journal *repository.Journal
	if cfg.JournalEnabled() {
		if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		pg, err := db.NewPostgresDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer pg.Close()

		events = repository.NewEventRepository(pg.Pool)
		journal = repository.NewJournal(events, cfg.JournalBuffer, logger, func(n int) { m.RecordDrop("journal", n) })
		g.Go(func() error { return journal.Run(gctx) })
	} else {
		logger.Warn().Msg("DATABASE_URL not set, event journal disabled")
	}

	// ============================================
	// Presence mirror (optional)
	// ============================================
	var mirror *db.PresenceMirror
	var mirrorReader handlers.PresenceMirror
	if cfg.PresenceMirrorEnabled() {
		redisDB, err := db.NewRedisDB(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to Redis, continuing without presence mirror")
		} else {
			defer redisDB.Close()
			mirror = db.NewPresenceMirror(redisDB, cfg.PresenceTTL, cfg.JournalBuffer, logger, func(n int) { m.RecordDrop("redis", n) })
			mirrorReader = redisDB
			g.Go(func() error { return mirror.Run(gctx) })
		}
	}

	// ============================================
	// Store and WebSocket hub
	// ============================================
	// The hub calls back into the store, and the store publishes to the hub.
	var store *workspace.Store

	hub := socket.NewHub(logger,
		socket.WithPresence(func(memberID string, online bool, at time.Time) {
			if _, err := store.UpdatePresence(context.Background(), memberID, online, at); err != nil && !apperr.IsNotFound(err) {
				logger.Error().Err(err).Str("member_id", memberID).Msg("presence update failed")
			}
		}),
		socket.WithRoomGuard(socket.WorkspaceGuard(func(ctx context.Context, workspaceID, memberID string) (models.WorkspaceMember, error) {
			return store.Member(ctx, workspaceID, memberID)
		})),
		socket.WithClientGauge(m.SetSocketClients),
	)
	broadcaster := socket.NewBroadcaster(hub, func() { m.RecordDrop("socket", 1) })
	notifier := notification.NewService(hub,
		func(ctx context.Context, workspaceID, memberID string) (models.WorkspaceMember, error) {
			return store.Member(ctx, workspaceID, memberID)
		},
		func(ctx context.Context, workspaceID, messageID string) (models.WorkspaceMessage, error) {
			return store.Message(ctx, workspaceID, messageID)
		},
		logger,
	)

	sinks := []workspace.Sink{broadcaster, notifier, m}
	if journal != nil {
		sinks = append(sinks, journal)
	}
	if mirror != nil {
		sinks = append(sinks, mirror)
	}

	store = workspace.NewStore(policy, logger,
		workspace.WithEventIDs(eventIDs.Next),
		workspace.WithLocation(loc),
		workspace.WithSinks(sinks...),
		workspace.WithRecorder(m),
	)
	g.Go(func() error { return hub.Run(gctx) })

	// ============================================
	// Development fixtures
	// ============================================
	if !cfg.IsProduction() {
		fixture, err := loadFixture(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed fixture: %w", err)
		}
		sum, err := seed.Apply(ctx, store, fixture, logger)
		if err != nil {
			return fmt.Errorf("failed to seed workspaces: %w", err)
		}
		logger.Info().Interface("summary", sum).Msg("development data seeded")
	}

	// ============================================
	// Scheduler
	// ============================================
	scheduler := cron.NewScheduler(cron.Config{
		PresenceSweep:    cfg.PresenceSweep,
		PresenceTimeout:  cfg.PresenceTimeout,
		JournalPrune:     cfg.JournalPrune,
		JournalRetention: cfg.JournalRetention,
	}, store, events, m.RecordExpired, logger)
	g.Go(func() error { return scheduler.Run(gctx) })

	// ============================================
	// HTTP
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"workspaces": store.Count(),
			"journal":    enabled(journal != nil),
			"presence":   enabled(mirror != nil),
			"ws_clients": hub.ConnectedClients(),
			"ws_members": len(hub.OnlineMembers()),
		})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	h := handlers.NewHandlers(store)
	if events != nil {
		h.Events = handlers.NewEventHandler(events)
	}
	h.Presence = handlers.NewPresenceHandler(store, hub, mirrorReader)

	api := r.Group("/api")
	api.GET("/ws", socket.NewHandler(hub, cfg.JWTSecret, cfg.AllowedOrigins()).HandleWebSocket)
	h.RegisterRoutes(api, cfg.JWTSecret, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}
