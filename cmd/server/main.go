package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/config"
	"github.com/TusharChow20/project-Chef-Lokal/internal/controller"
	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
	"github.com/TusharChow20/project-Chef-Lokal/internal/identity"
	"github.com/TusharChow20/project-Chef-Lokal/internal/rabbit"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/repository"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
	"github.com/TusharChow20/project-Chef-Lokal/internal/session"
	"github.com/TusharChow20/project-Chef-Lokal/internal/upload"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "chef-lokal-gateway").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Conexión a MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}()
	db := client.Database(cfg.MongoDBName)

	// Repositorios
	sagas := repository.NewMongoSagaRepository(db)
	keys := repository.NewMongoIdempotencyRepository(db)
	if err := sagas.EnsureIndexes(connectCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create saga indexes")
	}
	if err := keys.EnsureIndexes(connectCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create idempotency indexes")
	}

	// Bus de eventos: local, o compartido entre instancias si hay RabbitMQ
	local := events.NewLocalBus()
	var bus events.Bus = local
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Error conectando a RabbitMQ")
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("Error creando canal en RabbitMQ")
		}
		defer ch.Close()

		rb, err := rabbit.SetupBus(ctx, ch, local)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up event exchange")
		}
		bus = rb
	} else {
		log.Warn().Msg("RABBIT_URL not set, events stay inside this instance")
	}

	// Sesiones y cache atadas al ciclo de vida de la app
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	sessions.Init(bus)
	defer sessions.Teardown()

	queries := cache.New(cfg.CacheTTL)
	detach := queries.Attach(bus)
	defer detach()

	// Clientes externos
	store := remote.NewClient(cfg.StoreURL, cfg.HTTPTimeout, bus)
	images := upload.NewClient(cfg.ImageHostURL, cfg.ImageHostKey, cfg.HTTPTimeout)
	provider := identity.NewClient(cfg.IdentityURL, cfg.IdentityAPIKey, cfg.HTTPTimeout)

	// Servicios
	inv := service.NewInvalidator(queries, bus)
	authService := service.NewAuthService(provider, store, images, sessions)
	orderService := service.NewOrderService(store, store, store, store, keys, queries, inv, bus)
	roleService := service.NewRoleService(store, store, sagas, keys, sessions, queries, inv)
	roleService.SetRecoveryLease(cfg.SagaLease)
	userService := service.NewUserService(store, images, sessions, queries, inv)
	mealService := service.NewMealService(store, store, store, images, keys, queries, inv)
	reviewService := service.NewReviewService(store, store, store, keys, queries, inv)
	favoriteService := service.NewFavoriteService(store, store, keys, queries, inv)
	statsService := service.NewStatsService(store, store, store, queries)

	if cfg.RecoveryToken != "" {
		recoverCtx := remote.WithCredential(ctx, remote.Credential{SessionID: "recovery", Token: cfg.RecoveryToken})
		if n, err := roleService.Recover(recoverCtx); err != nil {
			log.Error().Err(err).Msg("Saga recovery failed")
		} else {
			log.Info().Int("recovered", n).Msg("Saga recovery finished")
		}
	} else {
		log.Info().Msg("RECOVERY_TOKEN not set, pending sagas wait for POST /admin/sagas/recover")
	}

	go sweepSessions(ctx, sessions, cfg.SweepInterval)

	// Router
	r := controller.NewRouter(controller.Handlers{
		Auth:      controller.NewAuthController(authService),
		Orders:    controller.NewOrderController(orderService),
		Meals:     controller.NewMealController(mealService),
		Reviews:   controller.NewReviewController(reviewService),
		Favorites: controller.NewFavoriteController(favoriteService),
		Users:     controller.NewUserController(userService),
		Roles:     controller.NewRoleController(roleService),
		Stats:     controller.NewStatsController(statsService),
	}, sessions)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Chef Lokal gateway ejecutándose")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func sweepSessions(ctx context.Context, sessions *session.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Debug().Int("expired", n).Msg("Expired sessions removed")
			}
		}
	}
}
