package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-cheer-backend/internal/config"
	"habit-cheer-backend/internal/handlers"
	"habit-cheer-backend/internal/middleware"
	"habit-cheer-backend/internal/repository"
	"habit-cheer-backend/internal/scheduler"
	"habit-cheer-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	cardRepo := repository.NewCardRepository(db)
	logRepo := repository.NewLogRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	poolRepo := repository.NewPoolRepository(db)
	sendStateRepo := repository.NewSendStateRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// Initialize push dispatcher
	pusher, err := services.NewAPNsPusher(
		cfg.APNs.KeyPath,
		cfg.APNs.KeyID,
		cfg.APNs.TeamID,
		cfg.APNs.Topic,
		cfg.APNs.Production,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push dispatcher")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	wsHub := services.NewWSHub()
	poolBuilder := services.NewPoolBuilder(cardRepo, logRepo, categoryRepo, poolRepo,
		cfg.Matching.PoolCap, cfg.Matching.ActiveWindowDays)
	suggestionService := services.NewSuggestionService(cardRepo, poolRepo, sendStateRepo, favoriteRepo,
		cfg.Matching.SuggestionSize, cfg.Matching.CooldownHours)
	cheerService := services.NewCheerService(reactionRepo, sendStateRepo, cardRepo, categoryRepo,
		cfg.Matching.DailySendLimit, cfg.Matching.CooldownHours)
	selector := services.NewReactionSelector(reactionRepo)
	systemCheerService := services.NewSystemCheerService(cardRepo, categoryRepo, reactionRepo, selector)
	deliveryService := services.NewDeliveryService(userRepo, cardRepo, categoryRepo, reactionRepo, pusher, wsHub)
	favoriteService := services.NewFavoriteService(favoriteRepo, cardRepo)
	titleCheckService := services.NewTitleCheckService(cardRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	cheerHandler := handlers.NewCheerHandler(cheerService, suggestionService, deliveryService)
	cardHandler := handlers.NewCardHandler(titleCheckService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)
			r.Put("/users/me/notification-settings", userHandler.UpdateNotificationSettings)
			r.Get("/cheers/suggestions", cheerHandler.GetSuggestions)
			r.Post("/cheers", cheerHandler.SendCheer)
			r.Delete("/cheers/{reaction_id}", cheerHandler.UndoCheer)
			r.Get("/reactions", cheerHandler.ListReactions)
			r.Post("/reactions/{reaction_id}/read", cheerHandler.MarkReactionRead)
			r.Post("/cards/title-check", cardHandler.CheckTitle)
			r.Post("/favorites", favoriteHandler.AddFavorite)
			r.Delete("/favorites/{favorite_id}", favoriteHandler.RemoveFavorite)
			r.Get("/favorites", favoriteHandler.ListFavorites)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Background jobs
	jobCtx, stopJobs := context.WithCancel(context.Background())
	sched := scheduler.New()
	sched.Add(scheduler.Job{
		Name:       "pool_rebuild",
		Interval:   cfg.Matching.RebuildInterval,
		RunAtStart: true,
		Run:        poolBuilder.RebuildAll,
	})
	sched.Add(scheduler.Job{
		Name:     "system_cheers",
		Interval: cfg.Matching.SystemCheerEvery,
		Run:      systemCheerService.Run,
	})
	sched.Add(scheduler.Job{
		Name:     "delivery_sweep",
		Interval: cfg.Matching.DeliverySweepTick,
		Run:      deliveryService.Sweep,
	})
	sched.Start(jobCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Stop background jobs
	stopJobs()
	sched.Wait()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
