package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/viper"

	"github.com/cheildo/courtside/internal/auth"
	"github.com/cheildo/courtside/internal/livefeed"
	"github.com/cheildo/courtside/internal/pkg/database"
	"github.com/cheildo/courtside/internal/pkg/kafka"
	"github.com/cheildo/courtside/internal/pkg/redis"
	"github.com/cheildo/courtside/internal/results"
	"github.com/cheildo/courtside/internal/scoreboard"
	"github.com/cheildo/courtside/internal/scoring"
	"github.com/cheildo/courtside/internal/session"
	"github.com/cheildo/courtside/internal/umpire"
)

func main() {
	// --- Configuration Loading ---
	viper.SetConfigName("umpire-service")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs/development")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Failed to read configuration file", "error", err)
		os.Exit(1)
	}

	rules := scoring.DefaultRules()
	if err := viper.UnmarshalKey("scoring", &rules); err != nil {
		slog.Error("Failed to parse scoring rules", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Database Connection ---
	db, err := database.NewPostgresDB(database.Config{
		Host:            viper.GetString("database.host"),
		Port:            viper.GetString("database.port"),
		User:            viper.GetString("database.user"),
		Password:        viper.GetString("database.password"),
		DBName:          viper.GetString("database.db_name"),
		SSLMode:         viper.GetString("database.ssl_mode"),
		MaxOpenConns:    viper.GetInt("database.max_open_conns"),
		MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("Failed to apply database schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connection successful.")

	// --- Redis Connection ---
	rdb, err := redis.NewClient(ctx, redis.Config{
		Addr:        viper.GetString("redis.addr"),
		Password:    viper.GetString("redis.password"),
		DB:          viper.GetInt("redis.db"),
		DialTimeout: viper.GetDuration("redis.dial_timeout"),
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("Redis connection successful.")

	// --- Kafka Producer ---
	publisher := results.NewPublisher(kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      viper.GetStringSlice("kafka.brokers"),
		Topic:        viper.GetString("kafka.match_completed_topic"),
		WriteTimeout: viper.GetDuration("kafka.write_timeout"),
	}))

	// --- Dependency Injection ---
	authSvc := auth.NewService(auth.NewRepository(db), auth.Config{
		JWTSecret:     viper.GetString("jwt.secret_key"),
		TokenDuration: viper.GetDuration("jwt.token_duration_minutes") * time.Minute,
	})
	authHandler := auth.NewHTTPHandler(authSvc)

	var boardCfg scoreboard.Config
	if err := viper.UnmarshalKey("scoreboard", &boardCfg); err != nil {
		slog.Error("Failed to parse scoreboard config", "error", err)
		os.Exit(1)
	}
	board := scoreboard.NewBoard(rdb, boardCfg)
	hub := livefeed.NewHub()

	registry, err := session.NewRegistry(session.Options{
		Rules:        rules,
		Sink:         publisher,
		Observers:    []session.Observer{hub, board},
		TickInterval: viper.GetDuration("session.tick_interval"),
		Retention:    viper.GetDuration("session.retention"),
	})
	if err != nil {
		slog.Error("Invalid scoring rules", "error", err)
		os.Exit(1)
	}
	umpireHandler := umpire.NewHTTPHandler(registry)
	boardHandler := scoreboard.NewHTTPHandler(board)

	// --- HTTP Router and Middleware Setup ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Court controls are for signed-in umpires only.
		r.With(auth.Middleware(authSvc)).Mount("/matches", umpireHandler.Routes())

		r.Mount("/scoreboard", boardHandler.Routes())
	})

	// Spectator feeds stay open for the whole match, so they sit outside the timeout.
	r.Get("/ws/matches/{matchID}", hub.ServeHTTP)

	slog.Info("All routes initialized.")

	startDiagnosticsServer(viper.GetString("diagnostics.port"))

	// --- HTTP Server Initialization and Graceful Shutdown ---
	httpPort := viper.GetString("http_server.port")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", httpPort),
		Handler: r,
	}

	go func() {
		slog.Info("Umpire service starting...", "port", httpPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down umpire service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	// Unfinished matches are abandoned; their tickers must not outlive the process.
	registry.Shutdown()
	if err := publisher.Close(); err != nil {
		slog.Error("Failed to flush Kafka producer", "error", err)
	}

	slog.Info("Umpire service stopped.")
}

func startDiagnosticsServer(port string) {
	if port == "" {
		return
	}
	go func() {
		slog.Info("Starting diagnostics server", "port", port)
		// http.DefaultServeMux already has the pprof handlers registered by the import.
		if err := http.ListenAndServe(fmt.Sprintf(":%s", port), nil); err != nil {
			slog.Error("Diagnostics server failed to start", "error", err)
		}
	}()
}
