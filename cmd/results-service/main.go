package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cheildo/courtside/internal/pkg/database"
	"github.com/cheildo/courtside/internal/pkg/kafka"
	"github.com/cheildo/courtside/internal/results"
	"github.com/cheildo/courtside/internal/scoring"
)

const serviceName = "courtside.results"

// application holds the long-running parts that shutdown has to stop.
type application struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	listener   *results.Listener
}

func main() {
	// --- Configuration ---
	viper.SetConfigName("results-service")
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

	// --- Dependency Injection ---
	svc := results.NewService(results.NewRepository(db), rules)
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: viper.GetStringSlice("kafka.brokers"),
		Topic:   viper.GetString("kafka.match_completed_topic"),
		GroupID: viper.GetString("kafka.consumer_group_id"),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Mount("/api/v1/results", results.NewHTTPHandler(svc).Routes())

	app := &application{
		grpcServer: grpc.NewServer(),
		health:     health.NewServer(),
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", viper.GetString("http_server.port")),
			Handler: r,
		},
		listener: results.NewListener(consumer, svc),
	}

	// --- Start Servers ---
	go app.startGRPCServer(viper.GetString("grpc_server.port"))
	go app.listener.Run(ctx)
	go func() {
		slog.Info("Results HTTP server starting...", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not start server", "error", err)
			os.Exit(1)
		}
	}()

	startDiagnosticsServer(viper.GetString("diagnostics.port"))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down servers...")
	app.health.Shutdown()
	cancel() // Stops the Kafka listener; uncommitted events are redelivered on restart.

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	app.grpcServer.GracefulStop()
	slog.Info("Servers shut down gracefully.", "recorded", app.listener.Recorded())
}

func (app *application) startGRPCServer(port string) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		slog.Error("Failed to listen on gRPC port", "port", port, "error", err)
		os.Exit(1)
	}

	healthpb.RegisterHealthServer(app.grpcServer, app.health)
	app.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	// Enable gRPC reflection. This is useful for tools like grpcurl to query the server.
	reflection.Register(app.grpcServer)

	slog.Info("Results gRPC server listening", "address", lis.Addr().String())
	if err := app.grpcServer.Serve(lis); err != nil {
		slog.Error("gRPC server failed to serve", "error", err)
	}
}

func startDiagnosticsServer(port string) {
	if port == "" {
		return
	}
	go func() {
		slog.Info("Starting diagnostics server", "port", port)
		if err := http.ListenAndServe(fmt.Sprintf(":%s", port), nil); err != nil {
			slog.Error("Diagnostics server failed to start", "error", err)
		}
	}()
}
