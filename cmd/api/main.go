// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"infowatch/internal/adapter/storage"
	"infowatch/internal/adapter/upstream"
	"infowatch/internal/config"
	"infowatch/internal/domain/heatmap"
	"infowatch/internal/engine"
	"infowatch/internal/server"
	"infowatch/internal/service/simulation"
	"infowatch/internal/service/stream"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Database and NATS are optional. The engine degrades to an
	// in-memory, bus-less deployment when either is unreachable.
	var store *storage.HeatmapStore
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Printf("Database unavailable, running in-memory only: %v", err)
	} else {
		defer db.Close()
		store = storage.NewHeatmapStore(db)
		if err := store.Migrate(ctx); err != nil {
			log.Printf("Database migration failed, running in-memory only: %v", err)
			store = nil
		}
	}

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Printf("NATS unavailable, alert publishing disabled: %v", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Upstream adapters
	snapshotClient := upstream.NewSnapshotClient(upstream.SnapshotClientConfig{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.RequestTimeout,
	})
	liveStream := upstream.NewWebSocketStream(upstream.WebSocketStreamConfig{
		URL: cfg.Upstream.StreamURL,
	})

	// Simulation client
	simClient := simulation.NewClient(simulation.ClientConfig{
		BaseURL: cfg.Simulation.BaseURL,
		Timeout: cfg.Simulation.Timeout,
	})

	// Initialize engine seeded with the bundled dataset so a coherent
	// view exists before the first upstream fetch completes
	eng := engine.New(
		engine.Config{
			AlertLimit:  cfg.Engine.AlertLimit,
			VizMode:     heatmap.VizMode(cfg.Engine.VizMode),
			TimeRange:   heatmap.TimeRange(cfg.Engine.TimeRange),
			MaxHotspots: cfg.Engine.MaxHotspots,
		},
		simClient,
		natsConn,
		stream.SeedSnapshot(),
	)

	// Initialize stream reconciler
	var archiver stream.Archiver
	if store != nil {
		archiver = store
	}
	reconciler := stream.NewReconciler(
		snapshotClient,
		liveStream,
		archiver,
		eng,
		stream.ReconcilerConfig{
			SnapshotInterval: cfg.Upstream.SnapshotInterval,
			FallbackInterval: cfg.Upstream.FallbackInterval,
			Window:           heatmap.TimeRange(cfg.Upstream.Window),
			Category:         cfg.Upstream.Category,
		},
	)

	if err := reconciler.Start(ctx); err != nil {
		log.Fatalf("Failed to start stream reconciler: %v", err)
	}

	// Initialize HTTP server
	var flagStore server.FlagStore
	if store != nil {
		flagStore = store
	}
	httpServer := server.NewServer(cfg.Server, eng, flagStore)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	log.Println("Shutting down services...")

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop stream reconciler
	if err := reconciler.Stop(shutdownCtx); err != nil {
		log.Printf("Stream reconciler shutdown error: %v", err)
	}

	// Stop engine and close subscriber channels
	eng.Stop()

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
