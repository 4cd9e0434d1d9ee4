package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/muednote/internal/config"
	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/hub"
	"github.com/xiaot623/gogo/muednote/internal/repository"
	"github.com/xiaot623/gogo/muednote/internal/service"
	transporthttp "github.com/xiaot623/gogo/muednote/internal/transport/http"
	"github.com/xiaot623/gogo/muednote/internal/transport/rpc"
	"github.com/xiaot623/gogo/muednote/internal/window"
	"github.com/xiaot623/gogo/muednote/internal/ws"
	"github.com/xiaot623/gogo/muednote/policy"
)

// app holds the wired components shared by the local commands.
type app struct {
	cfg   *config.Config
	store repository.Store
	svc   *service.Service
	hub   *hub.Hub
}

// loadApp builds the service graph. A store that cannot be opened is logged
// and left nil so the commands report "database not initialized" instead of
// failing at startup.
func loadApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	log.Printf("Database: %s", cfg.RedactedDatabaseURL())

	var store repository.Store
	s, err := repository.Open(ctx, cfg.DatabaseURL, repository.Options{
		MaxConns:       cfg.DBMaxConns,
		AcquireTimeout: cfg.DBAcquireTimeout,
	})
	if err != nil {
		log.Printf("Failed to initialize store: %v", err)
	} else {
		store = s
	}

	policyEngine, err := newPolicyEngine(ctx, cfg.IntakePolicy)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	connectionHub := hub.NewHub()
	host := window.NewMemoryHost(domain.WindowMain, domain.WindowOverlay)
	svc := service.New(store, service.NewProcessor(store, cfg), policyEngine, host, connectionHub, cfg)

	return &app{cfg: cfg, store: store, svc: svc, hub: connectionHub}, nil
}

func newPolicyEngine(ctx context.Context, setting string) (*policy.Engine, error) {
	content, err := policy.Load(setting)
	if err != nil {
		return nil, err
	}
	return policy.NewEngine(ctx, content)
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and JSON-RPC command surfaces",
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Printf("Starting muednote...")
	log.Printf("HTTP Port: %d", a.cfg.HTTPPort)
	log.Printf("RPC Port: %d", a.cfg.RPCPort)
	log.Printf("Intake mode: %s", a.cfg.IntakeMode)

	go a.hub.Run(ctx)

	httpServer := transporthttp.NewServer(a.svc, ws.NewServer(a.cfg, a.hub))

	rpcServer, err := rpc.NewServer(a.svc)
	if err != nil {
		return fmt.Errorf("failed to initialize rpc server: %w", err)
	}

	// Start HTTP server
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.HTTPPort)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Start RPC server
	if err := rpcServer.Listen(fmt.Sprintf(":%d", a.cfg.RPCPort)); err != nil {
		return fmt.Errorf("failed to listen for rpc: %w", err)
	}
	go func() {
		if err := rpcServer.Serve(); err != nil {
			log.Printf("RPC server stopped: %v", err)
		}
	}()

	log.Printf("HTTP API started on port %d", a.cfg.HTTPPort)
	log.Printf("JSON-RPC started on port %d", a.cfg.RPCPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down muednote...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}
	if err := rpcServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown RPC server gracefully: %v", err)
	}
	stop()

	log.Println("muednote stopped")
	return nil
}
