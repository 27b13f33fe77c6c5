package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hashmun/hashmun/backend/internal/config"
	"github.com/hashmun/hashmun/backend/internal/handler"
	"github.com/hashmun/hashmun/backend/internal/idgen"
	"github.com/hashmun/hashmun/backend/internal/service/ai"
	rosterService "github.com/hashmun/hashmun/backend/internal/service/roster"
	"github.com/hashmun/hashmun/backend/internal/service/workspace"
	"github.com/hashmun/hashmun/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	st, err := newStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer st.Close()
	log.Printf("storage initialized, driver=%s", cfg.Storage.Driver)

	ids := idgen.UUID{}

	ws, err := workspace.NewService(ctx, st, ids)
	if err != nil {
		log.Fatalf("failed to load workspace: %v", err)
	}
	editor := rosterService.NewEditor(ws, ids)

	// Initialize the AI gateway; without credentials the service still
	// runs and chat sends fail with a configuration error.
	var gateway *ai.Gateway
	if cfg.AI.Enabled() {
		gateway, err = ai.NewGateway(ctx, cfg.AI, ids)
		if err != nil {
			log.Printf("warning: failed to initialize AI gateway: %v", err)
			log.Println("continuing without AI functionality - check the Ark model environment variables")
		} else {
			log.Println("AI gateway initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	router := handler.NewRouter(ws, editor, gateway, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)

	startServer(ctx, cfg.Server, router)
}

func newStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return store.New(store.DriverRedis, store.WithRedisClient(client))
	case "sqlite":
		return store.New(store.DriverSQLite, store.WithSQLitePath(cfg.SQLitePath))
	case "memory":
		return store.New(store.DriverMemory)
	default:
		return store.New(store.DriverFile, store.WithDir(cfg.Dir))
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("HASHMUN backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
