package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/ignite/open-tracker/internal/api"
	"github.com/ignite/open-tracker/internal/config"
	"github.com/ignite/open-tracker/internal/notify"
	"github.com/ignite/open-tracker/internal/store"
	"github.com/ignite/open-tracker/internal/tracking"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	if cfg.Storage.Driver == "memory" {
		// Known limitation of the default backend: all tracking data is
		// process-scoped and lost on restart.
		log.Println("[store] in-memory backend active; tracking data will not survive a restart")
	}

	var pub *notify.Publisher
	if cfg.Notify.QueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		pub = notify.NewPublisher(sqs.NewFromConfig(awsCfg), cfg.Notify.QueueURL)
		log.Printf("[notify] publishing opens to %s", cfg.Notify.QueueURL)
	}

	beacon := tracking.NewHandler(st, pub)
	handlers := api.NewHandlers(st)
	router := api.SetupRoutes(handlers, beacon, cfg.Home.Stealth)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("tracking server listening on %s (storage=%s)", srv.Addr, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down tracking server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	if closer, ok := st.(interface{ Close() error }); ok {
		closer.Close()
	}
}
