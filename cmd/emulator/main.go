package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend2/internal/config"
	"backend2/internal/container"
	"backend2/internal/httpapi"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	c, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	s3Router := httpapi.NewS3Router(c.S3, c.Credentials, c.Logger, c.Tracer, c.Metrics, cfg.EnableCORS)
	dynamoRouter := httpapi.NewDynamoRouter(c.DynamoDB, c.Tables, c.Credentials, c.Logger, c.Tracer, c.Metrics)
	handler := httpapi.CombinedHandler(s3Router, dynamoRouter)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		c.Logger.Info("starting emulator",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.Bool("s3", cfg.EnableS3),
			zap.Bool("dynamodb", cfg.EnableDynamoDB),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	c.Logger.Info("shutting down emulator...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Error("server shutdown error", zap.Error(err))
	}

	if err := c.Close(); err != nil {
		log.Printf("failed to sync logger: %v", err)
	}

	log.Println("emulator stopped")
}
