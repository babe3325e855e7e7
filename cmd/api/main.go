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

	"github.com/aarsha-api/internal/config"
	"github.com/aarsha-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/aarsha-api/internal/infrastructure/jwt"
	s3infra "github.com/aarsha-api/internal/infrastructure/s3"
	"github.com/aarsha-api/internal/infrastructure/smtp"
	transporthttp "github.com/aarsha-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	s3Client := s3infra.NewClient(cfg)
	coverStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		BookRepo:          dynamo.NewBookRepo(dynamoClient, cfg.DynamoTables.Books),
		ChapterRepo:       dynamo.NewChapterRepo(dynamoClient, cfg.DynamoTables.Chapters),
		ChapterDetailRepo: dynamo.NewChapterDetailRepo(dynamoClient, cfg.DynamoTables.ChapterDetails),
		WishlistRepo:      dynamo.NewWishlistRepo(dynamoClient, cfg.DynamoTables.Wishlists),
		UserRepo:          dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:           dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		CoverStore:        coverStore,
		Mailer:            mailer,
		JWTProvider:       jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
