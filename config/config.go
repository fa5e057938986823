package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/framefight/arena/storage"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parameters.
type Config struct {
	DatabaseURL       string
	JWTSecretKey      string
	ServerPort        int
	SchedulerInterval time.Duration
	R2                storage.CloudflareR2Config
}

// Load reads configuration from environment variables. A .env file is picked
// up when present, which is convenient for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	intervalStr := os.Getenv("SCHEDULER_INTERVAL")
	if intervalStr == "" {
		intervalStr = "1m"
	}
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL environment variable: %w", err)
	}
	if interval < time.Second {
		return nil, fmt.Errorf("SCHEDULER_INTERVAL must be at least 1s, got %v", interval)
	}

	r2 := storage.CloudflareR2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		SchedulerInterval: interval,
		R2:                r2,
	}, nil
}
