package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	JWT       JWTConfig
	Stripe    StripeConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type FirebaseConfig struct {
	ProjectID string
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type AdminConfig struct {
	Email string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// requiredVars must all be set or the process refuses to start.
var requiredVars = []string{
	"MONGODB_URI",
	"JWT_SECRET",
	"STRIPE_SECRET_KEY",
	"ADMIN_EMAIL",
	"FIREBASE_PROJECT_ID",
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "LifeInsurance")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("JWT_TOKEN_TTL", 60)
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("RATE_LIMIT_MAX", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	var missing []string
	for _, key := range requiredVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("SERVER_ENVIRONMENT"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Firebase: FirebaseConfig{
			ProjectID: viper.GetString("FIREBASE_PROJECT_ID"),
		},
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			TokenTTL: time.Duration(viper.GetInt("JWT_TOKEN_TTL")) * time.Minute,
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Currency:  viper.GetString("STRIPE_CURRENCY"),
		},
		Admin: AdminConfig{
			Email: viper.GetString("ADMIN_EMAIL"),
		},
		RateLimit: RateLimitConfig{
			Max:    viper.GetInt("RATE_LIMIT_MAX"),
			Window: time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}

	return cfg, nil
}
