package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lifeshield/lifeshield-api/handlers"
	"github.com/lifeshield/lifeshield-api/internal/config"
	"github.com/lifeshield/lifeshield-api/internal/database"
	"github.com/lifeshield/lifeshield-api/internal/identity"
	"github.com/lifeshield/lifeshield-api/internal/payments"
	"github.com/lifeshield/lifeshield-api/internal/resource"
	"github.com/lifeshield/lifeshield-api/internal/storage"
	"github.com/lifeshield/lifeshield-api/pkg/logger"
	"github.com/lifeshield/lifeshield-api/pkg/metrics"
	"github.com/lifeshield/lifeshield-api/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v firebase=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Firebase.ProjectID != "")

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorf("panic recovered: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}))

	// Lightweight CORS middleware for dev/test: set common headers and respond
	// to OPTIONS. Production should use a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Connect to Redis early so the rate limiter can use it when configured
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v — falling back to in-memory rate limiting", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("Connected to Redis for rate limiting: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Rate limiter for login and payment-intent creation only; resource reads
	// stay unthrottled.
	var limit gin.HandlerFunc
	if rdb != nil {
		limit = middleware.RedisRateLimit(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
	} else {
		rps := float64(cfg.RateLimit.Max) / cfg.RateLimit.Window.Seconds()
		limit = middleware.RateLimit(rps, cfg.RateLimit.Max)
	}

	// Retry/backoff when connecting to MongoDB to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	var errConn error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, errConn = database.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if errConn == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if errConn != nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := database.Init(client.Database(cfg.MongoDB.Database)); err != nil {
		logger.Fatalf("failed to initialize collections: %v", err)
	}
	logger.Infof("MongoDB ready: database=%s", cfg.MongoDB.Database)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "uptime": time.Since(startTime).String()})
	})

	root := r.Group("/")
	authMW := middleware.Auth(cfg.JWT.Secret)

	// Mount one uniform handler per resource collection
	for _, def := range resource.All() {
		col, err := database.Collection(def.Collection)
		if err != nil {
			logger.Fatalf("collection %s: %v", def.Collection, err)
		}
		resource.NewHandler(def, resource.NewMongoStore(col)).Register(root.Group(def.BasePath), authMW)
	}

	// Firebase ID token verification; ALLOW_INSECURE_TOKEN=true swaps in a
	// payload-only parser for integration runs without Firebase access.
	var verifier identity.Verifier
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warnf("enabling insecure token verifier (integration mode)")
		verifier = identity.NewInsecureVerifier()
	} else {
		verifier, err = identity.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID)
		if err != nil {
			logger.Fatalf("failed to initialize Firebase verifier: %v", err)
		}
	}

	customersCol, err := database.Collection(database.CollCustomers)
	if err != nil {
		logger.Fatalf("collection %s: %v", database.CollCustomers, err)
	}
	handlers.NewAuthHandler(cfg, verifier, resource.NewMongoStore(customersCol)).Register(root, limit)
	handlers.NewPaymentsHandler(cfg, payments.NewStripeIntentCreator(cfg.Stripe.SecretKey)).Register(root, limit)

	// Optional media uploads when object storage is configured
	if mcfg := storage.LoadMediaConfig(); mcfg.Endpoint != "" {
		media, err := storage.NewMediaStorage(mcfg)
		if err != nil {
			logger.Warnf("media storage unavailable: %v", err)
		} else {
			handlers.NewMediaHandler(media).Register(root)
			logger.Infof("media uploads enabled: endpoint=%s bucket=%s", mcfg.Endpoint, mcfg.Bucket)
		}
	}

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting lifeshield-api on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
