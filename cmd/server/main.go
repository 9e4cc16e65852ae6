package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/ratelimit"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "tasktracker",
	Short:         "Multi-tenant task tracker API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		return database.Migrate(db, log)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (yaml, toml or json)")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cfg), nil
}

func serve() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		return err
	}
	hasher := auth.PasswordHasher{Cost: cfg.BcryptCost}

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Warn("OPENAI_API_KEY not set, task generation disabled")
	}

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, companyRepo, hasher, codec)
	userService := services.NewUserService(userRepo, hasher)
	taskService := services.NewTaskService(taskRepo, userRepo, services.Lifecycle{StrictCompletion: cfg.StrictCompletion}, aiService)

	resolver := middleware.NewSessionResolver(codec, log)

	r := gin.Default()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted_proxies: %w", err)
	}
	handlers.Routes{
		Auth:        handlers.NewAuthHandler(authService, cfg.IsProduction(), log),
		Users:       handlers.NewUserHandler(userService, log),
		Tasks:       handlers.NewTaskHandler(taskService, log),
		Resolver:    resolver,
		RateLimiter: middleware.NewRateLimiter(newLimiter(cfg, log), resolver, log),
		Limits:      cfg.RateLimits,
	}.Register(r)

	log.Info("server starting", "addr", cfg.HTTPAddr, "db_driver", cfg.DBDriver, "strict_completion", cfg.StrictCompletion)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// newLimiter prefers Redis when configured and reachable, falling back to
// per-process counters otherwise.
func newLimiter(cfg *config.Config, log *slog.Logger) ratelimit.Limiter {
	if cfg.RateLimitStore != "redis" {
		return ratelimit.NewInMemory()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-memory rate limiting", "addr", cfg.RedisAddr(), "error", err)
		_ = client.Close()
		return ratelimit.NewInMemory()
	}
	return ratelimit.NewRedis(client)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
