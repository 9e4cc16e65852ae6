package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/ratelimit"
)

// defaultJWTSecret is a placeholder for local runs and is refused in release mode.
const defaultJWTSecret = "CHANGE_ME_SUPER_SECRET"

type Config struct {
	HTTPAddr   string
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisHost  string
	RedisPort  string
	GinMode    string
	LogLevel   string

	// TrustedProxies lists the proxies whose forwarding headers gin honours
	// when resolving the client address. Empty trusts none.
	TrustedProxies []string

	OpenAIAPIKey string

	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	BcryptCost   int

	// StrictCompletion makes COMPLETED terminal for managers as well as reportees.
	StrictCompletion bool

	RateLimitStore string
	RateLimits     RateLimits
}

// RateLimits holds one "<count>/<window>" policy per throttled route.
type RateLimits struct {
	Signup               string
	Login                string
	CreateReportee       string
	TaskList             string
	TaskCreate           string
	TaskAssign           string
	TaskDelete           string
	TaskStatusUpdate     string
	TaskStatusSelfUpdate string
	TaskGenerate         string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "taskuser")
	v.SetDefault("db_password", "taskpassword")
	v.SetDefault("db_name", "task_tracker")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("log_level", "info")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("jwt_secret_key", defaultJWTSecret)
	v.SetDefault("jwt_algorithm", constants.DefaultJWTAlgorithm)
	v.SetDefault("jwt_access_token_expire_minutes", int(constants.DefaultTokenTTL/time.Minute))
	v.SetDefault("bcrypt_rounds", constants.DefaultBcryptCost)
	v.SetDefault("strict_completion", false)
	v.SetDefault("rate_limit_store", "memory")

	v.SetDefault("rate_limit_signup", "5/hour")
	v.SetDefault("rate_limit_login", "10/minute")
	v.SetDefault("rate_limit_create_reportee", "20/hour")
	v.SetDefault("rate_limit_task_list", "50/hour")
	v.SetDefault("rate_limit_task_create", "30/hour")
	v.SetDefault("rate_limit_task_assign", "20/hour")
	v.SetDefault("rate_limit_task_delete", "10/hour")
	v.SetDefault("rate_limit_task_status_update", "30/hour")
	v.SetDefault("rate_limit_task_status_self_update", "50/hour")
	v.SetDefault("rate_limit_task_generate", "10/hour")
}

// Load builds the configuration from defaults, an optional config file and
// the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTPAddr:         v.GetString("http_addr"),
		DBDriver:         strings.ToLower(v.GetString("db_driver")),
		DBHost:           v.GetString("db_host"),
		DBPort:           v.GetString("db_port"),
		DBUser:           v.GetString("db_user"),
		DBPassword:       v.GetString("db_password"),
		DBName:           v.GetString("db_name"),
		RedisHost:        v.GetString("redis_host"),
		RedisPort:        v.GetString("redis_port"),
		GinMode:          v.GetString("gin_mode"),
		LogLevel:         v.GetString("log_level"),
		TrustedProxies:   trustedProxies(v.GetStringSlice("trusted_proxies")),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		JWTSecret:        v.GetString("jwt_secret_key"),
		JWTAlgorithm:     v.GetString("jwt_algorithm"),
		TokenTTL:         time.Duration(v.GetInt("jwt_access_token_expire_minutes")) * time.Minute,
		BcryptCost:       v.GetInt("bcrypt_rounds"),
		StrictCompletion: v.GetBool("strict_completion"),
		RateLimitStore:   strings.ToLower(v.GetString("rate_limit_store")),
		RateLimits: RateLimits{
			Signup:               v.GetString("rate_limit_signup"),
			Login:                v.GetString("rate_limit_login"),
			CreateReportee:       v.GetString("rate_limit_create_reportee"),
			TaskList:             v.GetString("rate_limit_task_list"),
			TaskCreate:           v.GetString("rate_limit_task_create"),
			TaskAssign:           v.GetString("rate_limit_task_assign"),
			TaskDelete:           v.GetString("rate_limit_task_delete"),
			TaskStatusUpdate:     v.GetString("rate_limit_task_status_update"),
			TaskStatusSelfUpdate: v.GetString("rate_limit_task_status_self_update"),
			TaskGenerate:         v.GetString("rate_limit_task_generate"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the configuration can drive the token codec, the hasher
// and the rate limiter.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt_secret_key is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("jwt_secret_key must be changed from the default in release mode")
	}
	if _, ok := jwt.GetSigningMethod(c.JWTAlgorithm).(*jwt.SigningMethodHMAC); !ok {
		return fmt.Errorf("jwt_algorithm %q is not a supported HMAC algorithm", c.JWTAlgorithm)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("jwt_access_token_expire_minutes must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_rounds must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("db_driver %q is not supported", c.DBDriver)
	}
	switch c.RateLimitStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("rate_limit_store %q is not supported", c.RateLimitStore)
	}
	for name, raw := range c.RateLimits.byName() {
		if _, err := ratelimit.ParsePolicy(raw); err != nil {
			return fmt.Errorf("rate_limit_%s: %w", name, err)
		}
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// RedisAddr returns host:port for the rate limit store.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// trustedProxies accepts a list or a single comma separated value, as
// environment variables arrive.
func trustedProxies(raw []string) []string {
	proxies := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, p := range strings.Split(entry, ",") {
			if p = strings.TrimSpace(p); p != "" {
				proxies = append(proxies, p)
			}
		}
	}
	return proxies
}

func (r RateLimits) byName() map[string]string {
	return map[string]string{
		"signup":                  r.Signup,
		"login":                   r.Login,
		"create_reportee":         r.CreateReportee,
		"task_list":               r.TaskList,
		"task_create":             r.TaskCreate,
		"task_assign":             r.TaskAssign,
		"task_delete":             r.TaskDelete,
		"task_status_update":      r.TaskStatusUpdate,
		"task_status_self_update": r.TaskStatusSelfUpdate,
		"task_generate":           r.TaskGenerate,
	}
}
