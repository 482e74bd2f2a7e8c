package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	AI       AIConfig
	Webhooks WebhookConfig
	Chat     ChatConfig
}

// AuthConfig configures verification of identity-provider tokens.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"IDENTITY_ISSUER"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=detailing_dashboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type AIConfig struct {
	APIKey       string        `env:"OPENAI_API_KEY"`
	Model        string        `env:"OPENAI_MODEL,    default=gpt-4o-mini"`
	BaseURL      string        `env:"OPENAI_BASE_URL"`
	Timeout      time.Duration `env:"AI_TIMEOUT,      default=30s"`
	PlanCacheTTL time.Duration `env:"PLAN_CACHE_TTL,  default=24h"`
}

type WebhookConfig struct {
	IdentitySecret string `env:"IDENTITY_WEBHOOK_SECRET"`
	BillingSecret  string `env:"BILLING_WEBHOOK_SECRET"`
	// PlanMap maps billing plan ids to plans, e.g. "price_123:pro,price_456:enterprise".
	PlanMap     map[string]string `env:"BILLING_PLAN_MAP"`
	PlanMapFile string            `env:"BILLING_PLAN_MAP_FILE"`
}

type ChatConfig struct {
	Workers int `env:"CHAT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
// Validate reports the settings the service cannot start without. The issuer
// is required because webhook-created users are keyed by "<issuer>|<subject>"
// and must match the identities built from tokens.
func (c *Config) Validate() error {
	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Auth.Issuer == "" {
		missing = append(missing, "IDENTITY_ISSUER")
	}
	if c.Webhooks.IdentitySecret == "" {
		missing = append(missing, "IDENTITY_WEBHOOK_SECRET")
	}
	if c.Webhooks.BillingSecret == "" {
		missing = append(missing, "BILLING_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// BillingPlans merges the plan-map file (if any) with BILLING_PLAN_MAP, the
// environment winning on conflicts, and validates every target plan.
func (c *Config) BillingPlans() (map[string]domain.Plan, error) {
	raw := map[string]string{}
	if c.Webhooks.PlanMapFile != "" {
		data, err := os.ReadFile(c.Webhooks.PlanMapFile)
		if err != nil {
			return nil, fmt.Errorf("config: read plan map: %w", err)
		}
		var file struct {
			Plans map[string]string `yaml:"plans"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("config: parse plan map: %w", err)
		}
		for k, v := range file.Plans {
			raw[k] = v
		}
	}
	for k, v := range c.Webhooks.PlanMap {
		raw[k] = v
	}

	plans := make(map[string]domain.Plan, len(raw))
	for id, name := range raw {
		p := domain.Plan(strings.ToLower(strings.TrimSpace(name)))
		if !p.Valid() {
			return nil, fmt.Errorf("config: billing plan %q maps to unknown plan %q", id, name)
		}
		plans[strings.TrimSpace(id)] = p
	}
	return plans, nil
}
