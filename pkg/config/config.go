package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	Postgres       Postgres `envPrefix:"POSTGRES_"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	MigrateOnStart bool     `env:"MIGRATE_ON_START" envDefault:"false"`

	Redis Redis `envPrefix:"REDIS_"`

	Cart     Cart     `envPrefix:"CART_"`
	Catalog  Catalog  `envPrefix:"CATALOG_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
	Session  Session  `envPrefix:"SESSION_"`
	Supabase Supabase `envPrefix:"SUPABASE_"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitRPS       int      `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`

	CheckoutMaxConcurrent int `env:"CHECKOUT_MAX_CONCURRENT" envDefault:"10"`
}

type Postgres struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port int    `env:"PORT" envDefault:"5432"`
	User string `env:"USER" envDefault:"shopping"`
	Pass string `env:"PASSWORD" envDefault:"shoppingpassword"`
	DB   string `env:"DB" envDefault:"shopping_db"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Cart struct {
	Backend             string        `env:"BACKEND" envDefault:"memory"`
	TTL                 time.Duration `env:"TTL" envDefault:"24h"`
	NonPositiveQuantity string        `env:"NONPOSITIVE_QUANTITY" envDefault:"accept"`
	MaxLineQuantity     int32         `env:"MAX_LINE_QUANTITY" envDefault:"0"`
}

type Catalog struct {
	SeedFile string `env:"SEED_FILE"`
}

type Admin struct {
	Strategy    string `env:"STRATEGY" envDefault:"session"`
	IDCookie    string `env:"ID_COOKIE" envDefault:"admin_id"`
	EmailCookie string `env:"EMAIL_COOKIE" envDefault:"admin_email"`
}

type Session struct {
	Cookie    string `env:"COOKIE" envDefault:"session"`
	Provider  string `env:"PROVIDER" envDefault:"jwt"`
	JWTSecret string `env:"JWT_SECRET"`
}

type Supabase struct {
	URL     string `env:"URL"`
	AnonKey string `env:"ANON_KEY"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Tooling is the part of Config that offline commands read. It skips the
// HTTP and admin validation so a seed import needs only database settings.
type Tooling struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Postgres       Postgres `envPrefix:"POSTGRES_"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	MigrateOnStart bool     `env:"MIGRATE_ON_START" envDefault:"false"`

	Catalog Catalog `envPrefix:"CATALOG_"`
}

func LoadTooling() (Tooling, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Tooling{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Tooling
	if err := env.Parse(&cfg); err != nil {
		return Tooling{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cart.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CART_BACKEND must be memory or redis, got %q", c.Cart.Backend)
	}
	switch c.Cart.NonPositiveQuantity {
	case "accept", "reject", "remove":
	default:
		return fmt.Errorf("CART_NONPOSITIVE_QUANTITY must be accept, reject or remove, got %q", c.Cart.NonPositiveQuantity)
	}
	if c.Cart.MaxLineQuantity < 0 {
		return fmt.Errorf("CART_MAX_LINE_QUANTITY cannot be negative, got %d", c.Cart.MaxLineQuantity)
	}
	switch c.Admin.Strategy {
	case "pair":
	case "session":
		switch c.Session.Provider {
		case "jwt":
			if c.Session.JWTSecret == "" {
				return errors.New("SESSION_JWT_SECRET is required for the jwt session provider")
			}
		case "supabase":
			if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
				return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase session provider")
			}
		default:
			return fmt.Errorf("SESSION_PROVIDER must be jwt or supabase, got %q", c.Session.Provider)
		}
	default:
		return fmt.Errorf("ADMIN_STRATEGY must be pair or session, got %q", c.Admin.Strategy)
	}
	return nil
}
