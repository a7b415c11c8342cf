package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	PublicSiteURL     string `mapstructure:"PUBLIC_SITE_URL"`
	CORSOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Store configuration. STORE_BACKEND selects where booking and waitlist
	// records live; Redis is always required for sessions and the task queue.
	StoreBackend  string        `mapstructure:"STORE_BACKEND"`
	StoreTimeout  time.Duration `mapstructure:"STORE_TIMEOUT"`
	RedisURL      string        `mapstructure:"REDIS_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	DatabaseName  string        `mapstructure:"DATABASE_NAME"`

	// Payments.
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	Currency        string `mapstructure:"CURRENCY"`

	// Admin gate.
	AdminPassword      string `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash  string `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminSessionSecret string `mapstructure:"ADMIN_SESSION_SECRET"`

	// Outbound email.
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	FromEmail    string `mapstructure:"FROM_EMAIL"`

	// Booking events.
	KafkaBrokers       string `mapstructure:"KAFKA_BROKERS"`
	KafkaBookingsTopic string `mapstructure:"KAFKA_BOOKINGS_TOPIC"`

	// Trip and pricing.
	TicketLimit         int    `mapstructure:"TICKET_LIMIT"`
	RouteCode           string `mapstructure:"ROUTE_CODE"`
	TripTimezone        string `mapstructure:"TRIP_TIMEZONE"`
	TripDeparture       string `mapstructure:"TRIP_DEPARTURE"`
	TripReturn          string `mapstructure:"TRIP_RETURN"`
	PriceOneWayCents    int64  `mapstructure:"PRICE_ONE_WAY_CENTS"`
	PriceRoundTripCents int64  `mapstructure:"PRICE_ROUND_TRIP_CENTS"`
	PriceLuggageCents   int64  `mapstructure:"PRICE_LUGGAGE_CENTS"`
	LateFeeCents        int64  `mapstructure:"LATE_FEE_CENTS"`
	LateFeeMode         string `mapstructure:"LATE_FEE_MODE"`
	LateFeeWindowHours  int    `mapstructure:"LATE_FEE_WINDOW_HOURS"`
	LateFeeWindowDays   int    `mapstructure:"LATE_FEE_WINDOW_DAYS"`
}

// defaults lists every key viper should know about. Keys without a default
// are still registered so AutomaticEnv picks them up during Unmarshal.
var defaults = map[string]interface{}{
	"APP_PORT":               "8080",
	"ENV":                    "development",
	"LOG_LEVEL":              "info",
	"MAX_REQUESTS_PER_MIN":   100,
	"PUBLIC_SITE_URL":        "",
	"CORS_ALLOWED_ORIGINS":   "",
	"STORE_BACKEND":          "redis",
	"STORE_TIMEOUT":          "5s",
	"REDIS_URL":              "",
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"REDIS_QUEUE_DB":         1,
	"DATABASE_URL":           "mongodb://localhost:27017",
	"DATABASE_NAME":          "unilink",
	"STRIPE_SECRET_KEY":      "",
	"CURRENCY":               "usd",
	"ADMIN_PASSWORD":         "",
	"ADMIN_PASSWORD_HASH":    "",
	"ADMIN_SESSION_SECRET":   "",
	"RESEND_API_KEY":         "",
	"FROM_EMAIL":             "UniLink <onboarding@resend.dev>",
	"KAFKA_BROKERS":          "",
	"KAFKA_BOOKINGS_TOPIC":   "unilink.bookings",
	"TICKET_LIMIT":           35,
	"ROUTE_CODE":             "purdue-uiuc",
	"TRIP_TIMEZONE":          "America/Indiana/Indianapolis",
	"TRIP_DEPARTURE":         "2025-03-06T18:00:00",
	"TRIP_RETURN":            "2025-03-08T18:00:00",
	"PRICE_ONE_WAY_CENTS":    3000,
	"PRICE_ROUND_TRIP_CENTS": 6000,
	"PRICE_LUGGAGE_CENTS":    750,
	"LATE_FEE_CENTS":         500,
	"LATE_FEE_MODE":          "hours",
	"LATE_FEE_WINDOW_HOURS":  24,
	"LATE_FEE_WINDOW_DAYS":   3,
}

// LoadConfig reads .env files, an optional config.yaml and the environment, in
// increasing order of precedence.
func LoadConfig() (*Config, error) {
	// .env.local wins over .env; godotenv never overrides variables already set.
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err == nil {
			log.Printf("Loaded environment from %s", f)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	c.StripeSecretKey = strings.TrimSpace(c.StripeSecretKey)
	c.AdminPassword = strings.TrimSpace(c.AdminPassword)
	c.AdminPasswordHash = strings.TrimSpace(c.AdminPasswordHash)
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.LateFeeMode = strings.ToLower(strings.TrimSpace(c.LateFeeMode))
	c.PublicSiteURL = strings.TrimRight(c.PublicSiteURL, "/")
}

// Validate rejects configurations the service cannot start with. Missing
// secrets are not errors here: the endpoints that need them report it.
func (c *Config) Validate() error {
	var problems []string

	switch c.StoreBackend {
	case "redis", "mongo":
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND must be redis or mongo, got %q", c.StoreBackend))
	}
	switch c.LateFeeMode {
	case "hours", "days":
	default:
		problems = append(problems, fmt.Sprintf("LATE_FEE_MODE must be hours or days, got %q", c.LateFeeMode))
	}
	if c.TicketLimit <= 0 {
		problems = append(problems, "TICKET_LIMIT must be positive")
	}
	if !strings.Contains(c.RouteCode, "-") {
		problems = append(problems, fmt.Sprintf("ROUTE_CODE must look like origin-destination, got %q", c.RouteCode))
	}
	if c.StoreTimeout <= 0 {
		problems = append(problems, "STORE_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Brokers splits KAFKA_BROKERS on commas.
func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas. Empty means any
// origin is echoed back.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// AdminConfigured reports whether an admin secret is set.
func (c *Config) AdminConfigured() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}
