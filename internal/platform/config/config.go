package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	Port             string
	IsProduction     bool
	JWTSecret        string
	JWTIssuer        string
	JWTExpiry        time.Duration
	DownloadTokenTTL time.Duration

	// Virtual administrator, no member row
	AdminLogin        string
	AdminPasswordHash string // bcrypt

	// Money
	BaseCurrency      string
	AllowedCurrencies []string

	// Notices
	Timezone          string
	Location          *time.Location
	Locale            string
	WebBaseURL        string
	NotifyWorkers     int
	NotifyQueueSize   int
	NotifySendTimeout time.Duration

	// Chat
	DiscordBotToken  string
	AdminBotSecret   string
	RedisURL         string // Empty keeps wizard sessions in memory
	WizardSessionTTL time.Duration

	// HTTP
	WebFormRateLimit   string // ulule/limiter format, e.g. "20-M"
	LoginRateLimit     string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "expense-tracker")
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("DOWNLOAD_TOKEN_TTL", "24h")
	viper.SetDefault("ADMIN_LOGIN", "admin")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("BASE_CURRENCY", "UZS")
	viper.SetDefault("ALLOWED_CURRENCIES", "UZS,USD,EUR,RUB")
	viper.SetDefault("TIMEZONE", "Asia/Tashkent")
	viper.SetDefault("LOCALE", "ru")
	viper.SetDefault("WEB_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DISCORD_BOT_TOKEN", "")
	viper.SetDefault("ADMIN_BOT_SECRET", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("WIZARD_SESSION_TTL", "24h")
	viper.SetDefault("NOTIFY_WORKERS", 4)
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFY_SEND_TIMEOUT", "10s")
	viper.SetDefault("WEB_FORM_RATE_LIMIT", "20-M")
	viper.SetDefault("LOGIN_RATE_LIMIT", "10-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.JWTExpiry = durationOr("JWT_EXPIRY_DURATION", 12*time.Hour)
	cfg.DownloadTokenTTL = durationOr("DOWNLOAD_TOKEN_TTL", 24*time.Hour)

	cfg.AdminLogin = strings.TrimSpace(viper.GetString("ADMIN_LOGIN"))
	cfg.AdminPasswordHash = viper.GetString("ADMIN_PASSWORD_HASH")
	if cfg.AdminPasswordHash == "" {
		log.Println("Warning: ADMIN_PASSWORD_HASH not set. Administrator login is disabled.")
	}

	cfg.BaseCurrency = strings.ToUpper(strings.TrimSpace(viper.GetString("BASE_CURRENCY")))
	cfg.AllowedCurrencies = splitList(viper.GetString("ALLOWED_CURRENCIES"), strings.ToUpper)
	if cfg.BaseCurrency != "" && len(cfg.AllowedCurrencies) > 0 && !contains(cfg.AllowedCurrencies, cfg.BaseCurrency) {
		log.Printf("Warning: BASE_CURRENCY %s is not in ALLOWED_CURRENCIES. Adding it.\n", cfg.BaseCurrency)
		cfg.AllowedCurrencies = append(cfg.AllowedCurrencies, cfg.BaseCurrency)
	}

	cfg.Timezone = viper.GetString("TIMEZONE")
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Warning: Invalid TIMEZONE ('%s'). Defaulting to UTC.\n", cfg.Timezone)
		cfg.Timezone = "UTC"
		loc = time.UTC
	}
	cfg.Location = loc
	cfg.Locale = strings.ToLower(viper.GetString("LOCALE"))
	cfg.WebBaseURL = strings.TrimRight(viper.GetString("WEB_BASE_URL"), "/")

	cfg.NotifyWorkers = viper.GetInt("NOTIFY_WORKERS")
	if cfg.NotifyWorkers <= 0 {
		log.Println("Warning: NOTIFY_WORKERS must be positive. Defaulting to 1.")
		cfg.NotifyWorkers = 1
	}
	cfg.NotifyQueueSize = viper.GetInt("NOTIFY_QUEUE_SIZE")
	if cfg.NotifyQueueSize <= 0 {
		log.Println("Warning: NOTIFY_QUEUE_SIZE must be positive. Defaulting to 256.")
		cfg.NotifyQueueSize = 256
	}
	cfg.NotifySendTimeout = durationOr("NOTIFY_SEND_TIMEOUT", 10*time.Second)

	cfg.DiscordBotToken = viper.GetString("DISCORD_BOT_TOKEN")
	if cfg.DiscordBotToken == "" {
		log.Println("Warning: DISCORD_BOT_TOKEN not set. Chat notices and the wizard are disabled.")
	}
	cfg.AdminBotSecret = viper.GetString("ADMIN_BOT_SECRET")
	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.WizardSessionTTL = durationOr("WIZARD_SESSION_TTL", 24*time.Hour)

	cfg.WebFormRateLimit = viper.GetString("WEB_FORM_RATE_LIMIT")
	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"), nil)

	return cfg, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitList(raw string, transform func(string) string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if transform != nil {
			part = transform(part)
		}
		out = append(out, part)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
