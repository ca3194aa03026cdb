package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RabbitMQURL string
	RedisURL    string
	JWTSecret   string
	SiteURL     string
	LogLevel    string

	Mail       MailConfig
	GoogleAds  OAuthAppConfig
	MetaAds    OAuthAppConfig
	Automation AutomationConfig
	RateLimit  RateLimitConfig
}

type MailConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	From           string
	FromName       string
	SendGridAPIKey string
}

type OAuthAppConfig struct {
	ClientID     string
	ClientSecret string
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type AutomationConfig struct {
	Cron              string
	Location          *time.Location
	TimeCatchUp       bool
	SendTimeout       time.Duration
	TenantConcurrency int
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv monta a config a partir de uma função de lookup (testes injetam valores).
func FromEnv(getenv func(string) string) *Config {
	e := env(getenv)

	return &Config{
		Port:        e.str("PORT", "8080"),
		DatabaseURL: e.str("DATABASE_URL", ""),
		RabbitMQURL: e.str("RABBITMQ_URL", ""),
		RedisURL:    e.str("REDIS_URL", ""),
		JWTSecret:   e.str("JWT_SECRET", ""),
		SiteURL:     strings.TrimRight(e.str("SITE_URL", "http://localhost:3000"), "/"),
		LogLevel:    e.str("LOG_LEVEL", "info"),
		Mail: MailConfig{
			Host:           e.str("MAIL_HOST", ""),
			Port:           e.int("MAIL_PORT", 587),
			User:           e.str("MAIL_USER", ""),
			Password:       e.str("MAIL_PASS", ""),
			From:           e.str("MAIL_FROM", "noreply@marketinghub.com"),
			FromName:       e.str("MAIL_FROM_NAME", "Marketing Hub"),
			SendGridAPIKey: e.str("SENDGRID_API_KEY", ""),
		},
		GoogleAds: OAuthAppConfig{
			ClientID:     e.first("GOOGLE_ADS_CLIENT_ID", "GOOGLE_CLIENT_ID"),
			ClientSecret: e.first("GOOGLE_ADS_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"),
		},
		MetaAds: OAuthAppConfig{
			ClientID:     e.str("META_APP_ID", ""),
			ClientSecret: e.str("META_APP_SECRET", ""),
		},
		Automation: AutomationConfig{
			Cron:              e.str("AUTOMATION_CRON", "@every 1h"),
			Location:          e.location("AUTOMATION_TIMEZONE"),
			TimeCatchUp:       e.bool("AUTOMATION_TIME_CATCHUP", false),
			SendTimeout:       e.duration("AUTOMATION_SEND_TIMEOUT", 15*time.Second),
			TenantConcurrency: e.int("AUTOMATION_TENANT_CONCURRENCY", 4),
		},
		RateLimit: RateLimitConfig{
			PerMinute: e.int("RATE_LIMIT_PER_MINUTE", 120),
			Burst:     e.int("RATE_LIMIT_BURST", 20),
		},
	}
}

// RedirectURL é o callback OAuth registrado na plataforma de anúncios.
func (c *Config) RedirectURL(platformPath string) string {
	return c.SiteURL + "/api/ads/" + platformPath + "/callback"
}

type env func(string) string

func (e env) str(key, def string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return def
}

func (e env) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(e(k)); v != "" {
			return v
		}
	}
	return ""
}

func (e env) int(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(e(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func (e env) bool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(e(key)))
	if err != nil {
		return def
	}
	return v
}

func (e env) duration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(e(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func (e env) location(key string) *time.Location {
	name := strings.TrimSpace(e(key))
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
