package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Discord struct {
	BotToken     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	ServerID     string
	ChannelID    string
	AdminRoleID  string
	MemberTTL    time.Duration
}

type Config struct {
	ListenAddr string
	GinMode    string

	BackendURL         string
	BackendAccessToken string
	BackendJWTSecret   string
	BackendJWTSubject  string
	BackendJWTTTL      time.Duration

	MutationTimeout time.Duration
	SnapshotTTL     time.Duration

	DatabaseURL   string
	RabbitMQURL   string
	RabbitMQQueue string

	Discord Discord

	CORSAllowedOrigins []string
}

// Load reads the configuration from the environment. Unset variables take
// their defaults; malformed durations are reported together.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		ListenAddr: getenv("LISTEN_ADDR", ":9090"),
		GinMode:    getenv("GIN_MODE", ""),

		BackendURL:         getenv("BACKEND_URL", "http://localhost:8080/api"),
		BackendAccessToken: getenv("BACKEND_ACCESS_TOKEN", ""),
		BackendJWTSecret:   getenv("BACKEND_JWT_SECRET", ""),
		BackendJWTSubject:  getenv("BACKEND_JWT_SUBJECT", "booking-console"),
		BackendJWTTTL:      parseDur("BACKEND_JWT_TTL", 15*time.Minute, &errs),

		MutationTimeout: parseDur("MUTATION_TIMEOUT", 8*time.Second, &errs),
		SnapshotTTL:     parseDur("SNAPSHOT_TTL", 5*time.Minute, &errs),

		DatabaseURL:   getenv("DATABASE_URL", ""),
		RabbitMQURL:   getenv("RABBITMQ_URL", ""),
		RabbitMQQueue: getenv("RABBITMQ_QUEUE", "booking.lifecycle"),

		Discord: Discord{
			BotToken:     getenv("DISCORD_BOT_TOKEN", ""),
			ClientID:     getenv("DISCORD_CLIENT_ID", ""),
			ClientSecret: getenv("DISCORD_CLIENT_SECRET", ""),
			RedirectURI:  getenv("DISCORD_REDIRECT_URI", ""),
			ServerID:     getenv("DISCORD_SERVER_ID", ""),
			ChannelID:    getenv("DISCORD_CHANNEL_ID", ""),
			AdminRoleID:  getenv("DISCORD_ADMIN_ROLE_ID", ""),
			MemberTTL:    parseDur("DISCORD_MEMBER_TTL", time.Minute, &errs),
		},

		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.MutationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("MUTATION_TIMEOUT must be positive, got %v", cfg.MutationTimeout))
	}

	if len(cfg.BackendJWTSecret) != 0 && cfg.BackendJWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("BACKEND_JWT_TTL must be positive, got %v", cfg.BackendJWTTTL))
	}

	return cfg, errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); len(v) != 0 {
		return v
	}

	return fallback
}

func parseDur(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := getenv(key, "")

	if len(v) == 0 {
		return fallback
	}

	d, err := time.ParseDuration(v)

	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration for %s: %w", key, err))
		return fallback
	}

	return d
}

func splitList(v string) []string {
	items := []string{}

	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); len(item) != 0 {
			items = append(items, item)
		}
	}

	return items
}
