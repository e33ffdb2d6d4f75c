package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries every tunable the server reads from the environment.
type Config struct {
	Port            string
	Debug           bool
	AllowedOrigins  []string
	SecretKey       string
	CookieMaxAge    time.Duration
	CardsFile       string
	MaxPlayers      int
	MinPlayers      int
	DrawTime        time.Duration
	CleanupInterval time.Duration
	RoomMaxAge      time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnvString("PORT", "5016"),
		Debug:           os.Getenv("GIN_MODE") != "release",
		AllowedOrigins:  splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		SecretKey:       os.Getenv("SECRET_KEY"),
		CookieMaxAge:    getEnvDuration("COOKIE_MAX_AGE", 24*time.Hour),
		CardsFile:       getEnvString("CARDS_FILE", "data/cards.json"),
		MaxPlayers:      getEnvInt("MAX_PLAYERS", 6),
		MinPlayers:      getEnvInt("MIN_PLAYERS", 2),
		DrawTime:        getEnvDuration("DRAW_TIME", 40*time.Second),
		CleanupInterval: getEnvDuration("ROOM_CLEANUP_INTERVAL", 5*time.Minute),
		RoomMaxAge:      getEnvDuration("ROOM_MAX_AGE", 2*time.Hour),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
	}

	if cfg.SecretKey == "" {
		if !cfg.Debug {
			log.Fatal().Msg("SECRET_KEY must be set in production")
		}
		cfg.SecretKey = randomSecret()
		log.Warn().Msg("SECRET_KEY not set, generated an ephemeral one (sessions won't survive restarts)")
	}

	return cfg
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("failed to generate dev secret key")
	}
	return hex.EncodeToString(buf)
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msgf("invalid int, using default %d", fallback)
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msgf("invalid duration, using default %v", fallback)
		return fallback
	}
	return d
}
