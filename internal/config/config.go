package config

import (
	"errors"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr            string
	DBDSN               string
	JWTIssuer           string
	JWTSecret           string
	JWTTTL              time.Duration
	InternalToken       string
	InternalTokenHash   string
	WebSocketOrigin     string
	AppMode             string
	LogLevel            log.Level
	DefaultRiskFreeRate float64
}

// Load reads an optional .env file (ENV_FILE, default .env) and then the environment.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, err
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and reports every missing key at once.
func FromEnv(getenv func(string) string) (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = getenv("DB_DSN")
	c.JWTIssuer = getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		c.JWTIssuer = "optiondesk"
	}
	c.JWTSecret = getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	c.JWTTTL = 24 * time.Hour
	if jwtTTL := getenv("JWT_TTL"); jwtTTL != "" {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.InternalToken = getenv("INTERNAL_API_TOKEN")
	c.InternalTokenHash = getenv("INTERNAL_API_TOKEN_HASH")
	if c.InternalToken == "" && c.InternalTokenHash == "" {
		missing = append(missing, "INTERNAL_API_TOKEN")
	}
	c.WebSocketOrigin = getenv("WS_ORIGIN")
	if c.WebSocketOrigin == "" {
		c.WebSocketOrigin = "*"
	}
	c.AppMode = strings.ToLower(strings.TrimSpace(getenv("APP_MODE")))
	if c.AppMode == "" {
		c.AppMode = "development"
	}
	if c.AppMode != "development" && c.AppMode != "production" {
		return c, errors.New("invalid APP_MODE: use development or production")
	}
	if c.AppMode == "production" && c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.LogLevel = log.InfoLevel
	if lvl := strings.TrimSpace(getenv("LOG_LEVEL")); lvl != "" {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			return c, err
		}
		c.LogLevel = parsed
	}
	c.DefaultRiskFreeRate = 6.5
	if raw := strings.TrimSpace(getenv("DEFAULT_RISK_FREE_RATE")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return c, errors.New("invalid DEFAULT_RISK_FREE_RATE")
		}
		c.DefaultRiskFreeRate = v
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}
