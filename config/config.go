package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/queue-app/utils"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	Port       string
	GinMode    string
	DBDriver   string // sqlite | mysql
	DBDSN      string
	JWTSecret  string
	RedisAddr  string
	RedisPass  string
	RedisDB    int
	RabbitURL  string
	Sweep      time.Duration // zero disables the in-process sweeper
	LogLevel   string
	CORSOrigin string
	Location   *time.Location // zone used to bucket analytics hours
}

// Load reads .env if present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := Config{
		Port:       getEnv("APP_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBDSN:      getEnv("DB_DSN", "queue.db"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:    getInt("REDIS_DB", 0),
		RabbitURL:  os.Getenv("RABBITMQ_URL"),
		Sweep:      getDuration("SWEEP_INTERVAL", 0),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		CORSOrigin: os.Getenv("CORS_ORIGIN"),
		Location:   time.Local,
	}

	if tz := os.Getenv("TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			utils.ErrorLogger.Printf("Invalid TZ %q, using local zone: %v", tz, err)
		} else {
			cfg.Location = loc
		}
	}

	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Println("Warning: JWT_SECRET not set, using development fallback")
	}
	utils.SetJWTSecret(cfg.JWTSecret)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid int for %s: %q", key, s)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid duration for %s: %q", key, s)
		return fallback
	}
	return d
}
