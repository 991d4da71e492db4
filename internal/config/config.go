package config

import (
	"os"
	"time"
)

type Config struct {
	ServerPort  string
	StoreDriver string // "memory" or "postgres"
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	Redis       RedisConfig
	JWTSecret   string
	Logger      LoggerConfig
	// PresenceWindow bounds how long a user stays in the mirrored online set
	// without a refresh.
	PresenceWindow time.Duration
}

type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", "memory"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "jurislink"),
		DBPassword:  getEnv("DB_PASSWORD", "jurislink_dev_password"),
		DBName:      getEnv("DB_NAME", "jurislink"),
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PingTimeout:  getEnvDuration("REDIS_PING_TIMEOUT", 2*time.Second),
		},
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		PresenceWindow: getEnvDuration("PRESENCE_WINDOW", 90*time.Second),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
