package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	conf     *viper.Viper
	loadOnce sync.Once
)

func load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	conf = viper.New()
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("PORT", "8080")
	conf.SetDefault("DB_DRIVER", "postgres")
	conf.SetDefault("JWT_TTL", 72*time.Hour)
	conf.SetDefault("ADMIN_FULL_NAME", "Super Admin")
	conf.SetDefault("UPLOAD_FOLDER", "assignment_submissions")
	conf.SetDefault("REDIS_DB", 0)
	conf.SetDefault("REDIS_CHANNEL", "marketplace_events")
	conf.SetDefault("REALTIME_TARGETED", false)
	conf.SetDefault("CORS_ORIGINS", "*")
	conf.SetDefault("LOG_LEVEL", "info")
	conf.SetDefault("UNPAID_REMINDER_AFTER", 24*time.Hour)
	conf.SetDefault("UNPAID_REMINDER_SCHEDULE", "0 * * * *")
	conf.AutomaticEnv()
}

func get() *viper.Viper {
	loadOnce.Do(load)
	return conf
}

// Config returns the raw value for key, or its default.
func Config(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return get().GetString(key)
}

func Int(key string) int {
	return get().GetInt(key)
}

func Bool(key string) bool {
	return get().GetBool(key)
}

func Duration(key string) time.Duration {
	return get().GetDuration(key)
}

// Strings splits a comma separated value.
func Strings(key string) []string {
	raw := Config(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetupLogger configures the process-wide logrus logger.
func SetupLogger() {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(Config("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
