package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DataPath       string
	DatabaseURL    string
	AdminPIN       string
	OrderPrefix    string
	StartOrderID   int
	MenuFile       string
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: could not read .env file: %v", err)
	}

	return &Config{
		Port:           getEnv("PORT", "5000"),
		DataPath:       getEnv("DATA_PATH", "data/db.json"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AdminPIN:       getEnv("ADMIN_PIN", "1234"),
		OrderPrefix:    getEnv("ORDER_PREFIX", "HG-"),
		StartOrderID:   getEnvInt("START_ORDER_ID", 1001),
		MenuFile:       getEnv("MENU_FILE", ""),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
