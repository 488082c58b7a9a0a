// Package config provides runtime configuration values for the machine.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration knobs for the catalog, admin access and the
// HTTP terminal.
type Config struct {
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	GinMode           string
	CORSOrigins       []string
	CatalogFile       string
	AdminPassword     string
	AdminPasswordHash string
	BcryptCost        int
	TokenSecret       string
	TokenTTL          time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func durenvmin(key string, defMin int) time.Duration {
	return time.Duration(atoienv(key, defMin)) * time.Minute
}

func listenv(key string) []string {
	v := getenv(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values already set. Missing files are
// reported to the caller.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 15),
		GinMode:           getenv("GIN_MODE", "release"),
		CORSOrigins:       listenv("CORS_ORIGINS"),
		CatalogFile:       getenv("CATALOG_FILE", ""),
		AdminPassword:     getenv("ADMIN_PASSWORD", "admin"),
		AdminPasswordHash: getenv("ADMIN_PASSWORD_HASH", ""),
		BcryptCost:        atoienv("BCRYPT_COST", 10),
		TokenSecret:       getenv("TOKEN_SECRET", ""),
		TokenTTL:          durenvmin("TOKEN_TTL_MINUTES", 30),
	}
}
