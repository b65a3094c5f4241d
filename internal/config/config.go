// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Host string
	Port int

	AdminSecretToken         string
	AdminJWTSecret           string
	AccessTokenExpireMinutes int
	AllowedOrigins           []string

	SpecFile      string
	BuilderBinary string
	BuildDir      string
	GeneratedDir  string
	WorkDir       string
}

// Load reads configuration from the environment, applies defaults and
// prepares the working directories.
func Load() (*Config, error) {
	cfg := &Config{
		Host:                     getEnv("HOST", "0.0.0.0"),
		Port:                     getEnvInt("PORT", 8000),
		AdminSecretToken:         os.Getenv("ADMIN_SECRET_TOKEN"),
		AdminJWTSecret:           os.Getenv("ADMIN_JWT_SECRET"),
		AccessTokenExpireMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 1440),
		AllowedOrigins:           splitList(getEnv("ALLOWED_ORIGINS", "*")),
		SpecFile:                 getEnv("SPEC_FILE", "/data/metadata/spec.json"),
		BuilderBinary:            getEnv("BUILDER_BINARY", "instance_builder"),
		BuildDir:                 getEnv("BUILD_DIR", "/data/builds"),
		GeneratedDir:             getEnv("GENERATED_DIR", "/data/generated"),
		WorkDir:                  getEnv("WORKDIR_DIR", "/data/workdir"),
	}

	if cfg.AdminSecretToken == "" {
		return nil, errors.New("ADMIN_SECRET_TOKEN is required")
	}
	if cfg.AdminJWTSecret == "" {
		return nil, errors.New("ADMIN_JWT_SECRET is required")
	}

	for _, dir := range []string{
		cfg.BuildDir,
		cfg.GeneratedDir,
		cfg.WorkDir,
		filepath.Dir(cfg.SpecFile),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
