package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const appName = "kaboocam"

type Config struct {
	APIBaseURL      string
	CacheDir        string
	DBPath          string
	SessionPath     string
	ImageDir        string
	LogPath         string
	LogLevel        string
	PostListTTL     time.Duration
	PostTTL         time.Duration
	ProfileTTL      time.Duration
	MonitorInterval time.Duration
	RequestTimeout  time.Duration
	CookieTimeout   time.Duration
	MaxConcurrent   int
	Server          ServerConfig
}

// ServerConfig configures the static page server.
type ServerConfig struct {
	Port           string
	StaticDir      string
	AllowedOrigins []string
}

func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), appName)
	return Config{
		APIBaseURL:      "http://localhost:8080",
		CacheDir:        cacheDir,
		DBPath:          filepath.Join(cacheDir, "cache.db"),
		SessionPath:     filepath.Join(cacheDir, "cookies.json"),
		ImageDir:        filepath.Join(cacheDir, "images"),
		LogPath:         filepath.Join(cacheDir, "debug.log"),
		LogLevel:        "info",
		PostListTTL:     60 * time.Second,
		PostTTL:         2 * time.Minute,
		ProfileTTL:      10 * time.Minute,
		MonitorInterval: 30 * time.Second,
		RequestTimeout:  15 * time.Second,
		CookieTimeout:   10 * time.Second,
		MaxConcurrent:   6,
		Server: ServerConfig{
			Port: "3000",
		},
	}
}

// Load reads an optional .env file and applies environment overrides on
// top of Default. A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if dir := os.Getenv("KABOOCAM_CACHE_DIR"); dir != "" {
		cfg.CacheDir = dir
		cfg.DBPath = filepath.Join(dir, "cache.db")
		cfg.SessionPath = filepath.Join(dir, "cookies.json")
		cfg.ImageDir = filepath.Join(dir, "images")
		cfg.LogPath = filepath.Join(dir, "debug.log")
	}
	cfg.APIBaseURL = strings.TrimRight(getEnv("KABOOCAM_API_BASE_URL", cfg.APIBaseURL), "/")
	cfg.LogLevel = getEnv("KABOOCAM_LOG_LEVEL", cfg.LogLevel)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.StaticDir = getEnv("KABOOCAM_STATIC_DIR", cfg.Server.StaticDir)
	if origins := os.Getenv("KABOOCAM_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	var err error
	if cfg.MonitorInterval, err = getDuration("KABOOCAM_MONITOR_INTERVAL", cfg.MonitorInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("KABOOCAM_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Server.Port, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
