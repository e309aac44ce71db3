// Package config loads the process-wide settings once at startup. The
// resulting Config is shared read-only by every component; nothing mutates it
// after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string

	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	S3Bucket          string
	S3PublicURL       string

	TokenSecret    string
	TokenAlgorithm string
	TokenTTL       time.Duration

	MaxUploadBytes    int64
	AllowedExtensions map[string]struct{}

	// BaseURL is the externally visible origin used to build shareable links.
	BaseURL  string
	HTTPAddr string

	KafkaBrokers []string
	KafkaTopic   string
}

var hmacAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Load reads the configuration from the environment. It fails fast when a
// required secret (storage credentials, signing secret) or the database
// location is absent, so the process cannot start half-configured.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT_URL"),
		S3Bucket:          envOr("S3_BUCKET", "game-clips"),
		S3PublicURL:       os.Getenv("S3_PUBLIC_URL"),
		TokenSecret:       os.Getenv("JWT_SECRET"),
		TokenAlgorithm:    envOr("JWT_ALGORITHM", "HS256"),
		BaseURL:           envOr("BASE_URL", "http://localhost:8000"),
		HTTPAddr:          envOr("HTTP_ADDR", ":8000"),
		KafkaTopic:        envOr("KAFKA_TOPIC", "clip-events"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "" {
		return nil, fmt.Errorf("config: S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required")
	}
	if cfg.S3PublicURL == "" {
		return nil, fmt.Errorf("config: S3_PUBLIC_URL is required")
	}
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if _, ok := hmacAlgorithms[cfg.TokenAlgorithm]; !ok {
		return nil, fmt.Errorf("config: unsupported JWT_ALGORITHM %q", cfg.TokenAlgorithm)
	}

	ttlMinutes, err := envInt("UPLOAD_TOKEN_TTL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("config: UPLOAD_TOKEN_TTL_MINUTES must be positive")
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	maxMB, err := envInt("MAX_UPLOAD_SIZE_MB", 500)
	if err != nil {
		return nil, err
	}
	if maxMB <= 0 {
		return nil, fmt.Errorf("config: MAX_UPLOAD_SIZE_MB must be positive")
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	cfg.AllowedExtensions = parseExtensions(envOr("ALLOWED_EXTENSIONS", ".mp4,.mkv,.webm"))
	if len(cfg.AllowedExtensions) == 0 {
		return nil, fmt.Errorf("config: ALLOWED_EXTENSIONS is empty")
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

// parseExtensions normalizes a comma-separated list to lower-case,
// dot-prefixed members.
func parseExtensions(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = struct{}{}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
