package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database; when DatabaseURI is empty the in-memory store is used
	DatabaseURI string
	// Redis for the token blacklist; empty host disables Redis
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Upload handling
	UploadsDir            string
	GalleryMaxSizeMB      int
	ProfileImageMaxSizeMB int
	MaxImageDimension     int
	ThumbnailSize         int
	// Anthropic vision analysis
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicMaxTokens int
	AnalysisTimeoutSec int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var (
	cfg      AppConfig
	loadOnce sync.Once
)

// Load loads the application configuration exactly once; later calls return
// the cached value. Safe for concurrent use.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	loadOnce.Do(func() {
		// Optional .env file for local development.
		_ = godotenv.Load()

		_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
		applyDefaults(&cfg)
		applyEnvOverrides(&cfg)

		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET must be set in environment variables")
		}
	})
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	return Load()
}

// SetForTesting replaces the cached configuration. Tests only.
func SetForTesting(c AppConfig) {
	loadOnce.Do(func() {})
	cfg = c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads a grouped JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if up, ok := raw["uploads"].(map[string]any); ok {
		if v := getString(up, "Dir"); v != "" {
			out.UploadsDir = v
		}
		if v := getInt(up, "GalleryMaxSizeMB"); v != 0 {
			out.GalleryMaxSizeMB = v
		}
		if v := getInt(up, "ProfileImageMaxSizeMB"); v != 0 {
			out.ProfileImageMaxSizeMB = v
		}
		if v := getInt(up, "MaxImageDimension"); v != 0 {
			out.MaxImageDimension = v
		}
		if v := getInt(up, "ThumbnailSize"); v != 0 {
			out.ThumbnailSize = v
		}
	}

	if an, ok := raw["anthropic"].(map[string]any); ok {
		out.AnthropicAPIKey = getString(an, "APIKey")
		if v := getString(an, "Model"); v != "" {
			out.AnthropicModel = v
		}
		if v := getInt(an, "MaxTokens"); v != 0 {
			out.AnthropicMaxTokens = v
		}
		if v := getInt(an, "TimeoutSec"); v != 0 {
			out.AnalysisTimeoutSec = v
		}
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.GalleryMaxSizeMB == 0 {
		c.GalleryMaxSizeMB = 10
	}
	if c.ProfileImageMaxSizeMB == 0 {
		c.ProfileImageMaxSizeMB = 1
	}
	if c.MaxImageDimension == 0 {
		c.MaxImageDimension = 2000
	}
	if c.ThumbnailSize == 0 {
		c.ThumbnailSize = 200
	}
	if c.AnthropicModel == "" {
		c.AnthropicModel = "claude-3-7-sonnet-20250219"
	}
	if c.AnthropicMaxTokens == 0 {
		c.AnthropicMaxTokens = 1024
	}
	if c.AnalysisTimeoutSec == 0 {
		c.AnalysisTimeoutSec = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("UPLOADS_DIR", ""); v != "" {
		c.UploadsDir = v
	}
	if v := getEnv("GALLERY_MAX_SIZE_MB", ""); v != "" {
		c.GalleryMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("PROFILE_IMAGE_MAX_SIZE_MB", ""); v != "" {
		c.ProfileImageMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("MAX_IMAGE_DIMENSION", ""); v != "" {
		c.MaxImageDimension = mustParseInt(v)
	}
	if v := getEnv("THUMBNAIL_SIZE", ""); v != "" {
		c.ThumbnailSize = mustParseInt(v)
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_MODEL", ""); v != "" {
		c.AnthropicModel = v
	}
	if v := getEnv("ANTHROPIC_MAX_TOKENS", ""); v != "" {
		c.AnthropicMaxTokens = mustParseInt(v)
	}
	if v := getEnv("ANALYSIS_TIMEOUT_SEC", ""); v != "" {
		c.AnalysisTimeoutSec = mustParseInt(v)
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
