package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     int    `validate:"required,min=1,max=65535"`
	Host     string `validate:"required"`
	Env      string // "development" or "production"
	LogLevel string

	// Data directories
	DataDir      string `validate:"required"`
	UploadDir    string `validate:"required"`
	DatabasePath string `validate:"required"`

	// Public base URL for photo links (empty means relative URLs)
	BackendURL string

	// Auth
	JWTSecret      string `validate:"required"`
	JWTExpirySecs  int    `validate:"min=60"`
	MinPasswordLen int

	// Uploads
	MaxUploadBytes int64

	// OpenAI-compatible chat provider
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Face detection service
	FaceAPIBaseURL    string
	FaceAPIKey        string
	FaceMinConfidence float64
	FaceMatchThreshold float64
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg = load()

		validate := validator.New(validator.WithRequiredStructEnabled())
		if err := validate.Struct(cfg); err != nil {
			panic(fmt.Sprintf("invalid configuration: %v", err))
		}
	})
	return cfg
}

// load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("DRISHYA_DATA_DIR", "./data")

	return &Config{
		// Server
		Port:     getEnvInt("PORT", 5000),
		Host:     getEnv("HOST", "0.0.0.0"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Data
		DataDir:      dataDir,
		UploadDir:    filepath.Join(dataDir, "uploads"),
		DatabasePath: filepath.Join(dataDir, "drishyamitra.sqlite"),

		BackendURL: getEnv("BACKEND_URL", ""),

		// Auth
		JWTSecret:      getEnv("JWT_SECRET_KEY", getEnv("SECRET_KEY", "drishyamitra-dev-key")),
		JWTExpirySecs:  getEnvInt("JWT_EXPIRES_SECS", 86400),
		MinPasswordLen: getEnvInt("MIN_PASSWORD_LEN", 6),

		// Uploads
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Face detection
		FaceAPIBaseURL:     getEnv("FACE_API_BASE_URL", ""),
		FaceAPIKey:         getEnv("FACE_API_KEY", ""),
		FaceMinConfidence:  getEnvFloat("FACE_MIN_CONFIDENCE", 0.5),
		FaceMatchThreshold: getEnvFloat("FACE_MATCH_THRESHOLD", 0.6),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
