package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Ledger LedgerConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Fetch  FetchConfig
}

// LedgerConfig holds run-ledger configuration. An empty DSN disables the ledger.
type LedgerConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractPath string
	PdftoppmPath  string
	TessdataDir   string
	Language      string
	// Tokens at or below this confidence are discarded.
	TokenMinConfidence float64
	// OCR results at or below this confidence are not merged.
	MergeMinConfidence float64
	Timeout            time.Duration
	ArtifactDir        string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	Timeout       time.Duration
	MaxInputChars int
}

// FetchConfig holds remote image download configuration
type FetchConfig struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			DSN:             getEnv("LEDGER_DSN", ""),
			MaxConns:        getEnvAsInt32("LEDGER_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("LEDGER_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("LEDGER_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("LEDGER_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			TesseractPath:      getEnv("TESSERACT_PATH", "tesseract"),
			PdftoppmPath:       getEnv("PDFTOPPM_PATH", "pdftoppm"),
			TessdataDir:        getEnv("TESSDATA_PREFIX", ""),
			Language:           getEnv("OCR_LANG", "eng"),
			TokenMinConfidence: getEnvAsFloat64("OCR_TOKEN_MIN_CONF", 30),
			MergeMinConfidence: getEnvAsFloat64("OCR_MERGE_MIN_CONF", 20),
			Timeout:            getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			ArtifactDir:        getEnv("ARTIFACT_DIR", ""),
		},
		LLM: LLMConfig{
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxInputChars: getEnvAsInt("LLM_MAX_INPUT_CHARS", 30000),
		},
		Fetch: FetchConfig{
			Timeout:   getEnvAsDuration("IMAGE_FETCH_TIMEOUT", 15*time.Second),
			MaxBytes:  int64(getEnvAsInt("IMAGE_FETCH_MAX_BYTES", 20<<20)),
			UserAgent: getEnv("IMAGE_FETCH_USER_AGENT", defaultUserAgent),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration. A missing API key is not an
// error: extraction then degrades to all-absent fields.
func (c *Config) Validate() error {
	if c.LLM.MaxInputChars <= 0 {
		return NewAppError(CodeConfig, "LLM_MAX_INPUT_CHARS must be positive", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError(CodeConfig, "OPENAI_MODEL is required", ErrInvalidInput)
	}
	if c.OCR.TokenMinConfidence < 0 || c.OCR.TokenMinConfidence > 100 {
		return NewAppError(CodeConfig, "OCR_TOKEN_MIN_CONF must be within 0..100", ErrInvalidInput)
	}
	if c.OCR.MergeMinConfidence < 0 || c.OCR.MergeMinConfidence > 100 {
		return NewAppError(CodeConfig, "OCR_MERGE_MIN_CONF must be within 0..100", ErrInvalidInput)
	}
	if c.Fetch.Timeout <= 0 {
		return NewAppError(CodeConfig, "IMAGE_FETCH_TIMEOUT must be positive", ErrInvalidInput)
	}
	return nil
}
