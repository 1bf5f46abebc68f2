package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Context store
	ContextStorePath string

	// Receipt uploads
	UploadDir string

	// Conversational gateway (Gemini)
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// Sentiment classifier (HuggingFace inference)
	HFAPIKey  string
	HFBaseURL string
	HFModel   string

	// AMQP ledger events (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		ContextStorePath: getEnv("CONTEXT_STORE_PATH", "./data/context_store.json"),
		UploadDir:        getEnv("UPLOAD_DIR", "./data/receipts"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		HFAPIKey:  getEnv("HF_API_KEY", ""),
		HFBaseURL: getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFModel:   getEnv("HF_MODEL", "j-hartmann/emotion-english-distilroberta-base"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_export"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.SQLiteDBPath)); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create SQLite database directory: %v", err))
	}

	if c.ContextStorePath == "" {
		errs = append(errs, "context store path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.ContextStorePath)); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create context store directory: %v", err))
	}

	if c.UploadDir == "" {
		errs = append(errs, "upload directory cannot be empty")
	} else if err := ensureDir(c.UploadDir); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create upload directory: %v", err))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GeminiBaseURL == "" {
		errs = append(errs, "Gemini base URL cannot be empty")
	}
	if c.HFBaseURL == "" {
		errs = append(errs, "HuggingFace base URL cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
