package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything resolved once at startup. A missing required
// key is fatal; nothing here is re-read at request time.
type Settings struct {
	// Chat transport
	ChatAPIBaseURL string
	ChatAPIToken   string
	ManagerChatID  string

	// Storage
	DatabaseDriver  string // "postgres" or "sqlite"
	DatabaseURL     string
	UseGoogleSheets bool
	SheetsBaseURL   string
	SheetsToken     string
	SpreadsheetID   string
	WorksheetName   string

	// Notifications
	NotificationEnabled       bool
	NotificationRetryAttempts int
	NotificationRetryDelay    time.Duration

	// Throttling
	ThrottleRate  time.Duration
	ThrottleBurst int

	// Optional RabbitMQ outbox + SMTP alert copies
	RabbitURL string
	MailHost  string
	MailPort  int
	MailUser  string
	MailPass  string
	MailTo    string

	HTTPPort string
}

func Load() (*Settings, error) {
	godotenv.Load()

	s := &Settings{
		ChatAPIBaseURL: getEnv("CHAT_API_BASE_URL", ""),
		ChatAPIToken:   getEnv("CHAT_API_TOKEN", ""),
		ManagerChatID:  getEnv("MANAGER_CHAT_ID", ""),

		DatabaseDriver:  getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		UseGoogleSheets: getBool("USE_GOOGLE_SHEETS", false),
		SheetsBaseURL:   getEnv("GOOGLE_SHEETS_BASE_URL", "https://sheets.googleapis.com/v4"),
		SheetsToken:     getEnv("GOOGLE_SHEETS_TOKEN", ""),
		SpreadsheetID:   getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		WorksheetName:   getEnv("GOOGLE_SHEETS_WORKSHEET_NAME", "Leads"),

		NotificationEnabled:       getBool("NOTIFICATION_ENABLED", true),
		NotificationRetryAttempts: getInt("NOTIFICATION_RETRY_ATTEMPTS", 3),
		NotificationRetryDelay:    time.Duration(getInt("NOTIFICATION_RETRY_DELAY", 5)) * time.Second,

		ThrottleRate:  time.Duration(getInt("THROTTLE_RATE", 60)) * time.Second,
		ThrottleBurst: getInt("THROTTLE_BURST", 10),

		RabbitURL: getEnv("RABBITMQ_URL", ""),
		MailHost:  getEnv("MAIL_HOST", ""),
		MailPort:  getInt("MAIL_PORT", 587),
		MailUser:  getEnv("MAIL_USER", ""),
		MailPass:  getEnv("MAIL_PASS", ""),
		MailTo:    getEnv("MAIL_TO", ""),

		HTTPPort: getEnv("HTTP_PORT", "8080"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports every missing required key at once so a broken deploy
// fails with one readable message.
func (s *Settings) Validate() error {
	var missing []string

	if s.ManagerChatID == "" {
		missing = append(missing, "MANAGER_CHAT_ID")
	}
	if s.UseGoogleSheets {
		if s.SpreadsheetID == "" {
			missing = append(missing, "GOOGLE_SHEETS_SPREADSHEET_ID")
		}
		if s.SheetsToken == "" {
			missing = append(missing, "GOOGLE_SHEETS_TOKEN")
		}
	} else if s.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if s.DatabaseDriver != "postgres" && s.DatabaseDriver != "sqlite" {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", s.DatabaseDriver)
	}
	if s.NotificationRetryAttempts < 1 {
		return fmt.Errorf("NOTIFICATION_RETRY_ATTEMPTS must be >= 1")
	}
	if s.ThrottleBurst < 1 {
		return fmt.Errorf("THROTTLE_BURST must be >= 1")
	}
	return nil
}

// MailEnabled reports whether the optional SMTP alert copy is configured.
func (s *Settings) MailEnabled() bool {
	return s.MailHost != "" && s.MailTo != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
