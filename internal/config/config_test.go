package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		ManagerChatID:             "1",
		DatabaseDriver:            "postgres",
		DatabaseURL:               "postgres://localhost/leadflow",
		NotificationRetryAttempts: 3,
		NotificationRetryDelay:    5 * time.Second,
		ThrottleRate:              time.Minute,
		ThrottleBurst:             10,
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestValidateMissingDatabaseURL(t *testing.T) {
	s := validSettings()
	s.DatabaseURL = ""

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateReportsAllMissingKeysAtOnce(t *testing.T) {
	s := validSettings()
	s.ManagerChatID = ""
	s.DatabaseURL = ""

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MANAGER_CHAT_ID")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateSheetsBackendNeedsCredentials(t *testing.T) {
	s := validSettings()
	s.UseGoogleSheets = true
	s.DatabaseURL = "" // not required with the sheets backend

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_SPREADSHEET_ID")
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_TOKEN")

	s.SpreadsheetID = "sheet-1"
	s.SheetsToken = "token"
	assert.NoError(t, s.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	s := validSettings()
	s.DatabaseDriver = "oracle"

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MANAGER_CHAT_ID", "42")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("THROTTLE_RATE", "30")
	t.Setenv("THROTTLE_BURST", "5")
	t.Setenv("NOTIFICATION_ENABLED", "false")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "42", s.ManagerChatID)
	assert.Equal(t, 30*time.Second, s.ThrottleRate)
	assert.Equal(t, 5, s.ThrottleBurst)
	assert.False(t, s.NotificationEnabled)
	assert.Equal(t, 3, s.NotificationRetryAttempts, "default applies")
}

func TestLoadFailsFastOnMissingRequired(t *testing.T) {
	t.Setenv("MANAGER_CHAT_ID", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
