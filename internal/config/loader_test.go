package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
downloader:
  token: "download-token"
weather:
  token: "weather-token"
  api_key: "owm-key"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Downloader.Token != "download-token" {
		t.Errorf("Downloader.Token = %q", cfg.Downloader.Token)
	}
	if cfg.Downloader.YTDLPPath != DefaultYTDLPPath {
		t.Errorf("Downloader.YTDLPPath = %q, want default %q", cfg.Downloader.YTDLPPath, DefaultYTDLPPath)
	}
	if cfg.Logger.Level != DefaultLogLevel {
		t.Errorf("Logger.Level = %q, want default %q", cfg.Logger.Level, DefaultLogLevel)
	}
	if cfg.Weather.BaseURL != DefaultWeatherBaseURL {
		t.Errorf("Weather.BaseURL = %q, want default %q", cfg.Weather.BaseURL, DefaultWeatherBaseURL)
	}
	if cfg.Scheduler.SessionTTL != DefaultSessionTTL {
		t.Errorf("Scheduler.SessionTTL = %v, want default %v", cfg.Scheduler.SessionTTL, DefaultSessionTTL)
	}
	if got := cfg.Scheduler.Tasks["session_cleanup"]; !got.Enabled || got.Schedule == "" {
		t.Errorf("session_cleanup task = %+v, want enabled with a schedule", got)
	}
	if cfg.Messages.MissingSession == "" {
		t.Error("Messages.MissingSession default is empty")
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("Gemini.APIKey = %q, want empty (narrative disabled by default)", cfg.Gemini.APIKey)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
downloader:
  token: "download-token"
  info_timeout: 45s
weather:
  token: "weather-token"
  api_key: "owm-key"
  units: imperial
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Downloader.InfoTimeout != 45*time.Second {
		t.Errorf("Downloader.InfoTimeout = %v, want 45s", cfg.Downloader.InfoTimeout)
	}
	if cfg.Weather.Units != "imperial" {
		t.Errorf("Weather.Units = %q, want imperial", cfg.Weather.Units)
	}
}

func TestLoadRejectsMissingTokens(t *testing.T) {
	path := writeConfig(t, `
weather:
  api_key: "owm-key"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() succeeded without bot tokens")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Load() error = %v, want ErrConfiguration", err)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: loud
downloader:
  token: "download-token"
weather:
  token: "weather-token"
  api_key: "owm-key"
`)

	_, err := Load(path)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Load() error = %v, want ErrConfiguration", err)
	}
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("BOT_DOWNLOADER_TOKEN", "env-download-token")
	t.Setenv("BOT_WEATHER_TOKEN", "env-weather-token")
	t.Setenv("BOT_WEATHER_API_KEY", "env-owm-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Downloader.Token != "env-download-token" {
		t.Errorf("Downloader.Token = %q, want value from environment", cfg.Downloader.Token)
	}
	if cfg.Weather.APIKey != "env-owm-key" {
		t.Errorf("Weather.APIKey = %q, want value from environment", cfg.Weather.APIKey)
	}
	if cfg.Database.Path != DefaultDBPath {
		t.Errorf("Database.Path = %q, want default %q", cfg.Database.Path, DefaultDBPath)
	}
}
