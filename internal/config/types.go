// Package config manages application configuration from defaults,
// config.yaml, and BOT_* environment variables.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration indicates a configuration loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration for both bots and all
// shared components.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Downloader DownloaderConfig `mapstructure:"downloader"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DownloaderConfig configures the media download bot and the yt-dlp
// subprocess client behind it.
type DownloaderConfig struct {
	Token        string        `mapstructure:"token"         validate:"required"`
	YTDLPPath    string        `mapstructure:"ytdlp_path"    validate:"required"`
	DownloadDir  string        `mapstructure:"download_dir"  validate:"required"`
	AudioBitrate string        `mapstructure:"audio_bitrate" validate:"required"`
	InfoTimeout  time.Duration `mapstructure:"info_timeout"  validate:"required,min=5s,max=10m"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"required,min=30s,max=1h"`
}

// WeatherConfig configures the weather bot and the OpenWeatherMap client.
type WeatherConfig struct {
	Token    string        `mapstructure:"token"    validate:"required"`
	APIKey   string        `mapstructure:"api_key"  validate:"required"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Units    string        `mapstructure:"units"    validate:"required,oneof=metric imperial standard"`
	Language string        `mapstructure:"language" validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"required,min=1s,max=2m"`
}

// GeminiConfig configures the optional narrative client. An empty APIKey
// disables narrative generation; the weather bot then always uses the
// deterministic summary.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	ModelName   string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Instruction string        `mapstructure:"instruction" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"required,min=1s,max=10m"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"min=0,max=5"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" validate:"min=0"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds cron schedules for background tasks and the
// session time-to-live enforced by the cleanup task.
type SchedulerConfig struct {
	SessionTTL time.Duration         `mapstructure:"session_ttl" validate:"required,min=1m"`
	Tasks      map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds every user-facing text the bots send. All values
// have defaults and can be overridden to localize the bots.
type MessagesConfig struct {
	DownloadWelcome  string `mapstructure:"download_welcome"  validate:"required"`
	WeatherWelcome   string `mapstructure:"weather_welcome"   validate:"required"`
	SearchingFormats string `mapstructure:"searching_formats" validate:"required"`
	ChooseFormat     string `mapstructure:"choose_format"     validate:"required"`
	NoFormats        string `mapstructure:"no_formats"        validate:"required"`
	LinkFailed       string `mapstructure:"link_failed"       validate:"required"`
	PlatformHint     string `mapstructure:"platform_hint"`
	MissingSession   string `mapstructure:"missing_session"   validate:"required"`
	Downloading      string `mapstructure:"downloading"       validate:"required"`
	Uploading        string `mapstructure:"uploading"         validate:"required"`
	DownloadDone     string `mapstructure:"download_done"     validate:"required"`
	DownloadFailed   string `mapstructure:"download_failed"   validate:"required"`
	SearchingWeather string `mapstructure:"searching_weather" validate:"required"`
	CityNotFound     string `mapstructure:"city_not_found"    validate:"required"`
	WeatherFailed    string `mapstructure:"weather_failed"    validate:"required"`
}
