package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at configPath (optional)
// 3. BOT_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets have no defaults, so they must be bound explicitly for
	// Unmarshal to pick them up from the environment.
	for _, key := range []string{"downloader.token", "weather.token", "weather.api_key", "gemini.api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: failed to bind %s: %v", ErrConfiguration, key, err)
		}
	}

	// A missing config file is fine; tokens can arrive via environment.
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("downloader.ytdlp_path", DefaultYTDLPPath)
	v.SetDefault("downloader.download_dir", DefaultDownloadDir)
	v.SetDefault("downloader.audio_bitrate", DefaultAudioBitrate)
	v.SetDefault("downloader.info_timeout", DefaultInfoTimeout)
	v.SetDefault("downloader.fetch_timeout", DefaultFetchTimeout)

	v.SetDefault("weather.base_url", DefaultWeatherBaseURL)
	v.SetDefault("weather.units", DefaultWeatherUnits)
	v.SetDefault("weather.language", DefaultWeatherLanguage)
	v.SetDefault("weather.timeout", DefaultWeatherTimeout)

	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.instruction", DefaultGeminiInstruction)
	v.SetDefault("gemini.timeout", DefaultGeminiTimeout)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay", DefaultGeminiRetryDelay)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("scheduler.session_ttl", DefaultSessionTTL)
	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"session_cleanup": {Enabled: true, Schedule: "0 * * * *"},
		"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
	})

	v.SetDefault("messages.download_welcome", DefaultMessages.DownloadWelcome)
	v.SetDefault("messages.weather_welcome", DefaultMessages.WeatherWelcome)
	v.SetDefault("messages.searching_formats", DefaultMessages.SearchingFormats)
	v.SetDefault("messages.choose_format", DefaultMessages.ChooseFormat)
	v.SetDefault("messages.no_formats", DefaultMessages.NoFormats)
	v.SetDefault("messages.link_failed", DefaultMessages.LinkFailed)
	v.SetDefault("messages.platform_hint", DefaultMessages.PlatformHint)
	v.SetDefault("messages.missing_session", DefaultMessages.MissingSession)
	v.SetDefault("messages.downloading", DefaultMessages.Downloading)
	v.SetDefault("messages.uploading", DefaultMessages.Uploading)
	v.SetDefault("messages.download_done", DefaultMessages.DownloadDone)
	v.SetDefault("messages.download_failed", DefaultMessages.DownloadFailed)
	v.SetDefault("messages.searching_weather", DefaultMessages.SearchingWeather)
	v.SetDefault("messages.city_not_found", DefaultMessages.CityNotFound)
	v.SetDefault("messages.weather_failed", DefaultMessages.WeatherFailed)
}
