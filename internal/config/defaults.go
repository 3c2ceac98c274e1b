package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultYTDLPPath    = "yt-dlp"
	DefaultDownloadDir  = "."
	DefaultAudioBitrate = "192K"
	DefaultInfoTimeout  = 2 * time.Minute
	DefaultFetchTimeout = 15 * time.Minute

	DefaultWeatherBaseURL  = "https://api.openweathermap.org/data/2.5/weather"
	DefaultWeatherUnits    = "metric"
	DefaultWeatherLanguage = "en"
	DefaultWeatherTimeout  = 15 * time.Second

	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultGeminiTemperature = 1.0
	DefaultGeminiTimeout     = 45 * time.Second
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 2 * time.Second

	DefaultDBPath = "storage.db"

	DefaultSessionTTL = 24 * time.Hour
)

// DefaultGeminiInstruction is the narrative prompt preamble. The raw
// OpenWeatherMap JSON payload is appended to it at request time.
const DefaultGeminiInstruction = "You are a friendly, slightly witty weather forecaster chatting " +
	"with a user one on one. Write a short, lively forecast of 3-4 sentences. " +
	"Do not use Markdown or any other formatting. Base it strictly on this " +
	"raw JSON data from OpenWeatherMap:"

// DefaultMessages are the stock user-facing texts for both bots.
var DefaultMessages = MessagesConfig{
	DownloadWelcome: "👋 Hi, %s!\n\n" +
		"I download videos from most popular platforms (YouTube, VK, RuTube and many more).\n\n" +
		"How it works:\n" +
		"1. You send me a link.\n" +
		"2. I offer the available qualities, plus an audio-only MP3 option.\n" +
		"3. If the file is under 50 MB, I send it right back into this chat.\n\n" +
		"Just paste a link to get started!",
	WeatherWelcome: "👋 Hi, %s!\n\n" +
		"I'm your personal AI weather reporter. Send me a city name " +
		"(say, 'London' or 'Tokyo') and I'll fetch the current conditions " +
		"and ask Gemini for a live commentary.",
	SearchingFormats: "🔎 Got the link! Looking for available formats...",
	ChooseFormat:     "Pick a format for '%s':",
	NoFormats:        "No downloadable formats under 50 MB were found.",
	LinkFailed:       "Couldn't process that link: %v",
	PlatformHint:     "Some platforms throttle or block bot downloads; shorter videos usually work better.",
	MissingSession:   "I can't find the original link. Please send it again.",
	Downloading:      "Great choice! Downloading now...",
	Uploading:        "Download finished, sending the file...",
	DownloadDone:     "Done! Send me the next link.",
	DownloadFailed:   "Download failed: %v",
	SearchingWeather: "🔎 Looking up the weather for '%s'...",
	CityNotFound:     "Hmm, I can't find a city named '%s'. 😥 Check the spelling or try its English name.",
	WeatherFailed:    "Weather API request failed: %v",
}
