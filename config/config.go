package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server      Server
	Database    Database
	Log         Log
	Grader      Grader
	Autosave    Autosave
	CatalogFile string
	// QuestionsFile seeds the memory driver's question bank.
	QuestionsFile string
}

type Server struct {
	Port    string
	GinMode string
}

type Database struct {
	// Driver is "postgres" or "memory".
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Log struct {
	Level  string
	Pretty bool
}

type Grader struct {
	// Provider is one of gemini, anthropic, openai or none.
	Provider        string
	Model           string
	GeminiApiKey    string
	AnthropicApiKey string
	OpenAIApiKey    string
	OpenAIBaseURL   string
	RatePerMinute   int
	MaxRetries      int
}

type Autosave struct {
	Debounce         time.Duration
	PeriodicInterval time.Duration
	UnloadTimeout    time.Duration
	ExpireRetry      time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("GRADER_PROVIDER", "gemini")
	v.SetDefault("GRADER_RATE_PER_MINUTE", 30)
	v.SetDefault("GRADER_MAX_RETRIES", 3)
	v.SetDefault("AUTOSAVE_DEBOUNCE", "1s")
	v.SetDefault("AUTOSAVE_PERIODIC_INTERVAL", "5s")
	v.SetDefault("AUTOSAVE_UNLOAD_TIMEOUT", "2s")
	v.SetDefault("AUTOSAVE_EXPIRE_RETRY", "5s")
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	config := fromViper(v)

	log.Info().
		Str("port", config.Server.Port).
		Str("dbDriver", config.Database.Driver).
		Str("dbHost", config.Database.Host).
		Str("grader", config.Grader.Provider).
		Str("catalog", config.CatalogFile).
		Msg("Config loaded")
	return config, nil
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.GinMode = v.GetString("GIN_MODE")

	config.Database.Driver = v.GetString("DATABASE_DRIVER")
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")

	config.Log.Level = v.GetString("LOG_LEVEL")
	config.Log.Pretty = v.GetBool("LOG_PRETTY")

	config.Grader.Provider = v.GetString("GRADER_PROVIDER")
	config.Grader.Model = v.GetString("GRADER_MODEL")
	config.Grader.GeminiApiKey = v.GetString("GEMINI_API_KEY")
	config.Grader.AnthropicApiKey = v.GetString("ANTHROPIC_API_KEY")
	config.Grader.OpenAIApiKey = v.GetString("OPENAI_API_KEY")
	config.Grader.OpenAIBaseURL = v.GetString("OPENAI_BASE_URL")
	config.Grader.RatePerMinute = v.GetInt("GRADER_RATE_PER_MINUTE")
	config.Grader.MaxRetries = v.GetInt("GRADER_MAX_RETRIES")

	config.Autosave.Debounce = v.GetDuration("AUTOSAVE_DEBOUNCE")
	config.Autosave.PeriodicInterval = v.GetDuration("AUTOSAVE_PERIODIC_INTERVAL")
	config.Autosave.UnloadTimeout = v.GetDuration("AUTOSAVE_UNLOAD_TIMEOUT")
	config.Autosave.ExpireRetry = v.GetDuration("AUTOSAVE_EXPIRE_RETRY")

	config.CatalogFile = v.GetString("CATALOG_FILE")
	config.QuestionsFile = v.GetString("QUESTIONS_FILE")
	return &config
}
