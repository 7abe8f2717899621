package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort          int    `mapstructure:"APP_PORT"`
	AnswerProvider   string `mapstructure:"ANSWER_PROVIDER"`
	AnswerServiceURL string `mapstructure:"ANSWER_SERVICE_URL"`
	OpenAIAPIKey     string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel      string `mapstructure:"OPENAI_MODEL"`
	UploadDir        string `mapstructure:"UPLOAD_DIR"`
	MaxFileSize      int64  `mapstructure:"MAX_FILE_SIZE"`
	RevealStepMs     int    `mapstructure:"REVEAL_STEP_MS"`
	WelcomeMessage   string `mapstructure:"WELCOME_MESSAGE"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("ANSWER_PROVIDER", "http")
	viper.SetDefault("ANSWER_SERVICE_URL", "http://answer-service:9000")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("UPLOAD_DIR", "./documents")
	viper.SetDefault("MAX_FILE_SIZE", 10485760) // 10MB
	viper.SetDefault("REVEAL_STEP_MS", 5)
	viper.SetDefault("WELCOME_MESSAGE", "Hello! Upload your documents and ask me anything about them.")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
