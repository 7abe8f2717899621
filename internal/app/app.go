package app

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docqa/backend/internal/answer"
	"docqa/backend/internal/api"
	"docqa/backend/internal/config"
	"docqa/backend/internal/document"
	"docqa/backend/internal/stream"
)

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	provider, err := buildProvider(cfg)
	if err != nil {
		slog.Error("Failed to configure answer provider", "error", err)
		return 1
	}

	documents, err := document.NewService(cfg.UploadDir, cfg.MaxFileSize)
	if err != nil {
		slog.Error("Failed to initialize document storage", "error", err)
		return 1
	}
	slog.Info("Document storage ready", "dir", cfg.UploadDir)

	sessions := stream.NewManager(provider, cfg.WelcomeMessage)

	chatHandler := api.NewChatHandler(sessions, time.Duration(cfg.RevealStepMs)*time.Millisecond)
	documentHandler := api.NewDocumentHandler(documents)
	statsHandler := api.NewStatsHandler(sessions, documents)
	router := api.NewRouter(chatHandler, documentHandler, statsHandler)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.AppPort, "answer_provider", cfg.AnswerProvider)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

// buildProvider selects the answer service implementation from the
// configuration: an HTTP client for a standalone answer service, or a
// direct OpenAI-compatible completion client.
func buildProvider(cfg *config.Config) (answer.Provider, error) {
	switch strings.ToLower(cfg.AnswerProvider) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("ANSWER_PROVIDER is 'openai' but OPENAI_API_KEY is not set")
		}
		return answer.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case "http":
		pingAnswerService(cfg.AnswerServiceURL)
		return answer.NewClient(cfg.AnswerServiceURL), nil
	default:
		return nil, errors.New("unknown ANSWER_PROVIDER: " + cfg.AnswerProvider)
	}
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// pingAnswerService probes the answer service once at startup. Failure is
// only logged: the service may come up later, and every request failure
// is surfaced to the user through the error taxonomy anyway.
func pingAnswerService(url string) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url + "/healthz")
	if err != nil {
		slog.Warn("Answer service is not reachable yet", "url", url, "error", err)
		return
	}
	if bErr := resp.Body.Close(); bErr != nil {
		slog.Warn("Failed to close response body in answer service health check", "error", bErr)
	}
	slog.Info("Answer service is reachable.", "url", url, "status", resp.StatusCode)
}
