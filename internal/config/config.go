// Package config loads and validates the application configuration. The
// configuration is constructed once at process start and passed explicitly
// into every component; no other package reads environment state directly.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/graphshell/reviewbot/internal/logger"
)

// Default labels that mark a PR or issue as a review candidate in scan mode.
const defaultReviewLabels = "bot_review,review"

// GitHubConfig holds credentials and repository identity for the GitHub API.
type GitHubConfig struct {
	Token          string
	Repository     string // "owner/repo"
	AppID          int64
	PrivateKeyPath string
	WebhookSecret  string
}

// Owner returns the owner half of the configured repository.
func (g GitHubConfig) Owner() string {
	owner, _, _ := strings.Cut(g.Repository, "/")
	return owner
}

// Name returns the repository half of the configured repository.
func (g GitHubConfig) Name() string {
	_, name, _ := strings.Cut(g.Repository, "/")
	return name
}

// AIConfig holds the generation collaborator settings.
type AIConfig struct {
	Provider        string // "ollama" or "gemini"
	Model           string
	OllamaHost      string
	GeminiAPIKey    string
	MaxReviewTokens int
}

// ReviewConfig holds the triage policy knobs.
type ReviewConfig struct {
	Mode       string // "scan" or "explicit"
	RawTargets string // JSON list of "pr:N" / "issue:N"
	Force      bool
	Labels     []string
	DocsRoot   string
	RulesFile  string
}

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Port       string
	MaxWorkers int
}

// Config is the application's complete configuration.
type Config struct {
	GitHub  GitHubConfig
	AI      AIConfig
	Review  ReviewConfig
	Server  ServerConfig
	Logging logger.Config
}

// Load reads configuration from environment variables and an optional .env
// file, applies defaults, and validates required fields. Missing credentials
// are fatal before any network call is made.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("REVIEW_MODE", "scan")
	v.SetDefault("REVIEW_TARGETS", "[]")
	v.SetDefault("REVIEW_LABELS", defaultReviewLabels)
	v.SetDefault("DOCS_ROOT", "design_docs")
	v.SetDefault("LLM_PROVIDER", "ollama")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	v.SetDefault("MAX_REVIEW_TOKENS", 2048)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MAX_WORKERS", 4)
	v.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/reviewbot-app.private-key.pem")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stderr")

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is the normal case in CI; a present but
		// unreadable one is worth surfacing.
		if _, statErr := os.Stat(".env"); statErr == nil {
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
	}

	cfg := &Config{
		GitHub: GitHubConfig{
			Token:          v.GetString("GH_TOKEN"),
			Repository:     v.GetString("GITHUB_REPOSITORY"),
			AppID:          v.GetInt64("GITHUB_APP_ID"),
			PrivateKeyPath: v.GetString("GITHUB_PRIVATE_KEY_PATH"),
			WebhookSecret:  v.GetString("GITHUB_WEBHOOK_SECRET"),
		},
		AI: AIConfig{
			Provider:        v.GetString("LLM_PROVIDER"),
			Model:           v.GetString("GENERATOR_MODEL_NAME"),
			OllamaHost:      v.GetString("OLLAMA_HOST"),
			GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
			MaxReviewTokens: v.GetInt("MAX_REVIEW_TOKENS"),
		},
		Review: ReviewConfig{
			Mode:       v.GetString("REVIEW_MODE"),
			RawTargets: v.GetString("REVIEW_TARGETS"),
			Force:      v.GetBool("FORCE_REVIEW"),
			Labels:     ParseLabels(v.GetString("REVIEW_LABELS")),
			DocsRoot:   v.GetString("DOCS_ROOT"),
			RulesFile:  v.GetString("REVIEW_RULES_FILE"),
		},
		Server: ServerConfig{
			Port:       v.GetString("SERVER_PORT"),
			MaxWorkers: v.GetInt("MAX_WORKERS"),
		},
		Logging: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields every run needs. The gemini API key is checked
// by the provider constructor instead, so ollama-only setups don't need it.
func (c *Config) Validate() error {
	var missing []string
	if c.GitHub.Token == "" {
		missing = append(missing, "GH_TOKEN")
	}
	if c.GitHub.Repository == "" {
		missing = append(missing, "GITHUB_REPOSITORY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(c.GitHub.Repository, "/") {
		return fmt.Errorf("GITHUB_REPOSITORY must be of the form owner/repo, got %q", c.GitHub.Repository)
	}
	if len(c.Review.Labels) == 0 {
		return fmt.Errorf("REVIEW_LABELS must name at least one label")
	}
	return nil
}

// ParseLabels splits a comma-separated label list, trimming whitespace and
// lower-casing for case-insensitive matching against GitHub labels.
func ParseLabels(raw string) []string {
	var labels []string
	for _, l := range strings.Split(raw, ",") {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
