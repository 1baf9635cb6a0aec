package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sevigo/rag-index-manager/internal/logger"
	"github.com/spf13/viper"
)

// Config represents the top-level configuration structure.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	GitHub   GitHubConfig  `mapstructure:"github"`
	RagIndex RagIndexConfig `mapstructure:"rag_index"`
	Database DBConfig      `mapstructure:"database"`
	Logging  logger.Config `mapstructure:"logging"`
}

type ServerConfig struct {
	Port          string `mapstructure:"port"`
	MaxWorkers    int    `mapstructure:"max_workers"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	Token          string `mapstructure:"token"` // For CLI or preload, PAT auth
}

// RagIndexConfig carries the Lifecycle Coordinator's tunables, translated
// 1:1 into internal/ragindex.ManagerConfig at wiring time.
type RagIndexConfig struct {
	RagBackendBaseURL   string   `mapstructure:"rag_backend_base_url"`
	EnabledBaseBranches []string `mapstructure:"enabled_base_branches"`
	IgnoreDirectories   []string `mapstructure:"ignore_directories"`
	AllowedLanguages    []string `mapstructure:"allowed_languages"`
	BatchSize           int      `mapstructure:"batch_size"`
	QueryTokenBuffer    int      `mapstructure:"query_token_buffer"`
	CloneRoot           string   `mapstructure:"clone_root"`
	GitCloneBaseURL     string   `mapstructure:"git_clone_base_url"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoadConfig loads the configuration using Viper with the hierarchy:
// Flags (handled by caller) > Env Vars > Config File > Defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.rag-index-manager")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded configuration", "file", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.webhook_secret", "")

	// GitHub
	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.private_key_path", "keys/rag-index-manager-app.private-key.pem")
	v.SetDefault("github.token", "")

	// RAG Index
	v.SetDefault("rag_index.rag_backend_base_url", "http://127.0.0.1:8000")
	v.SetDefault("rag_index.enabled_base_branches", []string{"main"})
	v.SetDefault("rag_index.ignore_directories", []string{})
	v.SetDefault("rag_index.allowed_languages", []string{"go", "gomod", "python"})
	v.SetDefault("rag_index.batch_size", 10)
	v.SetDefault("rag_index.query_token_buffer", 2500)
	v.SetDefault("rag_index.clone_root", "./data/clones")
	v.SetDefault("rag_index.git_clone_base_url", "https://github.com/")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	// Database (audit log)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "rag_index_manager")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "5m")
}

// ValidateForServer gates the fields required to run the webhook-driven
// server: GitHub App credentials and the webhook secret.
func (c *Config) ValidateForServer() error {
	if c.GitHub.AppID == 0 {
		return errors.New("github.app_id is required")
	}
	if c.GitHub.WebhookSecret == "" {
		return errors.New("github.webhook_secret is required")
	}
	if _, err := os.Stat(c.GitHub.PrivateKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("github private key not found at path: %s", c.GitHub.PrivateKeyPath)
	}
	if len(c.RagIndex.AllowedLanguages) == 0 {
		return errors.New("rag_index.allowed_languages must not be empty")
	}
	return nil
}

// ValidateForCLI gates only what an operator CLI run needs: a usable
// language allow-list. GitHub App credentials are optional for a CLI run
// pointed at a local clone via a PAT or no auth at all.
func (c *Config) ValidateForCLI() error {
	if len(c.RagIndex.AllowedLanguages) == 0 {
		return errors.New("rag_index.allowed_languages must not be empty")
	}
	return nil
}

func (db *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}
