package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "shared-expenses",
	Short: "Shared Expenses",
	Long:  `Records shared household expenses from a Telegram chat and serves them over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// envBindings maps config keys to the plain variable names used by existing
// deployments. Every other key is also read from its upper-cased form,
// e.g. TELEGRAM_REQUEST_TIMEOUT.
var envBindings = map[string]string{
	"app_env":                     "APP_ENV",
	"http_server.port":            "PORT",
	"http_server.allowed_origins": "ALLOWED_ORIGINS",
	"storage.driver":              "STORAGE_DRIVER",
	"storage.source":              "DATABASE_URL",
	"telegram.bot_token":          "TELEGRAM_BOT_TOKEN",
	"telegram.webhook_url":        "TELEGRAM_WEBHOOK_URL",
	"telegram.webhook_secret":     "TELEGRAM_WEBHOOK_SECRET",
	"telegram.api_url":            "TELEGRAM_API_URL",
	"auth.enabled":                "AUTH_ENABLED",
	"auth.base_url":               "SUPABASE_URL",
	"auth.jwks_url":               "SUPABASE_JWKS_URL",
	"auth.issuer":                 "SUPABASE_JWT_ISSUER",
	"auth.audience":               "SUPABASE_JWT_AUDIENCE",
	"debug.key":                   "DEBUG_KEY",
	"logging.level":               "LOG_LEVEL",
	"logging.format":              "LOG_FORMAT",
	"diagnose.backend_base_url":   "BACKEND_BASE_URL",
	"diagnose.test_jwt":           "TEST_JWT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")

	v.SetDefault("http_server.port", 3000)
	v.SetDefault("http_server.allowed_origins", "*")
	v.SetDefault("http_server.read_header_timeout", "5s")
	v.SetDefault("http_server.read_timeout", "15s")
	v.SetDefault("http_server.write_timeout", "15s")
	v.SetDefault("http_server.idle_timeout", "60s")

	v.SetDefault("storage.driver", internal.StorageMemory)
	v.SetDefault("storage.max_open_conns", 10)
	v.SetDefault("storage.max_idle_conns", 5)

	v.SetDefault("telegram.request_timeout", "10s")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.audience", "authenticated")

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")

	v.SetDefault("diagnose.backend_base_url", "http://localhost:3000")
	v.SetDefault("diagnose.frontend_files", []string{"index.html", "app.js"})
}

// loadConfig reads config.yml from path when it exists, then the
// environment, with .env loaded first. Environment values win.
func loadConfig(path string) (*internal.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setup loads the configuration and initializes the process logger.
func setup() (*internal.Config, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	logger.InitWithFormat(cfg.AppEnv, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "directory holding config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(webhookCmd)
}
