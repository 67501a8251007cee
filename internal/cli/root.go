package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/store"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "credence",
	Short: "Credence - news credibility analysis",
	Long: `Credence scores how credible a news article looks.

It fetches an article (or takes pasted text), applies transparent rule-based
signals (source domain, attribution, sensational language, sentence shape)
and optionally asks a language model for a structured assessment.

Scores are heuristics. They are a starting point for verification,
not a verdict.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("credence v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.credence/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// .env is optional; existing environment variables win
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDir(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	} else {
		fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnv maps CREDENCE_* variables onto nested config keys
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CREDENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so nested keys are bound explicitly
	for _, key := range []string{
		"server.addr",
		"server.debug",
		"store.driver",
		"cache.enabled",
		"cache.ttl",
		"llm.provider",
		"llm.model",
		"llm.base_url",
		"llm.api_key",
		"report.dir",
		"report.s3_bucket",
		"report.s3_prefix",
		"report.s3_region",
		"report.s3_endpoint",
		"logging.level",
	} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("auth.jwt_secret", "CREDENCE_AUTH_JWT_SECRET", "CREDENCE_JWT_SECRET")
	_ = v.BindEnv("store.dsn", "CREDENCE_STORE_DSN", "CREDENCE_DATABASE_URL")
	_ = v.BindEnv("cache.redis_addr", "CREDENCE_CACHE_REDIS_ADDR", "CREDENCE_REDIS_ADDR")
	_ = v.BindEnv("report.s3_access_key_id", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("report.s3_secret_access_key", "AWS_SECRET_ACCESS_KEY")
}

// loadConfig layers config file and environment over the built-in defaults
func loadConfig(v *viper.Viper, getenv func(string) string) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(cfg, getenv)

	if strings.HasPrefix(cfg.Store.DSN, "postgres://") || strings.HasPrefix(cfg.Store.DSN, "postgresql://") {
		cfg.Store.Driver = store.DriverPostgres
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// providerKeyEnv names the conventional API key variable per provider
var providerKeyEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"claude":    {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"google":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// applyProviderEnv fills the API key and Ollama address from the
// provider's well-known variables when config left them empty
func applyProviderEnv(cfg *model.Config, getenv func(string) string) {
	provider := strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.APIKey == "" {
		for _, name := range providerKeyEnv[provider] {
			if key := getenv(name); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}
	if provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}
}

// requireProviderKey fails fast when the AI path was asked for explicitly
// but the provider has no credential
func requireProviderKey(cfg *model.Config) error {
	names, ok := providerKeyEnv[strings.ToLower(cfg.LLM.Provider)]
	if !ok || cfg.LLM.APIKey != "" {
		return nil
	}
	return fmt.Errorf("%s environment variable not set", names[0])
}

// currentConfig loads configuration from the global viper instance
func currentConfig() (*model.Config, error) {
	return loadConfig(viper.GetViper(), os.Getenv)
}

func newLogger(cfg *model.Config) (logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
}

func openStore(ctx context.Context, cfg *model.Config) (store.HistoryStore, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return st, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".credence"), nil
}
