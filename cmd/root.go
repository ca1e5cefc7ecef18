package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/ats-matcher/internal/cache"
	"github.com/spigell/ats-matcher/internal/filtering"
	"github.com/spigell/ats-matcher/internal/store"
)

const (
	app = "ats-matcher"

	envAIKey       = "ATS_AI_API_KEY"
	envAIKeyFile   = "ATS_AI_API_KEY_FILE"
	envSupabaseKey = "ATS_SUPABASE_KEY"
)

type Config struct {
	Store    StoreConfig      `mapstructure:"store"`
	AI       AIConfig         `mapstructure:"ai"`
	Matching MatchingConfig   `mapstructure:"matching"`
	Filters  filtering.Config `mapstructure:"filters"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Server   ServerConfig     `mapstructure:"server"`
}

type StoreConfig struct {
	Driver         string         `mapstructure:"driver"`
	Path           string         `mapstructure:"path"`
	SampleFallback bool           `mapstructure:"sample-fallback"`
	SQL            SQLConfig      `mapstructure:"sql"`
	Supabase       SupabaseConfig `mapstructure:"supabase"`
}

type SQLConfig struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
	Debug   bool   `mapstructure:"debug"`
}

type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	UserAgent  string `mapstructure:"user-agent"`
	PageSize   int    `mapstructure:"page-size"`
}

type AIConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	BaseURL      string  `mapstructure:"base-url"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

type MatchingConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests-per-minute"`
}

type CacheConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Driver  string            `mapstructure:"driver"`
	TTL     time.Duration     `mapstructure:"ttl"`
	Redis   cache.RedisConfig `mapstructure:"redis"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ats-matcher scores candidates against published jobs with an AI model and a keyword fallback",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.api-key-file", envAIKeyFile); err != nil {
		log.Fatalf("binding %s environment variable: %v", envAIKeyFile, err)
	}

	setDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("store.driver", store.DriverFile)
	viper.SetDefault("store.path", "dataset.yaml")
	viper.SetDefault("store.sample-fallback", true)
	viper.SetDefault("store.sql.dialect", "postgres")

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.max-log-length", 200)

	viper.SetDefault("matching.concurrency", 4)
	viper.SetDefault("matching.timeout", "30s")

	viper.SetDefault("cache.driver", cache.DriverMemory)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.redis.address", "localhost:6379")

	viper.SetDefault("server.listen", ":8080")
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Without an explicit --config a missing file means defaults only.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config Config
	err := viper.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, err
	}

	return &config, nil
}
