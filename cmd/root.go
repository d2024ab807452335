package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-finder/internal/ai"
	"github.com/spigell/job-finder/internal/ai/gemini"
	"github.com/spigell/job-finder/internal/collectors"
	"github.com/spigell/job-finder/internal/filtering"
	"github.com/spigell/job-finder/internal/server"
)

const (
	app = "job-finder"
)

type Config struct {
	Relevance  *RelevanceConfig   `mapstructure:"relevance"`
	AI         *AIConfig          `mapstructure:"ai"`
	Collectors *collectors.Config `mapstructure:"collectors"`
	Server     *server.Config     `mapstructure:"server"`
	Cache      *CacheConfig       `mapstructure:"cache"`
}

type RelevanceConfig struct {
	MinScore         float64 `mapstructure:"min-score"`
	Strategy         string  `mapstructure:"strategy"`
	BatchSize        int     `mapstructure:"batch-size"`
	StrictMinResults int     `mapstructure:"strict-min-results"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey        string `mapstructure:"api-key" json:"-"`
	APIKeyFile    string `mapstructure:"api-key-file"`
	Model         string `mapstructure:"model"`
	FallbackModel string `mapstructure:"fallback-model"`
	MaxRetries    int    `mapstructure:"max-retries"`
	MaxLogLength  int    `mapstructure:"max-log-length"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis-addr"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-finder collects job postings from several platforms and ranks them by relevance",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// envBindings maps configuration keys to the environment variables that may set them.
var envBindings = map[string]string{
	"ai.gemini.api-key":      "GOOGLE_API_KEY",
	"ai.gemini.api-key-file": "GOOGLE_API_KEY_FILE",
	"relevance.min-score":    "MIN_RELEVANCE_SCORE",
	"server.host":            "API_HOST",
	"server.port":            "API_PORT",
	"scraper-timeout":        "SCRAPER_TIMEOUT",
	"cache.redis-addr":       "REDIS_ADDR",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-finder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("relevance.min-score", filtering.DefaultThreshold)
	viper.SetDefault("relevance.strategy", filtering.StrategyRules)
	viper.SetDefault("relevance.batch-size", ai.DefaultBatchSize)
	viper.SetDefault("relevance.strict-min-results", filtering.DefaultStrictMinResults)

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.gemini.fallback-model", gemini.DefaultFallbackModel)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	viper.SetDefault("collectors.timeout", collectors.DefaultTimeout)

	viper.SetDefault("server.host", server.DefaultHost)
	viper.SetDefault("server.port", server.DefaultPort)
}

func initConfig() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it is given explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if config.Relevance == nil {
		config.Relevance = &RelevanceConfig{MinScore: filtering.DefaultThreshold}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Collectors == nil {
		config.Collectors = &collectors.Config{}
	}
	if config.Server == nil {
		config.Server = &server.Config{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}

	if raw := strings.TrimSpace(viper.GetString("scraper-timeout")); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return nil, fmt.Errorf("SCRAPER_TIMEOUT: %w", err)
		}
		config.Collectors.Timeout = timeout
	}

	config.Server.MinScore = config.Relevance.MinScore
	config.Server.Version = version
	config.Server.Debug = viper.GetBool("debug")

	return config, nil
}

// parseTimeout accepts plain seconds ("30") as well as Go durations ("45s").
func parseTimeout(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", raw)
	}
	return timeout, nil
}
