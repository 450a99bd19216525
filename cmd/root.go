package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/logger"
)

const (
	app = "devhire-ats"
)

type Config struct {
	Server  *ServerConfig  `mapstructure:"server"`
	Scoring *ScoringConfig `mapstructure:"scoring"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	MaxUploadBytes int64    `mapstructure:"max-upload-bytes"`
	RateLimit      float64  `mapstructure:"rate-limit"`
	RateBurst      int      `mapstructure:"rate-burst"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type ScoringConfig struct {
	VocabularyFile string `mapstructure:"vocabulary-file"`
	JobBudget      int    `mapstructure:"job-budget"`
	ResumeBudget   int    `mapstructure:"resume-budget"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"api-key"`
	APIKeyFile     string        `mapstructure:"api-key-file"`
	Model          string        `mapstructure:"model"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	MaxLogLength   int           `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "devhire-ats scores resumes against job descriptions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is devhire-ats.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.max-upload-bytes", 5<<20)
	v.SetDefault("server.rate-limit", 5)
	v.SetDefault("server.rate-burst", 10)
	v.SetDefault("server.allowed-origins", []string{})

	v.SetDefault("scoring.vocabulary-file", "")
	v.SetDefault("scoring.job-budget", 1500)
	v.SetDefault("scoring.resume-budget", 3000)

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	v.SetDefault("ai.gemini.request-timeout", "30s")
	v.SetDefault("ai.gemini.max-log-length", 200)
}

// initConfig reads the config file. Without --config a missing
// devhire-ats.yaml is fine and defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	err := v.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}

// setup builds the logger and the config shared by every command.
func setup() (*Config, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if path := viper.ConfigFileUsed(); path != "" {
		logger.Debug("config file loaded", zap.String("path", path))
	}

	return config, logger
}
