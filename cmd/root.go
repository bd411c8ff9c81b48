package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/recruit-tracker/internal/tracker"
)

const (
	app       = "recruit-tracker"
	envPrefix = "RECRUIT"
)

type Config struct {
	DB       string          `mapstructure:"db"`
	Schedule *ScheduleConfig `mapstructure:"schedule"`
	Export   *ExportConfig   `mapstructure:"export"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type ScheduleConfig struct {
	Delay time.Duration `mapstructure:"delay" validate:"gte=0"`
}

type ExportConfig struct {
	Format string `mapstructure:"format" validate:"omitempty,oneof=csv json yaml yml"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruit-tracker imports candidates, scores their ghosting risk and keeps the engagement alerts current",
	}
)

// Execute executes the root command. Ctrl+C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("ai.gemini.api-key-file", envPrefix+"_GEMINI_API_KEY_FILE", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding %s_GEMINI_API_KEY_FILE environment variable: %v", envPrefix, err)
	}

	viper.SetDefault("db", app+".db")
	viper.SetDefault("schedule.delay", tracker.DefaultScheduleDelay)
	viper.SetDefault("export.format", "csv")
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruit-tracker.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "a dotenv file to load before reading the environment (default is .env if present)")
	rootCmd.PersistentFlags().String("db", "", "sqlite file holding the candidate list; empty keeps everything in memory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// version does not need any configuration
	if versionCmd.CalledAs() != "" {
		return
	}

	loadEnvFile()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config file must exist; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func loadEnvFile() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Fatalf("loading env file %s: %v", envFile, err)
		}
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Schedule == nil {
		config.Schedule = &ScheduleConfig{}
	}
	if config.Export == nil {
		config.Export = &ExportConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	if err := validator.New().Struct(config); err != nil {
		return config, err
	}

	return config, nil
}
