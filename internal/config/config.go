package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vytor/memora/internal/memory"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/validation"
)

type Config struct {
	Addr               string          `mapstructure:"addr" validate:"required"`
	DBPath             string          `mapstructure:"db_path" validate:"required"`
	LogLevel           string          `mapstructure:"log_level" validate:"required"`
	LogFormat          string          `mapstructure:"log_format" validate:"oneof=text json"`
	Timezone           string          `mapstructure:"timezone" validate:"required"`
	DefaultDeckName    string          `mapstructure:"default_deck_name" validate:"required,max=100"`
	CORSAllowedOrigins []string        `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration   `mapstructure:"shutdown_timeout" validate:"gt=0"`
	Events             EventsConfig    `mapstructure:"events"`
	Scheduler          SchedulerConfig `mapstructure:"scheduler"`
}

type EventsConfig struct {
	AMQPURL         string `mapstructure:"amqp_url" validate:"omitempty,url"`
	Exchange        string `mapstructure:"exchange" validate:"required"`
	WorkerCount     int    `mapstructure:"worker_count" validate:"min=1,max=64"`
	QueueSize       int    `mapstructure:"queue_size" validate:"min=1"`
	PublishAttempts uint   `mapstructure:"publish_attempts" validate:"min=1,max=10"`
}

// SchedulerConfig holds the memory model tunables plus the starting values
// of newly synced items.
type SchedulerConfig struct {
	AbilityLearningRate    float64 `mapstructure:"ability_learning_rate" validate:"gt=0"`
	DifficultyLearningRate float64 `mapstructure:"difficulty_learning_rate" validate:"gt=0"`
	TargetRecall           float64 `mapstructure:"target_recall" validate:"gt=0,lt=1"`
	MinHalfLife            float64 `mapstructure:"min_half_life" validate:"gt=0"`
	MaxHalfLife            float64 `mapstructure:"max_half_life" validate:"gtefield=MinHalfLife"`
	MinInterval            int     `mapstructure:"min_interval" validate:"min=1"`
	MaxInterval            int     `mapstructure:"max_interval" validate:"gtefield=MinInterval"`
	WeakMastery            float64 `mapstructure:"weak_mastery" validate:"min=0,max=1"`
	InitialHalfLife        float64 `mapstructure:"initial_half_life" validate:"gt=0"`
	InitialEaseFactor      float64 `mapstructure:"initial_ease_factor" validate:"gt=0"`
}

// Memory converts the tunables into the memory model configuration.
func (s SchedulerConfig) Memory() memory.Config {
	return memory.Config{
		AbilityLearningRate:    s.AbilityLearningRate,
		DifficultyLearningRate: s.DifficultyLearningRate,
		TargetRecall:           s.TargetRecall,
		MinHalfLife:            s.MinHalfLife,
		MaxHalfLife:            s.MaxHalfLife,
		MinInterval:            s.MinInterval,
		MaxInterval:            s.MaxInterval,
		WeakMastery:            s.WeakMastery,
	}
}

// ItemDefaults returns the scheduling fields new items start with.
func (s SchedulerConfig) ItemDefaults() models.ItemDefaults {
	return models.ItemDefaults{
		HalfLifeDays: s.InitialHalfLife,
		EaseFactor:   s.InitialEaseFactor,
	}
}

func setDefaults(v *viper.Viper) {
	mem := memory.DefaultConfig()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "file:memora.db")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "text")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("default_deck_name", "My Glossary")
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("shutdown_timeout", 30*time.Second)

	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.exchange", "memora.srs")
	v.SetDefault("events.worker_count", 1)
	v.SetDefault("events.queue_size", 256)
	v.SetDefault("events.publish_attempts", 3)

	v.SetDefault("scheduler.ability_learning_rate", mem.AbilityLearningRate)
	v.SetDefault("scheduler.difficulty_learning_rate", mem.DifficultyLearningRate)
	v.SetDefault("scheduler.target_recall", mem.TargetRecall)
	v.SetDefault("scheduler.min_half_life", mem.MinHalfLife)
	v.SetDefault("scheduler.max_half_life", mem.MaxHalfLife)
	v.SetDefault("scheduler.min_interval", mem.MinInterval)
	v.SetDefault("scheduler.max_interval", mem.MaxInterval)
	v.SetDefault("scheduler.weak_mastery", mem.WeakMastery)
	v.SetDefault("scheduler.initial_half_life", 1.5)
	v.SetDefault("scheduler.initial_ease_factor", 2.5)
}

// Load reads configuration from a .env file (if present), an optional YAML
// file and environment variables, in increasing order of precedence.
// Nested keys map to env vars by replacing dots with underscores, e.g.
// scheduler.target_recall is SCHEDULER_TARGET_RECALL.
func Load(configFile string) (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("config_file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field rules and the cross-field memory model invariants.
func (c Config) Validate() error {
	if err := validation.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	if err := c.Scheduler.Memory().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the time zone that delimits the daily new-item quota.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
