package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"vodsheet"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"vodsheet"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-pro"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	StorageDir    string `envconfig:"VODSHEET_STORAGE_DIR" default:"./storage"`

	// Transcript chunking
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"10000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Audio splitting
	MaxAudioChunkBytes int     `envconfig:"MAX_AUDIO_CHUNK_BYTES" default:"20000000"`
	AudioSafetyFactor  float64 `envconfig:"AUDIO_SAFETY_FACTOR" default:"0.8"`
	MinSilenceSeconds  float64 `envconfig:"MIN_SILENCE_SECONDS" default:"0.5"`
	SilenceNoiseDb     float64 `envconfig:"SILENCE_NOISE_DB" default:"-30"`

	// Reduction
	MapConcurrency int `envconfig:"MAP_CONCURRENCY" default:"4"`
	CombineBudget  int `envconfig:"COMBINE_BUDGET" default:"40000"`

	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrMissingRequired)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE", ErrMissingRequired)
	}
	if c.AudioSafetyFactor <= 0 || c.AudioSafetyFactor > 1 {
		return fmt.Errorf("%w: AUDIO_SAFETY_FACTOR must be in (0, 1]", ErrMissingRequired)
	}
	return nil
}
