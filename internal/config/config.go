package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the synthesis service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Synthesis endpoint configuration
	SynthEndpoint       string `envconfig:"SYNTH_ENDPOINT" default:"wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"`
	SynthOutputFormat   string `envconfig:"SYNTH_OUTPUT_FORMAT" default:"audio-24khz-48kbitrate-mono-mp3"`
	SynthConnectTimeout int    `envconfig:"SYNTH_CONNECT_TIMEOUT" default:"10"` // seconds
	SynthReadTimeout    int    `envconfig:"SYNTH_READ_TIMEOUT" default:"60"`    // seconds per frame

	// Defaults for jobs that do not carry an explicit style or voice
	DefaultVoice  string `envconfig:"DEFAULT_VOICE" default:"zh-CN-XiaoxiaoNeural"`
	DefaultRate   string `envconfig:"DEFAULT_RATE" default:"-10%"`
	DefaultPitch  string `envconfig:"DEFAULT_PITCH" default:"+0Hz"`
	DefaultPreset string `envconfig:"DEFAULT_PRESET" default:"BEDTIME_BALANCED"`

	// Chunking and concurrency
	BaseChunkSize   int `envconfig:"BASE_CHUNK_SIZE" default:"1000"`  // characters per synthesis chunk before adaptation
	MinChunkSize    int `envconfig:"MIN_CHUNK_SIZE" default:"500"`    // floor for adaptive shrinking
	BaseConcurrency int `envconfig:"BASE_CONCURRENCY" default:"3"`    // concurrent chunk calls before adaptation
	BatchSize       int `envconfig:"BATCH_SIZE" default:"5"`          // chunks per processing batch
	MaxTextChars    int `envconfig:"MAX_TEXT_CHARS" default:"200000"` // reject longer submissions up front

	// Memory pressure adaptation
	MemoryCeilingPercent float64 `envconfig:"MEMORY_CEILING_PERCENT" default:"70"` // utilization above this shrinks chunk size and concurrency

	// Retry configuration
	MaxRetries     int  `envconfig:"MAX_RETRIES" default:"3"`         // attempts per chunk
	RetryBackoffMs int  `envconfig:"RETRY_BACKOFF_MS" default:"1000"` // fixed delay between attempts
	PlainFallback  bool `envconfig:"SYNTH_PLAIN_FALLBACK" default:"true"`

	// Storage
	StoragePath string `envconfig:"STORAGE_PATH" default:"./storage"`

	// Job intake (NATS)
	NATSURL         string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	JobsSubject     string `envconfig:"JOBS_SUBJECT" default:"aivoice.tts.jobs"`
	ProgressSubject string `envconfig:"PROGRESS_SUBJECT" default:"aivoice.tts.progress"`

	// Audio retention
	AudioTTLHours          int `envconfig:"AUDIO_TTL_HOURS" default:"24"`
	CleanupIntervalMinutes int `envconfig:"CLEANUP_INTERVAL_MINUTES" default:"60"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.BaseChunkSize < cfg.MinChunkSize {
		return nil, fmt.Errorf("BASE_CHUNK_SIZE (%d) must be >= MIN_CHUNK_SIZE (%d)", cfg.BaseChunkSize, cfg.MinChunkSize)
	}
	if cfg.BaseConcurrency < 1 {
		return nil, fmt.Errorf("BASE_CONCURRENCY must be >= 1")
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("BATCH_SIZE must be >= 1")
	}
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("MAX_RETRIES must be >= 1")
	}

	return &cfg, nil
}

// AudioDir is where assembled job audio is written.
func (c *Config) AudioDir() string {
	return filepath.Join(c.StoragePath, "audio")
}

// TempDir is the parent of per-job chunk scratch directories.
func (c *Config) TempDir() string {
	return filepath.Join(c.StoragePath, "temp")
}

// RetryBackoff returns the fixed per-attempt backoff as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// AudioTTL returns the retention window for assembled audio.
func (c *Config) AudioTTL() time.Duration {
	return time.Duration(c.AudioTTLHours) * time.Hour
}

// CleanupInterval returns how often the retention sweep runs.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}
