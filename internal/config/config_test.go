package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}

	if cfg.DefaultVoice != "zh-CN-XiaoxiaoNeural" {
		t.Errorf("Expected default voice 'zh-CN-XiaoxiaoNeural', got '%s'", cfg.DefaultVoice)
	}

	if cfg.BaseChunkSize != 1000 {
		t.Errorf("Expected default BaseChunkSize 1000, got %d", cfg.BaseChunkSize)
	}

	if cfg.BaseConcurrency != 3 {
		t.Errorf("Expected default BaseConcurrency 3, got %d", cfg.BaseConcurrency)
	}

	if cfg.BatchSize != 5 {
		t.Errorf("Expected default BatchSize 5, got %d", cfg.BatchSize)
	}

	if cfg.MemoryCeilingPercent != 70 {
		t.Errorf("Expected default MemoryCeilingPercent 70, got %f", cfg.MemoryCeilingPercent)
	}

	if cfg.RetryBackoff() != time.Second {
		t.Errorf("Expected default retry backoff 1s, got %v", cfg.RetryBackoff())
	}

	if !cfg.PlainFallback {
		t.Error("Expected plain fallback enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("BASE_CHUNK_SIZE", "800")
	os.Setenv("BASE_CONCURRENCY", "5")
	defer os.Unsetenv("BASE_CHUNK_SIZE")
	defer os.Unsetenv("BASE_CONCURRENCY")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.BaseChunkSize != 800 {
		t.Errorf("Expected BaseChunkSize 800, got %d", cfg.BaseChunkSize)
	}

	if cfg.BaseConcurrency != 5 {
		t.Errorf("Expected BaseConcurrency 5, got %d", cfg.BaseConcurrency)
	}
}

func TestLoad_InvalidChunkFloor(t *testing.T) {
	os.Setenv("BASE_CHUNK_SIZE", "100")
	os.Setenv("MIN_CHUNK_SIZE", "500")
	defer os.Unsetenv("BASE_CHUNK_SIZE")
	defer os.Unsetenv("MIN_CHUNK_SIZE")

	_, err := LoadFromEnv()
	if err == nil {
		t.Error("Expected error when BASE_CHUNK_SIZE < MIN_CHUNK_SIZE")
	}
}

func TestStoragePaths(t *testing.T) {
	os.Setenv("STORAGE_PATH", "/var/lib/aivoice")
	defer os.Unsetenv("STORAGE_PATH")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.AudioDir() != "/var/lib/aivoice/audio" {
		t.Errorf("Expected audio dir '/var/lib/aivoice/audio', got '%s'", cfg.AudioDir())
	}

	if cfg.TempDir() != "/var/lib/aivoice/temp" {
		t.Errorf("Expected temp dir '/var/lib/aivoice/temp', got '%s'", cfg.TempDir())
	}
}
