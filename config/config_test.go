package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.WindowS != 1.0 || cfg.Analysis.HopS != 0.05 {
		t.Fatalf("unexpected window defaults: %+v", cfg.Analysis)
	}
	if cfg.Analysis.CallTimeout != 30*time.Second {
		t.Fatalf("call timeout = %v", cfg.Analysis.CallTimeout)
	}
	if cfg.Cache.HashAlgorithm != "sha1" {
		t.Fatalf("hash algorithm = %q", cfg.Cache.HashAlgorithm)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "analysis:\n  hop_s: 0.5\n  workers: 4\nservices:\n  emotion:\n    url: http://emo:8000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.HopS != 0.5 || cfg.Analysis.Workers != 4 {
		t.Fatalf("file values not applied: %+v", cfg.Analysis)
	}
	if cfg.Analysis.WindowS != 1.0 {
		t.Fatalf("default window lost: %v", cfg.Analysis.WindowS)
	}
	if cfg.Services.Emotion.URL != "http://emo:8000" {
		t.Fatalf("emotion url = %q", cfg.Services.Emotion.URL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EDMO_ANALYSIS_WORKERS", "3")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  name: test\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.Workers != 3 {
		t.Fatalf("workers = %d, want 3 from env", cfg.Analysis.Workers)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Root)
		want   string
	}{
		{"window", func(r *Root) { r.Analysis.WindowS = 0 }, "window_s"},
		{"hop", func(r *Root) { r.Analysis.HopS = -1 }, "hop_s"},
		{"hop under a sample", func(r *Root) { r.Analysis.HopS = 1e-5 }, "hop_s"},
		{"window under a sample", func(r *Root) { r.Analysis.WindowS = 2e-5 }, "window_s"},
		{"workers", func(r *Root) { r.Analysis.Workers = 0 }, "workers"},
		{"pitch", func(r *Root) { r.Analysis.PitchMaxHz = 10 }, "pitch band"},
		{"vad", func(r *Root) { r.VAD.Aggressiveness = 4 }, "aggressiveness"},
		{"hash", func(r *Root) { r.Cache.HashAlgorithm = "md5" }, "hash_algorithm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Default()
			tc.mutate(r)
			err := r.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tc.want)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDefault(&buf); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	var got Root
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Analysis.CallTimeout != 30*time.Second || got.Cache.Path != "voice_cache.json" {
		t.Fatalf("unexpected decoded defaults: %+v", got)
	}
}
