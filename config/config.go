package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url" mapstructure:"url"`
}

type GoogleSpeech struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Language string `yaml:"language" mapstructure:"language"`
}

type Gemini struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	Model  string `yaml:"model" mapstructure:"model"`
}

type Services struct {
	Emotion       Service      `yaml:"emotion" mapstructure:"emotion"`
	Embedding     Service      `yaml:"embedding" mapstructure:"embedding"`
	ASR           Service      `yaml:"asr" mapstructure:"asr"`
	Visualization Service      `yaml:"visualization" mapstructure:"visualization"`
	GoogleSpeech  GoogleSpeech `yaml:"google_speech" mapstructure:"google_speech"`
	Gemini        Gemini       `yaml:"gemini" mapstructure:"gemini"`
}

type Audio struct {
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// Analysis holds the windowing and feature extraction knobs.
type Analysis struct {
	WindowS          float64       `yaml:"window_s" mapstructure:"window_s"`
	HopS             float64       `yaml:"hop_s" mapstructure:"hop_s"`
	Workers          int           `yaml:"workers" mapstructure:"workers"`
	CallTimeout      time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"`
	Seed             uint64        `yaml:"seed" mapstructure:"seed"`
	MaxClusters      int           `yaml:"max_clusters" mapstructure:"max_clusters"`
	Denoise          bool          `yaml:"denoise" mapstructure:"denoise"`
	SilenceThreshold float64       `yaml:"silence_threshold" mapstructure:"silence_threshold"`
	FrameMs          int           `yaml:"frame_ms" mapstructure:"frame_ms"`
	PitchMinHz       float64       `yaml:"pitch_min_hz" mapstructure:"pitch_min_hz"`
	PitchMaxHz       float64       `yaml:"pitch_max_hz" mapstructure:"pitch_max_hz"`
}

type VAD struct {
	Aggressiveness int `yaml:"aggressiveness" mapstructure:"aggressiveness"`
	FrameMs        int `yaml:"frame_ms" mapstructure:"frame_ms"`
}

type Cache struct {
	Path          string `yaml:"path" mapstructure:"path"`
	HashAlgorithm string `yaml:"hash_algorithm" mapstructure:"hash_algorithm"`
}

type Sink struct {
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

type Pipeline struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	LogLvl  string `yaml:"log_level" mapstructure:"log_level"`
}

type Paths struct {
	Outputs string `yaml:"outputs" mapstructure:"outputs"`
}

type Root struct {
	Pipeline Pipeline `yaml:"pipeline" mapstructure:"pipeline"`
	Audio    Audio    `yaml:"audio" mapstructure:"audio"`
	Analysis Analysis `yaml:"analysis" mapstructure:"analysis"`
	VAD      VAD      `yaml:"vad" mapstructure:"vad"`
	Services Services `yaml:"services" mapstructure:"services"`
	Cache    Cache    `yaml:"cache" mapstructure:"cache"`
	Sink     Sink     `yaml:"sink" mapstructure:"sink"`
	Paths    Paths    `yaml:"paths" mapstructure:"paths"`
}

// Default returns the configuration used when no file overrides a key.
func Default() *Root {
	return &Root{
		Pipeline: Pipeline{Name: "edmo-voice", Version: "0.1.0", LogLvl: "info"},
		Audio:    Audio{SampleRate: 16000},
		Analysis: Analysis{
			WindowS:          1.0,
			HopS:             0.05,
			Workers:          1,
			CallTimeout:      30 * time.Second,
			MaxClusters:      3,
			SilenceThreshold: 0.01,
			FrameMs:          30,
			PitchMinHz:       75,
			PitchMaxHz:       4000,
		},
		VAD: VAD{Aggressiveness: 3, FrameMs: 30},
		Services: Services{
			GoogleSpeech: GoogleSpeech{Language: "en-US"},
			Gemini:       Gemini{Model: "gemini-2.0-flash"},
		},
		Cache: Cache{Path: "voice_cache.json", HashAlgorithm: "sha1"},
		Paths: Paths{Outputs: "outputs"},
	}
}

// SearchPaths lists the config files tried in order when no explicit file is given.
func SearchPaths() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
	}
}

// Load seeds v with the defaults, merges the first config file found (explicit
// path first, then SearchPaths) and EDMO_* environment variables, and decodes
// the result. A missing file is not an error; a malformed one is.
func Load(v *viper.Viper, explicit string) (*Root, error) {
	seed, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(seed)); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	v.SetEnvPrefix("EDMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	guess := SearchPaths()
	if explicit != "" {
		guess = []string{explicit}
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err != nil {
			if explicit != "" {
				return nil, fmt.Errorf("config %s: %w", p, err)
			}
			continue
		}
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
		break
	}

	return Decode(v)
}

// Decode unmarshals the current viper state and validates it.
func Decode(v *viper.Viper) (*Root, error) {
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *Root) Validate() error {
	var errs []error
	a := r.Analysis
	if a.WindowS <= 0 {
		errs = append(errs, fmt.Errorf("analysis.window_s must be > 0, got %v", a.WindowS))
	}
	if a.HopS <= 0 {
		errs = append(errs, fmt.Errorf("analysis.hop_s must be > 0, got %v", a.HopS))
	}
	if sr := float64(r.Audio.SampleRate); sr > 0 {
		if a.WindowS > 0 && math.Round(a.WindowS*sr) < 1 {
			errs = append(errs, fmt.Errorf("analysis.window_s %v is under one sample at %d Hz", a.WindowS, r.Audio.SampleRate))
		}
		if a.HopS > 0 && math.Round(a.HopS*sr) < 1 {
			errs = append(errs, fmt.Errorf("analysis.hop_s %v is under one sample at %d Hz", a.HopS, r.Audio.SampleRate))
		}
	}
	if a.Workers < 1 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 1, got %d", a.Workers))
	}
	if a.MaxClusters < 1 {
		errs = append(errs, fmt.Errorf("analysis.max_clusters must be >= 1, got %d", a.MaxClusters))
	}
	if a.PitchMinHz <= 0 || a.PitchMaxHz <= a.PitchMinHz {
		errs = append(errs, fmt.Errorf("analysis pitch band [%v, %v] is empty", a.PitchMinHz, a.PitchMaxHz))
	}
	if r.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be > 0, got %d", r.Audio.SampleRate))
	}
	if r.VAD.Aggressiveness < 0 || r.VAD.Aggressiveness > 3 {
		errs = append(errs, fmt.Errorf("vad.aggressiveness must be in [0,3], got %d", r.VAD.Aggressiveness))
	}
	switch r.Cache.HashAlgorithm {
	case "sha1", "blake2b":
	default:
		errs = append(errs, fmt.Errorf("cache.hash_algorithm %q not supported", r.Cache.HashAlgorithm))
	}
	return errors.Join(errs...)
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
