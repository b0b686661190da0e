package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/kernel"
	"github.com/cognicore/sheaf/pkg/sheaf/similarity"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheaf.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default should validate: %v", err)
	}
	if len(cfg.Levels) != 3 {
		t.Errorf("expected 3 default levels, got %d", len(cfg.Levels))
	}
	if cfg.Training.Repetitions != 3 || cfg.Training.Samples != 100 || cfg.Training.MaxIterations != 800 {
		t.Errorf("unexpected training defaults: %+v", cfg.Training)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeYAML(t, `
training:
  samples: 50
  seed: 7
levels:
  - kernel: letter-gram
    window: 3
    partition: sentence
inference:
  reduction: max-max
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Training.Samples != 50 || cfg.Training.Seed != 7 {
		t.Errorf("training = %+v", cfg.Training)
	}
	if cfg.Training.Repetitions != 3 {
		t.Errorf("missing key should keep default, got %d", cfg.Training.Repetitions)
	}
	if len(cfg.Levels) != 1 || cfg.Levels[0].Window != 3 {
		t.Errorf("levels = %+v", cfg.Levels)
	}
	r, err := cfg.Reduction()
	if err != nil || r != similarity.MaxMax {
		t.Errorf("Reduction = %v, %v", r, err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHEAF_SEED", "42")
	t.Setenv("SHEAF_WORKERS", "2")
	t.Setenv("SHEAF_SAMPLES", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Training.Seed != 42 || cfg.Training.Workers != 2 {
		t.Errorf("env overrides not applied: %+v", cfg.Training)
	}
	if cfg.Training.Samples != 100 {
		t.Errorf("unparseable env should keep default, got %d", cfg.Training.Samples)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero samples", func(c *Config) { c.Training.Samples = 0 }},
		{"zero repetitions", func(c *Config) { c.Training.Repetitions = 0 }},
		{"negative iterations", func(c *Config) { c.Training.MaxIterations = -1 }},
		{"zero learning rate", func(c *Config) { c.Training.LearningRate = 0 }},
		{"zero sigma", func(c *Config) { c.Training.Sigma = 0 }},
		{"zero workers", func(c *Config) { c.Training.Workers = 0 }},
		{"no levels", func(c *Config) { c.Levels = nil }},
		{"unknown kernel", func(c *Config) { c.Levels[0].Kernel = "trigram" }},
		{"unknown partition", func(c *Config) { c.Levels[0].Partition = "paragraph" }},
		{"negative layer", func(c *Config) { c.Inference.MeasureLayer = -1 }},
		{"unknown reduction", func(c *Config) { c.Inference.Reduction = "median" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/sheaf.yaml"); err == nil {
		t.Error("Should error on nonexistent config")
	}
	if _, err := Load(writeYAML(t, "training: [")); err == nil {
		t.Error("Should error on malformed YAML")
	}
}

func TestBuildSpec(t *testing.T) {
	cfg := Default()
	tok, err := cfg.BuildTokenizer()
	if err != nil {
		t.Fatalf("BuildTokenizer: %v", err)
	}
	spec, err := cfg.BuildSpec(tok)
	if err != nil {
		t.Fatalf("BuildSpec: %v", err)
	}
	if len(spec) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(spec))
	}
	if _, ok := spec[0].Partitioner.(kernel.SentenceSplitter); !ok {
		t.Errorf("level 0 partitioner = %T", spec[0].Partitioner)
	}
	if _, ok := spec[2].Partitioner.(kernel.IdentitySplitter); !ok {
		t.Errorf("level 2 partitioner = %T", spec[2].Partitioner)
	}
	lg, ok := spec[1].Kernel.(kernel.LetterGram)
	if !ok || lg.Window != 2 {
		t.Errorf("level 1 kernel = %#v", spec[1].Kernel)
	}
}

func TestBuildTokenizerStoplist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stoplist.yaml")
	if err := os.WriteFile(path, []byte("terms:\n  - cake\n  - bake\n"), 0o644); err != nil {
		t.Fatalf("write stoplist: %v", err)
	}
	cfg := Default()
	cfg.Text.Stoplist = path
	tok, err := cfg.BuildTokenizer()
	if err != nil {
		t.Fatalf("BuildTokenizer: %v", err)
	}
	if got := tok.Tokenize("bake the cake"); len(got) != 1 || got[0] != "the" {
		t.Errorf("Tokenize = %v", got)
	}

	cfg.Text.Stoplist = "/nonexistent/stoplist.yaml"
	if _, err := cfg.BuildTokenizer(); err == nil {
		t.Error("Should error on nonexistent stoplist")
	}
}

func TestSamplerAndFitter(t *testing.T) {
	cfg := Default()
	cfg.Training.Mean = 1.0
	s := cfg.Sampler(3)
	if s.Mean != 1.0 || s.Sigma != cfg.Training.Sigma {
		t.Errorf("sampler = %+v", s)
	}
	f := cfg.Fitter()
	if f.MaxIterations != 800 || f.LearningRate != 0.1 {
		t.Errorf("fitter = %+v", f)
	}
}
