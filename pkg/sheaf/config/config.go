package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sheaf/pkg/sheaf/descent"
	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/kernel"
	"github.com/cognicore/sheaf/pkg/sheaf/perturb"
	"github.com/cognicore/sheaf/pkg/sheaf/similarity"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// Config is the full engine configuration, usually read from sheaf.yaml.
type Config struct {
	Training  Training  `yaml:"training"`
	Levels    []Level   `yaml:"levels"`
	Inference Inference `yaml:"inference"`
	Text      Text      `yaml:"text"`
}

// Training controls how trees are grown.
type Training struct {
	Samples                int     `yaml:"samples"`
	Repetitions            int     `yaml:"repetitions"`
	MaxIterations          int     `yaml:"max_iterations"`
	LearningRate           float64 `yaml:"learning_rate"`
	Sigma                  float64 `yaml:"sigma"`
	Mean                   float64 `yaml:"mean"`
	Seed                   uint64  `yaml:"seed"`
	Workers                int     `yaml:"workers"`
	RootDivergence         float64 `yaml:"root_divergence"`
	PropagateFitDivergence bool    `yaml:"propagate_fit_divergence"`
}

// Level is one step of the descent: the kernel that scores children and
// the partitioner that splits them for the next step.
type Level struct {
	Kernel    string `yaml:"kernel"`
	Window    int    `yaml:"window"`
	Partial   bool   `yaml:"partial"`
	Partition string `yaml:"partition"`
}

// Inference holds classification defaults.
type Inference struct {
	StartingLayer int    `yaml:"starting_layer"`
	MeasureLayer  int    `yaml:"measure_layer"`
	Normalize     bool   `yaml:"normalize"`
	Reduction     string `yaml:"reduction"`
}

// Text configures tokenization.
type Text struct {
	Stoplist string `yaml:"stoplist"`
	Stem     bool   `yaml:"stem"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Training: Training{
			Samples:        perturb.DefaultSamples,
			Repetitions:    tree.DefaultRepetitions,
			MaxIterations:  descent.DefaultMaxIterations,
			LearningRate:   descent.DefaultLearningRate,
			Sigma:          perturb.DefaultSigma,
			Workers:        4,
			RootDivergence: tree.DefaultDivergence,
		},
		Levels: []Level{
			{Kernel: kernel.KernelLetterGram, Window: 2, Partition: kernel.PartitionSentence},
			{Kernel: kernel.KernelLetterGram, Window: 2, Partition: kernel.PartitionWord},
			{Kernel: kernel.KernelLetterGram, Window: 2, Partition: kernel.PartitionIdentity},
		},
		Inference: Inference{
			StartingLayer: 0,
			MeasureLayer:  1,
			Normalize:     true,
			Reduction:     similarity.MaxAverage.String(),
		},
	}
}

// Load reads a YAML file over Default and applies environment overrides.
// Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides training settings from SHEAF_* variables.
func (c *Config) ApplyEnv() {
	c.Training.Seed = envUint64("SHEAF_SEED", c.Training.Seed)
	c.Training.Workers = envInt("SHEAF_WORKERS", c.Training.Workers)
	c.Training.Samples = envInt("SHEAF_SAMPLES", c.Training.Samples)
	c.Training.MaxIterations = envInt("SHEAF_MAX_ITERATIONS", c.Training.MaxIterations)
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	t := c.Training
	switch {
	case t.Samples <= 0:
		return fmt.Errorf("training.samples must be positive, got %d: %w", t.Samples, internalerr.ErrInvalidConfig)
	case t.Repetitions <= 0:
		return fmt.Errorf("training.repetitions must be positive, got %d: %w", t.Repetitions, internalerr.ErrInvalidConfig)
	case t.MaxIterations < 0:
		return fmt.Errorf("training.max_iterations must not be negative, got %d: %w", t.MaxIterations, internalerr.ErrInvalidConfig)
	case !(t.LearningRate > 0):
		return fmt.Errorf("training.learning_rate must be positive, got %v: %w", t.LearningRate, internalerr.ErrInvalidConfig)
	case !(t.Sigma > 0):
		return fmt.Errorf("training.sigma must be positive, got %v: %w", t.Sigma, internalerr.ErrInvalidConfig)
	case t.Workers <= 0:
		return fmt.Errorf("training.workers must be positive, got %d: %w", t.Workers, internalerr.ErrInvalidConfig)
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("at least one level is required: %w", internalerr.ErrInvalidConfig)
	}
	for i, l := range c.Levels {
		if l.Window < 0 {
			return fmt.Errorf("levels[%d].window must not be negative: %w", i, internalerr.ErrInvalidConfig)
		}
		if _, err := kernel.PartitionerByName(l.Partition); err != nil {
			return fmt.Errorf("levels[%d]: %w", i, err)
		}
		if _, err := kernel.KernelByName(l.Kernel, nil, kernel.KernelOptions{Window: l.Window, Partial: l.Partial}); err != nil {
			return fmt.Errorf("levels[%d]: %w", i, err)
		}
	}
	in := c.Inference
	if in.StartingLayer < 0 || in.MeasureLayer < 0 {
		return fmt.Errorf("inference layers must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if _, err := similarity.ParseReduction(in.Reduction); err != nil {
		return err
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
