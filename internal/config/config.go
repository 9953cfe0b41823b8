package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"reactorai/internal/grid"
)

// Config is the root configuration structure for an optimization run.
type Config struct {
	Seed    int64         `yaml:"seed"`
	Fuel    string        `yaml:"fuel"`
	Grid    GridConfig    `yaml:"grid"`
	GA      GAConfig      `yaml:"ga"`
	Eval    EvalConfig    `yaml:"eval"`
	Logging LogConfig     `yaml:"logging"`
	Render  RenderConfig  `yaml:"render"`
	Archive ArchiveConfig `yaml:"archive"`
}

// GridConfig fixes the lattice shape for the whole run.
type GridConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// GAConfig defines the search parameters.
type GAConfig struct {
	Population          int     `yaml:"population"`
	Generations         int     `yaml:"generations"`
	Elites              int     `yaml:"elites"`
	InitialMutationRate float64 `yaml:"initial_mutation_rate"`
	MutationFloor       float64 `yaml:"mutation_floor"`
	MutationDecay       float64 `yaml:"mutation_decay"`
	TournamentBase      int     `yaml:"tournament_base"`
	TournamentDecay     float64 `yaml:"tournament_decay"`
}

// EvalConfig defines evaluation parameters.
type EvalConfig struct {
	Workers int `yaml:"workers"`
}

// LogConfig defines metrics output paths.
type LogConfig struct {
	EveryGenSummary bool   `yaml:"every_gen_summary"`
	CSVPath         string `yaml:"csv_path"`
	JSONPath        string `yaml:"json_path"`
}

// RenderConfig defines where the final layout artifact is written.
type RenderConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig defines the optional sqlite run archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a YAML config file, applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the stock configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.Fuel == "" {
		cfg.Fuel = "TBU"
	}
	if cfg.Grid.X == 0 {
		cfg.Grid.X = 3
	}
	if cfg.Grid.Y == 0 {
		cfg.Grid.Y = 3
	}
	if cfg.Grid.Z == 0 {
		cfg.Grid.Z = 3
	}
	if cfg.GA.Population == 0 {
		cfg.GA.Population = 256
	}
	if cfg.GA.Generations == 0 {
		cfg.GA.Generations = 200
	}
	if cfg.GA.Elites == 0 {
		cfg.GA.Elites = 10
	}
	if cfg.GA.InitialMutationRate == 0 {
		cfg.GA.InitialMutationRate = 0.10
	}
	if cfg.GA.MutationFloor == 0 {
		cfg.GA.MutationFloor = 0.02
	}
	if cfg.GA.MutationDecay == 0 {
		cfg.GA.MutationDecay = 0.99
	}
	if cfg.GA.TournamentBase == 0 {
		cfg.GA.TournamentBase = 100
	}
	if cfg.GA.TournamentDecay == 0 {
		cfg.GA.TournamentDecay = 0.99
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
	if cfg.Render.Path == "" {
		cfg.Render.Path = "artifacts/best.html"
	}
	if cfg.Archive.Path == "" {
		cfg.Archive.Path = "runs/archive.db"
	}
}

// Validate rejects parameter combinations the search cannot run
// with. It is called before the first generation starts.
func (c *Config) Validate() error {
	if c.Grid.X < 1 || c.Grid.Y < 1 || c.Grid.Z < 1 {
		return fmt.Errorf("config: grid shape %dx%dx%d has an empty axis", c.Grid.X, c.Grid.Y, c.Grid.Z)
	}
	if c.Shape().Cells() < 2 {
		return fmt.Errorf("config: grid needs at least 2 cells for crossover")
	}
	if c.GA.Population < 2 {
		return fmt.Errorf("config: population %d is too small", c.GA.Population)
	}
	if c.GA.Generations < 1 {
		return fmt.Errorf("config: generations must be positive, got %d", c.GA.Generations)
	}
	if c.GA.Elites < 0 || c.GA.Elites >= c.GA.Population {
		return fmt.Errorf("config: elite count %d must be in [0, population)", c.GA.Elites)
	}
	if c.GA.TournamentBase < 2 || c.GA.TournamentBase > c.GA.Population {
		return fmt.Errorf("config: tournament base %d must be in [2, population]", c.GA.TournamentBase)
	}
	if c.GA.TournamentDecay <= 0 || c.GA.TournamentDecay > 1 {
		return fmt.Errorf("config: tournament decay %v must be in (0, 1]", c.GA.TournamentDecay)
	}
	if c.GA.InitialMutationRate < 0 || c.GA.InitialMutationRate > 1 {
		return fmt.Errorf("config: initial mutation rate %v must be in [0, 1]", c.GA.InitialMutationRate)
	}
	if c.GA.MutationFloor < 0 || c.GA.MutationFloor > 1 {
		return fmt.Errorf("config: mutation floor %v must be in [0, 1]", c.GA.MutationFloor)
	}
	if c.GA.MutationDecay <= 0 || c.GA.MutationDecay > 1 {
		return fmt.Errorf("config: mutation decay %v must be in (0, 1]", c.GA.MutationDecay)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Eval.Workers)
	}
	return nil
}

// Shape returns the configured lattice shape.
func (c *Config) Shape() grid.Shape {
	return grid.Shape{X: c.Grid.X, Y: c.Grid.Y, Z: c.Grid.Z}
}
