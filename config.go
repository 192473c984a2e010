package fedsim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Config is an experiment file. Zero values mean "not set" and leave the
// defaults in place.
type Config struct {
	Simulation SimulationConfig `toml:"simulation" yaml:"simulation"`
	HPO        HPOConfig        `toml:"hpo"        yaml:"hpo"`
}

type SimulationConfig struct {
	Rounds        int     `toml:"rounds"         yaml:"rounds"`
	Clients       int     `toml:"clients"        yaml:"clients"`
	Samples       int     `toml:"samples"        yaml:"samples"`
	LearningRate  float64 `toml:"learning_rate"  yaml:"learning_rate"`
	Fraction      float64 `toml:"fraction"       yaml:"fraction"`
	Topology      []int   `toml:"topology"       yaml:"topology"`
	Seed          uint64  `toml:"seed"           yaml:"seed"`
	DataPath      string  `toml:"data_path"      yaml:"data_path"`
	MetricsFile   string  `toml:"metrics_file"   yaml:"metrics_file"`
	CheckpointDir string  `toml:"checkpoint_dir" yaml:"checkpoint_dir"`
	ExportModel   string  `toml:"export_model"   yaml:"export_model"`
}

type HPOConfig struct {
	Enabled        bool   `toml:"enabled"          yaml:"enabled"`
	Quick          bool   `toml:"quick"            yaml:"quick"`
	MaxRounds      int    `toml:"max_rounds"       yaml:"max_rounds"`
	Workers        int    `toml:"workers"          yaml:"workers"`
	ResultsFile    string `toml:"results_file"     yaml:"results_file"`
	BestConfigFile string `toml:"best_config_file" yaml:"best_config_file"`
	MetricsDir     string `toml:"metrics_dir"      yaml:"metrics_dir"`
}

// LoadConfig reads a TOML or YAML experiment file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		tree, err := toml.Load(string(data))
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		if err := tree.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	return &cfg, nil
}
