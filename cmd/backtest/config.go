package main

import (
	"os"

	"github.com/rxtech-lab/forest/internal/backtest/grid"
	"github.com/rxtech-lab/forest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RunConfig is the file passed with --config. The engine and strategy sections
// are kept raw so grid parameters can be overlaid on them.
type RunConfig struct {
	Engine   map[string]any `yaml:"engine"`
	Strategy map[string]any `yaml:"strategy"`
	Grid     grid.ParamGrid `yaml:"grid"`
}

func loadRunConfig(path string) (RunConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return parseRunConfig(content)
}

func parseRunConfig(content []byte) (RunConfig, error) {
	var config RunConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return RunConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse run config", err)
	}

	if config.Engine == nil {
		config.Engine = map[string]any{}
	}

	if config.Strategy == nil {
		config.Strategy = map[string]any{}
	}

	return config, nil
}
