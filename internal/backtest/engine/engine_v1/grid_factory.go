package engine

import (
	"reflect"
	"strings"

	"github.com/rxtech-lab/forest/internal/backtest/engine"
	"github.com/rxtech-lab/forest/internal/backtest/grid"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/strategy"
	"github.com/rxtech-lab/forest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// GridFactory builds runs by overlaying grid params on base engine and
// strategy YAML sections. A param name is a YAML key of either config, with
// dots addressing nested keys ("volatility.period"). Strategy keys win.
type GridFactory struct {
	engineBase   map[string]any
	strategyBase map[string]any
	loader       strategy.ClassifierLoader
	log          *logger.Logger
}

func NewGridFactory(engineBase, strategyBase map[string]any, log *logger.Logger) *GridFactory {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &GridFactory{
		engineBase:   engineBase,
		strategyBase: strategyBase,
		loader:       strategy.LoadONNXClassifier,
		log:          log,
	}
}

// SetClassifierLoader replaces how ml mode loads its model.
func (f *GridFactory) SetClassifierLoader(loader strategy.ClassifierLoader) {
	f.loader = loader
}

// Configs resolves params into the engine and strategy configs of one run.
func (f *GridFactory) Configs(params grid.Params) (BacktestEngineV1Config, strategy.StrategyConfig, error) {
	engineType := reflect.TypeOf(BacktestEngineV1Config{})
	strategyType := reflect.TypeOf(strategy.StrategyConfig{})

	engineValues := cloneMap(f.engineBase)
	strategyValues := cloneMap(f.strategyBase)

	for name, value := range params {
		switch {
		case hasYAMLPath(strategyType, name):
			setPath(strategyValues, name, value)
		case hasYAMLPath(engineType, name):
			setPath(engineValues, name, value)
		default:
			return BacktestEngineV1Config{}, strategy.StrategyConfig{},
				errors.Newf(errors.ErrCodeUnknownGridParm, "unknown grid parameter %s", name)
		}
	}

	engineYAML, err := yaml.Marshal(engineValues)
	if err != nil {
		return BacktestEngineV1Config{}, strategy.StrategyConfig{},
			errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode engine config", err)
	}

	engineConfig, err := ParseConfig(engineYAML)
	if err != nil {
		return BacktestEngineV1Config{}, strategy.StrategyConfig{}, err
	}

	strategyYAML, err := yaml.Marshal(strategyValues)
	if err != nil {
		return BacktestEngineV1Config{}, strategy.StrategyConfig{},
			errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode strategy config", err)
	}

	strategyConfig := strategy.DefaultStrategyConfig()
	if err := yaml.Unmarshal(strategyYAML, &strategyConfig); err != nil {
		return BacktestEngineV1Config{}, strategy.StrategyConfig{},
			errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy config", err)
	}

	return engineConfig, strategyConfig, nil
}

// Fingerprint is the canonical YAML of the configs resolved for params. Two
// params that resolve to the same run share a fingerprint, and any change in
// the base sections changes it.
func (f *GridFactory) Fingerprint(params grid.Params) (string, error) {
	engineConfig, strategyConfig, err := f.Configs(params)
	if err != nil {
		return "", err
	}

	out, err := yaml.Marshal(struct {
		Engine   BacktestEngineV1Config  `yaml:"engine"`
		Strategy strategy.StrategyConfig `yaml:"strategy"`
	}{engineConfig, strategyConfig})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode run config", err)
	}

	return string(out), nil
}

// Factory adapts the GridFactory to grid.Runner.
func (f *GridFactory) Factory() grid.Factory {
	return func(params grid.Params) (engine.Engine, strategy.Strategy, error) {
		engineConfig, strategyConfig, err := f.Configs(params)
		if err != nil {
			return nil, nil, err
		}

		eng, err := NewBacktestEngineV1(engineConfig)
		if err != nil {
			return nil, nil, err
		}

		eng.SetLogger(f.log)

		strat, err := strategy.NewFromConfigWithLoader(strategyConfig, f.loader)
		if err != nil {
			return nil, nil, err
		}

		return eng, strat, nil
	}
}

// hasYAMLPath reports whether the dotted path names a field of t by its yaml
// tags. Every segment but the last must reach a nested struct.
func hasYAMLPath(t reflect.Type, path string) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	head, rest, nested := strings.Cut(path, ".")

	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name == "" || name == "-" || name != head {
			continue
		}

		if !nested {
			return true
		}

		return hasYAMLPath(t.Field(i).Type, rest)
	}

	return false
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))

	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)

			continue
		}

		out[k] = v
	}

	return out
}

func setPath(values map[string]any, path string, value any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		values[head] = value

		return
	}

	child, ok := values[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		values[head] = child
	}

	setPath(child, rest, value)
}
