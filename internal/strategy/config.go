package strategy

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/forest/internal/indicator"
	"github.com/rxtech-lab/forest/internal/strategy/onnx"
	"github.com/rxtech-lab/forest/pkg/errors"
)

type Mode string

const (
	// ModeClassic runs the EMA crossover.
	ModeClassic Mode = "classic"
	// ModeML runs the ONNX classifier over the bar features.
	ModeML Mode = "ml"
)

type StrategyConfig struct {
	Mode        Mode    `yaml:"mode" json:"mode" jsonschema:"title=Mode,description=Rule based or model based signals,enum=classic,enum=ml" validate:"oneof=classic ml"`
	Fast        int     `yaml:"fast" json:"fast" jsonschema:"title=Fast,description=Fast EMA period,minimum=1" validate:"gt=0"`
	Slow        int     `yaml:"slow" json:"slow" jsonschema:"title=Slow,description=Slow EMA period,minimum=2" validate:"gtfield=Fast"`
	FeatureFast int     `yaml:"feature_fast" json:"feature_fast" jsonschema:"title=Feature Fast,description=Fast moving average of the model features,minimum=1" validate:"gt=0"`
	FeatureSlow int     `yaml:"feature_slow" json:"feature_slow" jsonschema:"title=Feature Slow,description=Slow moving average of the model features,minimum=2" validate:"gtfield=FeatureFast"`
	Threshold   float64 `yaml:"threshold" json:"threshold" jsonschema:"title=Threshold,description=Class probability needed for a directional vote,exclusiveMinimum=0,maximum=1" validate:"gt=0,lte=1"`
	ModelPath   string  `yaml:"model_path" json:"model_path" jsonschema:"title=Model Path,description=ONNX model used in ml mode" validate:"required_if=Mode ml"`
	LibraryPath string  `yaml:"onnx_library" json:"onnx_library" jsonschema:"title=ONNX Runtime Library,description=Path of the onnxruntime shared library"`
}

// UnmarshalYAML implements custom unmarshaling for StrategyConfig.
// Keys that are absent keep their DefaultStrategyConfig value.
func (c *StrategyConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		Mode        *Mode    `yaml:"mode"`
		Fast        *int     `yaml:"fast"`
		Slow        *int     `yaml:"slow"`
		FeatureFast *int     `yaml:"feature_fast"`
		FeatureSlow *int     `yaml:"feature_slow"`
		Threshold   *float64 `yaml:"threshold"`
		ModelPath   *string  `yaml:"model_path"`
		LibraryPath *string  `yaml:"onnx_library"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	*c = DefaultStrategyConfig()

	if config.Mode != nil {
		c.Mode = *config.Mode
	}

	if config.Fast != nil {
		c.Fast = *config.Fast
	}

	if config.Slow != nil {
		c.Slow = *config.Slow
	}

	if config.FeatureFast != nil {
		c.FeatureFast = *config.FeatureFast
	}

	if config.FeatureSlow != nil {
		c.FeatureSlow = *config.FeatureSlow
	}

	if config.Threshold != nil {
		c.Threshold = *config.Threshold
	}

	if config.ModelPath != nil {
		c.ModelPath = *config.ModelPath
	}

	if config.LibraryPath != nil {
		c.LibraryPath = *config.LibraryPath
	}

	return nil
}

// DefaultStrategyConfig is a 12/26 EMA crossover; ml mode scores 5/20 moving
// average features with a 0.55 threshold.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Mode:        ModeClassic,
		Fast:        12,
		Slow:        26,
		FeatureFast: 5,
		FeatureSlow: 20,
		Threshold:   0.55,
		ModelPath:   "",
		LibraryPath: "",
	}
}

func (c *StrategyConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fe.Namespace())
			}

			return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config",
				errors.NewValidationError("field validation failed", fields...))
		}

		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	return nil
}

// GenerateSchemaJSON generates a JSON schema string for the StrategyConfig
func (c *StrategyConfig) GenerateSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)
	schema.Title = "strategy-config"
	schema.Description = "Configuration schema for the signal strategies"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// ClassifierLoader opens the classifier of an ml mode config.
type ClassifierLoader func(config StrategyConfig) (Classifier, error)

// LoadONNXClassifier opens config.ModelPath with onnxruntime.
func LoadONNXClassifier(config StrategyConfig) (Classifier, error) {
	classifier, err := onnx.NewClassifier(onnx.Config{
		ModelPath:   config.ModelPath,
		LibraryPath: config.LibraryPath,
		Features:    len(FeatureNames),
	})
	if err != nil {
		return nil, err
	}

	return classifier, nil
}

// NewFromConfig builds a fresh strategy for one run.
func NewFromConfig(config StrategyConfig) (Strategy, error) {
	return NewFromConfigWithLoader(config, LoadONNXClassifier)
}

// NewFromConfigWithLoader is NewFromConfig with a custom classifier source for ml mode.
func NewFromConfigWithLoader(config StrategyConfig, loader ClassifierLoader) (Strategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	registry := indicator.NewDefaultRegistry()

	switch config.Mode {
	case ModeClassic:
		cross, err := NewEMACross(registry, config.Fast, config.Slow)
		if err != nil {
			return nil, err
		}

		return cross, nil
	case ModeML:
		features, err := NewFeatureBuilder(registry, config.FeatureFast, config.FeatureSlow)
		if err != nil {
			return nil, err
		}

		classifier, err := loader(config)
		if err != nil {
			return nil, err
		}

		model, err := NewModelStrategy(features, classifier, config.Threshold)
		if err != nil {
			classifier.Close()

			return nil, err
		}

		return model, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy mode %q", config.Mode)
	}
}
