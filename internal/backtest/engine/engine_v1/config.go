package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

// LedgerMode selects which PnL the ledger accumulates.
type LedgerMode string

const (
	// LedgerModeNet accumulates PnL after transaction costs.
	LedgerModeNet LedgerMode = "net"
	// LedgerModeGross accumulates the cost-free PnL of closing trades.
	LedgerModeGross LedgerMode = "gross"
)

// DrawdownPolicy selects what the engine does when the drawdown limit is breached.
type DrawdownPolicy string

const (
	// DrawdownPolicyHalt force-closes any open position and stops trading for the rest of the run.
	DrawdownPolicyHalt DrawdownPolicy = "halt"
	// DrawdownPolicyIgnore only reports the breach.
	DrawdownPolicyIgnore DrawdownPolicy = "ignore"
)

type VolatilityConfig struct {
	Indicator types.IndicatorType `yaml:"indicator" json:"indicator" jsonschema:"title=Indicator,description=Volatility estimator used for sizing and stops,enum=atr,enum=tr_sma" validate:"oneof=atr tr_sma"`
	Period    int                 `yaml:"period" json:"period" jsonschema:"title=Period,description=Lookback of the volatility estimator,minimum=1" validate:"gt=0"`
}

type BacktestEngineV1Config struct {
	InitialCapital       float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for the backtest,exclusiveMinimum=0" validate:"gt=0"`
	RiskFraction         float64                    `yaml:"risk_fraction" json:"risk_fraction" jsonschema:"title=Risk Fraction,description=Fraction of equity risked per trade,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	AtrMultiple          float64                    `yaml:"atr_multiple" json:"atr_multiple" jsonschema:"title=ATR Multiple,description=Volatility multiple that sizes the risk unit,exclusiveMinimum=0" validate:"gt=0"`
	MaxDrawdown          float64                    `yaml:"max_drawdown" json:"max_drawdown" jsonschema:"title=Max Drawdown,description=Realized drawdown fraction that trips the guard,exclusiveMinimum=0,maximum=1" validate:"gt=0,lte=1"`
	Broker               commission_fee.Broker      `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The cost model used for fills" validate:"oneof=rate interactive_broker zero_commission"`
	SpreadRate           float64                    `yaml:"spread_rate" json:"spread_rate" jsonschema:"title=Spread Rate,description=Spread cost as a fraction of notional,minimum=0" validate:"gte=0"`
	CommissionRate       float64                    `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Commission as a fraction of notional,minimum=0" validate:"gte=0"`
	SlippageRate         float64                    `yaml:"slippage_rate" json:"slippage_rate" jsonschema:"title=Slippage Rate,description=Slippage as a fraction of notional,minimum=0" validate:"gte=0"`
	TrailingStopMultiple float64                    `yaml:"trailing_stop_multiple" json:"trailing_stop_multiple" jsonschema:"title=Trailing Stop Multiple,description=Volatility multiple between price and trailing stop,exclusiveMinimum=0" validate:"gt=0"`
	Volatility           VolatilityConfig           `yaml:"volatility" json:"volatility" jsonschema:"title=Volatility"`
	LedgerMode           LedgerMode                 `yaml:"ledger_mode" json:"ledger_mode" jsonschema:"title=Ledger Mode,description=Whether the ledger accumulates net or gross PnL,enum=net,enum=gross" validate:"oneof=net gross"`
	DrawdownPolicy       DrawdownPolicy             `yaml:"drawdown_policy" json:"drawdown_policy" jsonschema:"title=Drawdown Policy,description=What to do when the drawdown limit is breached,enum=halt,enum=ignore" validate:"oneof=halt ignore"`
	ExitOnFlat           bool                       `yaml:"exit_on_flat" json:"exit_on_flat" jsonschema:"title=Exit On Flat,description=Close the open position on a FLAT signal"`
	Symbol               string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument label attached to results"`
	Interval             string                     `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Optional resampling interval such as 5m or 1h"`
	StartTime            optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime              optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Keys that are absent keep their DefaultConfig value.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCapital       *float64               `yaml:"initial_capital"`
		RiskFraction         *float64               `yaml:"risk_fraction"`
		AtrMultiple          *float64               `yaml:"atr_multiple"`
		MaxDrawdown          *float64               `yaml:"max_drawdown"`
		Broker               *commission_fee.Broker `yaml:"broker"`
		SpreadRate           *float64               `yaml:"spread_rate"`
		CommissionRate       *float64               `yaml:"commission_rate"`
		SlippageRate         *float64               `yaml:"slippage_rate"`
		TrailingStopMultiple *float64               `yaml:"trailing_stop_multiple"`
		Volatility           *struct {
			Indicator *types.IndicatorType `yaml:"indicator"`
			Period    *int                 `yaml:"period"`
		} `yaml:"volatility"`
		LedgerMode     *LedgerMode     `yaml:"ledger_mode"`
		DrawdownPolicy *DrawdownPolicy `yaml:"drawdown_policy"`
		ExitOnFlat     *bool           `yaml:"exit_on_flat"`
		Symbol         *string         `yaml:"symbol"`
		Interval       *string         `yaml:"interval"`
		StartTime      *time.Time      `yaml:"start_time"`
		EndTime        *time.Time      `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	*c = DefaultConfig()

	setIf(&c.InitialCapital, config.InitialCapital)
	setIf(&c.RiskFraction, config.RiskFraction)
	setIf(&c.AtrMultiple, config.AtrMultiple)
	setIf(&c.MaxDrawdown, config.MaxDrawdown)
	setIf(&c.Broker, config.Broker)
	setIf(&c.SpreadRate, config.SpreadRate)
	setIf(&c.CommissionRate, config.CommissionRate)
	setIf(&c.SlippageRate, config.SlippageRate)
	setIf(&c.TrailingStopMultiple, config.TrailingStopMultiple)
	setIf(&c.LedgerMode, config.LedgerMode)
	setIf(&c.DrawdownPolicy, config.DrawdownPolicy)
	setIf(&c.ExitOnFlat, config.ExitOnFlat)
	setIf(&c.Symbol, config.Symbol)
	setIf(&c.Interval, config.Interval)

	if config.Volatility != nil {
		setIf(&c.Volatility.Indicator, config.Volatility.Indicator)
		setIf(&c.Volatility.Period, config.Volatility.Period)
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks every field constraint and the time window.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fe.Namespace())
			}

			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config",
				errors.NewValidationError("field validation failed", fields...))
		}

		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config",
			errors.NewValidationError("end_time is before start_time", "BacktestEngineV1Config.EndTime"))
	}

	return nil
}

// Rates returns the cost fractions of the config.
func (c *BacktestEngineV1Config) Rates() commission_fee.Rates {
	return commission_fee.Rates{
		Spread:     c.SpreadRate,
		Commission: c.CommissionRate,
		Slippage:   c.SlippageRate,
	}
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the reference parameters: 10000 capital, 1% risk per
// trade, ATR(14) with a 2x risk unit and 3x trailing stop, a 10% drawdown
// halt and 8 bps of cost per fill.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:       10000,
		RiskFraction:         0.01,
		AtrMultiple:          2,
		MaxDrawdown:          0.10,
		Broker:               commission_fee.BrokerRate,
		SpreadRate:           commission_fee.DefaultRates.Spread,
		CommissionRate:       commission_fee.DefaultRates.Commission,
		SlippageRate:         commission_fee.DefaultRates.Slippage,
		TrailingStopMultiple: 3,
		Volatility: VolatilityConfig{
			Indicator: types.IndicatorTypeATR,
			Period:    14,
		},
		LedgerMode:     LedgerModeNet,
		DrawdownPolicy: DrawdownPolicyHalt,
		ExitOnFlat:     false,
		Symbol:         "",
		Interval:       "",
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}

// TestConfig returns a cost-free config with a 50% drawdown limit, used by tests.
func TestConfig() BacktestEngineV1Config {
	config := DefaultConfig()
	config.SpreadRate = 0
	config.CommissionRate = 0
	config.SlippageRate = 0
	config.MaxDrawdown = 0.5

	return config
}
