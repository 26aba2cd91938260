package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type BacktestEngineV1ConfigTestSuite struct {
	suite.Suite
}

func TestBacktestEngineV1ConfigSuite(t *testing.T) {
	suite.Run(t, new(BacktestEngineV1ConfigTestSuite))
}

func (suite *BacktestEngineV1ConfigTestSuite) TestDefaultConfigIsValid() {
	config := DefaultConfig()

	suite.NoError(config.Validate())
	suite.Equal(10000.0, config.InitialCapital)
	suite.Equal(0.01, config.RiskFraction)
	suite.Equal(2.0, config.AtrMultiple)
	suite.Equal(0.10, config.MaxDrawdown)
	suite.Equal(3.0, config.TrailingStopMultiple)
	suite.Equal(types.IndicatorTypeATR, config.Volatility.Indicator)
	suite.Equal(14, config.Volatility.Period)
	suite.Equal(commission_fee.DefaultRates, config.Rates())

	test := TestConfig()
	suite.NoError(test.Validate())
}

func (suite *BacktestEngineV1ConfigTestSuite) TestUnmarshalYAMLKeepsDefaults() {
	var config BacktestEngineV1Config

	err := yaml.Unmarshal([]byte(`
initial_capital: 5000
volatility:
  period: 5
drawdown_policy: ignore
start_time: 2024-01-01T00:00:00Z
`), &config)
	suite.Require().NoError(err)

	suite.Equal(5000.0, config.InitialCapital)
	suite.Equal(0.01, config.RiskFraction)
	suite.Equal(types.IndicatorTypeATR, config.Volatility.Indicator)
	suite.Equal(5, config.Volatility.Period)
	suite.Equal(DrawdownPolicyIgnore, config.DrawdownPolicy)
	suite.Equal(LedgerModeNet, config.LedgerMode)
	suite.True(config.StartTime.IsSome())
	suite.True(config.StartTime.Unwrap().Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(config.EndTime.IsNone())
}

func (suite *BacktestEngineV1ConfigTestSuite) TestParseConfig() {
	config, err := ParseConfig([]byte("broker: interactive_broker\nexit_on_flat: true\ninterval: 5m\n"))
	suite.Require().NoError(err)
	suite.Equal(commission_fee.BrokerInteractiveBroker, config.Broker)
	suite.True(config.ExitOnFlat)
	suite.Equal("5m", config.Interval)

	_, err = ParseConfig([]byte("initial_capital: ["))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	config, err = ParseConfig(nil)
	suite.Require().NoError(err)
	suite.Equal(DefaultConfig(), config)
}

func (suite *BacktestEngineV1ConfigTestSuite) TestValidate() {
	tests := []struct {
		name   string
		mutate func(c *BacktestEngineV1Config)
		field  string
	}{
		{"zero capital", func(c *BacktestEngineV1Config) { c.InitialCapital = 0 }, "InitialCapital"},
		{"risk fraction above one", func(c *BacktestEngineV1Config) { c.RiskFraction = 1.5 }, "RiskFraction"},
		{"zero atr multiple", func(c *BacktestEngineV1Config) { c.AtrMultiple = 0 }, "AtrMultiple"},
		{"zero max drawdown", func(c *BacktestEngineV1Config) { c.MaxDrawdown = 0 }, "MaxDrawdown"},
		{"max drawdown above one", func(c *BacktestEngineV1Config) { c.MaxDrawdown = 1.1 }, "MaxDrawdown"},
		{"negative spread", func(c *BacktestEngineV1Config) { c.SpreadRate = -0.1 }, "SpreadRate"},
		{"unknown broker", func(c *BacktestEngineV1Config) { c.Broker = "binance" }, "Broker"},
		{"zero trailing multiple", func(c *BacktestEngineV1Config) { c.TrailingStopMultiple = 0 }, "TrailingStopMultiple"},
		{"unknown indicator", func(c *BacktestEngineV1Config) { c.Volatility.Indicator = types.IndicatorTypeEMA }, "Indicator"},
		{"zero period", func(c *BacktestEngineV1Config) { c.Volatility.Period = 0 }, "Period"},
		{"unknown ledger mode", func(c *BacktestEngineV1Config) { c.LedgerMode = "both" }, "LedgerMode"},
		{"unknown drawdown policy", func(c *BacktestEngineV1Config) { c.DrawdownPolicy = "panic" }, "DrawdownPolicy"},
		{"end before start", func(c *BacktestEngineV1Config) {
			c.StartTime = optional.Some(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
			c.EndTime = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		}, "EndTime"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
			suite.True(errors.IsValidationError(err))
			suite.Contains(err.Error(), tc.field)
		})
	}
}

func (suite *BacktestEngineV1ConfigTestSuite) TestGenerateSchemaJSON() {
	config := DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schema, "backtest-engine-v1-config")
	suite.Contains(schema, "initial_capital")
	suite.Contains(schema, "trailing_stop_multiple")
	suite.Contains(schema, "interactive_broker")
	suite.Contains(schema, "date-time")
}
