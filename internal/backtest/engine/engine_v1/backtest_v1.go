package engine

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/backtest/engine"
	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/forest/internal/indicator"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/strategy"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var _ engine.Engine = (*BacktestEngineV1)(nil)

// BacktestEngineV1 replays bars through a strategy one bar at a time.
// Runs on one engine are sequential; use one engine per goroutine.
type BacktestEngineV1 struct {
	config            BacktestEngineV1Config
	log               *logger.Logger
	indicatorRegistry indicator.IndicatorRegistry
	fee               commission_fee.CommissionFee
	observer          engine.Observer
	callbacks         engine.LifecycleCallbacks
}

// NewBacktestEngineV1 validates config and creates an engine.
func NewBacktestEngineV1(config BacktestEngineV1Config) (*BacktestEngineV1, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &BacktestEngineV1{
		config:            config,
		log:               logger.NewNopLogger(),
		indicatorRegistry: indicator.NewDefaultRegistry(),
		fee:               commission_fee.GetCommissionFeeHandler(config.Broker, config.Rates()),
		observer:          nil,
		callbacks:         engine.LifecycleCallbacks{},
	}, nil
}

// NewBacktestEngineV1FromYAML parses a YAML config and creates an engine.
func NewBacktestEngineV1FromYAML(content []byte) (*BacktestEngineV1, error) {
	config, err := ParseConfig(content)
	if err != nil {
		return nil, err
	}

	return NewBacktestEngineV1(config)
}

// ParseConfig decodes a YAML engine config on top of DefaultConfig.
func ParseConfig(content []byte) (BacktestEngineV1Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(content, &config); err != nil {
		return BacktestEngineV1Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest config", err)
	}

	return config, nil
}

func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

// SetLogger replaces the engine logger. nil restores the no-op logger.
func (b *BacktestEngineV1) SetLogger(log *logger.Logger) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	b.log = log
}

// SetIndicatorRegistry replaces the registry the volatility estimator is built from.
func (b *BacktestEngineV1) SetIndicatorRegistry(registry indicator.IndicatorRegistry) {
	b.indicatorRegistry = registry
}

// SetCommissionFee replaces the cost model derived from the config.
func (b *BacktestEngineV1) SetCommissionFee(fee commission_fee.CommissionFee) {
	b.fee = fee
}

// SetObserver implements engine.Engine.
func (b *BacktestEngineV1) SetObserver(observer engine.Observer) {
	b.observer = observer
}

// SetCallbacks implements engine.Engine.
func (b *BacktestEngineV1) SetCallbacks(callbacks engine.LifecycleCallbacks) {
	b.callbacks = callbacks
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

// prepareBars validates the input and applies the configured window and interval.
func (b *BacktestEngineV1) prepareBars(bars []types.Bar) ([]types.Bar, error) {
	if err := datasource.ValidateBars(bars); err != nil {
		return nil, err
	}

	prepared := datasource.FilterRange(bars, b.config.StartTime, b.config.EndTime)

	if b.config.Interval != "" {
		interval, err := datasource.ParseInterval(b.config.Interval)
		if err != nil {
			return nil, err
		}

		prepared = datasource.Resample(prepared, interval)
	}

	if len(prepared) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "no bars left inside the configured time window")
	}

	return prepared, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(bars []types.Bar, strat strategy.Strategy) (result types.BacktestResult, err error) {
	if strat == nil {
		return types.BacktestResult{}, errors.New(errors.ErrCodeNoStrategy, "no strategy loaded")
	}

	runID := uuid.New().String()

	if b.callbacks.OnRunEnd != nil {
		defer func() {
			(*b.callbacks.OnRunEnd)(runID, result, err)
		}()
	}

	bars, err = b.prepareBars(bars)
	if err != nil {
		return types.BacktestResult{}, err
	}

	volatility, err := b.indicatorRegistry.GetIndicator(b.config.Volatility.Indicator, b.config.Volatility.Period)
	if err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create volatility indicator", err)
	}

	if b.callbacks.OnRunStart != nil {
		if cbErr := (*b.callbacks.OnRunStart)(runID, b.config.Symbol, strat.Name(), len(bars)); cbErr != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", cbErr)
		}
	}

	b.log.Debug("Running backtest",
		zap.String("run_id", runID),
		zap.String("symbol", b.config.Symbol),
		zap.String("strategy", strat.Name()),
		zap.Int("bars", len(bars)),
	)

	risk := NewRiskEngine(b.config.InitialCapital, b.config.MaxDrawdown, b.fee)
	ledger := NewTradeLedger(b.config.InitialCapital, b.config.LedgerMode)
	state := NewBacktestState(b.config, risk, ledger, volatility)

	for i, bar := range bars {
		trace, stepErr := b.step(state, strat, bars, i)
		if stepErr != nil {
			b.log.Error("Backtest aborted",
				zap.String("run_id", runID),
				zap.Int("bar", i),
				zap.Error(stepErr),
			)

			return types.BacktestResult{}, stepErr
		}

		if b.observer != nil {
			b.observer.OnBar(trace)
		}

		if b.callbacks.OnProcessData != nil {
			if cbErr := (*b.callbacks.OnProcessData)(i+1, len(bars)); cbErr != nil {
				return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeCallbackFailed, cbErr, "progress callback failed at bar %d of %s", i, bar.Time)
			}
		}
	}

	closed, err := state.finish(bars)
	if err != nil {
		return types.BacktestResult{}, err
	}

	if closed.IsSome() {
		b.log.Debug("Closed position at end of data",
			zap.String("run_id", runID),
			zap.Float64("price", closed.Unwrap().Price),
		)
	}

	result = state.Result(b.config.Symbol, strat.Name())
	result.FirstClose = bars[0].Close
	result.LastClose = bars[len(bars)-1].Close

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.String("strategy", result.StrategyName),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("ending_equity", result.EndingEquity),
		zap.Float64("max_drawdown", result.MaxDrawdown),
		zap.Bool("halted", result.Halted),
	)

	return result, nil
}

// step runs one bar: stop check, signal, mark, drawdown guard. Once the run has
// halted it only carries realized equity forward.
func (b *BacktestEngineV1) step(state *BacktestState, strat strategy.Strategy, bars []types.Bar, i int) (types.DecisionTrace, error) {
	bar := bars[i]

	trace := types.DecisionTrace{
		Index:       i,
		Time:        bar.Time,
		Symbol:      b.config.Symbol,
		Signal:      types.DirectionFlat,
		StateBefore: state.Direction(),
		Volatility:  optional.None[float64](),
		StopLevel:   optional.None[float64](),
		Filters:     map[string]bool{},
		Final:       types.DecisionWait,
	}

	if state.Halted() {
		point := state.mark(i, bar)
		trace.Filters[types.FilterHalted] = true
		trace.StateAfter = types.DirectionFlat
		trace.Equity = point.Equity
		trace.Realized = point.Realized

		return trace, nil
	}

	vol := state.updateVolatility(bar)
	trace.Volatility = vol
	trace.Filters[types.FilterVolatilityReady] = vol.IsSome()

	stopped, err := state.checkStop(bar, vol, &trace)
	if err != nil {
		return trace, err
	}

	if !stopped {
		signal, err := strat.Signal(bars[:i+1])
		if err != nil {
			return trace, errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed at bar %d", strat.Name(), i)
		}

		trace.Signal = signal

		if err := state.applySignal(bar, signal, vol, &trace); err != nil {
			return trace, err
		}
	}

	state.mark(i, bar)

	if err := state.guard(i, bar, &trace); err != nil {
		return trace, err
	}

	point := state.equity[len(state.equity)-1]
	trace.StateAfter = state.Direction()
	trace.StopLevel = state.risk.TrailingStop()
	trace.Equity = point.Equity
	trace.Realized = point.Realized
	trace.Final = finalDecision(trace.Fills)

	return trace, nil
}

// finalDecision maps the last fill of a bar to BUY/SELL. A bar without fills waits.
func finalDecision(fills []types.Trade) types.Decision {
	if len(fills) == 0 {
		return types.DecisionWait
	}

	last := fills[len(fills)-1]

	if last.Action == types.TradeActionOpen {
		return types.DecisionFor(last.Side.Direction())
	}

	// closing a long sells, closing a short buys
	return types.DecisionFor(-last.Side.Direction())
}

