package engine

import (
	"github.com/rxtech-lab/forest/internal/backtest/engine"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogObserver writes every decision trace to a zap logger. Bars with fills are
// logged at info level, the rest at debug level.
type LogObserver struct {
	logger *logger.Logger
}

var _ engine.Observer = (*LogObserver)(nil)

func NewLogObserver(log *logger.Logger) *LogObserver {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &LogObserver{logger: log}
}

// OnBar implements engine.Observer.
func (o *LogObserver) OnBar(trace types.DecisionTrace) {
	level := zapcore.DebugLevel
	if len(trace.Fills) > 0 {
		level = zapcore.InfoLevel
	}

	if ce := o.logger.Check(level, "Bar processed"); ce != nil {
		ce.Write(traceFields(trace)...)
	}
}

func traceFields(trace types.DecisionTrace) []zap.Field {
	fields := []zap.Field{
		zap.Int("index", trace.Index),
		zap.Time("time", trace.Time),
		zap.String("symbol", trace.Symbol),
		zap.Stringer("signal", trace.Signal),
		zap.Stringer("state_before", trace.StateBefore),
		zap.Stringer("state_after", trace.StateAfter),
		zap.String("final", string(trace.Final)),
		zap.Any("filters", trace.Filters),
		zap.Float64("equity", trace.Equity),
		zap.Float64("realized", trace.Realized),
	}

	if trace.Volatility.IsSome() {
		fields = append(fields, zap.Float64("volatility", trace.Volatility.Unwrap()))
	}

	if trace.StopLevel.IsSome() {
		fields = append(fields, zap.Float64("stop", trace.StopLevel.Unwrap()))
	}

	if len(trace.Fills) > 0 {
		fills := make([]tradeMarshaler, len(trace.Fills))
		for i, fill := range trace.Fills {
			fills[i] = tradeMarshaler(fill)
		}

		fields = append(fields, zap.Objects("fills", fills))
	}

	return fields
}

type tradeMarshaler types.Trade

func (t tradeMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("action", string(t.Action))
	enc.AddString("side", string(t.Side))
	enc.AddString("reason", string(t.Reason))
	enc.AddFloat64("price", t.Price)
	enc.AddFloat64("quantity", t.Quantity)
	enc.AddFloat64("cost", t.Cost)
	enc.AddFloat64("pnl", t.PnL)

	return nil
}
