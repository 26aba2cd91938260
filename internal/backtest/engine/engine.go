package engine

import (
	"github.com/rxtech-lab/forest/internal/strategy"
	"github.com/rxtech-lab/forest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called before the first bar of a run.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, symbol string, strategyName string, totalBars int) error

// OnRunEndCallback is called when a run ends, with the run error if any (always called via defer).
type OnRunEndCallback func(runID string, result types.BacktestResult, err error)

// OnProcessDataCallback is called for each bar processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
}

// Observer receives the decision trace of every bar, synchronously and in bar order.
type Observer interface {
	OnBar(trace types.DecisionTrace)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(trace types.DecisionTrace)

func (f ObserverFunc) OnBar(trace types.DecisionTrace) {
	f(trace)
}

// Observers fans a trace out to several observers in order.
type Observers []Observer

func (o Observers) OnBar(trace types.DecisionTrace) {
	for _, observer := range o {
		if observer != nil {
			observer.OnBar(trace)
		}
	}
}

type Engine interface {
	// Run replays bars through the strategy and returns the trades and equity series.
	// Bars must be sorted strictly increasing in time.
	Run(bars []types.Bar, strategy strategy.Strategy) (types.BacktestResult, error)
	// SetObserver installs the decision trace observer. nil disables tracing.
	SetObserver(observer Observer)
	// SetCallbacks installs the lifecycle callbacks used by the following runs.
	SetCallbacks(callbacks LifecycleCallbacks)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
