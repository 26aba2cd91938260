package grid

import (
	"context"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/backtest/engine"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/strategy"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/internal/version"
	"github.com/rxtech-lab/forest/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh engine and strategy for one grid point.
type Factory func(params Params) (engine.Engine, strategy.Strategy, error)

// Fingerprint describes the complete run built for params. Runs with equal
// fingerprints over equal bars share a cache entry.
type Fingerprint func(params Params) (string, error)

// OnProgressCallback is called after every finished run, cached or not.
type OnProgressCallback func(done int, total int)

// Record is the summary of one grid run.
type Record struct {
	RunID              string    `yaml:"run_id"`
	Params             Params    `yaml:"params"`
	Strategy           string    `yaml:"strategy"`
	InitialCapital     float64   `yaml:"initial_capital"`
	EquityEnd          float64   `yaml:"equity_end"`
	MaxDrawdown        float64   `yaml:"max_dd"`
	ReturnOverDrawdown float64   `yaml:"rar"`
	Trades             int       `yaml:"trades"`
	Halted             bool      `yaml:"halted"`
	Version            string    `yaml:"version"`
	CreatedAt          time.Time `yaml:"created_at"`
	Cached             bool      `yaml:"-"`
}

// ReturnOverDrawdown is (equity_end - capital) / max_dd, dividing by 1 when
// there was no drawdown.
func ReturnOverDrawdown(result types.BacktestResult) float64 {
	denominator := result.MaxDrawdown
	if denominator == 0 {
		denominator = 1
	}

	return (result.EndingEquity - result.InitialCapital) / denominator
}

// NewRecord summarizes a result.
func NewRecord(params Params, result types.BacktestResult) Record {
	return Record{
		RunID:              uuid.New().String(),
		Params:             params,
		Strategy:           result.StrategyName,
		InitialCapital:     result.InitialCapital,
		EquityEnd:          result.EndingEquity,
		MaxDrawdown:        result.MaxDrawdown,
		ReturnOverDrawdown: ReturnOverDrawdown(result),
		Trades:             len(result.Trades),
		Halted:             result.Halted,
		Version:            version.GetVersion(),
		CreatedAt:          time.Now().UTC(),
	}
}

// Runner executes every point of a grid over the same bars.
type Runner struct {
	factory     Factory
	fingerprint Fingerprint
	cache       Cache
	workers     int
	log         *logger.Logger
	progress    *OnProgressCallback
}

func NewRunner(factory Factory) *Runner {
	return &Runner{
		factory:     factory,
		fingerprint: nil,
		cache:       nil,
		workers:     runtime.NumCPU(),
		log:         logger.NewNopLogger(),
		progress:    nil,
	}
}

// SetFingerprint sets how runs are identified in the cache. Without one only
// the params are keyed, which is correct only when nothing else varies
// between runs sharing the cache.
func (r *Runner) SetFingerprint(fingerprint Fingerprint) {
	r.fingerprint = fingerprint
}

// SetCache installs a result cache. nil disables caching.
func (r *Runner) SetCache(cache Cache) {
	r.cache = cache
}

// SetWorkers limits concurrent runs. Values below 1 mean one worker.
func (r *Runner) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}

	r.workers = workers
}

func (r *Runner) SetLogger(log *logger.Logger) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	r.log = log
}

func (r *Runner) SetProgress(progress *OnProgressCallback) {
	r.progress = progress
}

// Run executes every combination and returns the records in combination order.
// The first failing run cancels the rest.
func (r *Runner) Run(ctx context.Context, bars []types.Bar, combinations []Params) ([]Record, error) {
	if len(combinations) == 0 {
		return nil, errors.New(errors.ErrCodeGridEmpty, "parameter grid has no combinations")
	}

	if r.factory == nil {
		return nil, errors.New(errors.ErrCodeBacktestInitFailed, "grid runner has no factory")
	}

	barsHash := HashBars(bars)
	records := make([]Record, len(combinations))
	total := len(combinations)

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	r.log.Info("Running parameter grid",
		zap.Int("combinations", total),
		zap.Int("workers", r.workers),
		zap.Int("bars", len(bars)),
	)

	for i, params := range combinations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			record, err := r.runOne(barsHash, bars, params)
			if err != nil {
				return err
			}

			records[i] = record

			mu.Lock()
			done++
			if r.progress != nil {
				(*r.progress)(done, total)
			}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.GetCode(err) == errors.ErrCodeUnknown {
			return nil, errors.Wrap(errors.ErrCodeGridRunFailed, "parameter grid aborted", err)
		}

		return nil, err
	}

	return records, nil
}

func (r *Runner) runOne(barsHash uint64, bars []types.Bar, params Params) (Record, error) {
	fingerprint := params.Canonical()
	if r.fingerprint != nil {
		var err error

		fingerprint, err = r.fingerprint(params)
		if err != nil {
			return Record{}, errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to resolve run for %s", params.Canonical())
		}
	}

	key := Key(barsHash, fingerprint)

	if r.cache != nil {
		record, ok, err := r.cache.Get(key)
		if err != nil {
			r.log.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			record.Cached = true

			return record, nil
		}
	}

	eng, strat, err := r.factory(params)
	if err != nil {
		return Record{}, errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to build run for %s", params.Canonical())
	}

	if closer, ok := strat.(io.Closer); ok {
		defer closer.Close()
	}

	result, err := eng.Run(bars, strat)
	if err != nil {
		return Record{}, errors.Wrapf(errors.ErrCodeGridRunFailed, err, "run failed for %s", params.Canonical())
	}

	record := NewRecord(params, result)

	r.log.Debug("Grid run finished",
		zap.String("params", params.Canonical()),
		zap.Float64("equity_end", record.EquityEnd),
		zap.Float64("max_dd", record.MaxDrawdown),
		zap.Float64("rar", record.ReturnOverDrawdown),
	)

	if r.cache != nil {
		if err := r.cache.Put(key, record); err != nil {
			r.log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return record, nil
}

// Rank orders records by return over drawdown, best first. Ties keep grid order.
func Rank(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReturnOverDrawdown > out[j].ReturnOverDrawdown
	})

	return out
}

// Best is the top ranked record, if any.
func Best(records []Record) optional.Option[Record] {
	if len(records) == 0 {
		return optional.None[Record]()
	}

	return optional.Some(Rank(records)[0])
}
