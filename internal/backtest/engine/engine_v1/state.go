package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/indicator"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/shopspring/decimal"
)

// BacktestState is the FLAT/LONG/SHORT state machine of a single run.
// A fresh state is built for every run.
type BacktestState struct {
	config     BacktestEngineV1Config
	risk       *RiskEngine
	ledger     *TradeLedger
	volatility indicator.Indicator

	position optional.Option[types.Position]
	equity   []types.EquityPoint

	breached bool
	halted   bool
	haltedAt int
}

func NewBacktestState(config BacktestEngineV1Config, risk *RiskEngine, ledger *TradeLedger, volatility indicator.Indicator) *BacktestState {
	return &BacktestState{
		config:     config,
		risk:       risk,
		ledger:     ledger,
		volatility: volatility,
		position:   optional.None[types.Position](),
		equity:     nil,
		breached:   false,
		halted:     false,
		haltedAt:   -1,
	}
}

// Direction is the current engine state.
func (s *BacktestState) Direction() types.Direction {
	if s.position.IsNone() {
		return types.DirectionFlat
	}

	return s.position.Unwrap().Side.Direction()
}

func (s *BacktestState) Position() optional.Option[types.Position] {
	return s.position
}

func (s *BacktestState) Halted() bool {
	return s.halted
}

// updateVolatility feeds the bar to the volatility estimator. Non-positive
// readings count as not ready.
func (s *BacktestState) updateVolatility(bar types.Bar) optional.Option[float64] {
	value := s.volatility.Update(bar)
	if value.IsSome() && (value.Unwrap() <= 0 || !finite(value.Unwrap())) {
		return optional.None[float64]()
	}

	return value
}

// checkStop ratchets the trailing stop and closes the position when the close
// crosses it. It reports whether the position was stopped out.
func (s *BacktestState) checkStop(bar types.Bar, vol optional.Option[float64], trace *types.DecisionTrace) (bool, error) {
	if s.position.IsNone() {
		return false, nil
	}

	side := s.position.Unwrap().Side

	if vol.IsSome() {
		s.risk.UpdateTrailingStop(side, bar.Close, vol.Unwrap(), s.config.TrailingStopMultiple)
		s.syncStop()
	}

	hit := s.risk.TrailingStopHit(side, bar.Close)
	trace.Filters[types.FilterStopHit] = hit

	if !hit {
		return false, nil
	}

	if err := s.close(bar, types.TradeReasonTrailingStop, trace); err != nil {
		return false, err
	}

	return true, nil
}

// applySignal reverses or opens the position toward signal.
func (s *BacktestState) applySignal(bar types.Bar, signal types.Direction, vol optional.Option[float64], trace *types.DecisionTrace) error {
	current := s.Direction()

	if signal == types.DirectionFlat {
		if s.config.ExitOnFlat && current != types.DirectionFlat {
			return s.close(bar, types.TradeReasonFlatSignal, trace)
		}

		return nil
	}

	if signal == current {
		return nil
	}

	if current != types.DirectionFlat {
		if err := s.close(bar, types.TradeReasonSignal, trace); err != nil {
			return err
		}
	}

	return s.open(bar, types.SideFor(signal), vol, trace)
}

func (s *BacktestState) open(bar types.Bar, side types.Side, vol optional.Option[float64], trace *types.DecisionTrace) error {
	quantity := 0.0
	if vol.IsSome() {
		quantity = s.risk.PositionSize(vol.Unwrap(), s.config.RiskFraction, s.config.AtrMultiple)
	}

	trace.Filters[types.FilterSizeOK] = quantity > 0
	if quantity <= 0 {
		return nil
	}

	cost := s.risk.TransactionCost(quantity, bar.Close)
	s.risk.RecordRealized(-cost)

	trade := types.Trade{
		Time:     bar.Time,
		Price:    bar.Close,
		Quantity: quantity,
		Side:     side,
		Action:   types.TradeActionOpen,
		Reason:   types.TradeReasonSignal,
		Cost:     cost,
		GrossPnL: 0,
		PnL:      -cost,
	}

	if err := s.ledger.Append(trade); err != nil {
		return err
	}

	s.risk.ResetTrailingStop()

	if vol.IsSome() {
		s.risk.UpdateTrailingStop(side, bar.Close, vol.Unwrap(), s.config.TrailingStopMultiple)
	}

	s.position = optional.Some(types.Position{
		Side:       side,
		Quantity:   quantity,
		EntryPrice: bar.Close,
		EntryTime:  bar.Time,
		StopLevel:  s.risk.TrailingStop(),
	})

	trace.Fills = append(trace.Fills, trade)

	return nil
}

func (s *BacktestState) close(bar types.Bar, reason types.TradeReason, trace *types.DecisionTrace) error {
	if s.position.IsNone() {
		return nil
	}

	position := s.position.Unwrap()

	gross, _ := decimal.NewFromFloat(bar.Close).
		Sub(decimal.NewFromFloat(position.EntryPrice)).
		Mul(decimal.NewFromFloat(position.Side.Sign() * position.Quantity)).
		Float64()
	cost := s.risk.TransactionCost(position.Quantity, bar.Close)
	net := gross - cost

	s.risk.RecordRealized(net)

	trade := types.Trade{
		Time:     bar.Time,
		Price:    bar.Close,
		Quantity: position.Quantity,
		Side:     position.Side,
		Action:   types.TradeActionClose,
		Reason:   reason,
		Cost:     cost,
		GrossPnL: gross,
		PnL:      net,
	}

	if err := s.ledger.Append(trade); err != nil {
		return err
	}

	s.risk.ResetTrailingStop()
	s.position = optional.None[types.Position]()

	if trace != nil {
		trace.Fills = append(trace.Fills, trade)
	}

	return nil
}

func (s *BacktestState) syncStop() {
	if s.position.IsNone() {
		return
	}

	position := s.position.Unwrap()
	position.StopLevel = s.risk.TrailingStop()
	s.position = optional.Some(position)
}

// mark writes the equity point of bar i. Writing the same index again replaces it.
func (s *BacktestState) mark(i int, bar types.Bar) types.EquityPoint {
	realized := s.risk.Equity()
	equity := realized

	if s.position.IsSome() {
		equity += s.position.Unwrap().Unrealized(bar.Close)
	}

	point := types.EquityPoint{
		Index:    i,
		Time:     bar.Time,
		Equity:   equity,
		Realized: realized,
	}

	if n := len(s.equity); n > 0 && s.equity[n-1].Index == i {
		s.equity[n-1] = point
	} else {
		s.equity = append(s.equity, point)
	}

	return point
}

// guard applies the drawdown policy after the bar has been marked.
func (s *BacktestState) guard(i int, bar types.Bar, trace *types.DecisionTrace) error {
	exceeded := s.risk.DrawdownExceeded()
	trace.Filters[types.FilterDrawdown] = exceeded

	if !exceeded {
		return nil
	}

	s.breached = true

	if s.config.DrawdownPolicy != DrawdownPolicyHalt {
		return nil
	}

	if err := s.close(bar, types.TradeReasonDrawdownHalt, trace); err != nil {
		return err
	}

	s.mark(i, bar)
	s.halted = true
	s.haltedAt = i
	trace.Filters[types.FilterHalted] = true

	return nil
}

// finish closes any position still open at the last bar and rewrites its mark.
func (s *BacktestState) finish(bars []types.Bar) (optional.Option[types.Trade], error) {
	if s.position.IsNone() || len(bars) == 0 {
		return optional.None[types.Trade](), nil
	}

	last := len(bars) - 1
	trace := types.DecisionTrace{}

	if err := s.close(bars[last], types.TradeReasonEndOfData, &trace); err != nil {
		return optional.None[types.Trade](), err
	}

	s.mark(last, bars[last])

	return optional.Some(trace.Fills[0]), nil
}

// Result builds the run output from the current state.
func (s *BacktestState) Result(symbol, strategyName string) types.BacktestResult {
	equity := make([]types.EquityPoint, len(s.equity))
	copy(equity, s.equity)

	ending := s.risk.Equity()
	if n := len(equity); n > 0 {
		ending = equity[n-1].Equity
	}

	return types.BacktestResult{
		Symbol:           symbol,
		StrategyName:     strategyName,
		InitialCapital:   s.risk.InitialCapital(),
		Trades:           s.ledger.Trades(),
		Equity:           equity,
		RealizedEquity:   s.ledger.RealizedEquitySeries(),
		EndingEquity:     ending,
		MaxDrawdown:      s.ledger.MaxDrawdown(),
		MaxDrawdownPct:   types.MaxDrawdownPct(s.risk.InitialCapital(), types.Values(equity)),
		DrawdownBreached: s.breached,
		Halted:           s.halted,
		HaltedAt:         s.haltedAt,
	}
}
