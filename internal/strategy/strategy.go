package strategy

import "github.com/rxtech-lab/forest/internal/types"

// Strategy turns a price history into a directional vote for its last bar.
//
// history holds every bar up to and including the current one. Implementations
// must be causal: the vote for bar i may depend only on history[:i+1]. They may
// keep incremental state between calls, but the result must equal a
// recomputation over the prefix, and a shorter history than the previous call
// starts a new series.
type Strategy interface {
	// Name returns the name of the strategy
	Name() string
	// Signal returns the vote for the last bar of history.
	Signal(history []types.Bar) (types.Direction, error)
}
