package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
)

// InMemoryDataSource serves a fixed bar slice. Used by tests and by callers that
// already hold their bars.
type InMemoryDataSource struct {
	bars []types.Bar
}

func NewInMemoryDataSource(bars []types.Bar) *InMemoryDataSource {
	return &InMemoryDataSource{bars: NormalizeBars(bars)}
}

// Initialize implements DataSource. The path is ignored.
func (m *InMemoryDataSource) Initialize(path string) error {
	return nil
}

// ReadAll implements DataSource.
func (m *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range FilterRange(m.bars, start, end) {
			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (m *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	return len(FilterRange(m.bars, start, end)), nil
}

// Close implements DataSource.
func (m *InMemoryDataSource) Close() error {
	return nil
}
