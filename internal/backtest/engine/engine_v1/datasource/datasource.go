package datasource

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
)

type DataSource interface {
	// Initialize initializes the data source with the given data path
	Initialize(path string) error
	// ReadAll yields the bars inside the optional window in time order
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars inside the optional window
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}

// LoadBars reads every bar of the window and returns them normalized.
func LoadBars(source DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range source.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return NormalizeBars(bars), nil
}

// Open picks a data source from the file extension and initializes it with path.
// CSV files are decoded in process; parquet files are read through DuckDB.
func Open(path string, log *logger.Logger) (DataSource, error) {
	var source DataSource

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		source = NewCSVDataSource(log)
	case ".parquet":
		duck, err := NewDuckDBDataSource(":memory:", log)
		if err != nil {
			return nil, err
		}

		source = duck
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported data file %s: expected .csv or .parquet", path)
	}

	if err := source.Initialize(path); err != nil {
		source.Close()

		return nil, err
	}

	return source, nil
}

// inWindow reports whether t lies inside the optional inclusive window.
func inWindow(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}

// FilterRange returns the bars inside the optional inclusive window.
func FilterRange(bars []types.Bar, start optional.Option[time.Time], end optional.Option[time.Time]) []types.Bar {
	if start.IsNone() && end.IsNone() {
		return bars
	}

	out := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if inWindow(bar.Time, start, end) {
			out = append(out, bar)
		}
	}

	return out
}
