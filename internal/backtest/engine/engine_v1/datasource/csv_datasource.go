package datasource

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"go.uber.org/zap"
)

var csvTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// csvTime accepts RFC 3339, the common space separated layouts and Unix
// seconds or milliseconds. Values that do not parse decode to the zero time
// and the row is dropped.
type csvTime struct {
	time.Time
}

func (t *csvTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)

	for _, layout := range csvTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed.UTC()

			return nil
		}
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		// 13 digit values are milliseconds
		if n > 1e12 {
			t.Time = time.UnixMilli(n).UTC()
		} else {
			t.Time = time.Unix(n, 0).UTC()
		}

		return nil
	}

	t.Time = time.Time{}

	return nil
}

type csvRow struct {
	Time   csvTime `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume,omitempty"`
}

// CSVDataSource loads an OHLCV CSV file with a header row
// (time, open, high, low, close, optional volume) into memory.
type CSVDataSource struct {
	logger *logger.Logger
	bars   []types.Bar
}

func NewCSVDataSource(log *logger.Logger) *CSVDataSource {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CSVDataSource{logger: log}
}

// Initialize implements DataSource.
func (c *CSVDataSource) Initialize(path string) error {
	c.logger.Debug("Initializing CSV data source", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse CSV file %s", path)
	}

	bars := make([]types.Bar, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		if row.Time.IsZero() {
			dropped++

			continue
		}

		bars = append(bars, types.Bar{
			Time:   row.Time.Time,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	c.bars = NormalizeBars(bars)

	c.logger.Debug("Loaded CSV bars",
		zap.String("path", path),
		zap.Int("bars", len(c.bars)),
		zap.Int("dropped", dropped),
	)

	return nil
}

// ReadAll implements DataSource.
func (c *CSVDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range c.bars {
			if !inWindow(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (c *CSVDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	return len(FilterRange(c.bars, start, end)), nil
}

// Close implements DataSource.
func (c *CSVDataSource) Close() error {
	c.bars = nil

	return nil
}
