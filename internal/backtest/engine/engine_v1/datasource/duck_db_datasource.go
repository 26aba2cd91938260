package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/rxtech-lab/forest/pkg/errors"
	"go.uber.org/zap"
)

const marketDataView = "market_data"

// barColumns casts every price column so integer typed files scan into float64.
var barColumns = []string{
	"time",
	"CAST(open AS DOUBLE)",
	"CAST(high AS DOUBLE)",
	"CAST(low AS DOUBLE)",
	"CAST(close AS DOUBLE)",
	"CAST(COALESCE(volume, 0) AS DOUBLE)",
}

// DuckDBDataSource reads bars from a parquet or CSV file through an in-process
// DuckDB view named market_data.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource opens the DuckDB database at path (":memory:" for an
// ephemeral one). Initialize attaches the market data file.
func NewDuckDBDataSource(path string, log *logger.Logger) (*DuckDBDataSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS ` + marketDataView); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// CREATE VIEW cannot take a bound parameter for the file name.
	query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s('%s')`,
		marketDataView, reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to attach %s", path)
	}

	return nil
}

func (d *DuckDBDataSource) window(query squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return query
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.window(d.sq.Select("COUNT(*)").From(marketDataView), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		query, args, err := d.window(
			d.sq.Select(barColumns...).From(marketDataView),
			start, end,
		).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build read query", err))

			return
		}

		d.logger.Debug("Reading bars from DuckDB", zap.String("query", query))

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			bar, err := scanBar(rows)
			if err != nil {
				yield(types.Bar{}, err)

				return
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// GetRange returns the bars of the inclusive window, aggregated into interval
// buckets when one is given.
func (d *DuckDBDataSource) GetRange(start time.Time, end time.Time, interval optional.Option[Interval]) ([]types.Bar, error) {
	query, args, err := d.buildGetRangeQuery(start, end, interval)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	result := make([]types.Bar, 0, 1000)

	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return result, nil
}

func (d *DuckDBDataSource) buildGetRangeQuery(start time.Time, end time.Time, interval optional.Option[Interval]) (string, []interface{}, error) {
	window := optional.Some(start)
	until := optional.Some(end)

	if interval.IsNone() {
		query, args, err := d.window(
			d.sq.Select(barColumns...).From(marketDataView),
			window, until,
		).OrderBy("time ASC").ToSql()
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build range query", err)
		}

		return query, args, nil
	}

	minutes, err := getIntervalMinutes(interval.Unwrap())
	if err != nil {
		return "", nil, err
	}

	bucket := fmt.Sprintf("time_bucket(INTERVAL '%d minutes', time)", minutes)

	query, args, err := d.window(
		d.sq.Select(
			bucket+" AS bucket_time",
			"CAST(arg_min(open, time) AS DOUBLE)",
			"CAST(MAX(high) AS DOUBLE)",
			"CAST(MIN(low) AS DOUBLE)",
			"CAST(arg_max(close, time) AS DOUBLE)",
			"CAST(COALESCE(SUM(volume), 0) AS DOUBLE)",
		).From(marketDataView),
		window, until,
	).GroupBy("bucket_time").OrderBy("bucket_time ASC").ToSql()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build range query", err)
	}

	return query, args, nil
}

func scanBar(rows *sql.Rows) (types.Bar, error) {
	var bar types.Bar

	if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan row", err)
	}

	bar.Time = bar.Time.UTC()

	return bar, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
