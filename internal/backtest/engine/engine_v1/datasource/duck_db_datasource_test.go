package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	dir         string
	parquetPath string
	start       time.Time
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

// SetupTest writes ten one-minute bars to a parquet file.
func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	csvPath := filepath.Join(suite.dir, "bars.csv")
	content := "time,open,high,low,close,volume\n"

	for i := 0; i < 10; i++ {
		price := float64(100 + i)
		content += fmt.Sprintf("%s,%.1f,%.1f,%.1f,%.1f,%d\n",
			suite.start.Add(time.Duration(i)*time.Minute).Format("2006-01-02 15:04:05"),
			price, price+1, price-1, price+0.5, i+1)
	}

	suite.Require().NoError(os.WriteFile(csvPath, []byte(content), 0644))

	suite.parquetPath = filepath.Join(suite.dir, "bars.parquet")

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(`COPY (SELECT * FROM read_csv_auto('%s')) TO '%s' (FORMAT PARQUET)`, csvPath, suite.parquetPath))
	suite.Require().NoError(err)
}

func (suite *DuckDBDataSourceTestSuite) newSource(path string) *DuckDBDataSource {
	source, err := NewDuckDBDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(source.Initialize(path))
	suite.T().Cleanup(func() { source.Close() })

	return source
}

func (suite *DuckDBDataSourceTestSuite) TestReadAll() {
	source := suite.newSource(suite.parquetPath)

	bars, err := LoadBars(source, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 10)
	suite.True(bars[0].Time.Equal(suite.start))
	suite.Equal(100.5, bars[0].Close)
	suite.Equal(10.0, bars[9].Volume)
	suite.NoError(ValidateBars(bars))
}

func (suite *DuckDBDataSourceTestSuite) TestReadAllWindow() {
	source := suite.newSource(suite.parquetPath)

	from := suite.start.Add(2 * time.Minute)
	to := suite.start.Add(4 * time.Minute)

	bars, err := LoadBars(source, optional.Some(from), optional.Some(to))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.True(bars[0].Time.Equal(from))
	suite.True(bars[2].Time.Equal(to))

	count, err := source.Count(optional.Some(from), optional.Some(to))
	suite.NoError(err)
	suite.Equal(3, count)
}

func (suite *DuckDBDataSourceTestSuite) TestCSVThroughDuckDB() {
	source := suite.newSource(filepath.Join(suite.dir, "bars.csv"))

	count, err := source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(10, count)
}

func (suite *DuckDBDataSourceTestSuite) TestGetRangeAggregated() {
	source := suite.newSource(suite.parquetPath)

	bars, err := source.GetRange(suite.start, suite.start.Add(9*time.Minute), optional.Some(Interval5m))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	first := bars[0]
	suite.True(first.Time.Equal(suite.start))
	suite.Equal(100.0, first.Open)
	suite.Equal(105.0, first.High)
	suite.Equal(99.0, first.Low)
	suite.Equal(104.5, first.Close)
	suite.Equal(15.0, first.Volume)
}

func (suite *DuckDBDataSourceTestSuite) TestGetRangeRaw() {
	source := suite.newSource(suite.parquetPath)

	bars, err := source.GetRange(suite.start, suite.start.Add(time.Minute), optional.None[Interval]())
	suite.Require().NoError(err)
	suite.Len(bars, 2)

	_, err = source.GetRange(suite.start, suite.start, optional.Some(Interval("2w")))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))
}

func (suite *DuckDBDataSourceTestSuite) TestInitializeMissingFile() {
	source, err := NewDuckDBDataSource(":memory:", nil)
	suite.Require().NoError(err)
	defer source.Close()

	err = source.Initialize(filepath.Join(suite.dir, "missing.parquet"))
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DuckDBDataSourceTestSuite) TestOpenParquet() {
	source, err := Open(suite.parquetPath, nil)
	suite.Require().NoError(err)
	defer source.Close()

	count, err := source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(10, count)
}
