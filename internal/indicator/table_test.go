package indicator

import (
	"testing"

	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TableTestSuite struct {
	suite.Suite
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableTestSuite))
}

func (suite *TableTestSuite) buildTable() IndicatorTable {
	candles := candlesFromCloses(10, 10, 10, 12, 14, 16, 18, 20)
	table := NewIndicatorTable(candles)

	slow, err := ComputeEMA(candles, 3)
	suite.Require().NoError(err)
	fast, err := ComputeEMA(candles, 2)
	suite.Require().NoError(err)

	table, err = table.WithSeries(slow)
	suite.Require().NoError(err)
	table, err = table.WithSeries(fast)
	suite.Require().NoError(err)

	return table
}

func (suite *TableTestSuite) TestColumns() {
	table := suite.buildTable()
	suite.Equal(8, table.Len())
	suite.Equal([]string{"ema_3", "ema_2"}, table.SeriesNames())

	byPeriod := table.SeriesByPeriod()
	suite.Equal(2, byPeriod[0].Period)
	suite.Equal(3, byPeriod[1].Period)

	closes, err := table.Column(ColumnClose)
	suite.NoError(err)
	suite.Equal(20.0, closes[7])

	highs, err := table.Column(ColumnHigh)
	suite.NoError(err)
	suite.Equal(20.5, highs[7])

	ema, err := table.Column("ema_3")
	suite.NoError(err)
	suite.Equal(0.0, ema[0])
	suite.Equal(18.0, ema[7])

	_, err = table.Column("ema_99")
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))
}

func (suite *TableTestSuite) TestWithSeriesDoesNotMutate() {
	candles := candlesFromCloses(1, 2, 3, 4)
	base := NewIndicatorTable(candles)

	ema, err := ComputeEMA(candles, 2)
	suite.Require().NoError(err)

	next, err := base.WithSeries(ema)
	suite.Require().NoError(err)
	suite.Empty(base.SeriesNames())
	suite.Equal([]string{"ema_2"}, next.SeriesNames())

	// replacing keeps a single column
	again, err := next.WithSeries(ema)
	suite.Require().NoError(err)
	suite.Equal([]string{"ema_2"}, again.SeriesNames())
}

func (suite *TableTestSuite) TestWithSeriesLengthMismatch() {
	table := NewIndicatorTable(candlesFromCloses(1, 2, 3))
	_, err := table.WithSeries(Series{Name: "ema_1", Period: 1})
	suite.True(errors.HasCode(err, errors.ErrCodeLengthMismatch))
}

func (suite *TableTestSuite) TestColumnCrossovers() {
	table := suite.buildTable()

	// close vs ema_3: close is above from index 0 (ema reads 0.0) onwards
	crossovers, err := table.ColumnCrossovers(ColumnClose, "ema_3")
	suite.Require().NoError(err)
	suite.Empty(crossovers.Events())

	crossovers, err = table.ColumnCrossovers("ema_2", "ema_3")
	suite.Require().NoError(err)
	suite.Equal([]int{2}, crossovers.Events())

	_, err = table.ColumnCrossovers("missing", ColumnClose)
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))
}
