package models_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/oarkflow/stockbt/app/models"
	"github.com/oarkflow/stockbt/stock"
)

const testDB = "models_test.sqlite3"

type CandleStoreTestSuite struct {
	suite.Suite
	Store *models.CandleStore
	ctx   context.Context
}

func (suite *CandleStoreTestSuite) SetupSuite() {
	logrus.SetLevel(logrus.ErrorLevel)
	db, err := models.OpenDB(testDB)
	suite.Require().NoError(err)
	suite.Store = models.NewCandleStore(db)
	suite.ctx = context.Background()
}

func (suite *CandleStoreTestSuite) SetupTest() {
	bars := append(barsFrom("VOO", 0, 10, 11, 12, 13, 14), barsFrom("SPY", 2, 40, 41)...)
	// saved out of order on purpose
	bars[0], bars[4] = bars[4], bars[0]
	suite.Require().NoError(suite.Store.Save(suite.ctx, bars))
}

func (suite *CandleStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.Store.DeleteAll(suite.ctx))
}

func (suite *CandleStoreTestSuite) TearDownSuite() {
	os.Remove(testDB)
}

func (suite *CandleStoreTestSuite) TestFetchBars() {
	bars, err := suite.Store.FetchBars(suite.ctx, "VOO", "NYSE", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Equal([]float64{10, 11, 12, 13, 14}, bars.Closes())

	times := []int64{}
	for _, bar := range bars {
		times = append(times, bar.Date.Unix())
	}
	suite.IsIncreasing(times)
	suite.Equal(dayN(0), bars[0].Date)
	suite.Equal("NYSE", bars[0].Exchange)
}

func (suite *CandleStoreTestSuite) TestFetchBarsRange() {
	bars, err := suite.Store.FetchBars(suite.ctx, "VOO", "", dayN(1), dayN(3))
	suite.Require().NoError(err)
	suite.Equal([]float64{11, 12, 13}, bars.Closes())

	_, err = suite.Store.FetchBars(suite.ctx, "VOO", "NEPSE", time.Time{}, time.Time{})
	suite.ErrorIs(err, stock.ErrNoData)

	_, err = suite.Store.FetchBars(suite.ctx, "QQQ", "", time.Time{}, time.Time{})
	suite.ErrorIs(err, stock.ErrNoData)
}

func (suite *CandleStoreTestSuite) TestSaveReplaces() {
	suite.Require().NoError(suite.Store.Save(suite.ctx, barsFrom("VOO", 1, 21, 22)))

	bars, err := suite.Store.FetchBars(suite.ctx, "VOO", "NYSE", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Equal([]float64{10, 21, 22, 13, 14}, bars.Closes())
}

func (suite *CandleStoreTestSuite) TestCodesAndLastCandleTime() {
	codes, err := suite.Store.Codes(suite.ctx)
	suite.NoError(err)
	suite.Equal([]string{"SPY", "VOO"}, codes)

	last, err := suite.Store.LastCandleTime(suite.ctx, "SPY")
	suite.NoError(err)
	suite.Equal(dayN(3), last)

	_, err = suite.Store.LastCandleTime(suite.ctx, "QQQ")
	suite.Error(err)
}

func (suite *CandleStoreTestSuite) TestDeleteAll() {
	suite.NoError(suite.Store.DeleteAll(suite.ctx))

	codes, err := suite.Store.Codes(suite.ctx)
	suite.NoError(err)
	suite.Empty(codes)
}

func (suite *CandleStoreTestSuite) TestBacktestFromStore() {
	s := mustStrategy(suite.T(), models.StrategyConfig{EntryLong: "ABOVE(close, 11.5)", ExitLong: "ABOVE(close, 13.5)"})

	instruments, err := models.LoadInstruments(suite.ctx, suite.Store, stock.ParseInstruments("VOO:NYSE"), time.Time{}, time.Time{}, s)
	suite.Require().NoError(err)

	result, err := (&models.Backtest{Strategy: s, Settings: models.Settings{InitialCapital: 1200}}).Run(suite.ctx, instruments)
	suite.Require().NoError(err)
	suite.Require().Len(result.Portfolio.Trades, 1)
	suite.Equal(200.0, result.Portfolio.Trades[0].PnL)
}

func TestCandleStore(t *testing.T) {
	suite.Run(t, new(CandleStoreTestSuite))
}
