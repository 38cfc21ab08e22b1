package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/oarkflow/stockbt/app/models"
	"github.com/oarkflow/stockbt/app/server"
	"github.com/oarkflow/stockbt/stock"
)

const testDB = "web_test.sqlite3"

func barsOf(code string, closes ...float64) stock.Bars {
	bars := make(stock.Bars, len(closes))
	for i, c := range closes {
		bars[i] = stock.Bar{
			Code:     code,
			Exchange: "NYSE",
			Date:     time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1000,
		}
	}
	return bars
}

type WebTestSuite struct {
	suite.Suite
	Store   *models.CandleStore
	Handler http.Handler
}

func (suite *WebTestSuite) SetupSuite() {
	logrus.SetLevel(logrus.ErrorLevel)
	db, err := models.OpenDB(testDB)
	suite.Require().NoError(err)
	suite.Store = models.NewCandleStore(db)
	suite.Handler = server.New(suite.Store).Handler()
}

func (suite *WebTestSuite) SetupTest() {
	bars := append(barsOf("VOO", 10, 12, 9, 9, 13), barsOf("SPY", 50, 51, 52, 53, 54)...)
	suite.Require().NoError(suite.Store.Save(context.Background(), bars))
}

func (suite *WebTestSuite) TearDownTest() {
	suite.Require().NoError(suite.Store.DeleteAll(context.Background()))
}

func (suite *WebTestSuite) TearDownSuite() {
	os.Remove(testDB)
}

func (suite *WebTestSuite) do(method, target string, body []byte) *http.Response {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	suite.Handler.ServeHTTP(recorder, req)
	return recorder.Result()
}

func (suite *WebTestSuite) TestCandleGetAPIHandler() {
	resp := suite.do("GET", "/candles?symbol=VOO&start=2022-01-04&end=2022-01-06", nil)
	suite.Equal(200, resp.StatusCode)
	suite.Equal("application/json", resp.Header.Get("Content-Type"))

	var body server.CandlesResponse
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	suite.Equal("VOO", body.Symbol)
	suite.Equal([]float64{12, 9, 9}, body.Bars.Closes())
}

func (suite *WebTestSuite) TestCandleGetAPIHandlerErrors() {
	resp := suite.do("GET", "/candles", nil)
	suite.Equal(400, resp.StatusCode)

	var jsonErr server.JSONError
	json.NewDecoder(resp.Body).Decode(&jsonErr)
	suite.Equal("bad parameter(symbol)", jsonErr.Error)

	suite.Equal(400, suite.do("GET", "/candles?symbol=VOO&start=someday", nil).StatusCode)
	suite.Equal(404, suite.do("GET", "/candles?symbol=QQQ", nil).StatusCode)
}

func (suite *WebTestSuite) TestBacktestAPIHandler() {
	req, _ := json.Marshal(server.BacktestRequest{
		Instruments:    "VOO:NYSE, QQQ:NYSE",
		InitialCapital: 1000,
		Strategy: models.StrategyConfig{
			Name:         "cross",
			EntryLong:    "CROSS_ABOVE(close, 11)",
			ExitLong:     "CROSS_BELOW(close, 11)",
			PositionSize: 1,
			MaxPositions: 1,
		},
	})

	resp := suite.do("POST", "/backtest", req)
	suite.Require().Equal(200, resp.StatusCode)

	var body server.BacktestResponse
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	suite.NotEmpty(body.RunID)
	suite.Equal("cross", body.Strategy)
	suite.Len(body.Equity, 5)
	suite.Require().Len(body.Trades, 1)
	suite.Equal(-249.0, body.Trades[0].PnL)
	suite.Contains(body.Open, "VOO")
	suite.Equal(751.0, body.FinalEquity)
	suite.Len(body.Summaries, 1)
}

func (suite *WebTestSuite) TestBacktestAPIHandlerErrors() {
	suite.Equal(405, suite.do("GET", "/backtest", nil).StatusCode)
	suite.Equal(400, suite.do("POST", "/backtest", []byte("{")).StatusCode)

	bad, _ := json.Marshal(server.BacktestRequest{
		Instruments:    "VOO",
		InitialCapital: 1000,
		Strategy:       models.StrategyConfig{EntryLong: "ABOVE(close, 1", ExitLong: "BELOW(close, 1)", PositionSize: 1, MaxPositions: 1},
	})
	suite.Equal(400, suite.do("POST", "/backtest", bad).StatusCode)

	missing, _ := json.Marshal(server.BacktestRequest{
		Instruments:    "QQQ",
		InitialCapital: 1000,
		Strategy:       models.StrategyConfig{EntryLong: "ABOVE(close, 1)", ExitLong: "BELOW(close, 1)", PositionSize: 1, MaxPositions: 1},
	})
	suite.Equal(404, suite.do("POST", "/backtest", missing).StatusCode)
}

func TestWeb(t *testing.T) {
	suite.Run(t, new(WebTestSuite))
}
