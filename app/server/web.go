package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"github.com/oarkflow/stockbt/app/models"
	"github.com/oarkflow/stockbt/config"
	"github.com/oarkflow/stockbt/stock"
)

// JSONError is json error massage
type JSONError struct {
	Error string `json:"error"`
}

func errorAPI(w http.ResponseWriter, message string, code int) {
	jsonMessage, err := json.Marshal(JSONError{Error: message})
	if err != nil {
		logrus.Warnf("error message create error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonMessage)
}

func writeJSON(w http.ResponseWriter, v any) {
	js, err := json.Marshal(v)
	if err != nil {
		logrus.Warnf("json encode error: %v", err)
		errorAPI(w, "json encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}

// parseDate accepts any layout dateparse knows; empty is the zero time
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(value)
}

// Server serves bars and backtests from a bar provider
type Server struct {
	Bars stock.Provider
}

// New returns a server reading bars from provider
func New(provider stock.Provider) *Server {
	return &Server{Bars: provider}
}

// CandlesResponse is the body of /candles
type CandlesResponse struct {
	Symbol   string     `json:"symbol"`
	Exchange string     `json:"exchange,omitempty"`
	Bars     stock.Bars `json:"bars"`
}

// CandleGetAPIHandler returns stored bars,
// when path is "/candles?symbol=&exchange=&start=&end="
func (s *Server) CandleGetAPIHandler(w http.ResponseWriter, req *http.Request) {
	logrus.Infof("candle get request: url -> %s", req.URL)

	query := req.URL.Query()
	symbol := query.Get("symbol")
	if symbol == "" {
		errorAPI(w, "bad parameter(symbol)", http.StatusBadRequest)
		return
	}
	start, err := parseDate(query.Get("start"))
	if err != nil {
		errorAPI(w, "bad parameter(start)", http.StatusBadRequest)
		return
	}
	end, err := parseDate(query.Get("end"))
	if err != nil {
		errorAPI(w, "bad parameter(end)", http.StatusBadRequest)
		return
	}

	bars, err := s.Bars.FetchBars(req.Context(), symbol, query.Get("exchange"), start, end)
	if errors.Is(err, stock.ErrNoData) {
		errorAPI(w, fmt.Sprintf("no candles, symbol: %v", symbol), http.StatusNotFound)
		return
	}
	if err != nil {
		logrus.Warnf("candle get error: %v", err)
		errorAPI(w, "candle get error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, CandlesResponse{Symbol: symbol, Exchange: query.Get("exchange"), Bars: bars})
}

// BacktestRequest is the body of /backtest
type BacktestRequest struct {
	Instruments    string                `json:"instruments"`
	Start          string                `json:"start"`
	End            string                `json:"end"`
	Strategy       models.StrategyConfig `json:"strategy"`
	InitialCapital float64               `json:"initial_capital"`
	Costs          models.Costs          `json:"costs"`
}

// BacktestResponse is the result of /backtest
type BacktestResponse struct {
	RunID       string                      `json:"run_id"`
	Strategy    string                      `json:"strategy"`
	FinalEquity float64                     `json:"final_equity"`
	Trades      []models.ClosedTrade        `json:"trades"`
	Open        map[string]*models.Position `json:"open"`
	Equity      []models.EquityPoint        `json:"equity"`
	Summaries   []models.TradeSummary       `json:"summaries"`
}

// BacktestAPIHandler parses the strategy, loads the universe and runs it,
// when path is "/backtest"
func (s *Server) BacktestAPIHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		errorAPI(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logrus.Info("backtest request")

	var body BacktestRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		logrus.Warnf("backtest params error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest params error: %v", err), http.StatusBadRequest)
		return
	}

	strategy, err := models.NewStrategy(body.Strategy)
	if err != nil {
		errorAPI(w, fmt.Sprintf("strategy error: %v", err), http.StatusBadRequest)
		return
	}
	start, err := parseDate(body.Start)
	if err != nil {
		errorAPI(w, "bad parameter(start)", http.StatusBadRequest)
		return
	}
	end, err := parseDate(body.End)
	if err != nil {
		errorAPI(w, "bad parameter(end)", http.StatusBadRequest)
		return
	}
	universe := stock.ParseInstruments(body.Instruments)
	if len(universe) == 0 {
		errorAPI(w, "bad parameter(instruments)", http.StatusBadRequest)
		return
	}

	instruments, err := models.LoadInstruments(req.Context(), s.Bars, universe, start, end, strategy)
	if err != nil {
		logrus.Warnf("backtest load error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest load error: %v", err), http.StatusInternalServerError)
		return
	}
	if len(instruments) == 0 {
		errorAPI(w, "no candles for instruments", http.StatusNotFound)
		return
	}

	bt := &models.Backtest{
		Strategy: strategy,
		Settings: models.Settings{InitialCapital: body.InitialCapital, Costs: body.Costs, Start: start, End: end},
	}
	result, err := bt.Run(req.Context(), instruments)
	if err != nil {
		logrus.Warnf("backtest error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest error: %v", err), http.StatusUnprocessableEntity)
		return
	}

	p := result.Portfolio
	writeJSON(w, BacktestResponse{
		RunID:       result.RunID,
		Strategy:    result.Strategy,
		FinalEquity: result.FinalEquity(),
		Trades:      p.Trades,
		Open:        p.Positions,
		Equity:      p.Equity,
		Summaries:   p.Summaries(),
	})
}

// Handler routes /candles and /backtest
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/candles", s.CandleGetAPIHandler)
	mux.HandleFunc("/backtest", s.BacktestAPIHandler)
	return mux
}

// Run starts webserver
func (s *Server) Run() error {
	logrus.Infof("server start: port %d", config.Config.Port)
	return http.ListenAndServe(fmt.Sprintf(":%d", config.Config.Port), s.Handler())
}
