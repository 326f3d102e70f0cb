// Package mockserver provides a mock Binance klines endpoint for testing.
// It serves a fixed candle history per symbol with the paging behavior of
// GET /api/v3/klines.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/ema-cross/internal/types"
)

const (
	defaultLimit = 500
	maxLimit     = 1000
)

// KlinesRequest is a request received by the server.
type KlinesRequest struct {
	Symbol   string
	Interval string
	EndTime  int64
	Limit    int
}

// MockBinanceServer serves klines from in-memory candle histories.
type MockBinanceServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener

	candles  map[string][]types.Candle
	failures map[string]int
	requests []KlinesRequest
}

// NewMockBinanceServer creates a server with no symbols.
func NewMockBinanceServer() *MockBinanceServer {
	return &MockBinanceServer{
		candles:  make(map[string][]types.Candle),
		failures: make(map[string]int),
		requests: make([]KlinesRequest, 0),
	}
}

// SetCandles replaces the history of a symbol. Candles must be oldest first.
func (s *MockBinanceServer) SetCandles(symbol string, candles []types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.candles[symbol] = append([]types.Candle(nil), candles...)
}

// SetFailure makes every klines request for symbol answer with status.
func (s *MockBinanceServer) SetFailure(symbol string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[symbol] = status
}

// Requests returns the klines requests received so far.
func (s *MockBinanceServer) Requests() []KlinesRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]KlinesRequest(nil), s.requests...)
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockBinanceServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/api/v3/klines", s.handleKlines).Methods("GET")

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server.
func (s *MockBinanceServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *MockBinanceServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the base URL for the server.
func (s *MockBinanceServer) BaseURL() string {
	return "http://" + s.Address()
}

// handleKlines handles GET /api/v3/klines
func (s *MockBinanceServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	symbol := query.Get("symbol")
	interval := query.Get("interval")

	if symbol == "" || interval == "" {
		writeError(w, http.StatusBadRequest, -1102, "Mandatory parameter was not sent.")

		return
	}

	width := parseInterval(interval)
	if width == 0 {
		writeError(w, http.StatusBadRequest, -1120, "Invalid interval.")

		return
	}

	endTime := time.Now().UnixMilli()
	if v := query.Get("endTime"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, -1100, "Illegal characters found in parameter 'endTime'.")

			return
		}
		endTime = ms
	}

	limit := defaultLimit
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, -1100, "Illegal characters found in parameter 'limit'.")

			return
		}
		limit = min(n, maxLimit)
	}

	s.mu.Lock()
	s.requests = append(s.requests, KlinesRequest{Symbol: symbol, Interval: interval, EndTime: endTime, Limit: limit})
	status, failing := s.failures[symbol]
	candles, known := s.candles[symbol]
	s.mu.Unlock()

	if failing {
		writeError(w, status, -1003, "Too many requests.")

		return
	}

	if !known {
		writeError(w, http.StatusBadRequest, -1121, "Invalid symbol.")

		return
	}

	// newest `limit` candles opened at or before endTime, oldest first
	last := len(candles)
	for last > 0 && candles[last-1].Time.UnixMilli() > endTime {
		last--
	}
	first := max(0, last-limit)

	// Binance kline format: [openTime, open, high, low, close, volume, closeTime, ...]
	klines := make([][]any, 0, last-first)
	for _, c := range candles[first:last] {
		klines = append(klines, []any{
			c.Time.UnixMilli(),
			strconv.FormatFloat(c.Open, 'f', 8, 64),
			strconv.FormatFloat(c.High, 'f', 8, 64),
			strconv.FormatFloat(c.Low, 'f', 8, 64),
			strconv.FormatFloat(c.Close, 'f', 8, 64),
			strconv.FormatFloat(c.Volume, 'f', 8, 64),
			c.Time.Add(width).UnixMilli() - 1,
			"0",
			0,
			"0",
			"0",
			"0",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(klines) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg}) //nolint:errcheck
}

// parseInterval parses a Binance interval string to a duration.
func parseInterval(interval string) time.Duration {
	if len(interval) < 2 {
		return 0
	}

	numStr := interval[:len(interval)-1]
	unit := interval[len(interval)-1:]

	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0
	}

	switch unit {
	case "m":
		return time.Duration(num) * time.Minute
	case "h":
		return time.Duration(num) * time.Hour
	case "d":
		return time.Duration(num) * 24 * time.Hour
	case "w":
		return time.Duration(num) * 7 * 24 * time.Hour
	default:
		return 0
	}
}
