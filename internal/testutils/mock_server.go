package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockFrankfurterServer mimics the Frankfurter API for tests: latest,
// single-pair and historical range lookups, with failure injection and a
// request counter
type MockFrankfurterServer struct {
	Server *httptest.Server

	mu            sync.Mutex
	requestCount  int
	failRemaining int
	failStatus    int

	// Rates quoted against EUR as served by the mock
	rates map[string]float64
	date  string
}

// NewMockFrankfurterServer starts a mock upstream with canned EUR rates
func NewMockFrankfurterServer() *MockFrankfurterServer {
	mockServer := &MockFrankfurterServer{
		rates: map[string]float64{
			"USD": 1.11,
			"GBP": 0.86,
			"JPY": 163.2,
		},
		date:       "2025-08-22",
		failStatus: http.StatusInternalServerError,
	}
	mockServer.Server = httptest.NewServer(http.HandlerFunc(mockServer.handler))
	return mockServer
}

// URL returns the mock server base URL
func (mockServer *MockFrankfurterServer) URL() string {
	return mockServer.Server.URL
}

// Close shuts the mock server down
func (mockServer *MockFrankfurterServer) Close() {
	mockServer.Server.Close()
}

// RequestCount returns the number of requests received so far
func (mockServer *MockFrankfurterServer) RequestCount() int {
	mockServer.mu.Lock()
	defer mockServer.mu.Unlock()
	return mockServer.requestCount
}

// FailNext makes the next n requests answer with the given status
func (mockServer *MockFrankfurterServer) FailNext(n, status int) {
	mockServer.mu.Lock()
	mockServer.failRemaining = n
	mockServer.failStatus = status
	mockServer.mu.Unlock()
}

// SetRates replaces the canned rate table
func (mockServer *MockFrankfurterServer) SetRates(rates map[string]float64) {
	mockServer.mu.Lock()
	mockServer.rates = rates
	mockServer.mu.Unlock()
}

func (mockServer *MockFrankfurterServer) handler(responseWriter http.ResponseWriter, request *http.Request) {
	mockServer.mu.Lock()
	mockServer.requestCount++
	if mockServer.failRemaining > 0 {
		mockServer.failRemaining--
		status := mockServer.failStatus
		mockServer.mu.Unlock()
		responseWriter.WriteHeader(status)
		return
	}
	ratesCopy := make(map[string]float64, len(mockServer.rates))
	for code, rate := range mockServer.rates {
		ratesCopy[code] = rate
	}
	servedDate := mockServer.date
	mockServer.mu.Unlock()

	baseCurrency := request.URL.Query().Get("base")
	if baseCurrency == "" {
		baseCurrency = "EUR"
	}

	switch {
	case request.URL.Path == "/latest":
		if symbols := request.URL.Query().Get("symbols"); symbols != "" {
			filtered := make(map[string]float64)
			for _, symbol := range strings.Split(symbols, ",") {
				if rate, found := ratesCopy[symbol]; found {
					filtered[symbol] = rate
				}
			}
			ratesCopy = filtered
		}
		writeJSON(responseWriter, map[string]interface{}{
			"base":  baseCurrency,
			"date":  servedDate,
			"rates": ratesCopy,
		})

	case strings.Contains(request.URL.Path, ".."):
		bounds := strings.SplitN(strings.TrimPrefix(request.URL.Path, "/"), "..", 2)
		startDate, startErr := time.Parse("2006-01-02", bounds[0])
		endDate, endErr := time.Parse("2006-01-02", bounds[1])
		if startErr != nil || endErr != nil {
			responseWriter.WriteHeader(http.StatusBadRequest)
			return
		}

		ratesByDate := make(map[string]map[string]float64)
		for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
			ratesByDate[day.Format("2006-01-02")] = ratesCopy
		}
		writeJSON(responseWriter, map[string]interface{}{
			"base":       baseCurrency,
			"start_date": bounds[0],
			"end_date":   bounds[1],
			"rates":      ratesByDate,
		})

	default:
		responseWriter.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(responseWriter http.ResponseWriter, payload interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(responseWriter).Encode(payload)
}
