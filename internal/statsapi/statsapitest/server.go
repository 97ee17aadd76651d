// Package statsapitest provides an in-memory stand-in for the ZEND stats
// service, for use in tests.
package statsapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
)

// Server serves GET /stats paginated over a fixed transaction list.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	transactions []map[string]any
	status       int
	rawBody      string
	requests     []Request

	hits atomic.Int64
}

// Request records the query of one received request.
type Request struct {
	Page         int
	Limit        int
	CacheControl string
}

// NewServer starts a server holding n generated transactions.
func NewServer(n int) *Server {
	s := &Server{transactions: Transactions(n)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// FailWith makes every following request answer with status.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// RespondRaw makes every following request answer 200 with body verbatim.
func (s *Server) RespondRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawBody = body
}

// Reset restores normal paginated answers.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = 0
	s.rawBody = ""
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Hits returns the number of requests received.
func (s *Server) Hits() int64 {
	return s.hits.Load()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	if r.URL.Path != "/stats" {
		http.NotFound(w, r)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.mu.Lock()
	s.requests = append(s.requests, Request{Page: page, Limit: limit, CacheControl: r.Header.Get("Cache-Control")})
	status, raw, txs := s.status, s.rawBody, s.transactions
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if raw != "" {
		_, _ = w.Write([]byte(raw))
		return
	}

	_ = json.NewEncoder(w).Encode(Payload(txs, page, limit))
}

// Payload builds a complete stats body for one page of txs.
func Payload(txs []map[string]any, page, limit int) map[string]any {
	totalPages := (len(txs) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(txs) {
		start = len(txs)
	}
	if end > len(txs) {
		end = len(txs)
	}

	return map[string]any{
		"overview": map[string]any{
			"totalUsers":        "1,204",
			"totalTransactions": strconv.Itoa(len(txs)),
			"volumeUSD":         "$48,210.55",
			"volumeNGN":         "₦72,315,825.00",
		},
		"recentTransactions": map[string]any{
			"data": txs[start:end],
			"pagination": map[string]any{
				"currentPage":  page,
				"totalPages":   totalPages,
				"totalItems":   len(txs),
				"itemsPerPage": limit,
			},
		},
		"charts": map[string]any{
			"dailyVolume": map[string]any{
				"title": "Daily Volume",
				"data": []map[string]any{
					{"date": "2026-10-01", "label": "Oct 1", "ngn": 120000.5, "usd": 80.1},
					{"date": "2026-10-02", "label": "Oct 2", "ngn": 98000, "usd": 65.4},
				},
			},
			"monthlyVolume": map[string]any{
				"title": "Monthly Volume",
				"data": []map[string]any{
					{"date": "2026-09", "label": "Sep", "ngn": 3200000, "transactions": 410},
				},
			},
			"userGrowth": map[string]any{
				"title": "User Growth",
				"data": []map[string]any{
					{"date": "2026-09", "label": "Sep", "newUsers": 120, "cumulativeUsers": 1100, "growthRate": 12.2},
				},
			},
			"transactionTypes": map[string]any{
				"title": "Transaction Types",
				"data": []map[string]any{
					{"type": "send", "count": 300, "percentage": "75.0"},
					{"type": "withdraw", "count": 100, "percentage": 25},
				},
			},
			"statusDistribution": map[string]any{
				"title": "Status Distribution",
				"data": []map[string]any{
					{"status": "completed", "count": 390, "percentage": "97.5"},
					{"status": "pending", "count": 10, "percentage": "2.5"},
				},
			},
		},
	}
}

// Transactions generates n transactions with stable ids and hashes.
func Transactions(n int) []map[string]any {
	txs := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		status := "completed"
		if i%5 == 0 {
			status = "pending"
		}
		txs = append(txs, map[string]any{
			"id":     fmt.Sprintf("tx_0000000000%06d", i),
			"date":   "2026-10-18 14:02",
			"type":   "send",
			"from":   fmt.Sprintf("GSENDER%049d", i),
			"to":     "user_ada",
			"amount": fmt.Sprintf("₦%d.00", i*1000),
			"status": status,
			"hash":   fmt.Sprintf("%064x", i),
		})
	}
	return txs
}
