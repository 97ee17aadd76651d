package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TransactionStatus is the settlement state reported for a transaction.
// The set is open: statuses other than the constants below can arrive.
type TransactionStatus string

// Known transaction statuses.
const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
)

// Overview holds the platform-wide counters. Values arrive pre-formatted
// and are displayed as-is.
type Overview struct {
	TotalUsers        string `json:"totalUsers"`
	TotalTransactions string `json:"totalTransactions"`
	VolumeUSD         string `json:"volumeUSD"`
	VolumeNGN         string `json:"volumeNGN"`
}

// Transaction is one row of the recent transactions table.
type Transaction struct {
	ID     string            `json:"id"`
	Date   string            `json:"date"`
	Type   string            `json:"type"`
	From   string            `json:"from"`
	To     string            `json:"to"`
	Amount string            `json:"amount"`
	Status TransactionStatus `json:"status"`
	Hash   string            `json:"hash"`
}

// Pagination is the page window reported by the stats service.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// ChartPoint is a labelled point of a time series. Only the measures a
// series carries are set.
type ChartPoint struct {
	Date            string   `json:"date"`
	Label           string   `json:"label"`
	USD             *float64 `json:"usd,omitempty"`
	NGN             *float64 `json:"ngn,omitempty"`
	Transactions    *float64 `json:"transactions,omitempty"`
	NewUsers        *float64 `json:"newUsers,omitempty"`
	CumulativeUsers *float64 `json:"cumulativeUsers,omitempty"`
	GrowthRate      *float64 `json:"growthRate,omitempty"`
}

// TypeShare is the share of transactions of one type.
type TypeShare struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage Percent `json:"percentage"`
}

// StatusShare is the share of transactions in one status.
type StatusShare struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage Percent `json:"percentage"`
}

// Series is a titled, ordered list of chart data.
type Series[T any] struct {
	Title string `json:"title"`
	Data  []T    `json:"data"`
}

// Charts groups every chart series of the dashboard.
type Charts struct {
	DailyVolume        Series[ChartPoint]  `json:"dailyVolume"`
	MonthlyVolume      Series[ChartPoint]  `json:"monthlyVolume"`
	UserGrowth         Series[ChartPoint]  `json:"userGrowth"`
	TransactionTypes   Series[TypeShare]   `json:"transactionTypes"`
	StatusDistribution Series[StatusShare] `json:"statusDistribution"`
}

// Stats is one fully validated page of dashboard data.
type Stats struct {
	Overview     Overview      `json:"overview"`
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
	Charts       Charts        `json:"charts"`
}

// Percent is a pre-formatted percentage. The stats service has sent it both
// as a JSON string ("42.5") and as a number (42.5); both decode to the same
// text.
type Percent string

// UnmarshalJSON accepts a JSON string or number.
func (p *Percent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Percent(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("percentage must be a string or number: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*p = Percent(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
