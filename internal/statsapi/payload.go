package statsapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/zendhq/zend-site/internal/models"
)

// The wire types mirror the response body with pointers, so an absent field
// can be told apart from a zero value. Every field the dashboard renders is
// required.

type wireResponse struct {
	Overview           *wireOverview     `json:"overview" validate:"required"`
	RecentTransactions *wireTransactions `json:"recentTransactions" validate:"required"`
	Charts             *wireCharts       `json:"charts" validate:"required"`
}

type wireOverview struct {
	TotalUsers        *string `json:"totalUsers" validate:"required"`
	TotalTransactions *string `json:"totalTransactions" validate:"required"`
	VolumeUSD         *string `json:"volumeUSD" validate:"required"`
	VolumeNGN         *string `json:"volumeNGN" validate:"required"`
}

type wireTransactions struct {
	Data       []wireTransaction `json:"data" validate:"required,dive"`
	Pagination *wirePagination   `json:"pagination" validate:"required"`
}

type wireTransaction struct {
	ID     *string `json:"id" validate:"required"`
	Date   *string `json:"date" validate:"required"`
	Type   *string `json:"type" validate:"required"`
	From   *string `json:"from" validate:"required"`
	To     *string `json:"to" validate:"required"`
	Amount *string `json:"amount" validate:"required"`
	Status *string `json:"status" validate:"required"`
	Hash   *string `json:"hash" validate:"required"`
}

type wirePagination struct {
	CurrentPage  *int `json:"currentPage" validate:"required,gte=1"`
	TotalPages   *int `json:"totalPages" validate:"required,gte=0"`
	TotalItems   *int `json:"totalItems" validate:"required,gte=0"`
	ItemsPerPage *int `json:"itemsPerPage" validate:"required,gte=1"`
}

type wireSeries[T any] struct {
	Title *string `json:"title" validate:"required"`
	Data  []T     `json:"data" validate:"required,dive"`
}

type wirePoint struct {
	Date            *string  `json:"date" validate:"required"`
	Label           *string  `json:"label" validate:"required"`
	USD             *float64 `json:"usd"`
	NGN             *float64 `json:"ngn"`
	Transactions    *float64 `json:"transactions"`
	NewUsers        *float64 `json:"newUsers"`
	CumulativeUsers *float64 `json:"cumulativeUsers"`
	GrowthRate      *float64 `json:"growthRate"`
}

type wireTypeShare struct {
	Type       *string         `json:"type" validate:"required"`
	Count      *int            `json:"count" validate:"required,gte=0"`
	Percentage *models.Percent `json:"percentage" validate:"required"`
}

type wireStatusShare struct {
	Status     *string         `json:"status" validate:"required"`
	Count      *int            `json:"count" validate:"required,gte=0"`
	Percentage *models.Percent `json:"percentage" validate:"required"`
}

type wireCharts struct {
	DailyVolume        *wireSeries[wirePoint]       `json:"dailyVolume" validate:"required"`
	MonthlyVolume      *wireSeries[wirePoint]       `json:"monthlyVolume" validate:"required"`
	UserGrowth         *wireSeries[wirePoint]       `json:"userGrowth" validate:"required"`
	TransactionTypes   *wireSeries[wireTypeShare]   `json:"transactionTypes" validate:"required"`
	StatusDistribution *wireSeries[wireStatusShare] `json:"statusDistribution" validate:"required"`
}

// decoder turns a response body into validated stats.
type decoder struct {
	validate *validator.Validate
}

func newDecoder() *decoder {
	return &decoder{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// decode parses body and checks it against the page and limit it was
// requested with. Any failure is a *ParseError.
func (d *decoder) decode(body []byte, page, limit int) (*models.Stats, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &ParseError{Err: err}
	}

	if err := d.validate.Struct(&w); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ParseError{Err: fmt.Errorf("field %s failed %q", verrs[0].Namespace(), verrs[0].Tag())}
		}
		return nil, &ParseError{Err: err}
	}

	stats := w.toModel()
	if err := checkPagination(stats.Pagination, page, limit); err != nil {
		return nil, &ParseError{Err: err}
	}
	return stats, nil
}

// checkPagination rejects a page window the view could not render
// consistently.
func checkPagination(p models.Pagination, page, limit int) error {
	if p.CurrentPage > p.TotalPages {
		return fmt.Errorf("currentPage %d exceeds totalPages %d", p.CurrentPage, p.TotalPages)
	}
	if p.CurrentPage != page {
		return fmt.Errorf("requested page %d, got %d", page, p.CurrentPage)
	}
	if p.ItemsPerPage != limit {
		return fmt.Errorf("requested limit %d, got %d", limit, p.ItemsPerPage)
	}
	return nil
}

func (w *wireResponse) toModel() *models.Stats {
	o := w.Overview
	p := w.RecentTransactions.Pagination

	stats := &models.Stats{
		Overview: models.Overview{
			TotalUsers:        *o.TotalUsers,
			TotalTransactions: *o.TotalTransactions,
			VolumeUSD:         *o.VolumeUSD,
			VolumeNGN:         *o.VolumeNGN,
		},
		Transactions: make([]models.Transaction, 0, len(w.RecentTransactions.Data)),
		Pagination: models.Pagination{
			CurrentPage:  *p.CurrentPage,
			TotalPages:   *p.TotalPages,
			TotalItems:   *p.TotalItems,
			ItemsPerPage: *p.ItemsPerPage,
		},
		Charts: models.Charts{
			DailyVolume:        points(w.Charts.DailyVolume),
			MonthlyVolume:      points(w.Charts.MonthlyVolume),
			UserGrowth:         points(w.Charts.UserGrowth),
			TransactionTypes:   typeShares(w.Charts.TransactionTypes),
			StatusDistribution: statusShares(w.Charts.StatusDistribution),
		},
	}

	// an empty result set is reported by some deployments as zero pages
	if stats.Pagination.TotalPages == 0 && stats.Pagination.TotalItems == 0 {
		stats.Pagination.TotalPages = 1
	}

	for _, tx := range w.RecentTransactions.Data {
		stats.Transactions = append(stats.Transactions, models.Transaction{
			ID:     *tx.ID,
			Date:   *tx.Date,
			Type:   *tx.Type,
			From:   *tx.From,
			To:     *tx.To,
			Amount: *tx.Amount,
			Status: models.TransactionStatus(*tx.Status),
			Hash:   *tx.Hash,
		})
	}

	return stats
}

func points(s *wireSeries[wirePoint]) models.Series[models.ChartPoint] {
	out := models.Series[models.ChartPoint]{Title: *s.Title, Data: make([]models.ChartPoint, 0, len(s.Data))}
	for _, pt := range s.Data {
		out.Data = append(out.Data, models.ChartPoint{
			Date:            *pt.Date,
			Label:           *pt.Label,
			USD:             pt.USD,
			NGN:             pt.NGN,
			Transactions:    pt.Transactions,
			NewUsers:        pt.NewUsers,
			CumulativeUsers: pt.CumulativeUsers,
			GrowthRate:      pt.GrowthRate,
		})
	}
	return out
}

func typeShares(s *wireSeries[wireTypeShare]) models.Series[models.TypeShare] {
	out := models.Series[models.TypeShare]{Title: *s.Title, Data: make([]models.TypeShare, 0, len(s.Data))}
	for _, v := range s.Data {
		out.Data = append(out.Data, models.TypeShare{Type: *v.Type, Count: *v.Count, Percentage: *v.Percentage})
	}
	return out
}

func statusShares(s *wireSeries[wireStatusShare]) models.Series[models.StatusShare] {
	out := models.Series[models.StatusShare]{Title: *s.Title, Data: make([]models.StatusShare, 0, len(s.Data))}
	for _, v := range s.Data {
		out.Data = append(out.Data, models.StatusShare{Status: *v.Status, Count: *v.Count, Percentage: *v.Percentage})
	}
	return out
}
