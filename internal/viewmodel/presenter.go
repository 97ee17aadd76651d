package viewmodel

import (
	"fmt"
	"strings"

	"github.com/zendhq/zend-site/internal/models"
	"github.com/zendhq/zend-site/internal/statsapi"
)

// Presenter turns view state into render-ready values. It never modifies
// the stats it reads.
type Presenter struct {
	ExplorerBaseURL string
	ChartColors     []string
	SuccessColor    string
	WarningColor    string
}

// Card is one overview counter.
type Card struct {
	Title   string `json:"title"`
	Value   string `json:"value"`
	Caption string `json:"caption"`
}

// Row is one transaction table row.
type Row struct {
	ID          string `json:"id"`
	ShortID     string `json:"shortId"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	From        string `json:"from"`
	FromShort   string `json:"fromShort"`
	To          string `json:"to"`
	ToShort     string `json:"toShort"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Tone        Tone   `json:"tone"`
	Hash        string `json:"hash"`
	HashShort   string `json:"hashShort"`
	ExplorerURL string `json:"explorerUrl"`
}

// Share is one line of a breakdown list next to a pie chart.
type Share struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
	Color      string `json:"color"`
	Tone       Tone   `json:"tone,omitempty"`
}

// PageView is everything the stats page renders for one state.
type PageView struct {
	Status      string `json:"status"`
	Loading     bool   `json:"loading"`
	LoadingText string `json:"loadingText,omitempty"`
	Retrying    bool   `json:"retrying"`
	Error       string `json:"error,omitempty"`

	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	PageSizes    []int `json:"pageSizes"`

	Cards []Card `json:"cards,omitempty"`
	Rows  []Row  `json:"rows,omitempty"`
	Empty bool   `json:"empty"`

	Pagination     *models.Pagination `json:"pagination,omitempty"`
	ShowPagination bool               `json:"showPagination"`
	PageItems      []PageItem         `json:"pageItems,omitempty"`
	PrevPage       int                `json:"prevPage"`
	NextPage       int                `json:"nextPage"`
	PrevDisabled   bool               `json:"prevDisabled"`
	NextDisabled   bool               `json:"nextDisabled"`
	Summary        string             `json:"summary,omitempty"`

	Charts        *models.Charts `json:"charts,omitempty"`
	TypeBreakdown []Share        `json:"typeBreakdown,omitempty"`
	StatusSummary []Share        `json:"statusSummary,omitempty"`
}

// Present builds the view for s.
func (p Presenter) Present(s Snapshot) PageView {
	v := PageView{
		Status:       s.Status.String(),
		Retrying:     s.Retrying,
		CurrentPage:  s.CurrentPage,
		ItemsPerPage: s.ItemsPerPage,
		PageSizes:    statsapi.PageSizes,
	}

	switch s.Status {
	case StatusLoading:
		v.Loading = true
		v.LoadingText = "Loading ZEND stats..."
		if s.Retrying {
			v.LoadingText = "Retrying connection..."
		}
		return v
	case StatusError:
		v.Error = s.Message
		if v.Error == "" {
			v.Error = "Failed to load statistics"
		}
		return v
	}

	stats := s.Stats
	o := stats.Overview
	v.Cards = []Card{
		{Title: "Total Users", Value: o.TotalUsers, Caption: "Active on platform"},
		{Title: "Total Transactions", Value: o.TotalTransactions, Caption: "All time"},
		{Title: "Volume (USD)", Value: o.VolumeUSD, Caption: "Total transferred"},
		{Title: "Volume (NGN)", Value: o.VolumeNGN, Caption: "Total transferred"},
	}

	v.Rows = make([]Row, 0, len(stats.Transactions))
	for _, tx := range stats.Transactions {
		v.Rows = append(v.Rows, p.row(tx))
	}
	v.Empty = len(v.Rows) == 0

	pg := stats.Pagination
	v.Pagination = &pg
	v.ShowPagination = pg.TotalPages > 1
	v.PageItems = PageItems(pg.CurrentPage, pg.TotalPages)
	v.PrevPage = pg.CurrentPage - 1
	v.NextPage = pg.CurrentPage + 1
	v.PrevDisabled = pg.CurrentPage <= 1
	v.NextDisabled = pg.CurrentPage >= pg.TotalPages
	v.Summary = fmt.Sprintf("Showing page %d of %d (%d total transactions)", pg.CurrentPage, pg.TotalPages, pg.TotalItems)

	v.Charts = &stats.Charts
	for i, t := range stats.Charts.TransactionTypes.Data {
		v.TypeBreakdown = append(v.TypeBreakdown, Share{
			Label:      t.Type,
			Count:      t.Count,
			Percentage: string(t.Percentage),
			Color:      p.color(i),
		})
	}
	for _, st := range stats.Charts.StatusDistribution.Data {
		share := Share{
			Label:      st.Status,
			Count:      st.Count,
			Percentage: string(st.Percentage),
			Color:      p.WarningColor,
			Tone:       ToneWarning,
		}
		if strings.EqualFold(st.Status, string(models.StatusCompleted)) {
			share.Color = p.SuccessColor
			share.Tone = ToneSuccess
		}
		v.StatusSummary = append(v.StatusSummary, share)
	}

	return v
}

func (p Presenter) row(tx models.Transaction) Row {
	return Row{
		ID:          tx.ID,
		ShortID:     ShortID(tx.ID),
		Date:        tx.Date,
		Type:        tx.Type,
		From:        tx.From,
		FromShort:   TruncateAddress(tx.From),
		To:          tx.To,
		ToShort:     TruncateAddress(tx.To),
		Amount:      tx.Amount,
		Status:      string(tx.Status),
		Tone:        StatusTone(tx.Status),
		Hash:        tx.Hash,
		HashShort:   TruncateHash(tx.Hash),
		ExplorerURL: ExplorerURL(p.ExplorerBaseURL, tx.Hash),
	}
}

func (p Presenter) color(i int) string {
	if len(p.ChartColors) == 0 {
		return ""
	}
	return p.ChartColors[i%len(p.ChartColors)]
}
