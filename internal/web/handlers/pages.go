package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zendhq/zend-site/internal/config"
	"github.com/zendhq/zend-site/internal/logger"
	"github.com/zendhq/zend-site/internal/viewmodel"
	"github.com/zendhq/zend-site/internal/web"
)

// DefaultStatsWait bounds how long the stats page waits for data before it
// renders the loading state and leaves the rest to the live session.
const DefaultStatsWait = 15 * time.Second

// PagesHandler handles HTML page requests
type PagesHandler struct {
	templates *web.TemplateEngine
	fetcher   StatsFetcher
	presenter viewmodel.Presenter
	site      *config.Site
	log       *logger.Logger
	wait      time.Duration
}

// NewPagesHandler creates a new pages handler. wait <= 0 means
// DefaultStatsWait.
func NewPagesHandler(templates *web.TemplateEngine, fetcher StatsFetcher, presenter viewmodel.Presenter, site *config.Site, log *logger.Logger, wait time.Duration) *PagesHandler {
	if log == nil {
		log = logger.Get()
	}
	if wait <= 0 {
		wait = DefaultStatsWait
	}
	return &PagesHandler{
		templates: templates,
		fetcher:   fetcher,
		presenter: presenter,
		site:      site,
		log:       log.Component("pages"),
		wait:      wait,
	}
}

// Home renders the landing page
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home", web.PageData(h.site, h.site.Title, "home"))
}

// Stats renders the statistics dashboard for the page and limit in the
// query.
func (h *PagesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	page, limit := web.ParsePageQuery(r.URL.Query())
	snap := h.loadStats(r.Context(), page, limit)

	data := web.PageData(h.site, h.site.Name+" Stats", "stats")
	for k, v := range web.StatsBody(h.site, h.presenter.Present(snap)) {
		data[k] = v
	}

	h.render(w, r, "stats", data)
}

// Zendit sends the visitor to the WhatsApp bot.
func (h *PagesHandler) Zendit(w http.ResponseWriter, r *http.Request) {
	target := h.site.Links.WhatsApp
	data := web.PageData(h.site, "Redirecting", "zendit")
	data["RedirectURL"] = target

	w.Header().Set("Location", target)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusFound)
	if err := h.templates.Render(w, "zendit", data); err != nil {
		h.log.Error().Err(err).Msg("render zendit")
	}
}

// loadStats runs one view model to its first settled state. When the
// wait runs out the loading state is returned.
func (h *PagesHandler) loadStats(ctx context.Context, page, limit int) viewmodel.Snapshot {
	vm := viewmodel.New(h.fetcher, viewmodel.Options{Page: page, Limit: limit, Logger: h.log})
	defer vm.Close()
	vm.Start()

	ctx, cancel := context.WithTimeout(ctx, h.wait)
	defer cancel()

	snap, err := vm.Settled(ctx)
	if err != nil {
		h.log.Warn().Err(err).Int("page", page).Int("limit", limit).Msg("stats not settled, rendering loading state")
		return vm.State()
	}
	return snap
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if r.Header.Get("HX-Request") == "true" {
		if err := h.templates.RenderContent(w, name, data); err != nil {
			http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := h.templates.Render(w, name, data); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}
