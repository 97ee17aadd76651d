package web

import (
	"net/url"
	"strconv"
	"time"

	"github.com/zendhq/zend-site/internal/config"
	"github.com/zendhq/zend-site/internal/statsapi"
	"github.com/zendhq/zend-site/internal/viewmodel"
)

// PageData is the template data every page starts from.
func PageData(site *config.Site, title, activePage string) map[string]interface{} {
	return map[string]interface{}{
		"Title":      title,
		"ActivePage": activePage,
		"Site":       site,
		"Year":       time.Now().Year(),
	}
}

// StatsBody returns the data of the "stats-body" partial for view.
func StatsBody(site *config.Site, view viewmodel.PageView) map[string]interface{} {
	return map[string]interface{}{
		"Site": site,
		"View": view,
		"ChartData": map[string]interface{}{
			"charts":  view.Charts,
			"colors":  site.ChartColors,
			"success": site.Brand.Success,
			"warning": site.Brand.Warning,
		},
	}
}

// ParsePageQuery reads page and limit from q. Missing or unusable values
// fall back to page 1 and the default page size.
func ParsePageQuery(q url.Values) (page, limit int) {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(q.Get("limit"))
	if err != nil || !statsapi.ValidLimit(limit) {
		limit = statsapi.DefaultPageSize
	}
	return page, limit
}
