package api

import (
	"context"

	"github.com/zendhq/zend-site/internal/models"
)

// StatsFetcher defines the interface for stats data access.
type StatsFetcher interface {
	FetchPage(ctx context.Context, page, limit int) (*models.Stats, error)
}

// LiveCounter reports the number of open live stats sessions.
type LiveCounter interface {
	Clients() int
}
