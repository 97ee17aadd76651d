package handlers

import (
	"context"

	"github.com/zendhq/zend-site/internal/models"
)

// StatsFetcher defines interface for stats data access
type StatsFetcher interface {
	FetchPage(ctx context.Context, page, limit int) (*models.Stats, error)
}
