// Package api provides HTTP handlers for the REST API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-fuego/fuego"

	"github.com/zendhq/zend-site/internal/statsapi"
	"github.com/zendhq/zend-site/internal/viewmodel"
)

// ============================================================================
// Health
// ============================================================================

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	version := s.config.Version
	if version == "" {
		version = "dev"
	}
	live := 0
	if s.deps.Live != nil {
		live = s.deps.Live.Clients()
	}
	return HealthResponse{
		Status:       "ok",
		Version:      version,
		LiveSessions: live,
	}, nil
}

// ============================================================================
// Stats Handlers
// ============================================================================

func (s *Server) getStats(c fuego.ContextNoBody) (StatsResponse, error) {
	page, err := parseIntWithDefault(c.QueryParam("page"), 1)
	if err != nil || page < 1 {
		return StatsResponse{}, fuego.BadRequestError{Detail: statsapi.ErrInvalidPage.Error()}
	}
	limit, err := parseIntWithDefault(c.QueryParam("limit"), statsapi.DefaultPageSize)
	if err != nil || !statsapi.ValidLimit(limit) {
		return StatsResponse{}, fuego.BadRequestError{Detail: statsapi.ErrInvalidLimit.Error()}
	}

	vm := viewmodel.New(s.deps.Fetcher, viewmodel.Options{Page: page, Limit: limit, Logger: s.log})
	defer vm.Close()
	vm.Start()

	ctx, cancel := context.WithTimeout(c.Context(), s.config.StatsWait)
	defer cancel()

	snap, err := vm.Settled(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return StatsResponse{}, fuego.HTTPError{
				Status: http.StatusGatewayTimeout,
				Title:  "Gateway Timeout",
				Detail: "stats service did not answer in time",
				Err:    err,
			}
		}
		return StatsResponse{}, fuego.InternalServerError{Detail: err.Error(), Err: err}
	}

	if snap.Status == viewmodel.StatusError {
		s.log.Warn().Err(snap.Err).Int("page", page).Int("limit", limit).Msg("stats upstream failed")
		return StatsResponse{}, fuego.HTTPError{
			Status: http.StatusBadGateway,
			Title:  "Bad Gateway",
			Detail: snap.Message,
			Err:    snap.Err,
		}
	}

	return s.deps.Presenter.Present(snap), nil
}

func (s *Server) getPagination(c fuego.ContextNoBody) (PaginationResponse, error) {
	total, err := strconv.Atoi(c.QueryParam("total"))
	if err != nil || total < 1 {
		return PaginationResponse{}, fuego.BadRequestError{Detail: "total must be an integer >= 1"}
	}
	current, err := strconv.Atoi(c.QueryParam("current"))
	if err != nil || current < 1 || current > total {
		return PaginationResponse{}, fuego.BadRequestError{Detail: "current must be an integer between 1 and total"}
	}

	return PaginationResponse{
		Current: current,
		Total:   total,
		Items:   viewmodel.PageItems(current, total),
	}, nil
}

// ============================================================================
// Helpers
// ============================================================================

// parseIntWithDefault returns def for an empty s.
func parseIntWithDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
