// Package viewmodel holds the state of one statistics view: which page is
// shown, whether it is loading, ready or failed, and the data behind it.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zendhq/zend-site/internal/logger"
	"github.com/zendhq/zend-site/internal/models"
	"github.com/zendhq/zend-site/internal/statsapi"
)

// ErrClosed is returned by Settled once the view model has been closed.
var ErrClosed = errors.New("view model closed")

// Fetcher loads one page of stats.
type Fetcher interface {
	FetchPage(ctx context.Context, page, limit int) (*models.Stats, error)
}

// Status is the fetch lifecycle state of the view.
type Status int

// View states.
const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Snapshot is an immutable copy of the view state.
type Snapshot struct {
	Status       Status
	Stats        *models.Stats // only set when Ready
	Err          error         // only set when Error
	Message      string        // visitor-facing error text
	CurrentPage  int
	ItemsPerPage int
	Retrying     bool
	Generation   uint64
}

// TotalPages is the page count of the loaded data, 0 when not Ready.
func (s Snapshot) TotalPages() int {
	if s.Stats == nil {
		return 0
	}
	return s.Stats.Pagination.TotalPages
}

// Listener receives every state the view moves through, in order.
// Listeners run synchronously and must not call back into the view model.
type Listener func(Snapshot)

// Options configures a StatsViewModel.
type Options struct {
	Page        int // defaults to 1
	Limit       int // defaults to statsapi.DefaultPageSize
	Logger      *logger.Logger
	OnScrollTop func() // called after a page change, before the new data arrives
}

// StatsViewModel drives the statistics view. Every page, page-size or
// retry change issues a new fetch; only the most recent fetch may update
// the state. It is safe for concurrent use.
type StatsViewModel struct {
	fetcher     Fetcher
	log         *logger.Logger
	onScrollTop func()

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       Snapshot
	inflight    context.CancelFunc
	settled     chan struct{}
	listeners   map[int]Listener
	nextID      int
	version     uint64
	closed      bool
	fetchIssued bool
	knownTotal  int // totalPages of the last Ready state for the current page size

	notifyMu  sync.Mutex
	delivered uint64
}

// New creates a view model in the Loading state. No request is sent until
// Start is called.
func New(fetcher Fetcher, opts Options) *StatsViewModel {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if !statsapi.ValidLimit(limit) {
		limit = statsapi.DefaultPageSize
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &StatsViewModel{
		fetcher:     fetcher,
		log:         log.Component("viewmodel"),
		onScrollTop: opts.OnScrollTop,
		ctx:         ctx,
		cancel:      cancel,
		state: Snapshot{
			Status:       StatusLoading,
			CurrentPage:  page,
			ItemsPerPage: limit,
		},
		settled:   make(chan struct{}),
		listeners: make(map[int]Listener),
	}
}

// Start issues the initial fetch. Calling it again has no effect.
func (vm *StatsViewModel) Start() {
	vm.mu.Lock()
	if vm.closed || vm.fetchIssued {
		vm.mu.Unlock()
		return
	}
	n := vm.fetchLocked()
	vm.mu.Unlock()

	vm.deliver(n)
}

// State returns the current state.
func (vm *StatsViewModel) State() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Subscribe registers l for every following state change and returns a
// function that removes it.
func (vm *StatsViewModel) Subscribe(l Listener) func() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id := vm.nextID
	vm.nextID++
	vm.listeners[id] = l

	return func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		delete(vm.listeners, id)
	}
}

// ChangePage moves to page and fetches it. It reports false and does
// nothing when page is the current page or outside [1, totalPages] of the
// last loaded data, when nothing has loaded yet for the current page size,
// or when the view shows an error.
func (vm *StatsViewModel) ChangePage(page int) bool {
	vm.mu.Lock()
	if vm.closed || vm.state.Status == StatusError || vm.knownTotal == 0 {
		vm.mu.Unlock()
		return false
	}
	if page < 1 || page > vm.knownTotal || page == vm.state.CurrentPage {
		vm.mu.Unlock()
		return false
	}

	vm.state.CurrentPage = page
	n := vm.fetchLocked()
	vm.mu.Unlock()

	if vm.onScrollTop != nil {
		vm.onScrollTop()
	}
	vm.deliver(n)
	return true
}

// ChangeItemsPerPage switches the page size and goes back to page 1.
// Choosing the size already shown while on page 1 does nothing.
func (vm *StatsViewModel) ChangeItemsPerPage(limit int) error {
	if !statsapi.ValidLimit(limit) {
		return statsapi.ErrInvalidLimit
	}

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return nil
	}
	if limit == vm.state.ItemsPerPage && vm.state.CurrentPage == 1 && vm.state.Status != StatusError {
		vm.mu.Unlock()
		return nil
	}

	vm.state.ItemsPerPage = limit
	vm.state.CurrentPage = 1
	vm.knownTotal = 0
	n := vm.fetchLocked()
	vm.mu.Unlock()

	vm.deliver(n)
	return nil
}

// Retry fetches page 1 again. It is the error view's Retry button and the
// header's Refresh button.
func (vm *StatsViewModel) Retry() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}

	vm.state.CurrentPage = 1
	vm.state.Retrying = true
	n := vm.fetchLocked()
	vm.mu.Unlock()

	vm.deliver(n)
}

// Settled blocks until no fetch is in flight and returns that state.
func (vm *StatsViewModel) Settled(ctx context.Context) (Snapshot, error) {
	for {
		vm.mu.Lock()
		if vm.closed {
			vm.mu.Unlock()
			return Snapshot{}, ErrClosed
		}
		if vm.state.Status != StatusLoading || !vm.fetchIssued {
			s := vm.state
			vm.mu.Unlock()
			return s, nil
		}
		ch := vm.settled
		vm.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

// Close cancels any in-flight fetch and detaches all listeners. No
// listener runs once Close has returned. The view model is unusable
// afterwards.
func (vm *StatsViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	vm.cancel()
	vm.listeners = map[int]Listener{}
	close(vm.settled)
	vm.mu.Unlock()

	// wait out a delivery that started before closed was set
	vm.notifyMu.Lock()
	vm.notifyMu.Unlock()
}

type notification struct {
	snap      Snapshot
	version   uint64
	listeners []Listener
}

// fetchLocked moves to Loading and launches a fetch for the current page
// and limit, superseding any fetch still in flight. vm.mu must be held.
func (vm *StatsViewModel) fetchLocked() notification {
	if vm.inflight != nil {
		vm.inflight()
	}
	close(vm.settled)
	vm.settled = make(chan struct{})
	vm.fetchIssued = true

	vm.state.Generation++
	vm.state.Status = StatusLoading
	vm.state.Stats = nil
	vm.state.Err = nil
	vm.state.Message = ""

	ctx, cancel := context.WithCancel(vm.ctx)
	vm.inflight = cancel

	gen, page, limit := vm.state.Generation, vm.state.CurrentPage, vm.state.ItemsPerPage
	vm.log.Debug().Uint64("generation", gen).Int("page", page).Int("limit", limit).Msg("fetching stats")

	go vm.run(ctx, gen, page, limit)

	return vm.notificationLocked()
}

func (vm *StatsViewModel) run(ctx context.Context, gen uint64, page, limit int) {
	var (
		stats *models.Stats
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("stats fetch panicked: %v", r)
			}
		}()
		stats, err = vm.fetcher.FetchPage(ctx, page, limit)
	}()
	vm.complete(gen, stats, err)
}

func (vm *StatsViewModel) complete(gen uint64, stats *models.Stats, err error) {
	vm.mu.Lock()
	if vm.closed || gen != vm.state.Generation {
		vm.mu.Unlock()
		vm.log.Debug().Uint64("generation", gen).Msg("dropping superseded stats response")
		return
	}

	vm.inflight()
	vm.inflight = nil
	vm.state.Retrying = false

	if err == nil && stats == nil {
		err = &statsapi.ParseError{Err: errors.New("empty stats response")}
	}

	if err != nil {
		vm.state.Status = StatusError
		vm.state.Err = err
		vm.state.Message = statsapi.UserMessage(err)
		vm.log.Warn().Err(err).Uint64("generation", gen).Int("page", vm.state.CurrentPage).Msg("stats fetch failed")
	} else {
		vm.state.Status = StatusReady
		vm.state.Stats = stats
		vm.state.CurrentPage = stats.Pagination.CurrentPage
		vm.state.ItemsPerPage = stats.Pagination.ItemsPerPage
		vm.knownTotal = stats.Pagination.TotalPages
	}

	close(vm.settled)
	vm.settled = make(chan struct{})
	n := vm.notificationLocked()
	vm.mu.Unlock()

	vm.deliver(n)
}

func (vm *StatsViewModel) notificationLocked() notification {
	vm.version++
	ls := make([]Listener, 0, len(vm.listeners))
	for _, l := range vm.listeners {
		ls = append(ls, l)
	}
	return notification{snap: vm.state, version: vm.version, listeners: ls}
}

// deliver hands n to its listeners unless a newer state was already
// delivered.
func (vm *StatsViewModel) deliver(n notification) {
	vm.notifyMu.Lock()
	defer vm.notifyMu.Unlock()

	if n.version <= vm.delivered || vm.isClosed() {
		return
	}
	vm.delivered = n.version
	for _, l := range n.listeners {
		l(n.snap)
	}
}

func (vm *StatsViewModel) isClosed() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.closed
}
