package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zendhq/zend-site/internal/config"
	"github.com/zendhq/zend-site/internal/logger"
	"github.com/zendhq/zend-site/internal/viewmodel"
)

// LiveHandler serves live stats sessions over websockets. Each connection
// owns one view model; client commands drive it and every state it moves
// through is pushed back as rendered HTML.
type LiveHandler struct {
	hub       *Hub
	fetcher   viewmodel.Fetcher
	presenter viewmodel.Presenter
	templates *TemplateEngine
	site      *config.Site
	log       *logger.Logger
	upgrader  websocket.Upgrader
}

// NewLiveHandler creates a live stats handler.
func NewLiveHandler(hub *Hub, fetcher viewmodel.Fetcher, presenter viewmodel.Presenter, templates *TemplateEngine, site *config.Site, log *logger.Logger) *LiveHandler {
	if log == nil {
		log = logger.Get()
	}
	return &LiveHandler{
		hub:       hub,
		fetcher:   fetcher,
		presenter: presenter,
		templates: templates,
		site:      site,
		log:       log.Component("live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// ServeHTTP upgrades the request and runs the session until the client
// goes away.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, limit := ParsePageQuery(r.URL.Query())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h.hub, conn)
	if !h.hub.add(client) {
		_ = conn.Close()
		return
	}
	go client.writePump()

	s := &liveSession{
		id:     uuid.NewString(),
		client: client,
		h:      h,
	}
	s.log = &logger.Logger{Logger: h.log.With().Str("session", s.id).Logger()}
	s.run(page, limit)
}

type liveSession struct {
	id     string
	client *Client
	h      *LiveHandler
	vm     *viewmodel.StatsViewModel
	log    *logger.Logger
}

func (s *liveSession) run(page, limit int) {
	s.log.Info().Int("page", page).Int("limit", limit).Msg("live session opened")
	s.send(SessionReadyEvent(s.id))

	s.vm = viewmodel.New(s.h.fetcher, viewmodel.Options{
		Page:        page,
		Limit:       limit,
		Logger:      s.log,
		OnScrollTop: func() { s.send(ScrollTopEvent(s.id)) },
	})
	s.vm.Subscribe(s.push)
	s.vm.Start()

	s.client.readPump(s.handle)

	// no listener runs after Close, so the send channel can be closed safely
	s.vm.Close()
	s.client.unregister()
	s.log.Info().Msg("live session closed")
}

func (s *liveSession) handle(message []byte) {
	cmd, err := ParseCommand(message)
	if err != nil {
		s.send(CommandFailedEvent(cmd.Action, err))
		return
	}

	switch cmd.Action {
	case ActionPage:
		if !s.vm.ChangePage(cmd.Page) {
			s.log.Debug().Int("page", cmd.Page).Msg("page change ignored")
		}
	case ActionLimit:
		if err := s.vm.ChangeItemsPerPage(cmd.Limit); err != nil {
			s.send(CommandFailedEvent(cmd.Action, err))
		}
	case ActionRetry:
		s.vm.Retry()
	}
}

// push renders snap and queues it for the client.
func (s *liveSession) push(snap viewmodel.Snapshot) {
	view := s.h.presenter.Present(snap)

	var buf bytes.Buffer
	if err := s.h.templates.RenderPartial(&buf, "stats-body", StatsBody(s.h.site, view)); err != nil {
		s.log.Error().Err(err).Msg("render stats body")
		return
	}

	s.send(StatsStateEvent(StatsStatePayload{
		SessionID:  s.id,
		Status:     view.Status,
		Page:       snap.CurrentPage,
		Limit:      snap.ItemsPerPage,
		TotalPages: snap.TotalPages(),
		Retrying:   snap.Retrying,
		Message:    snap.Message,
		HTML:       buf.String(),
	}))
}

// send queues message. A client that cannot keep up is disconnected; a
// client the hub already closed is left alone.
func (s *liveSession) send(message []byte) {
	err := s.client.trySend(message)
	switch {
	case err == nil:
	case errors.Is(err, errClientSlow):
		s.log.Warn().Msg("live client too slow, closing")
		_ = s.client.conn.Close()
	default:
		s.log.Debug().Err(err).Msg("dropping message for closed client")
	}
}
