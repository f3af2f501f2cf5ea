// Package server serves a pinboard over HTTP. The board's node tree lives on
// the server; browser events are posted back (over the websocket or the JSON
// API), dispatched through the tree, and the re-rendered board is pushed to
// every connected client.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/livetemplate/pinboard"
	"github.com/livetemplate/pinboard/internal/config"
	"github.com/livetemplate/pinboard/internal/dom"
	"github.com/livetemplate/pinboard/internal/security"
	"github.com/livetemplate/pinboard/internal/storage"
)

var (
	// ErrUnknownTarget is returned when an event names an element that is not on the board.
	ErrUnknownTarget = errors.New("unknown event target")
	// ErrUnknownEvent is returned for event types the board does not handle.
	ErrUnknownEvent = errors.New("unknown event type")
)

// InvalidItemError reports an item rejected before it reached the board.
type InvalidItemError struct {
	Err error
}

func (e *InvalidItemError) Error() string { return "invalid item: " + e.Err.Error() }

func (e *InvalidItemError) Unwrap() error { return e.Err }

// EventMessage is a browser event posted by the client. Bounds carries the
// client's layout for page items, keyed by element id, so drops can be
// hit-tested on the server.
type EventMessage struct {
	Type    dom.EventType       `json:"type"`
	Target  string              `json:"target"`
	ClientY float64             `json:"clientY"`
	Bounds  map[string]dom.Rect `json:"bounds,omitempty"`
}

// Server owns one board and the clients viewing it.
type Server struct {
	config *config.Config
	store  *storage.Store // nil when snapshots are disabled
	debug  bool

	// mu serializes every board mutation, standing in for the browser's
	// single-threaded event loop.
	mu  sync.Mutex
	app *pinboard.App
	seq uint64 // bumped under mu on every mutation

	// publishMu orders saves and broadcasts. published is the newest seq
	// pushed out and saved the specs last written to the store.
	publishMu sync.Mutex
	published uint64
	saved     []pinboard.ItemSpec

	connections map[*wsClient]bool // Track connected WebSocket clients
	connMu      sync.RWMutex       // Separate mutex for connections
	watcher     *Watcher           // Config watcher for hot reload
}

// New creates a server for cfg. When store is non-nil and holds a snapshot of
// the configured board, the snapshot takes precedence over the config items.
func New(ctx context.Context, cfg *config.Config, store *storage.Store) (*Server, error) {
	s := &Server{
		config:      cfg,
		store:       store,
		debug:       cfg.Server.Debug,
		connections: make(map[*wsClient]bool),
	}

	items := cfg.Board.GetItems()
	if store != nil {
		stored, found, err := store.LoadBoard(ctx, cfg.Board.GetName())
		if err != nil {
			return nil, err
		}
		if found {
			log.Printf("[Server] Restored board %q with %d items", cfg.Board.GetName(), len(stored))
			items = stored
		}
	}

	app, err := s.newApp(items)
	if err != nil {
		return nil, err
	}
	s.app = app
	s.saved = app.Page.Specs()
	return s, nil
}

func (s *Server) newApp(items []pinboard.ItemSpec) (*pinboard.App, error) {
	app, err := pinboard.NewApp(nil, items, pinboard.WithDebug(s.debug))
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}
	return app, nil
}

// Title returns the configured page title.
func (s *Server) Title() string {
	return s.config.Title
}

// Items returns the board's item specs in display order.
func (s *Server) Items() []pinboard.ItemSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app.Page.Specs()
}

// BoardHTML renders the board fragment.
func (s *Server) BoardHTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dom.RenderString(s.app.Document)
}

// Dispatch delivers msg to its target element and returns the re-rendered board.
func (s *Server) Dispatch(ctx context.Context, msg EventMessage) (string, error) {
	if !msg.Type.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Type)
	}

	s.mu.Lock()
	// Bounds describe the layout at the time of this event only.
	for _, item := range s.app.Page.Items() {
		item.Root().ClearBounds()
	}
	for id, r := range msg.Bounds {
		if el, err := s.app.Document.Find(id); err == nil {
			el.SetBounds(r)
		}
	}
	target, err := s.app.Document.Find(msg.Target)
	if err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, msg.Target)
	}

	ev := dom.NewEvent(msg.Type, target)
	ev.ClientY = msg.ClientY
	dom.Dispatch(ev)

	if s.debug {
		log.Printf("[Server] Dispatched %s on %s", msg.Type, target.Tag())
	}

	html, specs, seq, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.afterChange(ctx, seq, html, specs)
	return html, nil
}

// AddItem appends a new item built from spec. Image and video URLs must be
// absolute http(s) URLs.
func (s *Server) AddItem(ctx context.Context, spec pinboard.ItemSpec) error {
	if err := security.ValidateItem(spec); err != nil {
		return &InvalidItemError{Err: err}
	}

	s.mu.Lock()
	if err := s.app.Add(spec); err != nil {
		s.mu.Unlock()
		return err
	}
	html, specs, seq, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	log.Printf("[Server] Added %s", spec)
	s.afterChange(ctx, seq, html, specs)
	return nil
}

// Reset replaces the whole board with items.
func (s *Server) Reset(ctx context.Context, items []pinboard.ItemSpec) error {
	app, err := s.newApp(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.app = app
	html, specs, seq, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.afterChange(ctx, seq, html, specs)
	return nil
}

// snapshotLocked renders the board, captures its specs and stamps the
// snapshot with a new sequence number. Callers hold s.mu.
func (s *Server) snapshotLocked() (string, []pinboard.ItemSpec, uint64, error) {
	html, err := dom.RenderString(s.app.Document)
	if err != nil {
		return "", nil, 0, fmt.Errorf("failed to render board: %w", err)
	}
	s.seq++
	return html, s.app.Page.Specs(), s.seq, nil
}

// afterChange persists the board when its items changed and pushes the new
// render to every client. It runs outside the board lock, so snapshots can
// arrive out of order; one older than the last published is dropped.
func (s *Server) afterChange(ctx context.Context, seq uint64, html string, specs []pinboard.ItemSpec) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if seq <= s.published {
		return
	}
	s.published = seq

	if s.store != nil && !slices.Equal(s.saved, specs) {
		if err := s.store.SaveBoard(ctx, s.config.Board.GetName(), specs); err != nil {
			log.Printf("[Server] Failed to save board: %v", err)
		} else {
			s.saved = specs
		}
	}
	s.BroadcastRender(html)
}

// Close stops the watcher and closes every client connection.
func (s *Server) Close() error {
	err := s.StopWatch()
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for c := range s.connections {
		c.conn.Close()
	}
	s.connections = make(map[*wsClient]bool)
	return err
}
