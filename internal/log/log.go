package log

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRetain is the number of records kept for the log view.
const DefaultRetain = 50

// store is shared by a TUIHandler and every handler derived from it through
// WithAttrs or WithGroup.
type store struct {
	mu     sync.Mutex
	ch     chan<- tea.Msg
	logs   []slog.Record
	retain int
}

// TUIHandler is a slog.Handler that keeps the latest records for the log
// view and forwards each one to a tea.Program.
type TUIHandler struct {
	slog.Handler
	store *store
}

// NewTUIHandler creates a new TUIHandler.
func NewTUIHandler(handler slog.Handler, ch chan<- tea.Msg) *TUIHandler {
	return &TUIHandler{
		Handler: handler,
		store:   &store{ch: ch, retain: DefaultRetain},
	}
}

// Handle stores the record and sends it to the tea.Program. A full channel
// drops the message rather than blocking the logger.
func (h *TUIHandler) Handle(ctx context.Context, r slog.Record) error {
	s := h.store
	s.mu.Lock()
	s.logs = append(s.logs, r.Clone())
	if len(s.logs) > s.retain {
		s.logs = s.logs[len(s.logs)-s.retain:]
	}
	ch := s.ch
	s.mu.Unlock()

	if ch != nil {
		select {
		case ch <- LogMsg(r):
		default:
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TUIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUIHandler{Handler: h.Handler.WithAttrs(attrs), store: h.store}
}

func (h *TUIHandler) WithGroup(name string) slog.Handler {
	return &TUIHandler{Handler: h.Handler.WithGroup(name), store: h.store}
}

// Logs returns a copy of the stored records, oldest first.
func (h *TUIHandler) Logs() []slog.Record {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]slog.Record(nil), h.store.logs...)
}

// LogMsg is a tea.Msg that represents a log message.
type LogMsg slog.Record

// SetOutput sets the output channel for the handler.
func (h *TUIHandler) SetOutput(ch chan<- tea.Msg) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.ch = ch
}

var defaultHandler *TUIHandler

// Init initializes the default logger.
func Init(handler slog.Handler) {
	defaultHandler = NewTUIHandler(handler, nil)
	slog.SetDefault(slog.New(defaultHandler))
}

// SetOutput sets the output channel for the default logger.
func SetOutput(ch chan<- tea.Msg) {
	if defaultHandler != nil {
		defaultHandler.SetOutput(ch)
	}
}

// Logs returns the stored log messages from the default logger.
func Logs() []slog.Record {
	if defaultHandler == nil {
		return nil
	}
	return defaultHandler.Logs()
}
