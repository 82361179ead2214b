package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"tgadmin/internal/telegram"
)

// Notifier delivers an already formatted MarkdownV2 message.
type Notifier interface {
	Notify(msg string)
}

const alertQueueSize = 64

// dispatcher delivers alerts from a single goroutine so logging never waits on Telegram.
// When the queue is full new alerts are dropped.
type dispatcher struct {
	notifier Notifier
	queue    chan string
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool
}

func newDispatcher(notifier Notifier) *dispatcher {
	d := &dispatcher{
		notifier: notifier,
		queue:    make(chan string, alertQueueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.notifier.Notify(msg)
	}
}

func (d *dispatcher) send(msg string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- msg:
	default:
	}
}

func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// TelegramHandler is a slog.Handler that forwards important records to Telegram
// while passing every record to the wrapped handler.
type TelegramHandler struct {
	handler  slog.Handler
	alerts   *dispatcher
	minLevel slog.Level
	attrs    []slog.Attr
	group    string
}

func NewTelegramHandler(handler slog.Handler, notifier Notifier, minLevel slog.Level) *TelegramHandler {
	return &TelegramHandler{
		handler:  handler,
		alerts:   newDispatcher(notifier),
		minLevel: minLevel,
		attrs:    make([]slog.Attr, 0),
	}
}

// Close delivers queued alerts and stops the sender. Records logged afterwards
// are not forwarded.
func (h *TelegramHandler) Close() {
	h.alerts.close()
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *TelegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.handler.Handle(ctx, record); err != nil {
		return err
	}
	if record.Level < h.minLevel {
		return nil
	}

	var msg string
	if h.group != "" {
		msg = fmt.Sprintf("*%s* `%s.%s`", record.Level.String(), h.group, record.Message)
	} else {
		msg = fmt.Sprintf("*%s* `%s`", record.Level.String(), record.Message)
	}

	appendAttr := func(attr slog.Attr) {
		if attr.Key == "error" {
			msg += fmt.Sprintf("\n%s: ```error %v ```", attr.Key, attr.Value)
			return
		}
		msg += telegram.Sanitize(fmt.Sprintf("\n%s: %v", attr.Key, attr.Value))
	}
	for _, attr := range h.attrs {
		appendAttr(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(attr)
		return true
	})

	h.alerts.send(msg)
	return nil
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &TelegramHandler{
		handler:  h.handler.WithAttrs(attrs),
		alerts:   h.alerts,
		minLevel: h.minLevel,
		attrs:    newAttrs,
		group:    h.group,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}

	return &TelegramHandler{
		handler:  h.handler.WithGroup(name),
		alerts:   h.alerts,
		minLevel: h.minLevel,
		attrs:    h.attrs,
		group:    group,
	}
}
