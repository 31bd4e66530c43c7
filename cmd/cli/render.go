package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/amirasaad/fxchat/pkg/chat"
	"github.com/amirasaad/fxchat/pkg/eventbus"
	"github.com/amirasaad/fxchat/pkg/notify"
	"github.com/fatih/color"
)

// renderer prints bot messages and status notifications. Notifications
// arrive from timer goroutines, so writes are serialized.
type renderer struct {
	w  io.Writer
	mu sync.Mutex

	bot     *color.Color
	err     *color.Color
	result  *color.Color
	history *color.Color
	promptC *color.Color
	status  map[notify.Level]*color.Color
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{
		w:       w,
		bot:     color.New(color.FgCyan),
		err:     color.New(color.FgRed, color.Bold),
		result:  color.New(color.FgGreen, color.Bold),
		history: color.New(color.FgYellow),
		promptC: color.New(color.FgMagenta, color.Bold),
		status: map[notify.Level]*color.Color{
			notify.LevelInfo:    color.New(color.FgBlue, color.Italic),
			notify.LevelSuccess: color.New(color.FgGreen, color.Italic),
			notify.LevelError:   color.New(color.FgRed, color.Italic),
		},
	}
}

func (r *renderer) subscribe(bus eventbus.Bus) {
	bus.Register(notify.EventTypeStatusShown, func(_ context.Context, e eventbus.Event) error {
		if ev, ok := e.(notify.StatusShown); ok {
			r.notification(ev.Status)
		}
		return nil
	})
}

func (r *renderer) messages(msgs []chat.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.colorFor(m.Kind).Fprintln(r.w, m.Text) //nolint: errcheck
	}
}

func (r *renderer) notification(s notify.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.status[s.Level]
	if !ok {
		c = r.status[notify.LevelInfo]
	}
	c.Fprintln(r.w, statusLine(s)) //nolint: errcheck
}

func (r *renderer) prompt(user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user == "" {
		user = "tú"
	}
	r.promptC.Fprint(r.w, user+"> ") //nolint: errcheck
}

func (r *renderer) colorFor(kind chat.MessageKind) *color.Color {
	switch kind {
	case chat.KindError:
		return r.err
	case chat.KindConversion, chat.KindPurchase:
		return r.result
	case chat.KindHistory:
		return r.history
	default:
		return r.bot
	}
}

// statusLine renders a notification as "[level] message".
func statusLine(s notify.Status) string {
	return fmt.Sprintf("[%s] %s", s.Level, s.Message)
}
