package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"golang.org/x/sync/errgroup"

	"github.com/kernel/autopaste/internal/logging"
)

// BindingName is the window function page scripts report events through.
const BindingName = "autopasteEvent"

// Event kinds reported by page scripts.
const (
	EventLoad     = "load"
	EventMutation = "mutation"
	EventButton   = "button"
	EventContext  = "context"
)

// Event is one page-side report.
type Event struct {
	Kind      string
	Target    string
	Selection string
}

// Handler reacts to page events. Calls for one page never overlap, matching
// the page's own single event loop; different pages run concurrently.
// PageClosed is the last call made for a page.
type Handler interface {
	HandleEvent(ctx context.Context, page *Page, ev Event)
	PageClosed(page *Page)
}

// Watcher attaches to every page of a browser.
type Watcher struct {
	Browser *rod.Browser
	Handler Handler
	// Scripts run in every watched document after the bootstrap.
	Scripts []string
	// Poll is how often the page list is refreshed.
	Poll time.Duration
	Log  *logging.Logger
}

// Run blocks until ctx ends or the browser goes away.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = logging.Nop()
	}
	poll := w.Poll
	if poll <= 0 {
		poll = time.Second
	}

	g, ctx := errgroup.WithContext(ctx)
	attached := make(map[proto.TargetTargetID]context.CancelFunc)

	g.Go(func() error {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		for {
			list, err := w.Browser.Context(ctx).Pages()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("list pages: %w", err)
			}
			live := make(map[proto.TargetTargetID]bool, len(list))
			for _, rp := range list {
				live[rp.TargetID] = true
				if _, ok := attached[rp.TargetID]; ok {
					continue
				}
				pctx, cancel := context.WithCancel(ctx)
				page := NewPage(rp)
				attached[rp.TargetID] = cancel
				g.Go(func() error {
					w.watchPage(pctx, page, log.With("target_id", string(rp.TargetID)))
					return nil
				})
			}
			for id, cancel := range attached {
				if !live[id] {
					cancel()
					delete(attached, id)
				}
			}
			select {
			case <-ctx.Done():
				for _, cancel := range attached {
					cancel()
				}
				return nil
			case <-ticker.C:
			}
		}
	})
	return g.Wait()
}

func (w *Watcher) watchPage(ctx context.Context, page *Page, log *logging.Logger) {
	defer w.Handler.PageClosed(page)

	events := make(chan Event, 64)
	rp := page.Rod().Context(ctx)
	stop, err := rp.Expose(BindingName, func(j gson.JSON) (any, error) {
		ev := Event{
			Kind:      j.Get("kind").Str(),
			Target:    j.Get("target").Str(),
			Selection: j.Get("selection").Str(),
		}
		select {
		case events <- ev:
		default:
			log.Warn("page event dropped", "kind", ev.Kind)
		}
		return nil, nil
	})
	if err != nil {
		log.Debug("cannot attach to page", "error", err)
		return
	}
	defer func() { _ = stop() }()

	for _, script := range append([]string{bootstrapScript}, w.Scripts...) {
		if err := page.Install(ctx, script); err != nil {
			log.Debug("cannot install page script", "error", err)
			return
		}
	}
	log.Debug("watching page")

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			w.Handler.HandleEvent(ctx, page, ev)
		}
	}
}
