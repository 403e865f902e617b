// Package watch runs the page-side behaviour of autopaste for every page of
// a watched browser: paste consumption on destinations, stock links on
// replies, prompt appending and icon clicks on source pages.
package watch

import (
	"context"
	"sync"

	"github.com/kernel/autopaste/internal/browser"
	"github.com/kernel/autopaste/internal/capture"
	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/inject"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/logging"
	"github.com/kernel/autopaste/internal/paste"
	"github.com/kernel/autopaste/internal/settings"
	"github.com/kernel/autopaste/internal/stocklink"
)

// Page is what the service needs from a watched page.
type Page interface {
	dom.Document
	Body(ctx context.Context) (dom.Element, bool, error)
	TakeTrigger(ctx context.Context) (dom.Element, bool, error)
	DrainAdded(ctx context.Context) ([]dom.Element, error)
	DrainRemoved(ctx context.Context) ([]dom.NodeID, error)
}

// pageState is the current load of one page. cancel stops work started for
// that load, such as a polling paste.
type pageState struct {
	load   *paste.PageLoad
	cancel context.CancelFunc
}

// Service dispatches page events. It implements browser.Handler.
type Service struct {
	Consumer *paste.Consumer
	Appender *capture.PromptAppender
	Rewriter *stocklink.Rewriter
	Buttons  *inject.Handler
	Log      *logging.Logger

	mu    sync.Mutex
	loads map[Page]*pageState
	wg    sync.WaitGroup
}

// Options for New.
type Options struct {
	Settings *settings.Settings
	Buttons  *inject.Handler
	Clock    locator.Clock
	Log      *logging.Logger
}

// New wires a Service over one settings store.
func New(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		Consumer: &paste.Consumer{Settings: opts.Settings, Clock: opts.Clock, Log: log},
		Appender: &capture.PromptAppender{Settings: opts.Settings, Log: log},
		Rewriter: &stocklink.Rewriter{Settings: opts.Settings, Log: log},
		Buttons:  opts.Buttons,
		Log:      log,
		loads:    make(map[Page]*pageState),
	}
}

func (s *Service) HandleEvent(ctx context.Context, p *browser.Page, ev browser.Event) {
	s.Handle(ctx, p, ev)
}

func (s *Service) PageClosed(p *browser.Page) {
	s.Forget(p)
}

// Forget drops the page's load state and stops any paste still running for it.
func (s *Service) Forget(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.loads[p]; ok {
		st.cancel()
		delete(s.loads, p)
	}
}

// Wait blocks until background paste runs have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Handle processes one event for p.
func (s *Service) Handle(ctx context.Context, p Page, ev browser.Event) {
	pageURL, err := p.URL(ctx)
	if err != nil {
		s.Log.Debug("page gone", "error", err)
		return
	}
	log := s.Log.With("url", pageURL)
	_, isDestination := destination.Match(pageURL)

	switch ev.Kind {
	case browser.EventLoad:
		load, lctx := s.start(ctx, p, pageURL)
		log.Debug("page loaded", "load", load.ID)

		if isDestination {
			s.consume(lctx, p, load, log)
			if body, ok, err := p.Body(ctx); err == nil && ok {
				s.rewrite(ctx, load, []dom.Element{body}, log)
			}
		}
		s.appendPrompt(ctx, p, load, log)

	case browser.EventMutation:
		removed, err := p.DrainRemoved(ctx)
		if err != nil {
			log.Debug("cannot read removed nodes", "error", err)
			return
		}
		added, err := p.DrainAdded(ctx)
		if err != nil {
			log.Debug("cannot read added nodes", "error", err)
			return
		}
		load, ok := s.current(p)
		if !ok {
			log.Debug("mutation before page load")
			return
		}
		for _, id := range removed {
			load.Forget(id)
		}
		if isDestination && len(added) > 0 {
			s.rewrite(ctx, load, added, log)
		}
		s.appendPrompt(ctx, p, load, log)

	case browser.EventButton:
		variant, err := destination.ByName(ev.Target)
		if err != nil {
			log.Warn("unknown button target", "target", ev.Target)
			return
		}
		btn, ok, err := p.TakeTrigger(ctx)
		if err != nil || !ok {
			log.Debug("clicked button not found", "error", err)
			return
		}
		if err := s.Buttons.Button(ctx, p, btn, variant); err != nil {
			log.Error("button handoff failed", "target", variant.Name, "error", err)
		}

	case browser.EventContext:
		variant, err := destination.ByName(ev.Target)
		if err != nil {
			log.Warn("unknown context target", "target", ev.Target)
			return
		}
		if err := s.Buttons.ContextMenu(ctx, p, variant, ev.Selection); err != nil {
			log.Error("context handoff failed", "target", variant.Name, "error", err)
		}

	default:
		log.Debug("ignoring page event", "kind", ev.Kind)
	}
}

// start replaces the page's load with a fresh one and cancels the previous
// load's context. The returned context ends with the new load.
func (s *Service) start(ctx context.Context, p Page, pageURL string) (*paste.PageLoad, context.Context) {
	lctx, cancel := context.WithCancel(ctx)
	st := &pageState{load: paste.NewPageLoad(pageURL), cancel: cancel}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.loads[p]; ok {
		prev.cancel()
	}
	s.loads[p] = st
	return st.load, lctx
}

// current returns the page's load, if it has loaded since it was last forgotten.
func (s *Service) current(p Page) (*paste.PageLoad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.loads[p]
	if !ok {
		return nil, false
	}
	return st.load, true
}

// consume runs in the background so a polling locator does not hold up the
// page's other events.
func (s *Service) consume(ctx context.Context, p Page, load *paste.PageLoad, log *logging.Logger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rep, err := s.Consumer.Consume(ctx, load, p)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("paste failed", "error", err)
			}
			return
		}
		log.Debug("paste finished", "outcome", rep.Outcome)
	}()
}

func (s *Service) rewrite(ctx context.Context, load *paste.PageLoad, roots []dom.Element, log *logging.Logger) {
	if _, err := s.Rewriter.ProcessBatch(ctx, load, roots); err != nil {
		log.Debug("stock link rewrite failed", "error", err)
	}
}

func (s *Service) appendPrompt(ctx context.Context, p Page, load *paste.PageLoad, log *logging.Logger) {
	if _, err := s.Appender.Append(ctx, load, p); err != nil {
		log.Debug("prompt append failed", "error", err)
	}
}
