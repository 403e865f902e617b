package paste

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kernel/autopaste/internal/dom"
)

// PageLoad is the state scoped to one load of one page. It is created when
// the document loads and dropped when the page goes away; nothing in it
// survives a reload.
type PageLoad struct {
	ID  string
	URL string

	latch atomic.Bool

	mu   sync.Mutex
	seen map[dom.NodeID]struct{}
}

// NewPageLoad starts the state for a fresh load of url.
func NewPageLoad(url string) *PageLoad {
	return &PageLoad{
		ID:   uuid.NewString(),
		URL:  url,
		seen: make(map[dom.NodeID]struct{}),
	}
}

// Mark sets the execution latch. Only the first call returns true.
func (p *PageLoad) Mark() bool {
	return p.latch.CompareAndSwap(false, true)
}

// Marked reports whether the latch is set.
func (p *PageLoad) Marked() bool {
	return p.latch.Load()
}

// Seen records id as processed and reports whether it already was.
func (p *PageLoad) Seen(id dom.NodeID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[id]; ok {
		return true
	}
	p.seen[id] = struct{}{}
	return false
}

// Forget drops id so a recreated node with the same identity is processed again.
func (p *PageLoad) Forget(id dom.NodeID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, id)
}
