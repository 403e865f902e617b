// Package stocklink turns four-digit stock numbers in assistant replies into
// links to the quote page.
package stocklink

import (
	"context"
	"fmt"

	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/logging"
	"github.com/kernel/autopaste/internal/paste"
	"github.com/kernel/autopaste/internal/settings"
)

// QuoteURL is the link target prefix; the stock number is appended.
const QuoteURL = "https://gd.myftp.org/lb/lh.asp?stockno="

// candidate is the cheap pre-filter handed to the page when collecting text
// nodes; Split applies the full rules.
const candidate = `\b\d{4}\b`

// Split cuts text into plain and link fragments. It returns nil when text
// holds no stock number.
//
// A stock number is exactly four ASCII digits on word boundaries, not
// preceded by . - / , and not followed by . - / , or 年, which rules out
// most dates and amounts.
func Split(text string) []dom.Fragment {
	var parts []dom.Fragment
	last := 0
	for i := 0; i+4 <= len(text); i++ {
		if !isStockNumber(text, i) {
			continue
		}
		if i > last {
			parts = append(parts, dom.Fragment{Text: text[last:i]})
		}
		num := text[i : i+4]
		parts = append(parts, dom.Fragment{Text: num, Href: QuoteURL + num})
		last = i + 4
		i += 3
	}
	if parts == nil {
		return nil
	}
	if last < len(text) {
		parts = append(parts, dom.Fragment{Text: text[last:]})
	}
	return parts
}

func isStockNumber(text string, i int) bool {
	for j := i; j < i+4; j++ {
		if !isDigit(text[j]) {
			return false
		}
	}
	if i > 0 {
		switch b := text[i-1]; {
		case isWord(b), b == '.', b == '-', b == '/', b == ',':
			return false
		}
	}
	rest := text[i+4:]
	if rest == "" {
		return true
	}
	switch b := rest[0]; {
	case isWord(b), b == '.', b == '-', b == '/', b == ',':
		return false
	}
	return !hasPrefix(rest, "年")
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWord(b byte) bool {
	return isDigit(b) || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hasPrefix(s, p string) bool { return len(s) >= len(p) && s[:len(p)] == p }

// Rewriter replaces stock numbers under newly added content.
type Rewriter struct {
	Settings *settings.Settings
	Log      *logging.Logger
}

// ProcessBatch handles one batch of added roots. The toggle is read once per
// batch, so switching it off stops future rewriting without touching links
// already made.
func (r *Rewriter) ProcessBatch(ctx context.Context, load *paste.PageLoad, roots []dom.Element) (int, error) {
	toggles, err := r.Settings.Toggles(ctx)
	if err != nil {
		return 0, fmt.Errorf("read toggles: %w", err)
	}
	if !toggles.StockLinkEnabled {
		return 0, nil
	}
	total := 0
	for _, root := range roots {
		n, err := r.process(ctx, load, root)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *Rewriter) process(ctx context.Context, load *paste.PageLoad, root dom.Element) (int, error) {
	log := r.Log
	if log == nil {
		log = logging.Nop()
	}
	id, err := root.ID(ctx)
	if err != nil {
		return 0, err
	}
	if load.Seen(id) {
		return 0, nil
	}
	nodes, err := root.TextNodes(ctx, candidate)
	if err != nil {
		return 0, fmt.Errorf("collect text nodes: %w", err)
	}
	n := 0
	for _, node := range nodes {
		parts := Split(node.Text())
		if parts == nil {
			continue
		}
		if err := node.Replace(ctx, parts); err != nil {
			log.Debug("text node replace failed", "error", err)
			continue
		}
		n++
	}
	if n > 0 {
		log.Debug("stock links added", "nodes", n)
	}
	return n, nil
}
