package locator

import (
	"context"
	"fmt"

	"github.com/kernel/autopaste/internal/dom"
)

// Finder is one entry of a prioritized editor lookup.
type Finder struct {
	Name string
	find func(ctx context.Context, doc dom.Document) (dom.Element, bool, error)
}

// Find runs the lookup against doc.
func (f Finder) Find(ctx context.Context, doc dom.Document) (dom.Element, bool, error) {
	return f.find(ctx, doc)
}

// Selector matches the first element for css.
func Selector(css string) Finder {
	return Finder{
		Name: css,
		find: func(ctx context.Context, doc dom.Document) (dom.Element, bool, error) {
			return doc.Query(ctx, css)
		},
	}
}

// FirstVisible matches the first element for css that is rendered.
func FirstVisible(css string) Finder {
	return Finder{
		Name: fmt.Sprintf("%s:visible", css),
		find: func(ctx context.Context, doc dom.Document) (dom.Element, bool, error) {
			els, err := doc.QueryAll(ctx, css)
			if err != nil {
				return nil, false, err
			}
			for _, el := range els {
				visible, err := el.Visible(ctx)
				if err != nil {
					return nil, false, err
				}
				if visible {
					return el, true, nil
				}
			}
			return nil, false, nil
		},
	}
}
