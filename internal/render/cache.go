package render

import (
	"html/template"
	"sync"

	"github.com/Zachkp/folio/internal/portfolio"
)

type cacheKey struct {
	kind     portfolio.Kind
	editMode bool
}

// Cache memoizes rendered sections and drops them when the portfolio
// reports a change to their kind.
type Cache struct {
	r *Renderer
	p *portfolio.Portfolio

	mu    sync.Mutex
	frags map[cacheKey]template.HTML
	gen   map[portfolio.Kind]uint64
}

// NewCache subscribes to p so every mutation re-projects the affected
// section on next use.
func NewCache(r *Renderer, p *portfolio.Portfolio) *Cache {
	c := &Cache{
		r:     r,
		p:     p,
		frags: make(map[cacheKey]template.HTML),
		gen:   make(map[portfolio.Kind]uint64),
	}
	p.OnChange(c.Invalidate)
	return c
}

func (c *Cache) Invalidate(kind portfolio.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[kind]++
	delete(c.frags, cacheKey{kind, false})
	delete(c.frags, cacheKey{kind, true})
}

// Section returns the rendered container content for kind.
func (c *Cache) Section(kind portfolio.Kind, editMode bool) (template.HTML, error) {
	key := cacheKey{kind, editMode}
	c.mu.Lock()
	if html, ok := c.frags[key]; ok {
		c.mu.Unlock()
		return html, nil
	}
	gen := c.gen[kind]
	c.mu.Unlock()

	html, err := c.r.Section(c.p, kind, editMode)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	// A change that landed while rendering makes this result stale.
	if c.gen[kind] == gen {
		c.frags[key] = html
	}
	c.mu.Unlock()
	return html, nil
}
