package posts

import (
	"context"
	"sync"

	"github.com/postlyhq/postly/internal/postly"
)

// Pager owns the pagination cursor for one feed view. The cursor is explicit
// state guarded by an in-flight flag, so overlapping Refresh/LoadMore calls
// can't race it: a call that arrives while another is running reports Loading
// and changes nothing.
//
// The cursor only advances after a page actually lands, so an abandoned load
// never strands it past the data.
type Pager struct {
	engine   *Engine
	pageSize int

	mu       sync.Mutex
	inFlight bool
	page     int // last successfully loaded page, 0 before the first refresh
	more     bool
}

func NewPager(engine *Engine, pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		engine:   engine,
		pageSize: pageSize,
		more:     true,
	}
}

// Refresh loads page one and resets the cursor.
func (p *Pager) Refresh(ctx context.Context) postly.Result[[]postly.Post] {
	return p.load(ctx, 1)
}

// LoadMore loads the page after the last successful one.
func (p *Pager) LoadMore(ctx context.Context) postly.Result[[]postly.Post] {
	p.mu.Lock()
	next := p.page + 1
	if !p.more {
		p.mu.Unlock()
		return postly.Ok([]postly.Post{})
	}
	p.mu.Unlock()

	return p.load(ctx, next)
}

func (p *Pager) load(ctx context.Context, page int) postly.Result[[]postly.Post] {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return postly.Loading[[]postly.Post]()
	}
	p.inFlight = true
	p.mu.Unlock()

	res := p.engine.GetPosts(ctx, page, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	if fetched, ok := res.Value(); ok {
		if page == 1 || len(fetched) > 0 {
			p.page = page
		}
		p.more = len(fetched) == p.pageSize
	}

	return res
}

// Page reports the last successfully loaded page.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// CanLoadMore reports whether the last load filled a whole page.
func (p *Pager) CanLoadMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.more
}
