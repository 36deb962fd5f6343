// Package connectivity answers one question: is the network usable right now.
package connectivity

import (
	"net"
	"sync"
	"time"
)

// Oracle reports network reachability. Implementations never panic and never
// block for long; the sync engine consults this before going to the feed.
type Oracle interface {
	Available() bool
}

// Static is a fixed answer, used in tests and as an override.
type Static bool

func (s Static) Available() bool { return bool(s) }

// Prober checks reachability by dialing a well-known host, caching the answer
// for a short TTL so hot paths don't dial on every call.
type Prober struct {
	addr        string
	dialTimeout time.Duration
	ttl         time.Duration

	mu        sync.Mutex
	last      bool
	checkedAt time.Time
}

func NewProber(addr string, dialTimeout, ttl time.Duration) *Prober {
	return &Prober{
		addr:        addr,
		dialTimeout: dialTimeout,
		ttl:         ttl,
	}
}

func (p *Prober) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.checkedAt) < p.ttl {
		return p.last
	}

	conn, err := net.DialTimeout("tcp", p.addr, p.dialTimeout)
	if err == nil {
		conn.Close()
	}

	p.last = err == nil
	p.checkedAt = time.Now()
	return p.last
}
