package ocr

import "sync"

// pageLocks hands out one mutex per cache key so only a single OCR
// invocation per (document, page) is in flight at a time. Lock entries are
// reference-counted and removed once the last holder releases.
type pageLocks struct {
	mu   sync.Mutex
	held map[string]*pageLock
}

type pageLock struct {
	mu   sync.Mutex
	refs int
}

func (p *pageLocks) acquire(key string) (release func()) {
	p.mu.Lock()
	if p.held == nil {
		p.held = make(map[string]*pageLock)
	}
	l, ok := p.held[key]
	if !ok {
		l = &pageLock{}
		p.held[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.held, key)
		}
		p.mu.Unlock()
	}
}
