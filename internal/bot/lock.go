// README: Per-phone mutual exclusion for session read-modify-write.
package bot

import "sync"

// phoneLocks serializes units of work per phone number. The session
// update path is read-then-decide-then-write, so concurrent webhook
// deliveries for one phone must queue; different phones proceed in
// parallel. Locks are never removed; the phone population of a small
// shop is bounded.
type phoneLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPhoneLocks() *phoneLocks {
	return &phoneLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *phoneLocks) get(phone string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[phone]
	if !ok {
		l = &sync.Mutex{}
		p.locks[phone] = l
	}
	return l
}
