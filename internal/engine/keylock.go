package engine

import "sync"

// keyLocks serializes mutating operations per (owner, timeline) key.
// Different keys proceed independently. Locks are never reclaimed; the
// map grows with the number of distinct keys seen, which is bounded by
// the number of timelines in use.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the key and returns its unlock func.
func (k *keyLocks) lock(ownerID, timeline string) func() {
	key := ownerID + "\x00" + timeline
	k.mu.Lock()
	l, ok := k.m[key]
	if !ok {
		l = &sync.Mutex{}
		k.m[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
