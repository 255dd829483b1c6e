package usecase

import "sync"

// nameLocker serializes mutations per prompt name, so read-modify-write
// sequences spanning multiple repository calls cannot interleave for the
// same prompt. Reads do not take these locks.
type nameLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newNameLocker() *nameLocker {
	return &nameLocker{
		locks: make(map[string]*lockEntry),
	}
}

// Lock acquires the lock for name and returns its unlock function. Entries
// are dropped once the last holder releases, so the map stays bounded by the
// number of in-flight mutations.
func (l *nameLocker) Lock(name string) func() {
	l.mu.Lock()
	e, ok := l.locks[name]
	if !ok {
		e = &lockEntry{}
		l.locks[name] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, name)
		}
		l.mu.Unlock()
	}
}
