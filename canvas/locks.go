package canvas

import "sync"

type (
	// idLocks hands out one mutex per object id so writers to the same id
	// serialize while independent ids proceed without coordination. Entries
	// are reference counted and dropped when the last holder unlocks.
	idLocks struct {
		mu      sync.Mutex
		entries map[string]*idLock
	}

	idLock struct {
		mu   sync.Mutex
		refs int
	}
)

func newIDLocks() idLocks {
	return idLocks{entries: make(map[string]*idLock)}
}

// lock acquires the mutex for id and returns the matching unlock func.
func (l *idLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &idLock{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
