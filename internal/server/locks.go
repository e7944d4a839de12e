package server

import "sync"

// sessionLocks serialises interactions per session name. Different sessions
// never block each other.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: map[string]*lockEntry{}}
}

// lock blocks until name is free and returns the matching unlock. Entries are
// dropped once no request holds or waits for them.
func (l *sessionLocks) lock(name string) func() {
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

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
