package position

import "sync"

// symbolLocks serializes work per symbol.
type symbolLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (s *symbolLocks) lock(symbol string) (unlock func()) {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		s.locks[symbol] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
