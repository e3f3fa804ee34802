package service

import "sync"

// garageLocks hands out one mutex per garage so that the snapshot-read,
// admission check and persist of a mutating call are atomic relative to
// other requests on the same garage. Requests for different garages never
// contend.
type garageLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newGarageLocks() *garageLocks {
	return &garageLocks{locks: make(map[int64]*sync.Mutex)}
}

func (g *garageLocks) forGarage(id int64) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[id]
	if !ok {
		l = &sync.Mutex{}
		g.locks[id] = l
	}
	return l
}
