package repository

import (
	"sync"

	"signalengine/src/model"
)

// PositionRepository keeps open positions in memory in arrival order.
// Positions are owned by the caller; the repository only indexes them.
type PositionRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*model.Position
}

func NewPositionRepository() *PositionRepository {
	return &PositionRepository{byID: make(map[string]*model.Position)}
}

func (r *PositionRepository) Add(p *model.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		r.byID[p.ID] = p
		return
	}
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
}

func (r *PositionRepository) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *PositionRepository) Get(id string) (*model.Position, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// All returns the tracked positions in arrival order.
func (r *PositionRepository) All() []*model.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Position, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *PositionRepository) BySymbol(symbol string) []*model.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Position
	for _, id := range r.order {
		if p := r.byID[id]; p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out
}

// Symbols lists distinct symbols in first-seen order.
func (r *PositionRepository) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.order))
	var out []string
	for _, id := range r.order {
		s := r.byID[id].Symbol
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (r *PositionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
