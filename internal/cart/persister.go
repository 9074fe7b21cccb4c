package cart

import "sync"

// MemoryPersister keeps the last saved state in memory
type MemoryPersister struct {
	mu    sync.Mutex
	lines []Line
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Save stores a copy of the lines
func (p *MemoryPersister) Save(lines []Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lines = make([]Line, len(lines))
	copy(p.lines, lines)
	return nil
}

// Saved returns the last saved state
func (p *MemoryPersister) Saved() []Line {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Line, len(p.lines))
	copy(out, p.lines)
	return out
}
