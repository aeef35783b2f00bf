package hnswbuild

import "sync"

// VectorPool reuses []float32 buffers keyed by dimension so repeated
// per-call scratch work (normalizing a query vector before scoring it)
// does not allocate on every call. Pools are created lazily, one per
// distinct dimension seen.
type VectorPool struct {
	mu    sync.RWMutex
	pools map[int]*sync.Pool
}

// NewVectorPool returns an empty pool.
func NewVectorPool() *VectorPool {
	return &VectorPool{pools: make(map[int]*sync.Pool)}
}

func (p *VectorPool) poolFor(dim int) *sync.Pool {
	p.mu.RLock()
	pool, ok := p.pools[dim]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[dim]; ok {
		return pool
	}
	pool = &sync.Pool{
		New: func() interface{} {
			return make([]float32, dim)
		},
	}
	p.pools[dim] = pool
	return pool
}

// Get returns a zeroed buffer of length dim, allocating one only if the
// pool for that dimension is empty.
func (p *VectorPool) Get(dim int) []float32 {
	buf := p.poolFor(dim).Get().([]float32)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Put returns buf to the pool keyed by its own length. Buffers of
// length zero are dropped rather than pooled.
func (p *VectorPool) Put(buf []float32) {
	if len(buf) == 0 {
		return
	}
	p.poolFor(len(buf)).Put(buf)
}
