package docfill

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome and LibreOffice child processes.
	cpuDivisor = 2
)

// EnginePool manages a pool of Engine instances for parallel generation.
// Each engine has its own browser instance, enabling true parallelism.
// Engines are created lazily on first acquire to avoid startup delay.
type EnginePool struct {
	size    int
	opts    []Option
	engines []*Engine
	sem     chan *Engine
	mu      sync.Mutex
	created int
	closed  bool
}

// NewEnginePool creates a pool with capacity for n engines built with opts.
// Engines are created lazily when acquired, not at pool creation.
func NewEnginePool(n int, opts ...Option) *EnginePool {
	if n < 1 {
		n = 1
	}

	return &EnginePool{
		size:    n,
		opts:    opts,
		engines: make([]*Engine, 0, n),
		sem:     make(chan *Engine, n),
	}
}

// Acquire gets an engine from the pool, creating one if needed.
// Blocks if all engines are in use. Returns ErrEngineClosed once the pool
// is closed.
func (p *EnginePool) Acquire() (*Engine, error) {
	// Try to get an existing engine (non-blocking)
	select {
	case eng, ok := <-p.sem:
		if !ok {
			return nil, ErrEngineClosed
		}
		return eng, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new engine outside the lock
		eng, err := NewEngine(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			_ = eng.Close()
			return nil, ErrEngineClosed
		}
		p.engines = append(p.engines, eng)
		p.mu.Unlock()

		return eng, nil
	}
	p.mu.Unlock()

	// All engines created, wait for one to be released
	eng, ok := <-p.sem
	if !ok {
		return nil, ErrEngineClosed
	}
	return eng, nil
}

// Release returns an engine to the pool. Releasing after Close is a no-op.
// The send happens under the lock so Close cannot close the channel in
// between; it never blocks because at most size engines exist.
func (p *EnginePool) Release(eng *Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- eng:
	default:
	}
}

// Close releases all browser resources.
// Returns an aggregated error if multiple engines fail to close.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	engines := p.engines
	p.mu.Unlock()

	var errs []error
	for _, eng := range engines {
		if err := eng.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *EnginePool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
