package labeler

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned by Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("labeler: pool is closed")

// Pool manages a fixed set of labeler instances for concurrent segmentation.
type Pool struct {
	labelers chan Labeler
	size     int
	mu       sync.Mutex
	closed   bool
}

// NewPool opens size labelers from backend.
func NewPool(backend Backend, size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	pool := &Pool{
		labelers: make(chan Labeler, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		l, err := backend.NewLabeler()
		if err != nil {
			_ = pool.Close() // Best-effort cleanup; original error takes precedence
			return nil, fmt.Errorf("opening labeler %d: %w", i, err)
		}
		pool.labelers <- l
	}

	return pool, nil
}

// Acquire gets a labeler from the pool, blocking if none is available.
// Respects context cancellation. Returns ErrPoolClosed if the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (Labeler, error) {
	select {
	case l, ok := <-p.labelers:
		if !ok {
			return nil, ErrPoolClosed
		}
		return l, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a labeler to the pool.
func (p *Pool) Release(l Labeler) {
	if l == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = l.Close() // Pool closed; clean up instance
		return
	}

	select {
	case p.labelers <- l:
	default:
		_ = l.Close() // Pool full; clean up excess instance
	}
}

// Close closes all idle labelers. Instances still checked out are closed
// when they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.labelers)
	p.mu.Unlock()

	var errs []error
	for l := range p.labelers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}
