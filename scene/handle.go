package scene

import "sync"

// Handle is a dense integer identity assigned to every GPU-backed object at
// creation. Renderer caches are flat slices indexed by it. Zero is never
// handed out.
type Handle uint32

// handlePool hands out handles for one object kind and recycles released
// ones, so cache slices stay as short as the number of live objects.
type handlePool struct {
	mu   sync.Mutex
	next Handle
	free []Handle
}

func (p *handlePool) acquire() Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		return h
	}
	p.next++
	return p.next
}

func (p *handlePool) release(h Handle) {
	if h == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, h)
}

var (
	geometryHandles     handlePool
	attributeHandles    handlePool
	materialHandles     handlePool
	textureHandles      handlePool
	renderTargetHandles handlePool
)
