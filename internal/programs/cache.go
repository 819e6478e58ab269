// Package programs assembles, compiles and caches shader programs. A
// material's state is flattened into Parameters; equal parameter keys share
// one linked program, reference counted by the materials using it.
package programs

import (
	"fmt"
	"log/slog"

	"retained-renderer/gpu"
)

// Cache owns every live program.
type Cache struct {
	gl       gpu.Context
	lib      *Library
	log      *slog.Logger
	programs []*Program
	nextID   int
}

// NewCache validates lib and returns an empty cache. A nil lib uses the
// built-in library.
func NewCache(gl gpu.Context, lib *Library, logger *slog.Logger) (*Cache, error) {
	if lib == nil {
		lib = DefaultLibrary()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("shader library: %w", err)
	}
	return &Cache{gl: gl, lib: lib, log: logger}, nil
}

// Library returns the chunk and template library programs are built from.
func (c *Cache) Library() *Library { return c.lib }

// Acquire returns the program for p, building it on a miss. Each call takes
// one reference.
func (c *Cache) Acquire(p *Parameters) *Program {
	code := p.Key()
	for _, prog := range c.programs {
		if prog.Code == code {
			prog.UsedTimes++
			return prog
		}
	}
	prog := newProgram(c.gl, c.lib, c.log, c.nextID, code, p)
	c.nextID++
	c.programs = append(c.programs, prog)
	return prog
}

// Release drops one reference and destroys the program when none are left.
func (c *Cache) Release(prog *Program) {
	if prog == nil {
		return
	}
	prog.UsedTimes--
	if prog.UsedTimes > 0 {
		return
	}
	for i, p := range c.programs {
		if p == prog {
			last := len(c.programs) - 1
			c.programs[i] = c.programs[last]
			c.programs[last] = nil
			c.programs = c.programs[:last]
			break
		}
	}
	prog.Destroy()
}

// Programs lists the live programs.
func (c *Cache) Programs() []*Program { return c.programs }

// Reset forgets every program without touching the GPU. Used after the
// context was lost, when the GL names are already invalid.
func (c *Cache) Reset() {
	clear(c.programs)
	c.programs = c.programs[:0]
}
