package filter

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Presets holds named filters, typically loaded from configuration.
type Presets[T any] struct {
	compiler Compiler[T]
	mu       sync.RWMutex
	filters  map[string]CompiledFilter[T]
}

// NewPresets creates an empty preset registry backed by compiler.
func NewPresets[T any](compiler Compiler[T]) *Presets[T] {
	return &Presets[T]{
		compiler: compiler,
		filters:  make(map[string]CompiledFilter[T]),
	}
}

// Register compiles expression and stores it under name, replacing any
// previous filter with that name.
func (p *Presets[T]) Register(name, expression string) error {
	f, err := p.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	p.mu.Lock()
	p.filters[name] = f
	p.mu.Unlock()
	return nil
}

// RegisterAll compiles every expression first and registers none of them if
// any fails.
func (p *Presets[T]) RegisterAll(expressions map[string]string) error {
	compiled := make(map[string]CompiledFilter[T], len(expressions))
	for name, expression := range expressions {
		f, err := p.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = f
	}

	p.mu.Lock()
	maps.Copy(p.filters, compiled)
	p.mu.Unlock()
	return nil
}

// Get returns the filter registered under name.
func (p *Presets[T]) Get(name string) (CompiledFilter[T], error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	f, ok := p.filters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return f, nil
}

// Resolve returns the preset named value, or compiles value as an
// expression when no such preset exists.
func (p *Presets[T]) Resolve(value string) (CompiledFilter[T], error) {
	p.mu.RLock()
	f, ok := p.filters[value]
	p.mu.RUnlock()
	if ok {
		return f, nil
	}
	return p.compiler.Compile(value)
}

// Names returns the registered preset names in sorted order.
func (p *Presets[T]) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Sorted(maps.Keys(p.filters))
}
