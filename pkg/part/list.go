package part

import (
	"fmt"
	"time"

	"github.com/partstream/partstream/pkg/cache"
)

// List is an ordered, name-unique collection of parts. The chunked
// continuation scheme is only correct when the caller reconstructs the same
// logical list, in the same order, on every request of one cursor session;
// that stability is a caller obligation, not something the engine can check.
type List struct {
	parts  []*Part
	byName map[string]int
}

// Len returns the number of parts.
func (l *List) Len() int { return len(l.parts) }

// At returns the part at the given index.
func (l *List) At(i int) *Part { return l.parts[i] }

// Get looks a part up by name.
func (l *List) Get(name string) (*Part, bool) {
	i, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	return l.parts[i], true
}

// Parts returns the parts in order. The returned slice is shared; callers
// must not mutate it.
func (l *List) Parts() []*Part { return l.parts }

// Slice returns the half-open window [start, end) clamped to the list
// bounds. A start at or past the end yields an empty window.
func (l *List) Slice(start, end int) []*Part {
	if start < 0 {
		start = 0
	}
	if end > len(l.parts) {
		end = len(l.parts)
	}
	if start >= end {
		return nil
	}
	return l.parts[start:end]
}

// Info describes one part without evaluating it.
type Info struct {
	Name         string   `json:"name"`
	Index        int      `json:"index"`
	Type         string   `json:"type"`
	Dependencies []string `json:"dependencies"`
}

// Manifest reflects the shape of the list: ordered part names, laziness and
// position. No producer is invoked.
func (l *List) Manifest() []Info {
	infos := make([]Info, 0, len(l.parts))
	for i, p := range l.parts {
		typ := "lazy"
		if !p.Lazy() {
			typ = "static"
		}
		deps := p.DependsOn()
		if deps == nil {
			deps = []string{}
		}
		infos = append(infos, Info{
			Name:         p.Name(),
			Index:        i,
			Type:         typ,
			Dependencies: deps,
		})
	}
	return infos
}

// Builder assembles a List declaratively. Construction errors accumulate
// and surface once at Build, keeping call sites chainable.
type Builder struct {
	parts []*Part
	err   error
}

// NewBuilder returns an empty list builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an already-constructed part.
func (b *Builder) Add(p *Part) *Builder {
	if b.err != nil {
		return b
	}
	if p == nil {
		b.err = fmt.Errorf("part: nil part")
		return b
	}
	if p.Name() == "" {
		b.err = fmt.Errorf("part: empty part name")
		return b
	}
	b.parts = append(b.parts, p)
	return b
}

// Static appends a precomputed value part.
func (b *Builder) Static(name string, value any) *Builder {
	return b.Add(NewStatic(name, value))
}

// Lazy appends a lazy producer-backed part.
func (b *Builder) Lazy(name string, producer Producer, opts ...Option) *Builder {
	return b.Add(NewFunction(name, producer, true, opts...))
}

// Eager appends a producer-backed part re-invoked on every evaluation.
func (b *Builder) Eager(name string, producer Producer, opts ...Option) *Builder {
	return b.Add(NewFunction(name, producer, false, opts...))
}

// Cached appends a cache-consulting producer-backed part.
func (b *Builder) Cached(name string, producer Producer, store cache.Cache, ttl time.Duration, opts ...Option) *Builder {
	return b.Add(NewCached(name, producer, store, ttl, opts...))
}

// Build finalizes the list, enforcing name uniqueness.
func (b *Builder) Build() (*List, error) {
	if b.err != nil {
		return nil, b.err
	}

	byName := make(map[string]int, len(b.parts))
	for i, p := range b.parts {
		if _, exists := byName[p.Name()]; exists {
			return nil, fmt.Errorf("part: duplicate part name %q", p.Name())
		}
		byName[p.Name()] = i
	}

	return &List{parts: b.parts, byName: byName}, nil
}

// MustBuild is like Build but panics on error. For static part lists known
// correct at compile time.
func (b *Builder) MustBuild() *List {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}
