// Package registry holds the static field table that maps telemetry field
// names to compact integer keys and fixed-point scale factors.
//
// A Registry is built once at startup from configuration (or from the
// built-in [Default] table) and is read-only afterward, so it is safe to
// share across goroutines without locking.
package registry

import (
	"fmt"

	"github.com/sonde-labs/sondebridge/internal/telemetry"
)

// FlatScale is the single global multiplier used by the legacy flat
// registry layout, where every numeric field shares one scale.
const FlatScale = 1e5

// Descriptor declares one recognized field: its name, its compact wire
// key, and the multiplier applied before integer rounding on encode.
type Descriptor struct {
	Name  string
	Key   int64
	Scale float64
}

// Registry is an immutable name<->key bijection with per-field scales.
type Registry struct {
	byName map[string]Descriptor
	byKey  map[int64]string
}

// New builds a registry from the given descriptors. It fails when a name
// or key is declared twice, when a key is negative, or when a scale is
// not positive; the name<->key mapping must be a bijection.
func New(fields []Descriptor) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Descriptor, len(fields)),
		byKey:  make(map[int64]string, len(fields)),
	}
	for _, d := range fields {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: empty field name", telemetry.ErrInvalidRegistry)
		}
		if d.Key < 0 {
			return nil, fmt.Errorf("%w: field %q: negative key %d", telemetry.ErrInvalidRegistry, d.Name, d.Key)
		}
		if d.Scale <= 0 {
			return nil, fmt.Errorf("%w: field %q: scale must be positive, got %v", telemetry.ErrInvalidRegistry, d.Name, d.Scale)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", telemetry.ErrInvalidRegistry, d.Name)
		}
		if prev, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("%w: key %d claimed by both %q and %q", telemetry.ErrInvalidRegistry, d.Key, prev, d.Name)
		}
		r.byName[d.Name] = d
		r.byKey[d.Key] = d.Name
	}
	return r, nil
}

// Flat builds a legacy flat registry: a plain name->key table where every
// field shares the one global scale. It is expressed as a special case of
// the extended per-field form.
func Flat(keys map[string]int64, scale float64) (*Registry, error) {
	fields := make([]Descriptor, 0, len(keys))
	for name, key := range keys {
		fields = append(fields, Descriptor{Name: name, Key: key, Scale: scale})
	}
	return New(fields)
}

// KeyFor returns the compact key for a field name, reporting presence.
func (r *Registry) KeyFor(name string) (int64, bool) {
	d, ok := r.byName[name]
	return d.Key, ok
}

// NameFor returns the field name for a compact key, reporting presence.
func (r *Registry) NameFor(key int64) (string, bool) {
	name, ok := r.byKey[key]
	return name, ok
}

// ScaleFor returns the scale for a field name. Unregistered fields get
// the identity scale 1.
func (r *Registry) ScaleFor(name string) float64 {
	if d, ok := r.byName[name]; ok {
		return d.Scale
	}
	return 1
}

// ScaleForKey returns the scale for a compact key, defaulting to 1.
func (r *Registry) ScaleForKey(key int64) float64 {
	if name, ok := r.byKey[key]; ok {
		return r.byName[name].Scale
	}
	return 1
}

// Len returns the number of registered fields.
func (r *Registry) Len() int { return len(r.byName) }

// Descriptors returns a snapshot of the registered fields for diagnostics.
// Order is unspecified.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	return out
}
