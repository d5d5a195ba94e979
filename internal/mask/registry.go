package mask

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/monitoring"
)

var logf = monitoring.Component("Registry")

// Builder turns a parameter set into a mask layer using the channels of p.
type Builder func(p echogram.Provider, params Params) (*Layer, error)

// Layer is a built mask. Binary and flag layers carry Cells; continuous
// layers carry Values. Obs holds the observation parameters of the pings.
type Layer struct {
	Kind   Kind
	Cells  *echogram.Mask
	Values *echogram.Grid
	Obs    echogram.ObsParams
}

// Dims returns the shape of the layer.
func (l *Layer) Dims() (rows, cols int) {
	if l.Kind == KindContinuous && l.Values != nil {
		return l.Values.Dims()
	}
	if l.Cells == nil {
		return 0, 0
	}
	return l.Cells.Rows, l.Cells.Cols
}

// Handle identifies one registered parameter set.
type Handle struct {
	Kind  Kind
	Name  string
	Index int
}

func (h Handle) String() string {
	return fmt.Sprintf("%s/%s#%d", h.Kind, h.Name, h.Index)
}

// Entry is one row of Registry.Enumerate.
type Entry struct {
	Handle Handle
	Params Params
}

type key struct {
	kind Kind
	name string
}

type definition struct {
	builder Builder
	params  []Params
}

// Registry holds mask definitions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	defs  map[key]*definition
	order []key // first-registration order
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[key]*definition)}
}

// Reset removes every definition. Handles issued earlier no longer resolve.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[key]*definition)
	r.order = nil
}

// Register adds params to the (kind, name) definition and returns its handle.
//
// The builder always replaces the definition's current builder, so earlier
// parameter sets are built with the most recently registered function.
// Registering a parameter set equal to one already present returns the
// existing handle and leaves the list unchanged.
func (r *Registry) Register(kind Kind, name string, builder Builder, params Params) (Handle, error) {
	if !kind.Valid() {
		return Handle{}, fmt.Errorf("%w: %v", ErrInvalidMaskType, kind)
	}
	if builder == nil {
		return Handle{}, ErrNilBuilder
	}
	if params == nil {
		return Handle{}, fmt.Errorf("%w: nil parameters for %s/%s", ErrInvalidParams, kind, name)
	}
	if !reflect.TypeOf(params).Comparable() {
		return Handle{}, fmt.Errorf("%w: %T is not comparable", ErrInvalidParams, params)
	}
	if err := params.Validate(); err != nil {
		return Handle{}, fmt.Errorf("register %s/%s: %w", kind, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{kind, name}
	def, ok := r.defs[k]
	if !ok {
		r.defs[k] = &definition{builder: builder, params: []Params{params}}
		r.order = append(r.order, k)
		logf("registered %s/%s#0", kind, name)
		return Handle{Kind: kind, Name: name, Index: 0}, nil
	}

	def.builder = builder
	for i, existing := range def.params {
		if existing == params {
			monitoring.Warnf("[Registry] duplicate parameters for %s/%s, reusing index %d", kind, name, i)
			return Handle{Kind: kind, Name: name, Index: i}, nil
		}
	}
	def.params = append(def.params, params)
	idx := len(def.params) - 1
	logf("registered %s/%s#%d", kind, name, idx)
	return Handle{Kind: kind, Name: name, Index: idx}, nil
}

// Resolve returns the current builder and the parameter set named by h.
func (r *Registry) Resolve(h Handle) (Builder, Params, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[key{h.Kind, h.Name}]
	if !ok || h.Index < 0 || h.Index >= len(def.params) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return def.builder, def.params[h.Index], nil
}

// Enumerate lists every registered parameter set, grouped by kind in
// enumeration order, then by name in first-registration order, then by
// index.
func (r *Registry) Enumerate() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, kind := range Kinds {
		for _, k := range r.order {
			if k.kind != kind {
				continue
			}
			for i, p := range r.defs[k].params {
				out = append(out, Entry{Handle: Handle{Kind: k.kind, Name: k.name, Index: i}, Params: p})
			}
		}
	}
	return out
}

// Build resolves h and runs its builder against p.
func (r *Registry) Build(p echogram.Provider, h Handle) (*Layer, error) {
	builder, params, err := r.Resolve(h)
	if err != nil {
		return nil, err
	}
	layer, err := builder(p, params)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", h, err)
	}
	if layer == nil || layer.Kind != h.Kind {
		return nil, fmt.Errorf("%w: %s", ErrKindMismatch, h)
	}
	if (layer.Kind == KindContinuous && layer.Values == nil) || (layer.Kind != KindContinuous && layer.Cells == nil) {
		return nil, fmt.Errorf("build %s: builder returned an empty layer", h)
	}
	_, cols := layer.Dims()
	if err := layer.Obs.Validate(cols); err != nil {
		return nil, fmt.Errorf("build %s: %w", h, err)
	}
	return layer, nil
}
