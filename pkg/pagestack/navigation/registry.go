package navigation

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// TypeKey is a type-safe identifier for a kind of page.
// Applications should define their own TypeKey constants.
//
// Example:
//
//	const (
//	    PageHome     navigation.TypeKey = "home"
//	    PageSettings navigation.TypeKey = "settings"
//	)
type TypeKey string

// Factory creates the view instance for a history entry.
// It receives the entry's parameter and is called at most once per entry.
type Factory func(parameter any) (Page, error)

// ParameterDecoder rebuilds a parameter from its serialized form during
// session restore. Without one, parameters decode into generic JSON values
// (string, float64, bool, []any, map[string]any), and saving a session fails
// with ErrParameterNotRestorable for any parameter that would not come back
// equal that way, such as an int or a struct.
type ParameterDecoder func(raw json.RawMessage) (any, error)

// PageOption customizes a page registration.
type PageOption func(*pageEntry)

// WithDecoder sets the decoder used to restore this page's parameter.
func WithDecoder(decode ParameterDecoder) PageOption {
	return func(e *pageEntry) {
		e.decode = decode
	}
}

// WithoutPersistence excludes this page, and every entry above it, from
// serialized sessions. Use it for transient pages such as dialogs.
func WithoutPersistence() PageOption {
	return func(e *pageEntry) {
		e.persist = false
	}
}

// DecodeAs returns a ParameterDecoder that unmarshals into a value of type T.
func DecodeAs[T any]() ParameterDecoder {
	return func(raw json.RawMessage) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

type pageEntry struct {
	factory Factory
	decode  ParameterDecoder
	persist bool
}

// Registry maps page type keys to their factories. Pages are registered once
// at startup, before the first navigation.
type Registry struct {
	mu    sync.RWMutex
	pages map[TypeKey]*pageEntry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		pages: make(map[TypeKey]*pageEntry),
	}
}

// Register adds a page type. Registering the same key twice replaces it.
func (r *Registry) Register(key TypeKey, factory Factory, opts ...PageOption) *Registry {
	entry := &pageEntry{factory: factory, persist: true}
	for _, opt := range opts {
		opt(entry)
	}

	r.mu.Lock()
	r.pages[key] = entry
	r.mu.Unlock()
	return r
}

// Registered reports whether key has a factory.
func (r *Registry) Registered(key TypeKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pages[key]
	return ok
}

// Keys returns the registered type keys in sorted order.
func (r *Registry) Keys() []TypeKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]TypeKey, 0, len(r.pages))
	for k := range r.pages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (r *Registry) lookup(key TypeKey) (*pageEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pages[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, key)
	}
	return entry, nil
}

// describe builds a descriptor for key, carrying the registration's
// persistence preference.
func (r *Registry) describe(key TypeKey, parameter any) (*Descriptor, error) {
	entry, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	d := newDescriptor(key, parameter)
	d.persist = entry.persist
	d.decode = entry.decode
	return d, nil
}

func (r *Registry) create(key TypeKey, parameter any) (Page, error) {
	entry, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	page, err := entry.factory(parameter)
	if err != nil {
		return nil, &GuardError{Op: "create_page", TypeKey: key, Err: err}
	}
	return page, nil
}

func (r *Registry) decodeParameter(key TypeKey, raw json.RawMessage) (any, error) {
	entry, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return decodeParameterWith(entry.decode, raw)
}

// decodeParameterWith decodes raw with decode, or into generic JSON values
// when decode is nil.
func decodeParameterWith(decode ParameterDecoder, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if decode != nil {
		return decode(raw)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
