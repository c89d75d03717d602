package navigation

// Descriptor is one history entry: what to show, with which parameter, and
// the view instance once it has been created. TypeKey and Parameter never
// change after creation.
//
// An entry's saved state lives in the SessionStore under PageKeyFor(depth).
// The key follows the entry's position, not the entry itself.
type Descriptor struct {
	typeKey   TypeKey
	parameter any
	persist   bool
	decode    ParameterDecoder

	instance Page
	created  bool
}

func newDescriptor(typeKey TypeKey, parameter any) *Descriptor {
	return &Descriptor{
		typeKey:   typeKey,
		parameter: parameter,
		persist:   true,
	}
}

// TypeKey returns the identifier of the view factory for this entry.
func (d *Descriptor) TypeKey() TypeKey {
	return d.typeKey
}

// Parameter returns the value the entry was created with.
func (d *Descriptor) Parameter() any {
	return d.parameter
}

// Persistent reports whether the entry survives session serialization.
func (d *Descriptor) Persistent() bool {
	return d.persist
}

// Instance returns the view instance, or nil if it has not been created yet.
func (d *Descriptor) Instance() Page {
	return d.instance
}

// Created reports whether the view instance exists.
func (d *Descriptor) Created() bool {
	return d.created
}

func (d *Descriptor) setInstance(page Page) {
	d.instance = page
	d.created = true
}
