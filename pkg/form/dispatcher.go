package form

import "errors"

// Change is one raw input event for a single field. An empty Kind means the
// field's declared kind.
type Change struct {
	Field string
	Raw   string
	Kind  FieldKind
}

// Listener is notified after a change was applied to the store
type Listener func(field string, snapshot Values)

// Dispatcher is the single entry point that turns input events into store
// mutations.
type Dispatcher struct {
	store     *Store
	hints     map[string]string
	listeners []Listener
}

func NewDispatcher(store *Store) *Dispatcher {
	return &Dispatcher{store: store, hints: map[string]string{}}
}

// Subscribe registers a listener for applied changes
func (d *Dispatcher) Subscribe(l Listener) {
	d.listeners = append(d.listeners, l)
}

// Dispatch applies c to the store. It reports whether the store changed;
// listeners only run in that case. Rejected values are remembered as hints.
func (d *Dispatcher) Dispatch(c Change) (bool, error) {
	spec, ok := d.store.Schema().Field(c.Field)
	if !ok {
		return false, &FieldError{Field: c.Field, Raw: c.Raw, Err: ErrUnknownField}
	}
	if c.Kind != "" && c.Kind != spec.Kind {
		return false, &FieldError{Field: c.Field, Raw: c.Raw, Err: ErrKindMismatch}
	}

	changed, err := d.store.Set(c.Field, c.Raw)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			d.hints[c.Field] = fe.Err.Error()
		}
		return false, err
	}
	delete(d.hints, c.Field)
	if changed {
		d.notify(c.Field)
	}
	return changed, nil
}

// DispatchValue applies an already typed value, as toggles and pickers
// produce. A successful set clears the field's pending hint.
func (d *Dispatcher) DispatchValue(field string, val any) (bool, error) {
	changed, err := d.store.SetValue(field, val)
	if err != nil {
		return false, err
	}
	delete(d.hints, field)
	if changed {
		d.notify(field)
	}
	return changed, nil
}

// DispatchCoordinates applies a picked place: the location name and its
// coordinates change together, and nil coordinates clear them.
func (d *Dispatcher) DispatchCoordinates(location string, lat, lng *float64) bool {
	changed := d.store.SetCoordinates(location, lat, lng)
	for _, f := range coordinateFields {
		delete(d.hints, f)
	}
	if changed {
		d.notify(coordinateFields...)
	}
	return changed
}

var coordinateFields = []string{"location", "latitude", "longitude"}

func (d *Dispatcher) notify(fields ...string) {
	snapshot := d.store.Get()
	for _, f := range fields {
		for _, l := range d.listeners {
			l(f, snapshot)
		}
	}
}

// Hint returns the pending input hint for a field
func (d *Dispatcher) Hint(field string) string {
	return d.hints[field]
}

// Hints returns a copy of every pending input hint
func (d *Dispatcher) Hints() map[string]string {
	out := make(map[string]string, len(d.hints))
	for k, v := range d.hints {
		out[k] = v
	}
	return out
}

// ClearHints drops all pending hints, used when the record is reset
func (d *Dispatcher) ClearHints() {
	d.hints = map[string]string{}
}
