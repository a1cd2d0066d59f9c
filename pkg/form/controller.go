package form

import (
	"context"
	"log/slog"
)

// Outcome is what a successful submit asks the view to do next
type Outcome struct {
	Entity *Entity
	// NavigateTo is the id of the detail view to open, set by create flows
	NavigateTo string
}

// Controller drives one form instance: its store, change dispatcher,
// section navigation and submit gateway.
type Controller struct {
	schema     *Schema
	mode       Mode
	store      *Store
	dispatcher *Dispatcher
	selector   *Selector
	navigator  *Navigator
	gateway    *Gateway
	logger     *slog.Logger

	source   *Entity
	baseline Values
}

// NewCreateController returns a blank form with gated navigation
func NewCreateController(schema *Schema, gw *Gateway) *Controller {
	return newController(schema, gw, ModeCreate, GatedNavigation)
}

// NewEditController returns a form seeded from entity with free navigation
func NewEditController(schema *Schema, gw *Gateway, entity *Entity) *Controller {
	c := newController(schema, gw, ModeUpdate, FreeNavigation)
	c.Load(entity)
	return c
}

func newController(schema *Schema, gw *Gateway, mode Mode, policy Policy) *Controller {
	store := NewStore(schema)
	selector := NewSelector(schema.Sections)
	c := &Controller{
		schema:     schema,
		mode:       mode,
		store:      store,
		dispatcher: NewDispatcher(store),
		selector:   selector,
		gateway:    gw,
		logger:     gw.logger,
	}
	c.navigator = NewNavigator(selector, schema, policy, store.Get)
	c.baseline = store.Get()
	return c
}

func (c *Controller) Schema() *Schema { return c.schema }

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) Gateway() *Gateway { return c.gateway }

func (c *Controller) Selector() *Selector { return c.selector }

func (c *Controller) Navigator() *Navigator { return c.navigator }

// Values returns a snapshot of the form state
func (c *Controller) Values() Values { return c.store.Get() }

// Value returns one field's current value
func (c *Controller) Value(name string) any { return c.store.Value(name) }

// Revision changes whenever the form state does
func (c *Controller) Revision() uint64 { return c.store.Revision() }

// Source returns the entity the form was loaded from, nil in create flows
func (c *Controller) Source() *Entity { return c.source }

// Load seeds the form from entity. It is a no-op when the entity has the same
// identity as the one already loaded, so in-progress edits survive refetches.
func (c *Controller) Load(entity *Entity) bool {
	if entity == nil {
		return false
	}
	if c.source != nil && c.source.ID == entity.ID {
		return false
	}
	c.seed(entity)
	return true
}

// CancelEdit discards local edits and restores the loaded entity, or the
// blank template in create flows.
func (c *Controller) CancelEdit() {
	if c.source != nil {
		c.seed(c.source)
		return
	}
	c.store.Reset(nil)
	c.baseline = c.store.Get()
	c.dispatcher.ClearHints()
	c.gateway.ClearError()
	c.selector.Reset()
}

func (c *Controller) seed(entity *Entity) {
	c.source = entity
	c.store.Reset(entity.Values)
	c.baseline = c.store.Get()
	c.dispatcher.ClearHints()
	c.gateway.ClearError()
	c.logger.Debug("form loaded", "form", c.schema.Name, "id", entity.ID)
}

// Set dispatches one raw text change
func (c *Controller) Set(field, raw string) (bool, error) {
	return c.dispatcher.Dispatch(Change{Field: field, Raw: raw})
}

// SetValue dispatches an already typed value
func (c *Controller) SetValue(field string, val any) (bool, error) {
	return c.dispatcher.DispatchValue(field, val)
}

// SetCoordinates updates location, latitude and longitude at once
func (c *Controller) SetCoordinates(location string, lat, lng *float64) bool {
	return c.dispatcher.DispatchCoordinates(location, lat, lng)
}

// Subscribe registers a listener for applied changes
func (c *Controller) Subscribe(l Listener) { c.dispatcher.Subscribe(l) }

// Current returns the active section
func (c *Controller) Current() SectionID { return c.selector.Current() }

func (c *Controller) Next() (bool, error) { return c.navigator.Next() }

func (c *Controller) Previous() (bool, error) { return c.navigator.Previous() }

func (c *Controller) GoTo(id SectionID) (bool, error) { return c.navigator.GoTo(id) }

// Dirty reports whether the form differs from what was loaded
func (c *Controller) Dirty() bool {
	return len(c.store.Get().Diff(c.baseline)) > 0
}

// Busy reports whether a submit is in flight
func (c *Controller) Busy() bool { return c.gateway.Busy() }

// Err returns the error slot
func (c *Controller) Err() string { return c.gateway.Err() }

// FieldMessage returns the message to show under a field: a pending input
// hint first, then a validation or server message from the last submit.
func (c *Controller) FieldMessage(field string) string {
	if h := c.dispatcher.Hint(field); h != "" {
		return h
	}
	return c.gateway.Result().FieldErrors[field]
}

// Request builds the submission for the current state. In update mode only
// changed fields are sent, and an unchanged form yields ErrNoChanges.
func (c *Controller) Request() (SubmitRequest, error) {
	values := c.store.Get()
	req := SubmitRequest{Mode: c.mode, Values: values}
	if c.mode == ModeUpdate {
		if c.source == nil {
			return req, ErrNoChanges
		}
		req.ID = c.source.ID
		req.Payload = values.Diff(c.baseline)
		if len(req.Payload) == 0 {
			return req, ErrNoChanges
		}
	}
	return req, nil
}

// Apply records a successful submission. Updates re-seed the form from the
// returned entity; creates ask the view to navigate to it.
func (c *Controller) Apply(entity *Entity) Outcome {
	if entity == nil {
		return Outcome{}
	}
	if c.mode == ModeUpdate {
		c.seed(entity)
		return Outcome{Entity: entity}
	}
	return Outcome{Entity: entity, NavigateTo: entity.ID}
}

// Submit runs Request, the gateway and Apply in one call. Views that submit
// from a background command call those steps separately.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	req, err := c.Request()
	if err != nil {
		return Outcome{}, err
	}
	entity, err := c.gateway.Submit(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	return c.Apply(entity), nil
}
