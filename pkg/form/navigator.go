package form

// Policy decides whether forward movement is gated on section completeness
type Policy int

const (
	// FreeNavigation lets any section be reached at any time
	FreeNavigation Policy = iota
	// GatedNavigation requires the sections being left behind to be complete
	// before moving forward; moving back is always allowed.
	GatedNavigation
)

func (p Policy) String() string {
	if p == GatedNavigation {
		return "gated"
	}
	return "free"
}

// Navigator exposes next/previous/jump over a Selector under a Policy
type Navigator struct {
	selector *Selector
	schema   *Schema
	policy   Policy
	values   func() Values
}

// NewNavigator wires a navigator to the selector and a values provider
func NewNavigator(selector *Selector, schema *Schema, policy Policy, values func() Values) *Navigator {
	return &Navigator{selector: selector, schema: schema, policy: policy, values: values}
}

func (n *Navigator) Policy() Policy { return n.policy }

func (n *Navigator) Selector() *Selector { return n.selector }

// Next moves forward one section. Under GatedNavigation an incomplete
// current section blocks the move with an *IncompleteSectionError.
func (n *Navigator) Next() (bool, error) {
	if n.selector.IsLast() {
		return false, nil
	}
	if err := n.gate(n.selector.Index() + 1); err != nil {
		return false, err
	}
	return n.selector.Next(), nil
}

// Previous moves back one section; never gated
func (n *Navigator) Previous() (bool, error) {
	return n.selector.Previous(), nil
}

// GoTo jumps to a section. Unknown sections are a no-op. Under
// GatedNavigation, jumping forward requires every section before the target
// to be complete.
func (n *Navigator) GoTo(id SectionID) (bool, error) {
	target := n.schema.SectionIndex(id)
	if target < 0 {
		return false, nil
	}
	if err := n.gate(target); err != nil {
		return false, err
	}
	return n.selector.GoTo(id), nil
}

// CanAdvance reports whether Next would be allowed
func (n *Navigator) CanAdvance() bool {
	return !n.selector.IsLast() && n.gate(n.selector.Index()+1) == nil
}

// CanReach reports whether GoTo(id) would be allowed
func (n *Navigator) CanReach(id SectionID) bool {
	target := n.schema.SectionIndex(id)
	return target >= 0 && n.gate(target) == nil
}

// gate checks the sections between the current one and target
func (n *Navigator) gate(target int) error {
	if n.policy != GatedNavigation || target <= n.selector.Index() {
		return nil
	}
	values := n.values()
	for i := n.selector.Index(); i < target; i++ {
		sec := n.selector.sections[i]
		if ok, missing := SectionComplete(n.schema, values, sec); !ok {
			return &IncompleteSectionError{Section: sec, Missing: missing}
		}
	}
	return nil
}
