package form

// Selector tracks which single section is active. Moves past either end of
// the declared order are no-ops.
type Selector struct {
	sections []SectionID
	current  int
	onChange []func(SectionID)
}

// NewSelector starts on the first declared section
func NewSelector(sections []SectionID) *Selector {
	return &Selector{sections: append([]SectionID(nil), sections...)}
}

// Current returns the active section
func (s *Selector) Current() SectionID {
	if len(s.sections) == 0 {
		return ""
	}
	return s.sections[s.current]
}

// Index returns the position of the active section
func (s *Selector) Index() int { return s.current }

// Sections returns the declared order
func (s *Selector) Sections() []SectionID {
	return append([]SectionID(nil), s.sections...)
}

func (s *Selector) IsFirst() bool { return s.current == 0 }

func (s *Selector) IsLast() bool { return s.current >= len(s.sections)-1 }

// OnChange registers fn to run whenever the active section changes. The TUI
// uses it to scroll the new section into view.
func (s *Selector) OnChange(fn func(SectionID)) {
	s.onChange = append(s.onChange, fn)
}

// GoTo activates id if it is a declared section
func (s *Selector) GoTo(id SectionID) bool {
	for i, sec := range s.sections {
		if sec == id {
			return s.move(i)
		}
	}
	return false
}

// Next moves one section forward
func (s *Selector) Next() bool {
	if s.IsLast() {
		return false
	}
	return s.move(s.current + 1)
}

// Previous moves one section back
func (s *Selector) Previous() bool {
	if s.IsFirst() {
		return false
	}
	return s.move(s.current - 1)
}

// Reset returns to the first section
func (s *Selector) Reset() bool {
	return s.move(0)
}

func (s *Selector) move(i int) bool {
	if i < 0 || i >= len(s.sections) || i == s.current {
		return false
	}
	s.current = i
	for _, fn := range s.onChange {
		fn(s.sections[i])
	}
	return true
}
