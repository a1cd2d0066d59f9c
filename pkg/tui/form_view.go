package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildtrack/buildtrack-terminal/pkg/form"
)

// formSubmittedMsg carries the gateway result back to the view that started it
type formSubmittedMsg struct {
	view   *FormView
	entity *form.Entity
	err    error
}

// formSavedMsg tells the owner of a FormView that a submit succeeded
type formSavedMsg struct {
	view    *FormView
	outcome form.Outcome
}

// fieldInput is the editor for one field. Enum and boolean fields have no
// text editor; they cycle with left/right and toggle with space.
type fieldInput struct {
	spec  form.FieldSpec
	text  textinput.Model
	area  textarea.Model
	multi bool
}

func newFieldInput(spec form.FieldSpec, width int) *fieldInput {
	fi := &fieldInput{spec: spec, multi: spec.Multiline}
	if fi.multi {
		ta := textarea.New()
		ta.ShowLineNumbers = false
		ta.Placeholder = spec.Placeholder
		ta.SetWidth(width)
		ta.SetHeight(3)
		ta.Blur()
		fi.area = ta
		return fi
	}
	ti := textinput.New()
	ti.Placeholder = spec.Placeholder
	ti.Prompt = ""
	ti.Width = width
	if form.Secret(spec.Name) {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	fi.text = ti
	return fi
}

func (fi *fieldInput) editable() bool {
	return fi.spec.Kind != form.KindEnum && fi.spec.Kind != form.KindBoolean
}

func (fi *fieldInput) value() string {
	if fi.multi {
		return fi.area.Value()
	}
	return fi.text.Value()
}

func (fi *fieldInput) setValue(s string) {
	if fi.multi {
		fi.area.SetValue(s)
		return
	}
	fi.text.SetValue(s)
	fi.text.CursorEnd()
}

func (fi *fieldInput) focus() tea.Cmd {
	if !fi.editable() {
		return nil
	}
	if fi.multi {
		return fi.area.Focus()
	}
	return fi.text.Focus()
}

func (fi *fieldInput) blur() {
	if fi.multi {
		fi.area.Blur()
		return
	}
	fi.text.Blur()
}

func (fi *fieldInput) setWidth(w int) {
	if fi.multi {
		fi.area.SetWidth(w)
		return
	}
	fi.text.Width = w
}

func (fi *fieldInput) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if fi.multi {
		fi.area, cmd = fi.area.Update(msg)
		return cmd
	}
	fi.text, cmd = fi.text.Update(msg)
	return cmd
}

func (fi *fieldInput) view() string {
	if fi.multi {
		return fi.area.View()
	}
	return fi.text.View()
}

// FormView renders and edits one form.Controller: the active section's
// fields, section tabs, hints, the error slot and a busy spinner.
type FormView struct {
	ctrl       *form.Controller
	inputs     map[string]*fieldInput
	focus      int
	width      int
	readOnly   bool
	timeout    time.Duration
	spinner    spinner.Model
	submitting bool // set before the gateway reports busy
	notice     string
	showHelp   bool
}

// NewFormView wraps ctrl. Submits time out after timeout.
func NewFormView(ctrl *form.Controller, timeout time.Duration) *FormView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	v := &FormView{
		ctrl:     ctrl,
		inputs:   map[string]*fieldInput{},
		width:    60,
		timeout:  timeout,
		spinner:  s,
		showHelp: true,
	}
	for _, f := range ctrl.Schema().Fields {
		v.inputs[f.Name] = newFieldInput(f, v.inputWidth())
	}
	ctrl.Selector().OnChange(func(form.SectionID) {
		v.focus = 0
	})
	v.Sync()
	return v
}

func (v *FormView) Controller() *form.Controller { return v.ctrl }

// SetReadOnly disables editing and submit; navigation still works
func (v *FormView) SetReadOnly(ro bool) { v.readOnly = ro }

func (v *FormView) ReadOnly() bool { return v.readOnly }

func (v *FormView) SetShowHelp(show bool) { v.showHelp = show }

func (v *FormView) SetWidth(w int) {
	v.width = w
	for _, fi := range v.inputs {
		fi.setWidth(v.inputWidth())
	}
}

func (v *FormView) inputWidth() int {
	return max(v.width-4, 20)
}

// Sync copies the form state into the editors, after a load or reset
func (v *FormView) Sync() {
	values := v.ctrl.Values()
	for name, fi := range v.inputs {
		fi.setValue(form.Display(values[name]))
	}
}

// Focused returns the focused field of the active section
func (v *FormView) Focused() (form.FieldSpec, bool) {
	fields := v.ctrl.Schema().FieldsIn(v.ctrl.Current())
	if len(fields) == 0 {
		return form.FieldSpec{}, false
	}
	v.focus = min(max(v.focus, 0), len(fields)-1)
	return fields[v.focus], true
}

// Init focuses the first field
func (v *FormView) Init() tea.Cmd {
	return v.refocus()
}

func (v *FormView) refocus() tea.Cmd {
	for _, fi := range v.inputs {
		fi.blur()
	}
	if v.readOnly {
		return nil
	}
	spec, ok := v.Focused()
	if !ok {
		return nil
	}
	return v.inputs[spec.Name].focus()
}

// Update handles keys and submit results. It reports whether the message
// was consumed so the owner can handle the rest.
func (v *FormView) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case formSubmittedMsg:
		if msg.view != v {
			return false, nil
		}
		return true, v.handleSubmitted(msg)

	case spinner.TickMsg:
		if !v.Saving() {
			return false, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return true, cmd

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return false, nil
}

func (v *FormView) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()
	if Shortcuts.Save.Matches(key) {
		return true, v.Submit()
	}
	switch key {
	case "tab", "down":
		return true, v.moveFocus(1)
	case "shift+tab", "up":
		return true, v.moveFocus(-1)
	case "ctrl+n", "pgdown":
		return true, v.navigate(v.ctrl.Next)
	case "ctrl+p", "pgup":
		return true, v.navigate(v.ctrl.Previous)
	}

	if n, ok := sectionShortcut(key); ok {
		sections := v.ctrl.Schema().Sections
		if n <= len(sections) {
			id := sections[n-1]
			return true, v.navigate(func() (bool, error) { return v.ctrl.GoTo(id) })
		}
		return true, nil
	}

	if v.readOnly {
		return false, nil
	}
	spec, ok := v.Focused()
	if !ok {
		return false, nil
	}
	fi := v.inputs[spec.Name]

	switch spec.Kind {
	case form.KindEnum:
		switch key {
		case "left", "h":
			v.cycleOption(spec, -1)
			return true, nil
		case "right", "l", " ":
			v.cycleOption(spec, 1)
			return true, nil
		}
		return false, nil
	case form.KindBoolean:
		if key == " " || key == "enter" {
			_, _ = v.ctrl.SetValue(spec.Name, !v.ctrl.Values().Bool(spec.Name))
			v.notice = ""
			return true, nil
		}
		return false, nil
	}

	if key == "esc" {
		return false, nil
	}
	if key == "enter" && !fi.multi {
		return true, v.moveFocus(1)
	}
	cmd := fi.update(msg)
	// parse failures leave the stored value alone and set a hint
	_, _ = v.ctrl.Set(spec.Name, fi.value())
	v.notice = ""
	return true, cmd
}

// sectionShortcut maps alt+1..alt+9 to a 1-based section number
func sectionShortcut(key string) (int, bool) {
	digit, ok := strings.CutPrefix(key, "alt+")
	if !ok || len(digit) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (v *FormView) cycleOption(spec form.FieldSpec, step int) {
	if len(spec.Options) == 0 {
		return
	}
	current := v.ctrl.Values().String(spec.Name)
	idx := 0
	for i, o := range spec.Options {
		if o.Value == current {
			idx = i
		}
	}
	idx = (idx + step + len(spec.Options)) % len(spec.Options)
	_, _ = v.ctrl.Set(spec.Name, spec.Options[idx].Value)
	v.notice = ""
}

func (v *FormView) moveFocus(step int) tea.Cmd {
	fields := v.ctrl.Schema().FieldsIn(v.ctrl.Current())
	if len(fields) == 0 {
		return nil
	}
	v.focus = (v.focus + step + len(fields)) % len(fields)
	return v.refocus()
}

func (v *FormView) navigate(move func() (bool, error)) tea.Cmd {
	moved, err := move()
	if err != nil {
		var incomplete *form.IncompleteSectionError
		if errors.As(err, &incomplete) {
			v.notice = "Complete " + v.ctrl.Schema().Title(incomplete.Section) + " first"
		} else {
			v.notice = err.Error()
		}
		return nil
	}
	if moved {
		v.notice = ""
	}
	return v.refocus()
}

// Submit starts a background submission of the current state
func (v *FormView) Submit() tea.Cmd {
	if v.readOnly || v.Saving() {
		return nil
	}
	req, err := v.ctrl.Request()
	if errors.Is(err, form.ErrNoChanges) {
		v.notice = "No changes to save"
		return nil
	}
	if err != nil {
		v.notice = err.Error()
		return nil
	}
	v.notice = ""
	v.submitting = true
	gw := v.ctrl.Gateway()
	timeout := v.timeout
	submit := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entity, err := gw.Submit(ctx, req)
		return formSubmittedMsg{view: v, entity: entity, err: err}
	}
	return tea.Batch(submit, v.spinner.Tick)
}

// Saving reports whether a submission started here has not reported back
func (v *FormView) Saving() bool {
	return v.submitting || v.ctrl.Busy()
}

func (v *FormView) handleSubmitted(msg formSubmittedMsg) tea.Cmd {
	if errors.Is(msg.err, form.ErrSubmitInFlight) {
		return nil
	}
	v.submitting = false
	if msg.err != nil {
		var serr *form.SubmitError
		if errors.As(msg.err, &serr) {
			v.jumpToField(serr.Fields)
		}
		return v.refocus()
	}
	outcome := v.ctrl.Apply(msg.entity)
	v.Sync()
	return func() tea.Msg { return formSavedMsg{view: v, outcome: outcome} }
}

// jumpToField moves to the first section with a field error when the
// navigation policy allows it
func (v *FormView) jumpToField(errs form.ValidationErrors) {
	schema := v.ctrl.Schema()
	best := -1
	for _, name := range errs.Fields() {
		spec, ok := schema.Field(name)
		if !ok {
			continue
		}
		if i := schema.SectionIndex(spec.Section); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best >= 0 {
		_, _ = v.ctrl.GoTo(schema.Sections[best])
	}
}

// Cancel discards local edits
func (v *FormView) Cancel() tea.Cmd {
	v.ctrl.CancelEdit()
	v.Sync()
	v.notice = ""
	return v.refocus()
}

// View renders the active section
func (v *FormView) View() string {
	var b strings.Builder
	schema := v.ctrl.Schema()

	if len(schema.Sections) > 1 {
		b.WriteString(v.renderTabs())
		b.WriteString("\n\n")
	}

	focused, _ := v.Focused()
	values := v.ctrl.Values()
	for _, spec := range schema.FieldsIn(v.ctrl.Current()) {
		isFocused := spec.Name == focused.Name && !v.readOnly
		label := LabelStyle.Render(spec.Label)
		if isFocused {
			label = FocusedLabelStyle.Render("▸ " + spec.Label)
		}
		if spec.Required {
			label += RequiredMarkStyle.Render(" *")
		}
		b.WriteString(label + "\n")
		b.WriteString(v.renderValue(spec, values) + "\n")
		if msg := v.ctrl.FieldMessage(spec.Name); msg != "" {
			b.WriteString(HintStyle.Render("  "+msg) + "\n")
		}
		b.WriteString("\n")
	}

	if v.Saving() {
		b.WriteString(v.spinner.View() + " Saving...\n")
	} else if msg := v.ctrl.Err(); msg != "" {
		b.WriteString(ErrorStyle.Render(msg) + "\n")
	} else if v.notice != "" {
		b.WriteString(HintStyle.Render(v.notice) + "\n")
	}

	if v.showHelp {
		b.WriteString(v.help())
	}
	return b.String()
}

func (v *FormView) renderValue(spec form.FieldSpec, values form.Values) string {
	switch spec.Kind {
	case form.KindEnum:
		current := values.String(spec.Name)
		parts := make([]string, 0, len(spec.Options))
		for _, o := range spec.Options {
			if o.Value == current {
				parts = append(parts, SelectedStyle.Render(o.Label))
			} else {
				parts = append(parts, NormalStyle.Render(o.Label))
			}
		}
		return "  ‹ " + strings.Join(parts, "  ") + " ›"
	case form.KindBoolean:
		if values.Bool(spec.Name) {
			return "  [x] yes"
		}
		return "  [ ] no"
	}
	if v.readOnly {
		text := form.Display(values[spec.Name])
		if text == "" {
			return EmptyStyle.Render("  (empty)")
		}
		if form.Secret(spec.Name) {
			text = strings.Repeat("•", len(text))
		}
		return "  " + text
	}
	return v.inputs[spec.Name].view()
}

func (v *FormView) renderTabs() string {
	schema := v.ctrl.Schema()
	nav := v.ctrl.Navigator()
	current := v.ctrl.Selector().Index()
	tabs := make([]string, 0, len(schema.Sections))
	for i, id := range schema.Sections {
		label := fmt.Sprintf("%d %s", i+1, schema.Title(id))
		switch {
		case i == current:
			tabs = append(tabs, ActiveTabStyle.Render(label))
		case !nav.CanReach(id):
			tabs = append(tabs, LockedTabStyle.Render(label))
		default:
			tabs = append(tabs, InactiveTabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (v *FormView) help() string {
	keys := []string{"tab next field", "ctrl+n/ctrl+p section"}
	if len(v.ctrl.Schema().Sections) == 1 {
		keys = keys[:1]
	}
	if v.ctrl.Navigator().Policy() == form.FreeNavigation && len(v.ctrl.Schema().Sections) > 1 {
		keys = append(keys, "alt+1..9 jump")
	}
	if spec, ok := v.Focused(); ok && !v.readOnly {
		switch spec.Kind {
		case form.KindEnum:
			keys = append(keys, "←/→ choose")
		case form.KindBoolean:
			keys = append(keys, "space toggle")
		}
	}
	if !v.readOnly {
		keys = append(keys, GetShortcutHelp("save", Shortcuts.Save), "esc cancel")
	}
	return renderHelp(v.width, keys...)
}
