package testhelpers

import (
	"reflect"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultWait bounds each command run by Run. Ticks and other timers that
// take longer are dropped.
const DefaultWait = 500 * time.Millisecond

// Run executes cmd and returns the messages it produces, flattening
// batches and sequences. Commands that have not returned within wait are
// abandoned.
func Run(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	return runAll([]tea.Cmd{cmd}, wait)
}

// runAll runs cmds concurrently and keeps their order in the result
func runAll(cmds []tea.Cmd, wait time.Duration) []tea.Msg {
	results := make([][]tea.Msg, len(cmds))
	var wg sync.WaitGroup
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runOne(cmd, wait)
		}()
	}
	wg.Wait()

	var out []tea.Msg
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func runOne(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(wait):
		return nil
	}

	switch m := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		return runAll(m, wait)
	}
	// tea.sequenceMsg is unexported; it is a slice of commands too
	if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == reflect.TypeOf(tea.Cmd(nil)) {
		cmds := make([]tea.Cmd, v.Len())
		for i := range cmds {
			cmds[i] = v.Index(i).Interface().(tea.Cmd)
		}
		return runAll(cmds, wait)
	}
	return []tea.Msg{msg}
}

// Find returns the first message of type T
func Find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Updater is any model whose Update returns only a command
type Updater interface {
	Update(tea.Msg) tea.Cmd
}

// Settle feeds msg to m, runs the resulting commands and feeds their
// messages back until nothing is left or rounds is reached. It returns
// every message seen after the first.
func Settle(m Updater, msg tea.Msg, wait time.Duration, rounds int) []tea.Msg {
	var seen []tea.Msg
	queue := []tea.Msg{msg}
	for range rounds {
		if len(queue) == 0 {
			break
		}
		var next []tea.Msg
		for _, q := range queue {
			next = append(next, Run(m.Update(q), wait)...)
		}
		seen = append(seen, next...)
		queue = next
	}
	return seen
}
