package tui

import (
	"runtime"
	"strings"
)

// OSType represents the operating system type
type OSType int

const (
	OSMac OSType = iota
	OSLinux
	OSWindows
	OSUnknown
)

// GetOS returns the current operating system type
func GetOS() OSType {
	switch runtime.GOOS {
	case "darwin":
		return OSMac
	case "linux":
		return OSLinux
	case "windows":
		return OSWindows
	default:
		return OSUnknown
	}
}

// ShortcutKey represents a keyboard shortcut with OS-specific variations
type ShortcutKey struct {
	Mac     string
	Linux   string
	Windows string
	Default string // Fallback if OS-specific not defined
}

// For returns the shortcut shown on os
func (s ShortcutKey) For(os OSType) string {
	switch os {
	case OSMac:
		if s.Mac != "" {
			return s.Mac
		}
	case OSLinux:
		if s.Linux != "" {
			return s.Linux
		}
	case OSWindows:
		if s.Windows != "" {
			return s.Windows
		}
	}
	return s.Default
}

// Get returns the appropriate shortcut for the current OS
func (s ShortcutKey) Get() string {
	return s.For(GetOS())
}

// Matches accepts the default binding everywhere plus the OS alternative
func (s ShortcutKey) Matches(key string) bool {
	return key == s.Default || key == s.Get()
}

// GetWithWarning returns the shortcut and a warning if there are known issues
func (s ShortcutKey) GetWithWarning() (shortcut string, warning string) {
	shortcut = s.Get()
	switch GetOS() {
	case OSLinux:
		switch shortcut {
		case "ctrl+s":
			warning = "(may need: stty -ixon)"
		case "ctrl+z":
			warning = "(caution: suspends process)"
		}
	case OSWindows:
		if shortcut == "shift+tab" {
			warning = "(terminal dependent)"
		}
	}
	return shortcut, warning
}

// Shortcuts are the chorded keys that collide with terminal or readline
// bindings on some systems. Single keys are matched directly.
var Shortcuts = struct {
	Save       ShortcutKey
	NextTab    ShortcutKey
	Assistant  ShortcutKey
	PostUpdate ShortcutKey
	SignUp     ShortcutKey
}{
	Save: ShortcutKey{
		Mac:     "ctrl+s",
		Linux:   "alt+s", // Avoid Ctrl+S terminal conflict (XOFF)
		Windows: "alt+s",
		Default: "ctrl+s",
	},
	NextTab: ShortcutKey{
		Linux:   "alt+t", // Avoid readline transpose
		Windows: "alt+t",
		Default: "ctrl+t",
	},
	Assistant: ShortcutKey{
		Linux:   "alt+a", // Avoid readline beginning-of-line
		Windows: "alt+a",
		Default: "ctrl+a",
	},
	PostUpdate: ShortcutKey{
		Linux:   "alt+u", // Avoid readline kill-line
		Windows: "alt+u",
		Default: "ctrl+u",
	},
	SignUp: ShortcutKey{
		Default: "ctrl+r",
	},
}

// GetShortcutHelp returns formatted help text for a shortcut
func GetShortcutHelp(name string, key ShortcutKey) string {
	shortcut, warning := key.GetWithWarning()
	if warning != "" {
		return shortcut + " " + name + " " + warning
	}
	return shortcut + " " + name
}

// GetTerminalSetupMessage returns OS-specific terminal setup instructions
func GetTerminalSetupMessage() string {
	switch GetOS() {
	case OSLinux:
		return "TIP: Run 'stty -ixon' if Ctrl+S freezes your terminal, or use " + FormatShortcutForHelp(Shortcuts.Save) + " to save"
	case OSWindows:
		return "TIP: For best experience, use Windows Terminal or PowerShell"
	default:
		return ""
	}
}

// FormatShortcutForHelp formats a shortcut key for display in help text
func FormatShortcutForHelp(key ShortcutKey) string {
	shortcut := key.Get()
	if GetOS() == OSLinux || GetOS() == OSWindows {
		shortcut = strings.ReplaceAll(shortcut, "alt+", "M-")
	} else {
		shortcut = strings.ReplaceAll(shortcut, "alt+", "⌥")
	}
	shortcut = strings.ReplaceAll(shortcut, "ctrl+", "^")
	shortcut = strings.ReplaceAll(shortcut, "shift+", "⇧")
	return shortcut
}
