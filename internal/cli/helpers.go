package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Global flags (set from the cmd package)
var (
	quiet       bool
	noColor     bool
	skipConfirm bool
)

// Output streams, swapped by tests
var (
	stdout io.Writer     = color.Output
	stderr io.Writer     = color.Error
	stdin  *bufio.Reader = bufio.NewReader(os.Stdin)
)

var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// SetGlobalFlags sets the global flag values from the cmd package
func SetGlobalFlags(q, nc, sc bool) {
	quiet = q
	noColor = nc
	skipConfirm = sc
	if nc {
		color.NoColor = true
	}
}

// SetStreams redirects prompts and messages, returning a func that restores
// the previous streams
func SetStreams(in io.Reader, out, errOut io.Writer) func() {
	prevIn, prevOut, prevErr := stdin, stdout, stderr
	stdin, stdout, stderr = bufio.NewReader(in), out, errOut
	return func() {
		stdin, stdout, stderr = prevIn, prevOut, prevErr
	}
}

// Stdout is where command output goes
func Stdout() io.Writer { return stdout }

// Confirm prompts the user for confirmation
func Confirm(prompt string, defaultYes bool) (bool, error) {
	if skipConfirm {
		return true, nil
	}

	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}
	fmt.Fprint(stdout, prompt+suffix)

	response, err := readLine()
	if err != nil {
		return false, err
	}
	response = strings.ToLower(response)
	if response == "" {
		return defaultYes, nil
	}
	return response == "y" || response == "yes", nil
}

// Prompt asks for a single line of input
func Prompt(label string) (string, error) {
	fmt.Fprint(stdout, label+": ")
	return readLine()
}

func readLine() (string, error) {
	response, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || response == "") {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// PrintSuccess prints a success message unless quiet mode is enabled
func PrintSuccess(format string, args ...any) {
	if quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(stdout, "OK: %s\n", msg)
		return
	}
	successColor.Fprintf(stdout, "✓ %s\n", msg)
}

// PrintInfo prints an info message unless quiet mode is enabled
func PrintInfo(format string, args ...any) {
	if quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(stdout, "INFO: %s\n", msg)
		return
	}
	infoColor.Fprintf(stdout, "ℹ %s\n", msg)
}

// PrintWarning prints a warning message to stderr
func PrintWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(stderr, "WARNING: %s\n", msg)
		return
	}
	warnColor.Fprintf(stderr, "⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(stderr, "ERROR: %s\n", msg)
		return
	}
	errorColor.Fprintf(stderr, "✗ %s\n", msg)
}
