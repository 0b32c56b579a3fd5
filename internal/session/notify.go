package session

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Notifier shows transient success and error messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator performs a hard redirect, discarding all state tied to the previous identity.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }

// RootPath is the unauthenticated entry point.
const RootPath = "/"

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
)

// LineNotifier writes each notification as a single styled line.
type LineNotifier struct {
	w io.Writer
}

// NewLineNotifier writes to w, or stderr when w is nil.
func NewLineNotifier(w io.Writer) *LineNotifier {
	if w == nil {
		w = os.Stderr
	}
	return &LineNotifier{w: w}
}

func (n *LineNotifier) Success(msg string) {
	fmt.Fprintln(n.w, successStyle.Render("✓ "+msg))
}

func (n *LineNotifier) Error(msg string) {
	fmt.Fprintln(n.w, errorStyle.Render("✗ "+msg))
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopNavigator struct{}

func (nopNavigator) Redirect(string) {}
