package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/common-nighthawk/go-figure"
)

// bannerFont is the go-figure font used on the sign-in view.
const bannerFont = "cybermedium"

// signInForm collects credentials.
type signInForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
}

// submitCredentials is returned by [signInForm.Update] when the form is complete.
type submitCredentials struct {
	email    string
	password string
}

func newSignInForm() signInForm {
	email := textinput.New()
	email.Prompt = "Email    "
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Prompt = "Password "
	password.Placeholder = "••••••••"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	f := signInForm{email: email, password: password}
	f.email.Focus()
	return f
}

func (f *signInForm) focusField(i int) tea.Cmd {
	f.focus = i % 2
	if f.focus == 0 {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

// Update advances the form. The returned submission is non-nil when the user confirmed complete credentials.
func (f *signInForm) Update(msg tea.KeyMsg) (*submitCredentials, tea.Cmd) {
	if f.busy {
		return nil, nil
	}

	// Letters are input here, so only non-printable keys move focus.
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return nil, f.focusField(f.focus + 1)
	case tea.KeyEnter:
		if f.focus == 0 {
			return nil, f.focusField(1)
		}
		email := strings.TrimSpace(f.email.Value())
		password := strings.TrimSpace(f.password.Value())
		if email == "" || password == "" {
			return nil, nil
		}
		f.busy = true
		return &submitCredentials{email: email, password: password}, nil
	}

	return nil, f.forward(msg)
}

// reset clears the password and re-enables the form after a failed attempt.
func (f *signInForm) reset() {
	f.busy = false
	f.password.SetValue("")
}

func (f signInForm) View() string {
	var b strings.Builder
	b.WriteString(styles.banner.Render(figure.NewFigure("mrx", bannerFont, true).String()))
	b.WriteString("\n")
	b.WriteString(styles.help.Render("Music rights portal"))
	b.WriteString("\n\n")
	b.WriteString(f.email.View())
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n\n")
	if f.busy {
		b.WriteString(styles.muted.Render("Signing in..."))
	} else {
		b.WriteString(styles.help.Render("enter to continue • tab to switch field • ctrl+c to quit"))
	}
	return b.String()
}

// forward passes msg to the focused field.
func (f *signInForm) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}
