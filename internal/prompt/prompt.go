// Package prompt implements the interactive login flow that collects and
// stores the credentials.
package prompt

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/tradebump/tradebump/internal/credentials"
	"github.com/tradebump/tradebump/internal/types"
)

var ErrAborted = errors.New("aborted by user")

// CredentialInputError is returned if the entered credentials are invalid or
// the user aborted the prompt. Nothing is stored in that case.
type CredentialInputError struct {
	Err error
}

func (e *CredentialInputError) Error() string {
	return fmt.Sprintf("login aborted: %v", e.Err)
}

func (e *CredentialInputError) Unwrap() error {
	return e.Err
}

// A Prompter asks the user for credentials.
type Prompter interface {
	Prompt(initial types.Credentials) (types.Credentials, error)
}

// Login prompts for credentials, validates them and saves them to the store.
// Stored credentials, if any, prefill the prompt except for the password.
func Login(p Prompter, store credentials.Store) (types.Credentials, error) {
	initial, err := store.Get()
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return types.Credentials{}, err
	}
	initial.Password = ""

	c, err := p.Prompt(initial)
	if err != nil {
		return types.Credentials{}, &CredentialInputError{Err: err}
	}
	if err := credentials.Validate(c); err != nil {
		return types.Credentials{}, &CredentialInputError{Err: err}
	}
	if err := store.Set(c); err != nil {
		return types.Credentials{}, fmt.Errorf("failed to save credentials: %w", err)
	}
	return c, nil
}

// fieldStatus returns the status line text after a field was edited. It is
// empty if the value is valid.
func fieldStatus(field, value string) string {
	if err := credentials.ValidateField(field, value); err != nil {
		return fmt.Sprintf("[red]%s", err)
	}
	return ""
}

// FormPrompter shows a terminal form with a masked password field.
type FormPrompter struct {
	Title string
}

func (f *FormPrompter) Prompt(initial types.Credentials) (types.Credentials, error) {
	app := tview.NewApplication()
	c := initial
	submitted := false

	status := tview.NewTextView().SetDynamicColors(true)
	form := tview.NewForm().
		AddInputField("Username", c.Username, 40, nil, func(text string) {
			c.Username = text
			status.SetText(fieldStatus("Username", text))
		}).
		AddInputField("Email address", c.EmailAddress, 40, nil, func(text string) {
			c.EmailAddress = text
			status.SetText(fieldStatus("EmailAddress", text))
		}).
		AddPasswordField("Password", "", 40, '*', func(text string) {
			c.Password = text
			status.SetText(fieldStatus("Password", text))
		})
	form.AddButton("Save", func() {
		// keep the form open until the input is valid, the user can still cancel
		if err := credentials.Validate(c); err != nil {
			status.SetText(fmt.Sprintf("[red]%s", err))
			return
		}
		submitted = true
		app.Stop()
	}).
		AddButton("Cancel", func() { app.Stop() }).
		SetCancelFunc(func() { app.Stop() }).
		SetFieldBackgroundColor(tcell.ColorDarkSlateGray).
		SetButtonBackgroundColor(tcell.ColorDarkCyan)
	form.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", f.Title)).SetTitleAlign(tview.AlignLeft)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 11, 0, true).
		AddItem(status, 1, 0, false)

	if err := app.SetRoot(layout, true).SetFocus(form).Run(); err != nil {
		return types.Credentials{}, err
	}
	if !submitted {
		return types.Credentials{}, ErrAborted
	}
	return c, nil
}
