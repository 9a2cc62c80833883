// Package session authenticates a browser session with the trading site.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/driver"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/types"
)

// AuthError is returned if the login flow could not be completed.
type AuthError struct {
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed while trying to %s: %v", e.Step, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Session is an authenticated browser tab. It is owned by a single goroutine.
type Session struct {
	Driver   driver.Driver
	Username string
}

// Manager logs into the site using the configured login form.
type Manager struct {
	site   *config.SiteConfig
	driver driver.Driver
}

func NewManager(site *config.SiteConfig, d driver.Driver) *Manager {
	return &Manager{site: site, driver: d}
}

// Login fills and submits the login form. Success is assumed once the
// navigation after submitting completes without an error; the resulting
// page is not inspected.
func (m *Manager) Login(ctx context.Context, creds types.Credentials) (*Session, error) {
	logger := log.LoggerFromContext(ctx).With(slog.String("component", "session"))
	logger.Info(fmt.Sprintf("logging in as %s", creds.Username))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"open the login page", func() error { return m.driver.Navigate(ctx, m.site.LoginURL) }},
		{"focus the email field", func() error { return m.driver.Focus(ctx, m.site.EmailSelector) }},
		{"enter the email address", func() error { return m.driver.Type(ctx, creds.EmailAddress) }},
		{"focus the password field", func() error { return m.driver.Focus(ctx, m.site.PasswordSelector) }},
		{"enter the password", func() error { return m.driver.Type(ctx, creds.Password) }},
		{"submit the login form", func() error { return m.driver.Click(ctx, m.site.LoginSubmit) }},
		{"wait for the login to complete", func() error { return m.driver.WaitForNavigation(ctx) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			logger.Error(fmt.Sprintf("login failed: could not %s", s.name))
			return nil, &AuthError{Step: s.name, Err: err}
		}
	}

	logger.Info(fmt.Sprintf("logged in as %s", creds.Username))
	return &Session{Driver: m.driver, Username: creds.Username}, nil
}
