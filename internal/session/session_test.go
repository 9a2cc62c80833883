package session

import (
	"context"
	"errors"
	"testing"

	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/driver"
	"github.com/tradebump/tradebump/internal/types"
)

var (
	site = &config.SiteConfig{
		LoginURL:         "https://trades.example.com/login",
		EmailSelector:    "#email",
		PasswordSelector: "#password",
		LoginSubmit:      "#submit",
	}
	creds = types.Credentials{
		Username:     "bumpmaster",
		EmailAddress: "bump@example.com",
		Password:     "secret",
	}
)

func TestLogin(t *testing.T) {
	d := driver.NewMockDriver(nil)
	m := NewManager(site, d)

	s, err := m.Login(context.Background(), creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Username != "bumpmaster" {
		t.Errorf("expected username bumpmaster, got %s", s.Username)
	}
	if s.Driver != d {
		t.Error("session must be bound to the driver that logged in")
	}

	expected := []string{
		"navigate(https://trades.example.com/login)",
		"focus(#email)",
		"type(bump@example.com)",
		"focus(#password)",
		"type(secret)",
		"click(#submit)",
		"wait()",
	}
	if len(d.Calls) != len(expected) {
		t.Fatalf("expected %d calls, got %v", len(expected), d.Calls)
	}
	for i, e := range expected {
		if d.Calls[i].String() != e {
			t.Errorf("call %d: expected %s, got %s", i, e, d.Calls[i])
		}
	}
}

func TestLoginFailure(t *testing.T) {
	timeout := errors.New("navigation timeout")
	d := driver.NewMockDriver(nil)
	d.FailOn = func(c driver.Call) error {
		if c.Op == driver.OpFocus && c.Arg == "#password" {
			return timeout
		}
		return nil
	}
	m := NewManager(site, d)

	s, err := m.Login(context.Background(), creds)
	if s != nil {
		t.Fatal("expected no session")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an AuthError, got %T: %v", err, err)
	}
	if authErr.Step != "focus the password field" {
		t.Errorf("unexpected step %q", authErr.Step)
	}
	if !errors.Is(err, timeout) {
		t.Error("AuthError must wrap the driver error")
	}
	// no retry, nothing after the failing step
	if last := d.Calls[len(d.Calls)-1]; last.Arg != "#password" {
		t.Errorf("expected the failing call to be the last one, got %s", last)
	}
}

func TestLoginMissingField(t *testing.T) {
	d := driver.NewMockDriver(map[string]string{
		site.LoginURL: `<html><body><input id="email"><button id="login">Log in</button></body></html>`,
	})
	m := NewManager(site, d)

	_, err := m.Login(context.Background(), creds)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an AuthError, got %T: %v", err, err)
	}
	if authErr.Step != "focus the password field" {
		t.Errorf("unexpected step %q", authErr.Step)
	}
	if !errors.Is(err, driver.ErrNoSuchElement) {
		t.Errorf("expected ErrNoSuchElement, got %v", err)
	}
}
