package driver

import (
	"context"
	"errors"
	"testing"
)

func TestMockDriverRecordsCalls(t *testing.T) {
	page := `<html><body><button id="btn">go</button></body></html>`
	m := NewMockDriver(map[string]string{"https://example.com": page})
	ctx := context.Background()

	if err := m.Navigate(ctx, "https://example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Click(ctx, "#btn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html, err := m.OuterHTML(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != page {
		t.Fatalf("expected page content, got %q", html)
	}

	expected := []Call{
		{Op: OpNavigate, Arg: "https://example.com"},
		{Op: OpClick, Arg: "#btn", URL: "https://example.com"},
		{Op: OpOuterHTML, URL: "https://example.com"},
	}
	if len(m.Calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(m.Calls), m.Calls)
	}
	for i, c := range expected {
		if m.Calls[i] != c {
			t.Errorf("call %d: expected %+v, got %+v", i, c, m.Calls[i])
		}
	}
}

func TestMockDriverFailOn(t *testing.T) {
	m := NewMockDriver(nil)
	boom := errors.New("boom")
	m.FailOn = func(c Call) error {
		if c.Op == OpNavigate && c.Arg == "https://bad.example.com" {
			return boom
		}
		return nil
	}
	ctx := context.Background()

	if err := m.Navigate(ctx, "https://bad.example.com"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if m.CurrentURL() != "" {
		t.Fatalf("failed navigation must not change the current url, got %s", m.CurrentURL())
	}
	if _, err := m.OuterHTML(ctx); err == nil {
		t.Fatal("expected page not found error")
	}
}

func TestMockDriverEvaluate(t *testing.T) {
	m := NewMockDriver(nil)
	m.Evaluations["window.location.href"] = "$url"
	m.Evaluations["1+1"] = 2
	ctx := context.Background()
	_ = m.Navigate(ctx, "https://example.com/a")

	var href string
	if err := m.Evaluate(ctx, "window.location.href", &href); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if href != "https://example.com/a" {
		t.Errorf("expected current url, got %s", href)
	}
	var n int
	if err := m.Evaluate(ctx, "1+1", &n); err != nil || n != 2 {
		t.Errorf("expected 2, got %d (%v)", n, err)
	}
	if err := m.Evaluate(ctx, "unknown()", &n); err == nil {
		t.Error("expected an error for an unknown expression")
	}
}

func TestMockDriverClosed(t *testing.T) {
	m := NewMockDriver(nil)
	m.Close()
	if err := m.Navigate(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected an error after Close")
	}
}

func TestMockDriverMissingElement(t *testing.T) {
	m := NewMockDriver(map[string]string{"https://example.com": `<html><body><input id="email"></body></html>`})
	ctx := context.Background()
	_ = m.Navigate(ctx, "https://example.com")

	if err := m.Focus(ctx, "#email"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Click(ctx, ".edit"); !errors.Is(err, ErrNoSuchElement) {
		t.Fatalf("expected ErrNoSuchElement, got %v", err)
	}
	if err := m.Focus(ctx, "#password"); !errors.Is(err, ErrNoSuchElement) {
		t.Fatalf("expected ErrNoSuchElement, got %v", err)
	}
}
