// Package driver provides the page driver, the browser level capability used to
// interact with the trading site.
package driver

import (
	"context"
	"errors"
)

// ErrNoSuchElement is returned by Focus and Click if no element matches the
// selector. They never wait for a matching element to appear.
var ErrNoSuchElement = errors.New("no element matches")

// A Driver drives a single browser tab. Calls must not be made concurrently.
type Driver interface {
	// Navigate loads url and returns once the page has finished loading.
	Navigate(ctx context.Context, url string) error
	// Focus focuses the first element matching selector. A missing element
	// is an ErrNoSuchElement.
	Focus(ctx context.Context, selector string) error
	// Type sends text as key events to the focused element.
	Type(ctx context.Context, text string) error
	// Click clicks the first element matching selector. A missing element
	// is an ErrNoSuchElement.
	Click(ctx context.Context, selector string) error
	// WaitForNavigation blocks until a navigation triggered since the last
	// Click has finished loading.
	WaitForNavigation(ctx context.Context) error
	// Evaluate evaluates the javascript expression in the page and stores
	// the result in res.
	Evaluate(ctx context.Context, expression string, res any) error
	// OuterHTML returns the current document's rendered html.
	OuterHTML(ctx context.Context) (string, error)
	// Close releases the browser.
	Close()
}

// A Screenshotter can capture the current page as png.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}
