package driver

import (
	"errors"
	"testing"

	"github.com/chromedp/cdproto/cdp"
)

func TestFirstNode(t *testing.T) {
	if _, err := firstNode(".edit", nil); !errors.Is(err, ErrNoSuchElement) {
		t.Fatalf("expected ErrNoSuchElement, got %v", err)
	}

	first := &cdp.Node{NodeID: 7}
	n, err := firstNode(".edit", []*cdp.Node{first, {NodeID: 8}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != first {
		t.Errorf("expected the first node, got %+v", n)
	}
}
