package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Op names a Driver method in recorded calls.
type Op string

const (
	OpNavigate          Op = "navigate"
	OpFocus             Op = "focus"
	OpType              Op = "type"
	OpClick             Op = "click"
	OpWaitForNavigation Op = "wait"
	OpEvaluate          Op = "evaluate"
	OpOuterHTML         Op = "html"
)

// Call is one recorded Driver call.
type Call struct {
	Op  Op
	Arg string
	// URL is the page the driver was on when the call was made.
	URL string
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Op, c.Arg)
}

// MockDriver serves canned pages and records every call. It is meant for
// tests and dry runs.
type MockDriver struct {
	// Pages maps urls to the html returned by OuterHTML. On a known page,
	// Focus and Click fail with ErrNoSuchElement if nothing matches the
	// selector. On unknown pages every selector matches.
	Pages map[string]string
	// Evaluations maps expressions to results. The special expression
	// result "$url" evaluates to the current url.
	Evaluations map[string]any
	// FailOn is consulted before every call. A non-nil error fails the call.
	FailOn func(c Call) error
	// OnCall is invoked after every successful call.
	OnCall func(c Call)

	Calls   []Call
	current string
	closed  bool
}

func NewMockDriver(pages map[string]string) *MockDriver {
	if pages == nil {
		pages = map[string]string{}
	}
	return &MockDriver{
		Pages:       pages,
		Evaluations: map[string]any{},
	}
}

func (m *MockDriver) call(ctx context.Context, op Op, arg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.closed {
		return errors.New("driver closed")
	}
	c := Call{Op: op, Arg: arg, URL: m.current}
	m.Calls = append(m.Calls, c)
	if m.FailOn != nil {
		if err := m.FailOn(c); err != nil {
			return err
		}
	}
	if m.OnCall != nil {
		m.OnCall(c)
	}
	return nil
}

func (m *MockDriver) Navigate(ctx context.Context, urlStr string) error {
	if err := m.call(ctx, OpNavigate, urlStr); err != nil {
		return err
	}
	m.current = urlStr
	return nil
}

func (m *MockDriver) Focus(ctx context.Context, selector string) error {
	if err := m.call(ctx, OpFocus, selector); err != nil {
		return err
	}
	return m.find(selector)
}

func (m *MockDriver) Type(ctx context.Context, text string) error {
	return m.call(ctx, OpType, text)
}

func (m *MockDriver) Click(ctx context.Context, selector string) error {
	if err := m.call(ctx, OpClick, selector); err != nil {
		return err
	}
	return m.find(selector)
}

func (m *MockDriver) find(selector string) error {
	p, ok := m.Pages[m.current]
	if !ok {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchElement, selector)
	}
	return nil
}

func (m *MockDriver) WaitForNavigation(ctx context.Context) error {
	return m.call(ctx, OpWaitForNavigation, "")
}

func (m *MockDriver) Evaluate(ctx context.Context, expression string, res any) error {
	if err := m.call(ctx, OpEvaluate, expression); err != nil {
		return err
	}
	v, ok := m.Evaluations[expression]
	if !ok {
		return fmt.Errorf("no result for expression %q", expression)
	}
	if v == "$url" {
		v = m.current
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, res)
}

func (m *MockDriver) OuterHTML(ctx context.Context) (string, error) {
	if err := m.call(ctx, OpOuterHTML, ""); err != nil {
		return "", err
	}
	if p, ok := m.Pages[m.current]; ok {
		return p, nil
	}
	return "", errors.New("page not found")
}

// CurrentURL returns the url of the last successful navigation.
func (m *MockDriver) CurrentURL() string {
	return m.current
}

// CallsOf returns the recorded calls of the given operation.
func (m *MockDriver) CallsOf(op Op) []Call {
	calls := []Call{}
	for _, c := range m.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// To comply with the Driver interface
func (m *MockDriver) Close() {
	m.closed = true
}
