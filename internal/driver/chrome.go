package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/log"
)

// The ChromeDriver drives a headless chrome via the devtools protocol.
type ChromeDriver struct {
	*config.BrowserConfig
	allocContext context.Context
	cancelAlloc  context.CancelFunc
	tabContext   context.Context
	cancelTab    context.CancelFunc
	// loaded receives a value for every load event of the main frame
	loaded chan struct{}
}

// NewChromeDriver starts a browser and opens a tab.
func NewChromeDriver(ctx context.Context, bc *config.BrowserConfig) (*ChromeDriver, error) {
	logger := log.LoggerFromContext(ctx).With(slog.String("driver", "chrome"))
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(bc.Width, bc.Height), // init with a desktop view (sometimes pages look different on mobile, eg buttons are missing)
	)
	if bc.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if bc.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if bc.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(bc.UserAgent))
	}
	allocContext, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabContext, cancelTab := chromedp.NewContext(allocContext)

	d := &ChromeDriver{
		BrowserConfig: bc,
		allocContext:  allocContext,
		cancelAlloc:   cancelAlloc,
		tabContext:    tabContext,
		cancelTab:     cancelTab,
		loaded:        make(chan struct{}, 1),
	}
	chromedp.ListenTarget(tabContext, func(ev any) {
		if _, ok := ev.(*page.EventLoadEventFired); ok {
			select {
			case d.loaded <- struct{}{}:
			default:
			}
		}
	})

	// the first Run allocates the browser, so it must not run on a context with a deadline
	err := chromedp.Run(tabContext, chromedp.ActionFunc(func(ctx context.Context) error {
		protocolVersion, product, _, userAgent, _, err := browser.GetVersion().Do(ctx)
		if err != nil {
			return err
		}
		logger.Debug(fmt.Sprintf("chrome version: protocolVersion=%s, product=%s, userAgent=%s", protocolVersion, product, userAgent))
		return nil
	}))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return d, nil
}

// run executes the actions on the tab. Cancelling ctx aborts the actions but
// keeps the tab open.
func (d *ChromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runContext, cancel := context.WithCancel(d.tabContext)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runContext, actions...)
}

func (d *ChromeDriver) Navigate(ctx context.Context, urlStr string) error {
	log.LoggerFromContext(ctx).Debug("navigating", slog.String("url", urlStr))
	if err := d.run(ctx, chromedp.Navigate(urlStr)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", urlStr, err)
	}
	return nil
}

func (d *ChromeDriver) Focus(ctx context.Context, selector string) error {
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := queryFirst(ctx, selector)
		if err != nil {
			return err
		}
		return dom.Focus().WithNodeID(node.NodeID).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to focus %s: %w", selector, err)
	}
	return nil
}

func (d *ChromeDriver) Type(ctx context.Context, text string) error {
	if err := d.run(ctx, chromedp.KeyEvent(text)); err != nil {
		return fmt.Errorf("failed to type: %w", err)
	}
	return nil
}

func (d *ChromeDriver) Click(ctx context.Context, selector string) error {
	// forget load events of earlier navigations, only the one caused by this click counts
	select {
	case <-d.loaded:
	default:
	}
	logger := log.LoggerFromContext(ctx)
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := queryFirst(ctx, selector)
		if err != nil {
			return err
		}
		logger.Debug(fmt.Sprintf("clicking on node with selector: %s", selector))
		return chromedp.MouseClickNode(node).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// queryFirst returns the first node matching selector without waiting for it
// to appear.
func queryFirst(ctx context.Context, selector string) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)).Do(ctx); err != nil {
		return nil, err
	}
	return firstNode(selector, nodes)
}

func firstNode(selector string, nodes []*cdp.Node) (*cdp.Node, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, selector)
	}
	return nodes[0], nil
}

func (d *ChromeDriver) WaitForNavigation(ctx context.Context) error {
	if d.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.NavigationTimeout)
		defer cancel()
	}
	select {
	case <-d.loaded:
		return nil
	case <-d.tabContext.Done():
		return fmt.Errorf("browser closed while waiting for navigation: %w", d.tabContext.Err())
	case <-ctx.Done():
		return fmt.Errorf("waiting for navigation: %w", ctx.Err())
	}
}

func (d *ChromeDriver) Evaluate(ctx context.Context, expression string, res any) error {
	if err := d.run(ctx, chromedp.Evaluate(expression, res)); err != nil {
		return fmt.Errorf("failed to evaluate expression: %w", err)
	}
	return nil
}

func (d *ChromeDriver) OuterHTML(ctx context.Context) (string, error) {
	var body string
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		body, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return body, nil
}

func (d *ChromeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *ChromeDriver) Close() {
	d.cancelTab()
	d.cancelAlloc()
}
