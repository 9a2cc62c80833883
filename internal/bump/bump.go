// Package bump re-saves trade listings so that they move back to the top of
// the site's chronological listing.
package bump

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/driver"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/session"
	"github.com/tradebump/tradebump/internal/types"
	"github.com/tradebump/tradebump/internal/utils"
)

// Executor bumps listings one after another.
type Executor struct {
	site     *config.SiteConfig
	debugDir string
	now      func() time.Time
}

func NewExecutor(site *config.SiteConfig, debugDir string) *Executor {
	return &Executor{
		site:     site,
		debugDir: debugDir,
		now:      time.Now,
	}
}

// Bump bumps each of the listings in order. A failing listing is recorded as
// such and does not stop the remaining ones. The report contains exactly one
// result per listing, in input order.
func (e *Executor) Bump(ctx context.Context, s *session.Session, listings []string) types.CycleReport {
	logger := log.LoggerFromContext(ctx).With(slog.String("component", "bump"))
	report := types.CycleReport{
		Started: e.now(),
		Results: make([]types.BumpResult, 0, len(listings)),
	}

	for i, listing := range listings {
		itemLogger := logger.With(slog.Int("index", i+1), slog.String("url", listing))
		itemLogger.Info(fmt.Sprintf("bumping trade %d of %d", i+1, len(listings)))

		start := e.now()
		err := e.bumpOne(ctx, s.Driver, listing)
		elapsed := utils.RoundSeconds(e.now().Sub(start))

		result := types.BumpResult{
			Index:          i + 1,
			URL:            listing,
			Outcome:        types.OutcomeSuccess,
			ElapsedSeconds: elapsed,
		}
		if err != nil {
			result.Outcome = types.OutcomeFailure
			result.Error = err.Error()
			itemLogger.Error(fmt.Sprintf("failed to bump trade after %ds: %v", elapsed, err))
			if log.Debug {
				e.saveScreenshot(ctx, s.Driver, listing)
			}
		} else {
			itemLogger.Info(fmt.Sprintf("bumped trade in %ds", elapsed))
		}
		report.Results = append(report.Results, result)
	}

	report.Finished = e.now()
	return report
}

func (e *Executor) bumpOne(ctx context.Context, d driver.Driver, listing string) error {
	if err := d.Navigate(ctx, listing); err != nil {
		return err
	}
	if err := d.Click(ctx, e.site.EditSelector); err != nil {
		return fmt.Errorf("could not open the edit form: %w", err)
	}
	if err := d.WaitForNavigation(ctx); err != nil {
		return fmt.Errorf("edit form did not load: %w", err)
	}
	// saving the unchanged form is what moves the listing to the top
	if err := d.Click(ctx, e.site.SubmitSelector); err != nil {
		return fmt.Errorf("could not submit the edit form: %w", err)
	}
	if err := d.WaitForNavigation(ctx); err != nil {
		return fmt.Errorf("saving did not complete: %w", err)
	}
	return nil
}

func (e *Executor) saveScreenshot(ctx context.Context, d driver.Driver, listing string) {
	logger := log.LoggerFromContext(ctx)
	sc, ok := d.(driver.Screenshotter)
	if !ok {
		return
	}
	buf, err := sc.Screenshot(ctx)
	if err != nil {
		logger.Warn(fmt.Sprintf("failed to capture screenshot: %v", err))
		return
	}
	if err := os.MkdirAll(e.debugDir, os.ModePerm); err != nil {
		logger.Warn(fmt.Sprintf("failed to create debug directory: %v", err))
		return
	}
	filename := filepath.Join(e.debugDir, fmt.Sprintf("%s-%s.png", screenshotName(listing), e.now().Format("20060102-150405")))
	logger.Debug(fmt.Sprintf("writing screenshot to file %s", filename))
	if err := os.WriteFile(filename, buf, 0644); err != nil {
		logger.Warn(fmt.Sprintf("failed to write screenshot: %v", err))
	}
}

func screenshotName(listing string) string {
	u, err := url.Parse(listing)
	if err != nil {
		return "listing"
	}
	name := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "_")
	if name == "" {
		return "listing"
	}
	return name
}
