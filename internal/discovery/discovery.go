// Package discovery finds the active trade listings of a user.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/session"
	"github.com/tradebump/tradebump/internal/types"
)

// CurrentURLExpression evaluates to the url of the page after redirects.
const CurrentURLExpression = "window.location.href"

var ErrSessionExpired = errors.New("session expired")

// DiscoveryError is returned if the listings page could not be loaded or read.
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to discover listings on %s: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

type Discoverer struct {
	site *config.SiteConfig
}

func New(site *config.SiteConfig) *Discoverer {
	return &Discoverer{site: site}
}

// TradesURL returns the url of the given user's listings page.
func (d *Discoverer) TradesURL(username string) string {
	return fmt.Sprintf(d.site.TradesURL, url.PathEscape(username))
}

// Discover returns the listing urls to bump in this cycle, in the order the
// site lists them, filtered by target. Listings that are still in the site's
// cool-off period are not filtered out.
func (d *Discoverer) Discover(ctx context.Context, s *session.Session, username string, target types.Target) ([]string, error) {
	logger := log.LoggerFromContext(ctx).With(slog.String("component", "discovery"))
	tradesURL := d.TradesURL(username)
	logger.Debug(fmt.Sprintf("looking for active trades on %s", tradesURL))

	if err := s.Driver.Navigate(ctx, tradesURL); err != nil {
		return nil, &DiscoveryError{URL: tradesURL, Err: err}
	}

	pageURL := tradesURL
	var href string
	if err := s.Driver.Evaluate(ctx, CurrentURLExpression, &href); err != nil {
		logger.Warn(fmt.Sprintf("could not read the current url, assuming %s: %v", tradesURL, err))
	} else if href != "" {
		pageURL = href
	}
	if d.isLoginPage(pageURL) {
		return nil, &DiscoveryError{URL: tradesURL, Err: ErrSessionExpired}
	}

	body, err := s.Driver.OuterHTML(ctx)
	if err != nil {
		return nil, &DiscoveryError{URL: tradesURL, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &DiscoveryError{URL: tradesURL, Err: err}
	}
	if d.site.LoggedInSelector != "" && doc.Find(d.site.LoggedInSelector).Length() == 0 {
		return nil, &DiscoveryError{URL: tradesURL, Err: ErrSessionExpired}
	}

	all, err := extractListings(ctx, doc, pageURL, d.site.ListingSelector, d.site.ListingLink)
	if err != nil {
		return nil, &DiscoveryError{URL: tradesURL, Err: err}
	}
	logger.Info(fmt.Sprintf("found %d active trades", len(all)))

	return SelectTargets(all, target), nil
}

func (d *Discoverer) isLoginPage(pageURL string) bool {
	p, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	l, err := url.Parse(d.site.LoginURL)
	if err != nil {
		return false
	}
	return p.Host == l.Host && strings.TrimSuffix(p.Path, "/") == strings.TrimSuffix(l.Path, "/")
}

// extractListings returns the absolute link urls of all elements matching
// listingSelector in document order. Relative links are resolved against
// pageURL. If linkSelector is empty, the first link in each element is used.
func extractListings(ctx context.Context, doc *goquery.Document, pageURL, listingSelector, linkSelector string) ([]string, error) {
	logger := log.LoggerFromContext(ctx)
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}
	if linkSelector == "" {
		linkSelector = "a[href]"
	}

	urls := []string{}
	doc.Find(listingSelector).Each(func(i int, s *goquery.Selection) {
		link := s.Find(linkSelector).First()
		if link.Length() == 0 && s.Is("a") {
			link = s
		}
		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			logger.Warn(fmt.Sprintf("listing %d has no link, skipping it", i))
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			logger.Warn(fmt.Sprintf("listing %d has an invalid link %q, skipping it: %v", i, href, err))
			return
		}
		urls = append(urls, base.ResolveReference(u).String())
	})
	return urls, nil
}

// SelectTargets applies the target policy to the listings, which are ordered
// newest first. The result for TargetOldest is empty if there are no listings.
func SelectTargets(listings []string, target types.Target) []string {
	switch target {
	case types.TargetOldest:
		if len(listings) == 0 {
			return []string{}
		}
		return []string{listings[len(listings)-1]}
	default:
		result := make([]string, len(listings))
		copy(result, listings)
		return result
	}
}
