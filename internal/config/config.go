// Package config provides the application configuration. Values are taken
// from an optional yaml file and environment variables, with environment
// variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppName is the fixed application identifier. It keys the stored credentials.
const AppName = "tradebump"

// SiteConfig describes the page interaction contract with the trading site.
// The defaults target the current markup; when the site changes, the selectors
// can be overridden without a new release.
type SiteConfig struct {
	LoginURL string `yaml:"login_url" env:"TRADEBUMP_LOGIN_URL" env-default:"https://rocket-league.com/login"`
	// TradesURL must contain exactly one %s which is replaced by the url-escaped username.
	TradesURL string `yaml:"trades_url" env:"TRADEBUMP_TRADES_URL" env-default:"https://rocket-league.com/trades/%s"`

	EmailSelector    string `yaml:"email_selector" env-default:"#email"`
	PasswordSelector string `yaml:"password_selector" env-default:"#password"`
	LoginSubmit      string `yaml:"login_submit" env-default:"form[action*='login'] [type='submit']"`

	// ListingSelector matches one element per active listing. Each element contains a single link to the listing.
	ListingSelector string `yaml:"listing_selector" env-default:".rlg-trade__actions"`
	ListingLink     string `yaml:"listing_link" env-default:"a[href*='/trade/']"`

	EditSelector   string `yaml:"edit_selector" env-default:".rlg-trade__action.--edit"`
	SubmitSelector string `yaml:"submit_selector" env-default:"#rlg-addTradeForm button[type='submit']"`

	// LoggedInSelector is only present on pages rendered for an authenticated user.
	// If empty, an expired session is only detected by a redirect to the login page.
	LoggedInSelector string `yaml:"logged_in_selector"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	// ShowBrowser starts a visible browser window instead of a headless one.
	ShowBrowser bool   `yaml:"show_browser" env:"TRADEBUMP_SHOW_BROWSER"`
	NoSandbox   bool   `yaml:"no_sandbox" env:"TRADEBUMP_NO_SANDBOX"`
	UserAgent   string `yaml:"user_agent" env:"TRADEBUMP_USER_AGENT"`
	Width       int    `yaml:"width" env-default:"1920"`
	Height      int    `yaml:"height" env-default:"1080"`
	// NavigationTimeout bounds a single wait for navigation. Zero means no bound.
	NavigationTimeout time.Duration `yaml:"navigation_timeout" env:"TRADEBUMP_NAVIGATION_TIMEOUT"`
	// DebugDir is where screenshots of failed bumps are written in debug mode.
	DebugDir string `yaml:"debug_dir" env:"TRADEBUMP_DEBUG_DIR" env-default:"debug"`
}

// OutputConfig selects where cycle reports are written.
type OutputConfig struct {
	Type     string `yaml:"type" env:"TRADEBUMP_OUTPUT" env-default:"stdout"`
	File     string `yaml:"file" env:"TRADEBUMP_OUTPUT_FILE"`
	Uri      string `yaml:"uri" env:"TRADEBUMP_OUTPUT_URI"`
	User     string `yaml:"user" env:"TRADEBUMP_OUTPUT_USER"`         // we want to be able to pass credentials via env vars
	Password string `yaml:"password" env:"TRADEBUMP_OUTPUT_PASSWORD"` // we want to be able to pass credentials via env vars
}

// Config defines the overall structure of the configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	// Locale is used to format the next run time, eg. de_DE.
	Locale string `yaml:"locale" env:"TRADEBUMP_LOCALE" env-default:"en_US"`
	// CredentialsFile overrides the default credentials location.
	CredentialsFile string `yaml:"credentials_file" env:"TRADEBUMP_CREDENTIALS_FILE"`
}

// NewConfig reads the configuration from path. A missing file is not an
// error, in that case only environment variables and defaults are used.
func NewConfig(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&config); err != nil {
			return nil, fmt.Errorf("error reading config from environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if strings.Count(c.Site.TradesURL, "%s") != 1 {
		return fmt.Errorf("site.trades_url must contain exactly one %%s, got '%s'", c.Site.TradesURL)
	}
	if c.Site.ListingSelector == "" || c.Site.EditSelector == "" || c.Site.SubmitSelector == "" {
		return errors.New("site.listing_selector, site.edit_selector and site.submit_selector must not be empty")
	}
	if c.Browser.NavigationTimeout < 0 {
		return fmt.Errorf("browser.navigation_timeout must not be negative, got %v", c.Browser.NavigationTimeout)
	}
	return nil
}
