// Package driver provides the browser back-ends docsmoke can run on. Every
// back-end drives a local Chromium and implements smoke.Browser.
package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/root4loot/docsmoke/pkg/smoke"
)

const (
	Rod        = "rod"
	Chromedp   = "chromedp"
	Playwright = "playwright"
)

// ErrUnknownDriver is returned by New for a name that is not one of Names().
var ErrUnknownDriver = errors.New("unknown driver")

// Options contains the options for launching a browser.
type Options struct {
	Headless                bool          // run without a window
	Stealth                 bool          // hide automation fingerprints (rod only)
	ViewportWidth           int           // width of the viewport
	ViewportHeight          int           // height of the viewport
	UserAgent               string        // user agent, browser default if empty
	IgnoreCertificateErrors bool          // accept invalid TLS certificates
	DisableHTTP2            bool          // disable HTTP2
	IdleTime                time.Duration // quiet period that counts as network idle (rod)
	InstallPlaywright       bool          // download the playwright driver and chromium first
}

// DefaultOptions returns default options.
func DefaultOptions() *Options {
	return &Options{
		Headless:                true,
		ViewportWidth:           1366,
		ViewportHeight:          768,
		IgnoreCertificateErrors: true,
		IdleTime:                500 * time.Millisecond,
	}
}

// Names lists the supported drivers, default first.
func Names() []string {
	return []string{Rod, Chromedp, Playwright}
}

// New returns a launcher for the named driver.
func New(name string, options Options) (smoke.Launcher, error) {
	switch name {
	case Rod, "":
		return &rodLauncher{options: options}, nil
	case Chromedp:
		return &chromedpLauncher{options: options}, nil
	case Playwright:
		return &playwrightLauncher{options: options}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
}
