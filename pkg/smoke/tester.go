package smoke

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/root4loot/goutils/log"
)

// Tester checks documentation pages for error markers in a single browser tab.
type Tester struct {
	Options   *Options
	launcher  Launcher
	writeFile func(path string, data []byte) error
}

// Options contains the options for a Tester.
type Options struct {
	BaseURL             string        // origin every page path is appended to
	Timeout             time.Duration // budget for each navigation, wait and capture
	DelayBetweenCapture time.Duration // pause between two pages
	Markers             []string      // text that marks a page as broken
	Screenshots         bool          // capture each passing page
	ScreenshotDir       string        // folder screenshots are written to
	ScreenshotPrefix    string        // file name prefix for screenshots
	CaptureFull         bool          // capture the full page instead of the viewport
	Imprint             bool          // add a footer with the page name and path to each screenshot
	HomeScreenshot      bool          // full-page capture of the base URL after all pages
	SimilarityThreshold int           // 1-100, report look-alike screenshots; 0 disables
}

// DefaultMarkers are the error texts a broken documentation page shows.
var DefaultMarkers = []string{"404", "Build Error", "Unhandled Runtime Error"}

// DefaultOptions returns default options.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:          "http://localhost:3002",
		Timeout:          30 * time.Second,
		Markers:          append([]string(nil), DefaultMarkers...),
		Screenshots:      true,
		ScreenshotDir:    "/tmp",
		ScreenshotPrefix: "nextra_",
		HomeScreenshot:   true,
	}
}

// NewTester returns a Tester with default options.
func NewTester(launcher Launcher) *Tester {
	return NewTesterWithOptions(launcher, *DefaultOptions())
}

// NewTesterWithOptions returns a Tester with the given options.
func NewTesterWithOptions(launcher Launcher, options Options) *Tester {
	return &Tester{
		Options:   &options,
		launcher:  launcher,
		writeFile: saveFile,
	}
}

func (o *Options) validate() error {
	if o.BaseURL == "" {
		return fmt.Errorf("base URL is empty")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", o.Timeout)
	}
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 100 {
		return fmt.Errorf("invalid similarity threshold: %d. Must be between 1 and 100", o.SimilarityThreshold)
	}
	if len(o.Markers) == 0 {
		return ErrNoMarkers
	}
	for _, m := range o.Markers {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("%w: blank marker", ErrNoMarkers)
		}
	}
	return nil
}

type shot struct {
	name  string
	image []byte
}

// Run checks pages in order with one browser session and returns a result
// per page. Failures of individual pages are recorded in the report; an
// error is returned only when the session cannot be started, when ctx is
// done, or when the closing home page capture fails. The browser is closed
// on every path.
func (t *Tester) Run(ctx context.Context, pages []PageSpec) (*Report, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if err := t.Options.validate(); err != nil {
		return nil, err
	}

	report := &Report{BaseURL: t.Options.BaseURL}

	browser, err := t.launcher.Launch(ctx)
	if err != nil {
		return report, fmt.Errorf("error launching browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Warnf("Could not close browser: %v", err)
		}
	}()

	page, err := browser.NewPage(ctx)
	if err != nil {
		return report, fmt.Errorf("error opening page: %w", err)
	}

	var captures []shot
	for i, spec := range pages {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if i > 0 && t.Options.DelayBetweenCapture > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(t.Options.DelayBetweenCapture):
			}
		}

		result, image := t.check(ctx, page, spec)
		report.Results = append(report.Results, result)
		if len(image) > 0 {
			captures = append(captures, shot{name: spec.Name, image: image})
		}
	}

	if t.Options.HomeScreenshot {
		path, err := t.captureHome(ctx, page)
		if err != nil {
			return report, fmt.Errorf("error capturing home page: %w", err)
		}
		report.HomeScreenshot = path
	}

	if t.Options.SimilarityThreshold > 0 {
		report.Duplicates = findDuplicates(captures, t.Options.SimilarityThreshold)
	}

	return report, nil
}

// check runs one page through navigate, idle wait, marker scan and capture.
func (t *Tester) check(ctx context.Context, page Page, spec PageSpec) (CheckResult, []byte) {
	start := time.Now()
	url := t.Options.BaseURL + spec.Path
	result := CheckResult{Name: spec.Name, Path: spec.Path, URL: url}

	log.Debugf("Checking %s (%s)", spec.Name, url)

	matched, image, path, err := t.inspect(ctx, page, spec, url)
	result.Duration = time.Since(start)

	switch {
	case err != nil:
		result.Status = StatusFail
		result.Detail = err.Error()
		result.Err = err
		log.Debugf("%s failed: %v", spec.Name, err)
	case len(matched) > 0:
		result.Status = StatusFail
		result.Detail = DetailPageHasErrors
		result.Markers = matched
		result.Err = fmt.Errorf("%w: %s", ErrPageHasErrors, quoteAll(matched))
		log.Debugf("%s shows error markers: %s", spec.Name, quoteAll(matched))
	default:
		result.Status = StatusPass
		result.Detail = "ok"
		if path != "" {
			result.Detail = path
			result.Screenshot = path
		}
	}

	return result, image
}

func (t *Tester) inspect(ctx context.Context, page Page, spec PageSpec, url string) (matched []string, image []byte, path string, err error) {
	if err = t.step(ctx, func(ctx context.Context) error { return page.Goto(ctx, url) }); err != nil {
		return nil, nil, "", fmt.Errorf("error navigating to %s: %w", url, err)
	}

	if err = t.step(ctx, page.WaitNetworkIdle); err != nil {
		return nil, nil, "", fmt.Errorf("%s did not reach network idle within %v: %w", url, t.Options.Timeout, err)
	}

	matched, err = t.findMarkers(ctx, page)
	if err != nil || len(matched) > 0 {
		return matched, nil, "", err
	}

	if !t.Options.Screenshots {
		return nil, nil, "", nil
	}

	label := Label{Name: spec.Name, Path: spec.Path}
	image, path, err = t.capture(ctx, page, ScreenshotName(t.Options.ScreenshotPrefix, spec.Name), url, label, t.Options.CaptureFull)
	if err != nil {
		return nil, nil, "", err
	}
	return nil, image, path, nil
}

func (t *Tester) findMarkers(ctx context.Context, page Page) ([]string, error) {
	var matched []string
	for _, marker := range t.Options.Markers {
		var count int
		err := t.step(ctx, func(ctx context.Context) error {
			var err error
			count, err = page.CountText(ctx, marker)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("error looking for %q: %w", marker, err)
		}
		if count > 0 {
			matched = append(matched, marker)
		}
	}
	return matched, nil
}

func (t *Tester) captureHome(ctx context.Context, page Page) (string, error) {
	url := t.Options.BaseURL
	if err := t.step(ctx, func(ctx context.Context) error { return page.Goto(ctx, url) }); err != nil {
		return "", fmt.Errorf("error navigating to %s: %w", url, err)
	}
	if err := t.step(ctx, page.WaitNetworkIdle); err != nil {
		return "", fmt.Errorf("%s did not reach network idle within %v: %w", url, t.Options.Timeout, err)
	}
	label := Label{Name: "Home (full page)", Path: "/"}
	_, path, err := t.capture(ctx, page, t.Options.ScreenshotPrefix+"home_full.png", url, label, true)
	return path, err
}

func (t *Tester) capture(ctx context.Context, page Page, filename, url string, label Label, fullPage bool) ([]byte, string, error) {
	var image []byte
	err := t.step(ctx, func(ctx context.Context) error {
		var err error
		image, err = page.Screenshot(ctx, fullPage)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("error capturing screenshot for %s: %w", url, err)
	}

	if t.Options.Imprint {
		image, err = Image(image).Imprint(label)
		if err != nil {
			return nil, "", fmt.Errorf("error imprinting screenshot for %s: %w", url, err)
		}
	}

	path := ScreenshotPath(t.Options.ScreenshotDir, filename)
	if err := t.writeFile(path, image); err != nil {
		return nil, "", fmt.Errorf("error saving screenshot for %s: %w", url, err)
	}
	return image, path, nil
}

// step runs fn with the per-operation timeout applied.
func (t *Tester) step(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.Options.Timeout)
	defer cancel()
	return fn(ctx)
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}
