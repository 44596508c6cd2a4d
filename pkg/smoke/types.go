package smoke

import (
	"errors"
	"time"
)

var (
	// ErrNoPages is returned by Run when it is given nothing to check.
	ErrNoPages = errors.New("no pages to check")
	// ErrNoMarkers is returned by Run when no usable error marker is set.
	ErrNoMarkers = errors.New("no error markers configured")
	// ErrPageHasErrors marks a page that loaded but shows an error marker.
	ErrPageHasErrors = errors.New("page has errors")
)

// DetailPageHasErrors is the CheckResult detail for a page failing on markers.
const DetailPageHasErrors = "Page has errors"

// Status is the verdict of a single page check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// PageSpec names a page to check, relative to the base URL.
type PageSpec struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

// CheckResult is the outcome of checking one PageSpec.
type CheckResult struct {
	Name       string        `yaml:"name"`
	Path       string        `yaml:"path"`
	URL        string        `yaml:"url"`
	Status     Status        `yaml:"status"`
	Detail     string        `yaml:"detail"`            // screenshot path on success, reason on failure
	Markers    []string      `yaml:"markers,omitempty"` // error markers found on the page
	Screenshot string        `yaml:"screenshot,omitempty"`
	Duration   time.Duration `yaml:"duration"`
	Err        error         `yaml:"-"`
}

// OK returns true if the check passed.
func (r CheckResult) OK() bool {
	return r.Status == StatusPass
}

// Duplicate is a pair of page screenshots that look alike.
type Duplicate struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
	Score  int    `yaml:"score"`
}

// Report holds the results of one Run, in page order.
type Report struct {
	BaseURL        string        `yaml:"base_url"`
	Results        []CheckResult `yaml:"results"`
	HomeScreenshot string        `yaml:"home_screenshot,omitempty"`
	Duplicates     []Duplicate   `yaml:"duplicates,omitempty"`
}

// Passed returns the number of passing results.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of failing results.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// AllPassed reports whether every result passed.
func (r *Report) AllPassed() bool {
	return r.Failed() == 0
}
