package docsmoke

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/root4loot/docsmoke/pkg/driver"
	"github.com/root4loot/docsmoke/pkg/smoke"
	"github.com/root4loot/goutils/fileutil"
	"github.com/root4loot/goutils/urlutil"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// Config describes a smoke test run.
type Config struct {
	BaseURL             string           `yaml:"base_url"`
	Driver              string           `yaml:"driver"`
	Timeout             time.Duration    `yaml:"timeout"`
	Delay               time.Duration    `yaml:"delay"`
	Headless            bool             `yaml:"headless"`
	Stealth             bool             `yaml:"stealth"`
	Viewport            Viewport         `yaml:"viewport"`
	UserAgent           string           `yaml:"user_agent"`
	IgnoreCertErrors    bool             `yaml:"ignore_cert_errors"`
	DisableHTTP2        bool             `yaml:"disable_http2"`
	InstallPlaywright   bool             `yaml:"install_playwright"`
	Markers             []string         `yaml:"markers"`
	Screenshots         Screenshots      `yaml:"screenshots"`
	SimilarityThreshold int              `yaml:"similarity_threshold"`
	Report              string           `yaml:"report"`
	Pages               []smoke.PageSpec `yaml:"pages"`
}

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Screenshots struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	Prefix   string `yaml:"prefix"`
	FullPage bool   `yaml:"full_page"`
	Imprint  bool   `yaml:"imprint"`
	Home     bool   `yaml:"home"`
}

// DefaultConfig returns the built-in suite.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := decodeConfig(defaultConfig, cfg); err != nil {
		panic(fmt.Sprintf("docsmoke: bad embedded config: %v", err))
	}
	return cfg
}

// LoadConfig reads a YAML config file on top of the defaults. Lists in the
// file replace the default lists.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := decodeConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadPageList reads pages from a text file with one "path[,name]" per
// line. Blank lines and lines starting with # are skipped.
func LoadPageList(path string) ([]smoke.PageSpec, error) {
	lines, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pages []smoke.PageSpec
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pages = append(pages, parsePageLine(line))
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, smoke.ErrNoPages)
	}
	return pages, nil
}

func parsePageLine(line string) smoke.PageSpec {
	path, name, _ := strings.Cut(line, ",")
	path = strings.TrimSpace(path)
	name = strings.TrimSpace(name)
	if name == "" {
		name = nameFromPath(path)
	}
	return smoke.PageSpec{Path: path, Name: name}
}

// nameFromPath derives a display name from the last path segment.
func nameFromPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "Home"
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.ReplaceAll(trimmed, "-", " ")
}

// Validate checks the config and normalizes the base URL.
func (c *Config) Validate() error {
	base, err := normalizeBaseURL(c.BaseURL)
	if err != nil {
		return err
	}
	c.BaseURL = base

	if _, err := driver.New(c.Driver, driver.Options{}); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", c.Delay)
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 100 {
		return fmt.Errorf("invalid similarity threshold: %d. Must be between 1 and 100", c.SimilarityThreshold)
	}

	if len(c.Markers) == 0 {
		return smoke.ErrNoMarkers
	}
	for _, m := range c.Markers {
		if strings.TrimSpace(m) == "" {
			return errors.New("empty error marker")
		}
	}

	if len(c.Pages) == 0 {
		return smoke.ErrNoPages
	}
	for i, p := range c.Pages {
		if !strings.HasPrefix(p.Path, "/") {
			return fmt.Errorf("page %d: path %q must start with /", i+1, p.Path)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("page %d (%s): name is empty", i+1, p.Path)
		}
	}
	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("base URL is empty")
	}

	if !urlutil.HasScheme(raw) {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: no host", raw)
	}

	if (u.Scheme == "http" && u.Port() == "80") || (u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// TesterOptions maps the config onto smoke.Options.
func (c *Config) TesterOptions() smoke.Options {
	return smoke.Options{
		BaseURL:             c.BaseURL,
		Timeout:             c.Timeout,
		DelayBetweenCapture: c.Delay,
		Markers:             c.Markers,
		Screenshots:         c.Screenshots.Enabled,
		ScreenshotDir:       c.Screenshots.Dir,
		ScreenshotPrefix:    c.Screenshots.Prefix,
		CaptureFull:         c.Screenshots.FullPage,
		Imprint:             c.Screenshots.Imprint,
		HomeScreenshot:      c.Screenshots.Home,
		SimilarityThreshold: c.SimilarityThreshold,
	}
}

// DriverOptions maps the config onto driver.Options.
func (c *Config) DriverOptions() driver.Options {
	options := *driver.DefaultOptions()
	options.Headless = c.Headless
	options.Stealth = c.Stealth
	options.ViewportWidth = c.Viewport.Width
	options.ViewportHeight = c.Viewport.Height
	options.UserAgent = c.UserAgent
	options.IgnoreCertificateErrors = c.IgnoreCertErrors
	options.DisableHTTP2 = c.DisableHTTP2
	options.InstallPlaywright = c.InstallPlaywright
	return options
}
