package docsmoke

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/root4loot/docsmoke/pkg/smoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// stubPage serves every URL successfully unless listed in broken.
type stubPage struct {
	current string
	broken  map[string]string // url -> marker shown on it
	failURL string
}

func (p *stubPage) Goto(ctx context.Context, url string) error {
	if url == p.failURL {
		return errors.New("net::ERR_CONNECTION_REFUSED")
	}
	p.current = url
	return nil
}

func (p *stubPage) WaitNetworkIdle(ctx context.Context) error { return nil }

func (p *stubPage) CountText(ctx context.Context, text string) (int, error) {
	if p.broken[p.current] == text {
		return 1, nil
	}
	return 0, nil
}

func (p *stubPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return []byte("png"), nil
}

type stubBrowser struct {
	page   *stubPage
	closed bool
}

func (b *stubBrowser) NewPage(ctx context.Context) (smoke.Page, error) { return b.page, nil }

func (b *stubBrowser) Close() error {
	b.closed = true
	return nil
}

func testRunner(t *testing.T, page *stubPage) (*Runner, *stubBrowser) {
	t.Helper()
	b := &stubBrowser{page: page}

	cfg := DefaultConfig()
	cfg.Screenshots.Dir = t.TempDir()
	cfg.Pages = []smoke.PageSpec{
		{Path: "/", Name: "Home"},
		{Path: "/docs/missing/", Name: "Missing Page"},
	}

	r := NewRunnerWithConfig(*cfg)
	r.launcher = smoke.LauncherFunc(func(ctx context.Context) (smoke.Browser, error) {
		return b, nil
	})
	return r, b
}

func TestRunnerPrintsSummary(t *testing.T) {
	r, b := testRunner(t, &stubPage{broken: map[string]string{
		"http://localhost:3002/docs/missing/": "404",
	}})
	r.Config.Report = filepath.Join(t.TempDir(), "report.yaml")

	var out bytes.Buffer
	report, err := r.Run(context.Background(), &out)
	require.NoError(t, err)
	assert.True(t, b.closed)
	assert.False(t, report.AllPassed())

	dir := r.Config.Screenshots.Dir
	assert.Contains(t, out.String(), "Testing documentation pages at http://localhost:3002")
	assert.Contains(t, out.String(), "[PASS] Home\n")
	assert.Contains(t, out.String(), "[FAIL] Missing Page: Page has errors")
	assert.Contains(t, out.String(), "Results: 1 passed, 1 failed")
	assert.Contains(t, out.String(), filepath.Join(dir, "nextra_*.png"))
	assert.FileExists(t, filepath.Join(dir, "nextra_home.png"))
	assert.FileExists(t, filepath.Join(dir, "nextra_home_full.png"))

	data, err := os.ReadFile(r.Config.Report)
	require.NoError(t, err)
	var saved smoke.Report
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Len(t, saved.Results, 2)
}

func TestRunnerHomeFailureSkipsSummary(t *testing.T) {
	r, b := testRunner(t, &stubPage{failURL: "http://localhost:3002"})

	var out bytes.Buffer
	_, err := r.Run(context.Background(), &out)
	require.Error(t, err)
	assert.True(t, b.closed)
	assert.NotContains(t, out.String(), "Results:")
}

func TestRunnerInvalidConfig(t *testing.T) {
	r, _ := testRunner(t, &stubPage{})
	r.Config.Driver = "selenium"

	_, err := r.Run(context.Background(), &bytes.Buffer{})
	assert.Error(t, err)
}
