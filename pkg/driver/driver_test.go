package driver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/root4loot/docsmoke/pkg/smoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, name := range append(Names(), "") {
		t.Run("driver "+name, func(t *testing.T) {
			l, err := New(name, *DefaultOptions())
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}

	_, err := New("selenium", *DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownDriver)
	assert.Contains(t, err.Error(), "selenium")
}

func TestNewDefaultIsRod(t *testing.T) {
	l, err := New("", *DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &rodLauncher{}, l)
}

func TestCountTextExpression(t *testing.T) {
	expr, err := countTextExpression(`Unhandled "Runtime" Error`)
	require.NoError(t, err)
	assert.Equal(t, "("+countTextJS+`)("Unhandled \"Runtime\" Error")`, expr)
}

func TestTimeoutMillis(t *testing.T) {
	assert.Zero(t, timeoutMillis(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ms := timeoutMillis(ctx)
	assert.Greater(t, ms, float64(59000))
	assert.LessOrEqual(t, ms, float64(60000))

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	assert.Equal(t, float64(1), timeoutMillis(expired))
}

func TestWithDeadlineOf(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	defer cancelParent()

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	runCtx, stop := withDeadlineOf(parent, ctx)
	defer stop()

	want, _ := ctx.Deadline()
	got, ok := runCtx.Deadline()
	require.True(t, ok)
	assert.Equal(t, want, got)

	cancel()
	select {
	case <-runCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context not cancelled with ctx")
	}
}

func idleClosed(p *chromedpPage) bool {
	select {
	case <-p.idle:
		return true
	default:
		return false
	}
}

func TestChromedpIdleIgnoresChildFrames(t *testing.T) {
	p := &chromedpPage{idle: make(chan struct{})}
	p.setMainFrame("main")

	p.lifecycle("iframe", "init")
	p.lifecycle("iframe", "networkIdle")
	assert.False(t, idleClosed(p), "child frame must not signal idle")

	p.lifecycle("main", "networkIdle")
	assert.False(t, idleClosed(p), "networkIdle before init must not count")

	p.lifecycle("main", "init")
	p.lifecycle("iframe", "networkIdle")
	assert.False(t, idleClosed(p))

	p.lifecycle("main", "networkIdle")
	assert.True(t, idleClosed(p))

	// repeated events after firing are harmless
	p.lifecycle("main", "networkIdle")
}

func TestChromedpIdleFollowsMainFrameChange(t *testing.T) {
	p := &chromedpPage{idle: make(chan struct{})}
	p.setMainFrame("old")
	p.setMainFrame("new")

	p.lifecycle("old", "init")
	p.lifecycle("old", "networkIdle")
	assert.False(t, idleClosed(p))

	p.lifecycle("new", "init")
	p.lifecycle("new", "networkIdle")
	assert.True(t, idleClosed(p))
}

const brokenPage = `<!doctype html><html><head><script>var s = "404";</script></head>
<body><main><h1>Build Error</h1><p>Failed to compile</p></main></body></html>`

const splitMarkerPage = `<!doctype html><html><body><main><p>Unhandled <b>Runtime</b>
  Error</p></main></body></html>`

const okPage = `<!doctype html><html><body><main><h1>Getting Started</h1><p>Welcome.</p></main></body></html>`

// TestDriversAgainstServer launches a real browser per driver. Set
// DOCSMOKE_BROWSER_TESTS=1 to run it.
func TestDriversAgainstServer(t *testing.T) {
	if os.Getenv("DOCSMOKE_BROWSER_TESTS") != "1" {
		t.Skip("set DOCSMOKE_BROWSER_TESTS=1 to run browser tests")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, brokenPage)
	})
	mux.HandleFunc("/split/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, splitMarkerPage)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			options := DefaultOptions()
			options.InstallPlaywright = os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1"
			l, err := New(name, *options)
			require.NoError(t, err)

			dir := t.TempDir()
			tester := smoke.NewTester(l)
			tester.Options.BaseURL = srv.URL
			tester.Options.ScreenshotDir = dir

			report, err := tester.Run(context.Background(), []smoke.PageSpec{
				{Path: "/docs/", Name: "Getting Started"},
				{Path: "/broken/", Name: "Broken"},
				{Path: "/split/", Name: "Split"},
			})
			require.NoError(t, err)
			require.Len(t, report.Results, 3)

			assert.Equal(t, smoke.StatusPass, report.Results[0].Status, report.Results[0].Detail)
			assert.FileExists(t, filepath.Join(dir, "nextra_getting_started.png"))

			assert.Equal(t, smoke.StatusFail, report.Results[1].Status)
			assert.Equal(t, []string{"Build Error"}, report.Results[1].Markers)

			assert.Equal(t, smoke.StatusFail, report.Results[2].Status)
			assert.Equal(t, []string{"Unhandled Runtime Error"}, report.Results[2].Markers,
				"marker text spread over child elements matches on every driver")

			assert.FileExists(t, filepath.Join(dir, "nextra_home_full.png"))
		})
	}
}
