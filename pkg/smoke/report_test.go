package smoke

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	return &Report{
		BaseURL: testBase,
		Results: []CheckResult{
			{Name: "Home", Status: StatusPass, Detail: "/tmp/nextra_home.png"},
			{Name: "Missing", Status: StatusFail, Detail: DetailPageHasErrors, Markers: []string{"404"}},
			{Name: "Slow", Status: StatusFail, Detail: "error navigating to http://localhost:3002/slow/: context deadline exceeded"},
		},
		Duplicates: []Duplicate{{First: "Home", Second: "Guide", Score: 97}},
	}
}

func TestPrinterSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Header(testBase)
	p.Summary(sampleReport(), "/tmp/nextra_*.png")

	want := "Testing documentation pages at http://localhost:3002\n" +
		rule + "\n" +
		"[PASS] Home\n" +
		"[FAIL] Missing: Page has errors (matched: \"404\")\n" +
		"[FAIL] Slow: error navigating to http://localhost:3002/slow/: context deadline exceeded\n" +
		rule + "\n" +
		"Results: 1 passed, 2 failed\n" +
		"Warning: Guide looks like Home (similarity 97)\n" +
		"\nScreenshots saved to /tmp/nextra_*.png\n"
	assert.Equal(t, want, buf.String())
}

func TestScreenshotGlob(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, "/tmp/nextra_*.png", o.ScreenshotGlob())

	o.Screenshots = false
	o.HomeScreenshot = false
	assert.Empty(t, o.ScreenshotGlob())
}

func TestReportWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.yaml")
	require.NoError(t, sampleReport().WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, testBase, got.BaseURL)
	require.Len(t, got.Results, 3)
	assert.Equal(t, StatusFail, got.Results[1].Status)
	assert.Equal(t, []string{"404"}, got.Results[1].Markers)
}
