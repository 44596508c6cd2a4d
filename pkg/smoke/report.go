package smoke

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

const rule = "============================================================"

// Printer writes the human readable report.
type Printer struct {
	w       io.Writer
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	bold    *color.Color
}

// NewPrinter returns a Printer writing to w. Colour is used only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		bold:    color.New(color.Bold),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{p.success, p.fail, p.warn, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Header prints the banner shown before the first page is checked.
func (p *Printer) Header(baseURL string) {
	fmt.Fprintln(p.w, p.bold.Sprintf("Testing documentation pages at %s", baseURL))
	fmt.Fprintln(p.w, rule)
}

// Result prints one result line.
func (p *Printer) Result(r CheckResult) {
	if r.OK() {
		fmt.Fprintf(p.w, "%s %s\n", p.success.Sprint("[PASS]"), r.Name)
		return
	}

	line := fmt.Sprintf("%s %s: %s", p.fail.Sprint("[FAIL]"), r.Name, r.Detail)
	if len(r.Markers) > 0 {
		line += fmt.Sprintf(" (matched: %s)", quoteAll(r.Markers))
	}
	fmt.Fprintln(p.w, line)
}

// Summary prints every result followed by the totals and where the
// screenshots went.
func (p *Printer) Summary(report *Report, screenshotGlob string) {
	for _, r := range report.Results {
		p.Result(r)
	}

	fmt.Fprintln(p.w, rule)
	passed := p.success.Sprintf("%d passed", report.Passed())
	failed := fmt.Sprintf("%d failed", report.Failed())
	if report.Failed() > 0 {
		failed = p.fail.Sprint(failed)
	}
	fmt.Fprintf(p.w, "Results: %s, %s\n", passed, failed)

	for _, d := range report.Duplicates {
		fmt.Fprintln(p.w, p.warn.Sprintf("Warning: %s looks like %s (similarity %d)", d.Second, d.First, d.Score))
	}

	if screenshotGlob != "" {
		fmt.Fprintf(p.w, "\nScreenshots saved to %s\n", screenshotGlob)
	}
}

// ScreenshotGlob describes where a run with these options leaves its
// screenshots, or "" when none are taken.
func (o *Options) ScreenshotGlob() string {
	if !o.Screenshots && !o.HomeScreenshot {
		return ""
	}
	return ScreenshotPath(o.ScreenshotDir, o.ScreenshotPrefix+"*.png")
}

// WriteYAML writes report to path as YAML.
func (r *Report) WriteYAML(path string) error {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return saveFile(path, []byte(sb.String()))
}
