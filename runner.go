package docsmoke

import (
	"context"
	"fmt"
	"io"

	"github.com/root4loot/docsmoke/pkg/driver"
	"github.com/root4loot/docsmoke/pkg/smoke"
	"github.com/root4loot/goutils/log"
)

const Version = "0.1.0"

// Runner runs the configured suite and prints the report.
type Runner struct {
	Config   *Config
	launcher smoke.Launcher
}

func init() {
	log.Init("docsmoke")
}

// NewRunner returns a runner for the built-in suite.
func NewRunner() *Runner {
	log.Debug("Creating new runner...")
	return &Runner{Config: DefaultConfig()}
}

// NewRunnerWithConfig returns a runner for cfg.
func NewRunnerWithConfig(cfg Config) *Runner {
	log.Debug("Creating new runner with config...")
	return &Runner{Config: &cfg}
}

// Run validates the config, checks every page and prints the report to out.
// When the run itself fails the summary is not printed and the partial
// report is returned with the error.
func (r *Runner) Run(ctx context.Context, out io.Writer) (*smoke.Report, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	launcher := r.launcher
	if launcher == nil {
		var err error
		launcher, err = driver.New(r.Config.Driver, r.Config.DriverOptions())
		if err != nil {
			return nil, err
		}
	}

	options := r.Config.TesterOptions()
	tester := smoke.NewTesterWithOptions(launcher, options)
	printer := smoke.NewPrinter(out)

	log.Debugf("Checking %d pages at %s with %s", len(r.Config.Pages), r.Config.BaseURL, r.Config.Driver)
	printer.Header(r.Config.BaseURL)

	report, err := tester.Run(ctx, r.Config.Pages)
	if err != nil {
		return report, err
	}

	printer.Summary(report, options.ScreenshotGlob())

	if r.Config.Report != "" {
		if err := report.WriteYAML(r.Config.Report); err != nil {
			return report, fmt.Errorf("error writing report: %w", err)
		}
		log.Debugf("Report written to %s", r.Config.Report)
	}

	return report, nil
}

// SetLogLevel sets the log level from the silence and verbose switches.
func SetLogLevel(silence, verbose bool) {
	if silence {
		log.SetLevel(log.FatalLevel)
	} else if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
