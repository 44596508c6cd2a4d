package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/root4loot/docsmoke"
	"github.com/root4loot/goutils/log"
)

const author = "@danielantonsen"

type CLI struct {
	ConfigFile          string
	ListFile            string
	BaseURL             string
	Driver              string
	Timeout             int
	DelayBetweenCapture int
	Outfolder           string
	Prefix              string
	NoScreenshots       bool
	CaptureFull         bool
	Imprint             bool
	SimilarityThreshold int
	Report              string
	Silence             bool
	Verbose             bool
	Version             bool
	Help                bool

	set map[string]bool
}

func init() {
	log.Init("docsmoke")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the CLI and returns the exit status: 0 when every page
// passed, 1 otherwise.
func run(args []string, out io.Writer) int {
	cli := &CLI{}
	if err := cli.parseFlags(args); err != nil {
		return 1
	}

	if cli.checkForExits(out) {
		return 0
	}

	docsmoke.SetLogLevel(cli.Silence, cli.Verbose)

	cfg, err := cli.loadConfig()
	if err != nil {
		log.Errorf("Error loading config: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := docsmoke.NewRunnerWithConfig(*cfg).Run(ctx, out)
	if err != nil {
		log.Errorf("Smoke test aborted: %v", err)
		return 1
	}

	if !report.AllPassed() {
		return 1
	}
	return 0
}

// checkForExits handles -h|--help and --version. It returns true when the
// program should stop.
func (c *CLI) checkForExits(out io.Writer) bool {
	if c.Help {
		c.banner(out)
		c.usage(out)
		return true
	}
	if c.Version {
		fmt.Fprintln(out, "docsmoke", docsmoke.Version)
		return true
	}
	return false
}

// loadConfig builds the run config: defaults, then the config file, then the
// page list, then any flag given on the command line.
func (c *CLI) loadConfig() (*docsmoke.Config, error) {
	cfg := docsmoke.DefaultConfig()

	if c.ConfigFile != "" {
		var err error
		cfg, err = docsmoke.LoadConfig(c.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	if c.ListFile != "" {
		pages, err := docsmoke.LoadPageList(c.ListFile)
		if err != nil {
			return nil, err
		}
		cfg.Pages = pages
	}

	if c.isSet("u", "base-url") {
		cfg.BaseURL = c.BaseURL
	}
	if c.isSet("d", "driver") {
		cfg.Driver = c.Driver
	}
	if c.isSet("to", "timeout") {
		cfg.Timeout = seconds(c.Timeout)
	}
	if c.isSet("dbc", "delay-between-capture") {
		cfg.Delay = seconds(c.DelayBetweenCapture)
	}
	if c.isSet("o", "outfolder") {
		cfg.Screenshots.Dir = c.Outfolder
	}
	if c.isSet("p", "prefix") {
		cfg.Screenshots.Prefix = c.Prefix
	}
	if c.NoScreenshots {
		cfg.Screenshots.Enabled = false
		cfg.Screenshots.Home = false
	}
	if c.CaptureFull {
		cfg.Screenshots.FullPage = true
	}
	if c.Imprint {
		cfg.Screenshots.Imprint = true
	}
	if c.isSet("st", "similarity-threshold") {
		cfg.SimilarityThreshold = c.SimilarityThreshold
	}
	if c.isSet("r", "report") {
		cfg.Report = c.Report
	}

	return cfg, nil
}

func (c *CLI) isSet(names ...string) bool {
	for _, name := range names {
		if c.set[name] {
			return true
		}
	}
	return false
}
