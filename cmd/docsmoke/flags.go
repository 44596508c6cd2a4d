package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/root4loot/docsmoke"
	"github.com/root4loot/docsmoke/pkg/driver"
)

func (c *CLI) banner(out io.Writer) {
	fmt.Fprintln(out, "\ndocsmoke", docsmoke.Version, "by", author)
}

func (c *CLI) usage(out io.Writer) {
	defaults := docsmoke.DefaultConfig()
	w := tabwriter.NewWriter(out, 2, 0, 3, ' ', 0)

	fmt.Fprintf(w, "Usage:\t%s [options]\n", os.Args[0])
	fmt.Fprintf(w, "\nRuns the built-in page suite against %s unless told otherwise.\n", defaults.BaseURL)

	fmt.Fprintf(w, "\nINPUT:\n")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-c", "--config", "YAML config file")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-l", "--list", "file with one page per line (path[,name])")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %s)\n", "-u", "--base-url", "documentation server origin", defaults.BaseURL)

	fmt.Fprintf(w, "\nCONFIGURATIONS:\n")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %s)\n", "-d", "--driver", "browser driver: rod, chromedp, playwright", defaults.Driver)
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %d seconds)\n", "-to", "--timeout", "timeout for each navigation and wait", int(defaults.Timeout.Seconds()))
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %d)\n", "-dbc", "--delay-between-capture", "delay between pages (seconds)", int(defaults.Delay.Seconds()))
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %v)\n", "-st", "--similarity-threshold", "warn on look-alike screenshots (1-100)", defaults.SimilarityThreshold)

	fmt.Fprintf(w, "\nOUTPUT:\n")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %s)\n", "-o", "--outfolder", "save screenshots to given folder", defaults.Screenshots.Dir)
	fmt.Fprintf(w, "\t%s,\t%s\t%s\t(Default: %s)\n", "-p", "--prefix", "screenshot file name prefix", defaults.Screenshots.Prefix)
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-ns", "--no-screenshots", "do not save screenshots")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-cf", "--capture-full", "capture full pages")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-im", "--imprint", "add a page name and path footer to screenshots")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-r", "--report", "write a YAML report to file")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-s", "--silence", "silence log output")
	fmt.Fprintf(w, "\t%s,\t%s\t%s\n", "-v", "--verbose", "verbose log output")
	fmt.Fprintf(w, "\t%s\t%s\t%s\n", "", "--version", "display version")

	w.Flush()
	fmt.Fprintln(out, "")
}

// parseFlags parses the command line options into c.
func (c *CLI) parseFlags(args []string) error {
	fs := flag.NewFlagSet("docsmoke", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	// INPUT
	fs.StringVar(&c.ConfigFile, "config", "", "")
	fs.StringVar(&c.ConfigFile, "c", "", "")
	fs.StringVar(&c.ListFile, "list", "", "")
	fs.StringVar(&c.ListFile, "l", "", "")
	fs.StringVar(&c.BaseURL, "base-url", "", "")
	fs.StringVar(&c.BaseURL, "u", "", "")

	// CONFIGURATIONS
	fs.StringVar(&c.Driver, "driver", driver.Rod, "")
	fs.StringVar(&c.Driver, "d", driver.Rod, "")
	fs.IntVar(&c.Timeout, "timeout", 30, "")
	fs.IntVar(&c.Timeout, "to", 30, "")
	fs.IntVar(&c.DelayBetweenCapture, "delay-between-capture", 0, "")
	fs.IntVar(&c.DelayBetweenCapture, "dbc", 0, "")
	fs.IntVar(&c.SimilarityThreshold, "similarity-threshold", 0, "")
	fs.IntVar(&c.SimilarityThreshold, "st", 0, "")

	// OUTPUT
	fs.StringVar(&c.Outfolder, "outfolder", "", "")
	fs.StringVar(&c.Outfolder, "o", "", "")
	fs.StringVar(&c.Prefix, "prefix", "", "")
	fs.StringVar(&c.Prefix, "p", "", "")
	fs.BoolVar(&c.NoScreenshots, "no-screenshots", false, "")
	fs.BoolVar(&c.NoScreenshots, "ns", false, "")
	fs.BoolVar(&c.CaptureFull, "capture-full", false, "")
	fs.BoolVar(&c.CaptureFull, "cf", false, "")
	fs.BoolVar(&c.Imprint, "imprint", false, "")
	fs.BoolVar(&c.Imprint, "im", false, "")
	fs.StringVar(&c.Report, "report", "", "")
	fs.StringVar(&c.Report, "r", "", "")
	fs.BoolVar(&c.Silence, "silence", false, "")
	fs.BoolVar(&c.Silence, "s", false, "")
	fs.BoolVar(&c.Verbose, "verbose", false, "")
	fs.BoolVar(&c.Verbose, "v", false, "")
	fs.BoolVar(&c.Help, "help", false, "")
	fs.BoolVar(&c.Help, "h", false, "")
	fs.BoolVar(&c.Version, "version", false, "")

	fs.Usage = func() {
		c.banner(os.Stderr)
		c.usage(os.Stderr)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	c.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		c.set[f.Name] = true
	})
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
