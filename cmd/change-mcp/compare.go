package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/image-change-mcp/internal/config"
	"github.com/ironsheep/image-change-mcp/internal/detection"
)

// compareFlags holds the compare subcommand's command-line values. Only flags
// the user actually set override the configuration.
type compareFlags struct {
	configPath string
	diffPath   string

	threshold  float64
	topN       int
	minArea    int
	windowSize int
	blurSigma  float64
	annotate   bool
	noResize   bool

	beforeDate string
	afterDate  string
	location   string
}

func newCompareFlagSet(f *compareFlags, stderr io.Writer) *flag.FlagSet {
	d := config.Default()

	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: change-mcp compare [flags] BEFORE AFTER")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	fs.StringVar(&f.configPath, "config", "", "configuration file (YAML)")
	fs.StringVar(&f.diffPath, "diff", "", "write the diff image to this file")
	fs.Float64Var(&f.threshold, "threshold", d.Detection.Threshold, "dissimilarity above which a pixel is changed (0-1)")
	fs.IntVar(&f.topN, "top-n", d.Detection.TopN, "number of regions to report")
	fs.IntVar(&f.minArea, "min-area", d.Detection.MinArea, "ignore regions smaller than this many pixels")
	fs.IntVar(&f.windowSize, "window", d.Detection.WindowSize, "similarity window size (odd, 3-15)")
	fs.Float64Var(&f.blurSigma, "blur", d.Detection.BlurSigma, "Gaussian pre-blur sigma (0 = off)")
	fs.BoolVar(&f.annotate, "annotate", d.Output.Annotate, "draw numbered region boxes on the diff image")
	fs.BoolVar(&f.noResize, "no-resize", false, "fail instead of resizing images of different size")
	fs.StringVar(&f.beforeDate, "before-date", "", "capture date of BEFORE (YYYY-MM-DD)")
	fs.StringVar(&f.afterDate, "after-date", "", "capture date of AFTER (YYYY-MM-DD)")
	fs.StringVar(&f.location, "location", "", "location of the scene")
	return fs
}

// runCompare implements the compare subcommand and returns the exit code.
func runCompare(args []string, stdout, stderr io.Writer) int {
	var f compareFlags
	fs := newCompareFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "threshold":
			cfg.Detection.Threshold = f.threshold
		case "top-n":
			cfg.Detection.TopN = f.topN
		case "min-area":
			cfg.Detection.MinArea = f.minArea
		case "window":
			cfg.Detection.WindowSize = f.windowSize
		case "blur":
			cfg.Detection.BlurSigma = f.blurSigma
		case "annotate":
			cfg.Output.Annotate = f.annotate
		case "no-resize":
			cfg.Detection.AllowResize = !f.noResize
		}
	})

	opts, err := cfg.DetectionOptions()
	if err != nil {
		return fail(stderr, err)
	}
	if f.beforeDate != "" || f.afterDate != "" || f.location != "" {
		opts.Metadata = &detection.Metadata{
			BeforeDate: f.beforeDate,
			AfterDate:  f.afterDate,
			Location:   f.location,
		}
	}

	before, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fail(stderr, fmt.Errorf("%w: %v", detection.ErrInvalidImage, err))
	}
	after, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return fail(stderr, fmt.Errorf("%w: %v", detection.ErrInvalidImage, err))
	}

	report, err := detection.Compare(before, after, opts)
	if err != nil {
		return fail(stderr, err)
	}

	if f.diffPath != "" {
		if err := os.WriteFile(f.diffPath, report.DiffImage, 0644); err != nil {
			return fail(stderr, fmt.Errorf("failed to write diff image: %w", err))
		}
	}
	report.DiffImage = nil

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fail(stderr, fmt.Errorf("failed to encode report: %w", err))
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	if tag := detection.ErrorTag(err); tag != "" {
		fmt.Fprintf(stderr, "%s: %v\n", tag, err)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
