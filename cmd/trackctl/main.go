// Command trackctl loads a legacy track file, builds its layout,
// validates it, optionally caches it in the catalogue, and optionally
// renders a diagnostic chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/diamondStar35/top-speed-sub005/internal/config"
	"github.com/diamondStar35/top-speed-sub005/internal/diagviz"
	"github.com/diamondStar35/top-speed-sub005/internal/fsutil"
	"github.com/diamondStar35/top-speed-sub005/internal/monitoring"
	"github.com/diamondStar35/top-speed-sub005/internal/track/catalog"
	"github.com/diamondStar35/top-speed-sub005/internal/track/layout"
	"github.com/diamondStar35/top-speed-sub005/internal/track/legacy"
	"github.com/diamondStar35/top-speed-sub005/internal/track/validate"
	"github.com/diamondStar35/top-speed-sub005/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print the build version and exit")
	trackPath := flag.String("track", "", "path to a legacy track file (required)")
	widthMeters := flag.Float64("width", 10, "default road width in metres")
	validatorConfigPath := flag.String("validator-config", "", "path to a validator.defaults.json-style config (defaults to the built-in defaults)")
	catalogPath := flag.String("catalog", "", "optional sqlite catalogue path; caches the built layout when set")
	outPNG := flag.String("out-png", "", "optional path to write a PNG route profile chart")
	outHTML := flag.String("out-html", "", "optional path to write an HTML route profile chart")
	skipValidate := flag.Bool("skip-validate", false, "skip validation")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trackctl %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *trackPath == "" {
		fmt.Fprintln(os.Stderr, "trackctl: -track is required")
		os.Exit(2)
	}

	if err := run(*trackPath, *widthMeters, *validatorConfigPath, *catalogPath, *outPNG, *outHTML, *skipValidate); err != nil {
		fmt.Fprintf(os.Stderr, "trackctl: %v\n", err)
		os.Exit(1)
	}
}

func run(trackPath string, widthMeters float64, validatorConfigPath, catalogPath, outPNG, outHTML string, skipValidate bool) error {
	fs := fsutil.OSFileSystem{}

	raw, readErr := fs.ReadFile(trackPath)
	result, err := legacy.Parse(fs, trackPath)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	lay, err := result.BuildLayout(widthMeters)
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}
	fmt.Printf("loaded %q: %.1fm, %d edges\n", lay.Metadata.Name, lay.PrimaryRouteLengthMeters(), lay.EdgeCount())

	var report validate.Report
	if !skipValidate {
		cfg := config.MustLoadDefaultValidatorConfig()
		if validatorConfigPath != "" {
			cfg, err = config.LoadValidatorConfig(validatorConfigPath)
			if err != nil {
				return fmt.Errorf("load validator config: %w", err)
			}
		}
		report = validate.Validate(lay, cfg)
		monitoring.Logf("trackctl: validated %q: %d issue(s), valid=%v", lay.Metadata.Name, len(report.Issues), report.IsValid())
		for _, issue := range report.Issues {
			fmt.Printf("  [%s] %s\n", issue.Severity, issue.Message)
		}
	}

	if catalogPath != "" {
		if readErr != nil {
			return fmt.Errorf("read raw track file for catalogue hash: %w", readErr)
		}
		if err := cacheLayout(catalogPath, raw, lay.Metadata.Name, report); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}

	if outPNG != "" {
		if err := writeChart(outPNG, lay, diagviz.RenderPNG); err != nil {
			return fmt.Errorf("render png: %w", err)
		}
	}
	if outHTML != "" {
		if err := writeChart(outHTML, lay, diagviz.RenderHTML); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}

	return nil
}

func writeChart(path string, lay *layout.TrackLayout, render func(*layout.TrackLayout, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return render(lay, f)
}

func cacheLayout(catalogPath string, raw []byte, name string, report validate.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := catalog.Open(ctx, catalogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entry := catalog.CatalogueEntry{
		SourceKind: "legacy",
		Name:       name,
		ImportedAt: time.Now(),
		LayoutJSON: []byte(fmt.Sprintf(`{"name":%q,"issue_count":%d,"valid":%v}`, name, len(report.Issues), report.IsValid())),
	}
	entry.ContentHash = catalog.HashSource(raw)
	if len(report.Issues) > 0 || report.IsValid() {
		now := time.Now()
		entry.ValidatedAt = &now
	}
	return store.Put(ctx, entry)
}
