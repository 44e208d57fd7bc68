package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rht/internal/config"
	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/display"
	"github.com/standardbeagle/rht/internal/errors"
	"github.com/standardbeagle/rht/internal/extract"
	"github.com/standardbeagle/rht/internal/parser"
)

// fileReport is the JSON form of an extract.FileResult.
type fileReport struct {
	Path    string         `json:"path"`
	Facts   []extract.Fact `json:"facts"`
	Skipped bool           `json:"skipped,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func newFileReport(r extract.FileResult) fileReport {
	report := fileReport{Path: r.Path, Facts: r.Facts, Skipped: r.Skipped}
	if report.Facts == nil {
		report.Facts = []extract.Fact{}
	}
	if r.Err != nil {
		report.Error = r.Err.Error()
	}
	return report
}

func checkFormat(format string, extra ...string) error {
	switch format {
	case "text", "json":
		return nil
	}
	for _, f := range extra {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unsupported format: %s", format)
}

// treeFormats are the dump formats rendered by display.TreeFormatter.
var treeFormats = []string{"tree", "compact"}

// writeFactsText prints one "file:line:column<TAB>Kind<TAB>Name" line per
// fact.
func writeFactsText(w io.Writer, facts []extract.Fact) {
	for _, f := range facts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Location, f.Kind, f.Name)
	}
}

func dumpCommand(c *cli.Context) error {
	format := c.String("format")
	if err := checkFormat(format, treeFormats...); err != nil {
		return err
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(cfg, c.Args().Slice())
	if err != nil {
		return err
	}
	debug.Infof("extracting %d files", len(paths))

	e, err := extract.New(cfg)
	if err != nil {
		return err
	}
	if format == "tree" || format == "compact" {
		return dumpTrees(c, e, paths, format)
	}
	results, extractErr := e.ExtractFiles(c.Context, paths)
	if results == nil {
		return extractErr
	}

	out := c.App.Writer
	if format == "json" {
		reports := make([]fileReport, 0, len(results))
		for _, r := range results {
			reports = append(reports, newFileReport(r))
		}
		enc := json.NewEncoder(out)
		if c.Bool("pretty") {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			writeFactsText(out, r.Facts)
		}
	}

	if extractErr != nil {
		return fmt.Errorf("some files could not be extracted: %w", extractErr)
	}
	return nil
}

// resolvePaths turns command arguments into the files to extract: a
// directory is discovered with the project filters, anything else is taken
// as a file. No arguments means the whole project.
func resolvePaths(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		return extract.DiscoverConfig(cfg)
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		sub := *cfg
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", arg, err)
		}
		sub.Project.Root = abs
		found, err := extract.DiscoverConfig(&sub)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// dumpTrees prints each file's declarations nested by scope. Files are
// parsed one after another so output streams in order.
func dumpTrees(c *cli.Context, e *extract.Extractor, paths []string, format string) error {
	if format == "tree" {
		format = "text"
	}
	formatter := display.NewTreeFormatter(display.FormatterOptions{
		Format:    format,
		ShowLines: true,
		ShowKinds: true,
		MaxDepth:  c.Int("depth"),
	})

	p, err := parser.GetSharedParser()
	if err != nil {
		return err
	}
	defer parser.ReleaseParser(p)

	var errs []error
	for _, path := range paths {
		if err := c.Context.Err(); err != nil {
			return err
		}
		result := e.ExtractFileTree(p, path)
		if result.Err != nil {
			debug.Errorf("%s: %v", path, result.Err)
			errs = append(errs, result.Err)
			continue
		}
		if result.Skipped {
			continue
		}
		fmt.Fprint(c.App.Writer, formatter.Format(path, result.Roots))
	}
	if err := errors.NewMultiError(errs).ErrorOrNil(); err != nil {
		return fmt.Errorf("some files could not be extracted: %w", err)
	}
	return nil
}
