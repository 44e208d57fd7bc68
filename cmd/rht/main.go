package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rht/internal/config"
	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/version"
)

func init() {
	// -v is --verbose; the version flag keeps only its long form and -V.
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Aliases:            []string{"V"},
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = abs
	}

	cfg, err := config.LoadWithRoot(c.String("config"), root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if root != "" {
		cfg.Project.Root = root
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	if kinds := c.StringSlice("kind"); len(kinds) > 0 {
		cfg.Extract.Kinds = kinds
	}
	if c.IsSet("workers") {
		cfg.Extract.Workers = c.Int("workers")
	}
	if c.Bool("verbose") {
		cfg.Log.Info = true
	}

	// Overrides go through the same checks as the file.
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Log.Info {
		debug.EnableLogInfo()
	}
	return cfg, nil
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "rht",
		Usage:                  "Extract reflection metadata from C and C++ sources",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .rht.kdl or .rht.toml in the project root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.hpp')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.StringSliceFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Cursor kinds to report (e.g., --kind ClassDecl --kind CXXMethod)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Files extracted in parallel (0 = NumCPU-1)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print informational messages",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Aliases:   []string{"d"},
				Usage:     "Print the declarations of the project or the given files",
				ArgsUsage: "[path...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, tree or compact",
						Value:   "text",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent JSON output",
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum nesting shown by tree and compact output (0 = unlimited)",
					},
				},
				Action: dumpCommand,
			},
			{
				Name:   "watch",
				Usage:  "Re-extract files as they change",
				Flags:  []cli.Flag{formatFlag()},
				Action: watchCommand,
			},
			{
				Name:      "name",
				Usage:     "Print the qualified names of the declarations on a line",
				ArgsUsage: "<file> <line>[:column]",
				Action:    nameCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration as TOML",
						Action: configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Check the configuration and report problems",
						Action: configValidateCommand,
					},
				},
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text or json",
		Value:   "text",
	}
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		debug.Errorf("%v", err)
		os.Exit(1)
	}
}
