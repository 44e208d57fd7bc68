package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rht/internal/extract"
)

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	data, err := cfg.EncodeTOML()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		fmt.Fprintf(c.App.Writer, "Configuration validation failed: %v\n", err)
		return err
	}

	files, err := extract.DiscoverConfig(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Configuration is valid: %s (%d source files)\n", cfg.Project.Root, len(files))
	if len(files) == 0 {
		fmt.Fprintln(c.App.Writer, "warning: no source files match the include patterns")
	}
	return nil
}
