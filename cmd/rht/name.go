package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rht/internal/ast"
	"github.com/standardbeagle/rht/internal/extract"
	"github.com/standardbeagle/rht/internal/parser"
)

// parsePosition parses "line" or "line:column"; a zero column matches any.
func parsePosition(s string) (line, column uint, err error) {
	lineText, colText, hasCol := strings.Cut(s, ":")
	l, err := strconv.ParseUint(lineText, 10, 32)
	if err != nil || l == 0 {
		return 0, 0, fmt.Errorf("invalid line %q", lineText)
	}
	if hasCol {
		col, err := strconv.ParseUint(colText, 10, 32)
		if err != nil || col == 0 {
			return 0, 0, fmt.Errorf("invalid column %q", colText)
		}
		column = uint(col)
	}
	return uint(l), column, nil
}

// namedKinds are the declarations a position lookup can report. Linkage
// specs have no name of their own.
func namedKinds() []ast.Kind {
	var kinds []ast.Kind
	for _, k := range ast.DeclarationKinds() {
		if k != ast.KindLinkageSpec {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// factsAt returns the facts whose presumed position is file:line (and
// column, when non-zero). Declarations a #line directive moved to another
// file do not match.
func factsAt(facts []extract.Fact, file string, line, column uint) []extract.Fact {
	var out []extract.Fact
	for _, f := range facts {
		if f.Location.Filename != file || f.Location.Line != line {
			continue
		}
		if column != 0 && f.Location.Column != column {
			continue
		}
		out = append(out, f)
	}
	return out
}

func nameCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: rht name <file> <line>[:column]")
	}
	path := c.Args().Get(0)
	line, column, err := parsePosition(c.Args().Get(1))
	if err != nil {
		return err
	}
	// Only for --verbose and config validation; the kinds are fixed.
	if _, err := loadConfigWithOverrides(c); err != nil {
		return err
	}

	p, err := parser.GetSharedParser()
	if err != nil {
		return err
	}
	defer parser.ReleaseParser(p)

	tu, err := p.ParseFile(path)
	if err != nil {
		return err
	}
	defer tu.Close()

	facts, err := extract.NewExtractor(namedKinds(), 1).ExtractUnit(tu)
	if err != nil {
		return err
	}
	matches := factsAt(facts, path, line, column)
	if len(matches) == 0 {
		return fmt.Errorf("no declaration at %s:%s", path, c.Args().Get(1))
	}
	for _, f := range matches {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", f.Kind, f.Name)
	}
	return nil
}
