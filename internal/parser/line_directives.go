package parser

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
)

// lineDirective remaps the lines that follow it. row is the 1-based physical
// line of the directive itself; the next physical line is presumed to be
// line in file.
type lineDirective struct {
	row  uint
	line uint
	file string
}

// lineTable holds the directives of one buffer in physical order.
type lineTable struct {
	path       string
	directives []lineDirective
}

// scanLineDirectives finds "#line N" / "#line N \"file\"" and GNU linemarkers
// ("# N \"file\" flags") in content. A directive without a file name keeps
// the file in effect at that point.
func scanLineDirectives(path string, content []byte) lineTable {
	table := lineTable{path: path}
	file := path
	row := uint(0)
	for len(content) > 0 {
		row++
		var line []byte
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			line, content = content, nil
		}
		n, name, ok := parseLineDirective(string(line))
		if !ok {
			continue
		}
		if name != "" {
			file = name
		}
		table.directives = append(table.directives, lineDirective{row: row, line: n, file: file})
	}
	return table
}

func parseLineDirective(line string) (uint, string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "#") {
		return 0, "", false
	}
	s = strings.TrimLeft(s[1:], " \t")
	if rest, ok := strings.CutPrefix(s, "line"); ok {
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			return 0, "", false
		}
		s = strings.TrimLeft(rest, " \t")
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, "", false
	}
	n, err := strconv.ParseUint(s[:end], 10, 32)
	if err != nil {
		return 0, "", false
	}

	rest := strings.TrimSpace(s[end:])
	if rest == "" {
		return uint(n), "", true
	}
	if rest[0] != '"' {
		return 0, "", false
	}
	name, err := strconv.Unquote(rest[:closingQuote(rest)+1])
	if err != nil {
		return 0, "", false
	}
	return uint(n), name, true
}

// closingQuote returns the index of the quote ending the string literal that
// starts at s[0], honoring backslash escapes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

// presumed maps a 1-based physical line to the presumed file and line.
func (t lineTable) presumed(row uint) (string, uint) {
	i := sort.Search(len(t.directives), func(i int) bool {
		return t.directives[i].row >= row
	})
	if i == 0 {
		return t.path, row
	}
	d := t.directives[i-1]
	return d.file, d.line + (row - d.row - 1)
}
