package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches paths against the patterns of a .gitignore file.
// Patterns are translated to doublestar globs once, when they are added.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string // as written, without "!" and the trailing "/"
	Negate    bool
	Directory bool
	Absolute  bool

	glob string
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is
// not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern adds a single pattern line.
func (gp *GitignoreParser) AddPattern(line string) {
	gp.patterns = append(gp.patterns, parseGitignorePattern(line))
}

// Len returns the number of patterns loaded.
func (gp *GitignoreParser) Len() int {
	return len(gp.patterns)
}

func parseGitignorePattern(line string) GitignorePattern {
	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	p.Pattern = line

	// A slash anywhere but the end anchors the pattern to the root.
	if p.Absolute || strings.Contains(line, "/") {
		p.glob = line
	} else {
		p.glob = "**/" + line
	}
	return p
}

// ShouldIgnore reports whether path, relative to the directory holding the
// .gitignore, is ignored. The last matching pattern wins, and a path inside
// an ignored directory is ignored.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	ignored := false
	for _, pattern := range gp.patterns {
		if pattern.matches(path, isDir) {
			ignored = !pattern.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(path string, isDir bool) bool {
	if (!p.Directory || isDir) && globMatch(p.glob, path) {
		return true
	}
	// Any ancestor directory matching the pattern hides the path.
	for i := strings.IndexByte(path, '/'); i >= 0; {
		if globMatch(p.glob, path[:i]) {
			return true
		}
		next := strings.IndexByte(path[i+1:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return false
}

func globMatch(glob, path string) bool {
	ok, err := doublestar.Match(glob, path)
	return err == nil && ok
}

// GetExclusionPatterns returns the non-negated patterns as exclusion globs
// in the form Config.Exclude uses.
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	var exclusions []string
	for _, pattern := range gp.patterns {
		if pattern.Negate {
			continue
		}
		exclusions = append(exclusions, pattern.glob, pattern.glob+"/**")
	}
	return DeduplicatePatterns(exclusions)
}
