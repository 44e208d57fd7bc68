package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/rht/internal/config"
	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/errors"
	"github.com/standardbeagle/rht/internal/parser"
)

// Filter decides which paths below a root are extracted. Patterns are
// doublestar globs matched against slash-separated paths relative to the
// root. With no include patterns every file with a C or C++ extension is
// included.
type Filter struct {
	root      string
	include   []string
	exclude   []string
	gitignore *config.GitignoreParser
}

// NewFilter creates a filter without gitignore support.
func NewFilter(root string, include, exclude []string) *Filter {
	return &Filter{root: root, include: include, exclude: exclude}
}

// NewFilterFromConfig creates the filter described by cfg, loading the
// project's .gitignore when Extract.RespectGitignore is set.
func NewFilterFromConfig(cfg *config.Config) (*Filter, error) {
	f := NewFilter(cfg.Project.Root, cfg.Include, cfg.Exclude)
	if cfg.Extract.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(cfg.Project.Root); err != nil {
			return nil, errors.NewFileError("read", filepath.Join(cfg.Project.Root, ".gitignore"), err)
		}
		f.gitignore = gp
	}
	return f, nil
}

// Root returns the directory the filter is relative to.
func (f *Filter) Root() string {
	return f.root
}

// Match reports whether path should be visited: for a directory, whether to
// descend into it; for a file, whether to extract it.
func (f *Filter) Match(path string, isDir bool) bool {
	rel, ok := f.relative(path)
	if !ok {
		return false
	}
	if rel == "." {
		return isDir
	}
	if f.gitignore != nil && f.gitignore.ShouldIgnore(rel, isDir) {
		return false
	}
	if isDir {
		// "**/build/**" excludes the directory itself, so try a child name.
		return !f.excluded(rel) && !f.excluded(rel+"/_")
	}
	return f.included(rel) && !f.excluded(rel)
}

func (f *Filter) relative(path string) (string, bool) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (f *Filter) included(rel string) bool {
	if len(f.include) == 0 {
		return parser.IsSupported(rel)
	}
	return matchAny(f.include, rel)
}

func (f *Filter) excluded(rel string) bool {
	return matchAny(f.exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			// Patterns are validated at config load; skip a bad one here.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Discover returns the files below root accepted by include and exclude,
// sorted. Symbolic links are not followed.
func Discover(root string, include, exclude []string) ([]string, error) {
	return NewFilter(root, include, exclude).Walk(false)
}

// DiscoverConfig returns the files of the project described by cfg.
func DiscoverConfig(cfg *config.Config) ([]string, error) {
	f, err := NewFilterFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return f.Walk(cfg.Extract.FollowSymlinks)
}

// Walk lists the files below the filter root that Match accepts, sorted.
// Unreadable subdirectories are logged and skipped; an unreadable root is an
// error.
func (f *Filter) Walk(followSymlinks bool) ([]string, error) {
	info, err := os.Stat(f.root)
	if err != nil {
		return nil, errors.NewFileError("stat", f.root, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("walk", f.root, fmt.Errorf("not a directory"))
	}

	w := &walker{filter: f, follow: followSymlinks, visited: make(map[string]bool)}
	if err := w.walk(f.root); err != nil {
		return nil, errors.NewFileError("walk", f.root, err)
	}
	sort.Strings(w.files)
	return w.files, nil
}

type walker struct {
	filter  *Filter
	follow  bool
	visited map[string]bool
	files   []string
}

func (w *walker) walk(dir string) error {
	// Symlink cycles would otherwise recurse forever.
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = dir
	}
	if w.visited[real] {
		return nil
	}
	w.visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()

		if entry.Type()&os.ModeSymlink != 0 {
			if !w.follow {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				debug.LogExtract("skipping dangling symlink %s\n", path)
				continue
			}
			isDir = target.IsDir()
		}

		if !w.filter.Match(path, isDir) {
			continue
		}
		if isDir {
			if err := w.walk(path); err != nil {
				debug.Infof("%s: %v", path, err)
			}
			continue
		}
		w.files = append(w.files, path)
	}
	return nil
}
