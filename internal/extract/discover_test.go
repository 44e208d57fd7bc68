package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/rht/internal/config"
)

func projectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"src/a.cpp",
		"src/b.h",
		"src/detail/c.hpp",
		"build/gen.cpp",
		"third_party/z.cpp",
		".git/hooks/x.cpp",
		"generated/out.cpp",
		"README.md",
	} {
		writeFile(t, root, name, "int v;\n")
	}
	return root
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover_DefaultExclusions(t *testing.T) {
	root := projectTree(t)
	cfg := config.Default()

	files, err := Discover(root, cfg.Include, cfg.Exclude)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"generated/out.cpp",
		"src/a.cpp",
		"src/b.h",
		"src/detail/c.hpp",
	}, relPaths(t, root, files))
}

func TestDiscover_IncludePatterns(t *testing.T) {
	root := projectTree(t)

	files, err := Discover(root, []string{"src/**/*.{h,hpp}"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/b.h", "src/detail/c.hpp"}, relPaths(t, root, files))
}

func TestDiscover_NoIncludeUsesExtensions(t *testing.T) {
	root := projectTree(t)

	files, err := Discover(root, nil, []string{"**/build/**", "**/third_party/**", "**/.git/**", "generated/**", "src/**"})
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = Discover(root, nil, []string{"**/.git/**"})
	require.NoError(t, err)
	assert.NotContains(t, relPaths(t, root, files), "README.md")
	assert.Contains(t, relPaths(t, root, files), "build/gen.cpp")
}

func TestDiscoverConfig_Gitignore(t *testing.T) {
	root := projectTree(t)
	writeFile(t, root, ".gitignore", "generated/\n*.hpp\n")

	cfg := config.Default()
	cfg.Project.Root = root

	files, err := DiscoverConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.cpp", "src/b.h"}, relPaths(t, root, files))

	cfg.Extract.RespectGitignore = false
	files, err = DiscoverConfig(cfg)
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestDiscover_Symlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.cpp", "int a;\n")
	outside := t.TempDir()
	writeFile(t, outside, "lib.h", "int lib;\n")

	if err := os.Symlink(outside, filepath.Join(root, "src", "ext")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "src", "loop")))

	files, err := NewFilter(root, nil, nil).Walk(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.cpp"}, relPaths(t, root, files))

	files, err = NewFilter(root, nil, nil).Walk(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.cpp", "src/ext/lib.h"}, relPaths(t, root, files))
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), nil, nil)
	assert.Error(t, err)
}

func TestFilter_Match(t *testing.T) {
	root := filepath.FromSlash("/project")
	f := NewFilter(root, []string{"**/*.cpp"}, []string{"**/build/**"})

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"root directory", "/project", true, true},
		{"included file", "/project/src/a.cpp", false, true},
		{"wrong extension", "/project/src/a.h", false, false},
		{"excluded directory", "/project/build", true, false},
		{"file in excluded directory", "/project/build/a.cpp", false, false},
		{"ordinary directory", "/project/src", true, true},
		{"outside root", "/elsewhere/a.cpp", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(filepath.FromSlash(tt.path), tt.isDir))
		})
	}
}
