package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/rht/internal/astutil"
	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/extract"
	"github.com/standardbeagle/rht/internal/version"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const pointSource = `namespace geo {
struct Point {
  int x;
};
}
`

// setupTestProject creates a project with one header and isolates the home
// directory so no global config leaks in.
func setupTestProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "point.hpp"), []byte(pointSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# geo\n"), 0o644))
	return root
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"rht"}, args...))
	return stdout.String(), err
}

func TestDumpCommand_JSON(t *testing.T) {
	root := setupTestProject(t)

	out, err := runApp(t, "--root", root, "dump", "--format", "json")
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, filepath.Join(root, "src", "point.hpp"), reports[0].Path)
	assert.Empty(t, reports[0].Error)

	var names []string
	for _, f := range reports[0].Facts {
		names = append(names, f.Kind.String()+" "+f.Name)
	}
	assert.Equal(t, []string{"Namespace geo", "StructDecl geo::Point", "FieldDecl geo::Point::x"}, names)
}

func TestDumpCommand_TextWithKindFilter(t *testing.T) {
	root := setupTestProject(t)
	header := filepath.Join(root, "src", "point.hpp")

	out, err := runApp(t, "--root", root, "--kind", "StructDecl", "dump", header)
	require.NoError(t, err)
	assert.Equal(t, header+":2:8\tStructDecl\tgeo::Point\n", out)
}

func TestDumpCommand_MissingFile(t *testing.T) {
	root := setupTestProject(t)
	header := filepath.Join(root, "src", "point.hpp")
	missing := filepath.Join(root, "src", "missing.cpp")

	out, err := runApp(t, "--root", root, "dump", "-f", "json", missing, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "some files could not be extracted")

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.NotEmpty(t, reports[0].Error)
	assert.Empty(t, reports[0].Facts)
	assert.Len(t, reports[1].Facts, 3)
}

func TestDumpCommand_BadFormat(t *testing.T) {
	root := setupTestProject(t)
	_, err := runApp(t, "--root", root, "dump", "--format", "yaml")
	assert.EqualError(t, err, "unsupported format: yaml")
}

func TestDumpCommand_BadKind(t *testing.T) {
	root := setupTestProject(t)
	_, err := runApp(t, "--root", root, "--kind", "Widget", "dump")
	assert.Error(t, err)
}

func TestNameCommand(t *testing.T) {
	root := setupTestProject(t)
	header := filepath.Join(root, "src", "point.hpp")

	out, err := runApp(t, "name", header, "2")
	require.NoError(t, err)
	assert.Equal(t, "StructDecl\tgeo::Point\n", out)

	out, err = runApp(t, "name", header, "3:7")
	require.NoError(t, err)
	assert.Equal(t, "FieldDecl\tgeo::Point::x\n", out)

	_, err = runApp(t, "name", header, "4")
	assert.Error(t, err)

	_, err = runApp(t, "name", header)
	assert.Error(t, err)
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		line    uint
		column  uint
		wantErr bool
	}{
		{"12", 12, 0, false},
		{"12:5", 12, 5, false},
		{"0", 0, 0, true},
		{"x", 0, 0, true},
		{"3:", 0, 0, true},
		{"3:0", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			line, column, err := parsePosition(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestConfigShowCommand(t *testing.T) {
	root := setupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".rht.kdl"), []byte("extract {\n  workers 3\n}\n"), 0o644))

	out, err := runApp(t, "--root", root, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[extract]")
	assert.Contains(t, out, "workers = 3")
	assert.Contains(t, out, root)
}

func TestConfigValidateCommand(t *testing.T) {
	root := setupTestProject(t)

	out, err := runApp(t, "--root", root, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "(1 source files)")
}

// lockedBuffer is written by the watcher goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand(t *testing.T) {
	root := setupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".rht.toml"), []byte("[watch]\ndebounce_ms = 20\n"), 0o644))

	out := &lockedBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newApp(out, out).RunContext(ctx, []string{"rht", "--root", root, "--kind", "FunctionDecl", "watch"})
	}()

	// The watch is established asynchronously; rewrite until it is seen.
	path := filepath.Join(root, "src", "ping.cpp")
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "FunctionDecl\tping") {
		if time.Now().After(deadline) {
			cancel()
			<-done
			t.Fatalf("no watch output, got %q", out.String())
		}
		require.NoError(t, os.WriteFile(path, []byte("void ping();\n"), 0o644))
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch command did not stop")
	}
}

func TestDumpCommand_Tree(t *testing.T) {
	root := setupTestProject(t)
	header := filepath.Join(root, "src", "point.hpp")

	out, err := runApp(t, "--root", root, "dump", "--format", "tree", header)
	require.NoError(t, err)
	assert.Equal(t, header+" (3 declarations)\n"+
		"└─→ Namespace geo [1:11]\n"+
		"  └─→ StructDecl geo::Point [2:8]\n"+
		"    └─→ FieldDecl geo::Point::x [3:7]\n", out)

	out, err = runApp(t, "--root", root, "dump", "-f", "compact", "--depth", "2", header)
	require.NoError(t, err)
	assert.Equal(t, header+": geo{Point}\n", out)
}

func TestVerboseAndVersionFlags(t *testing.T) {
	root := setupTestProject(t)
	header := filepath.Join(root, "src", "point.hpp")
	t.Cleanup(debug.DisableLogInfo)

	out, err := runApp(t, "-v", "--root", root, "--kind", "FieldDecl", "dump", header)
	require.NoError(t, err)
	assert.Equal(t, header+":3:7\tFieldDecl\tgeo::Point::x\n", out)
	assert.True(t, debug.IsLogInfoEnabled())

	out, err = runApp(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "rht version "+version.FullInfo())

	out, err = runApp(t, "-V")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
}

func TestDumpCommand_TreeHonorsSizeLimit(t *testing.T) {
	root := setupTestProject(t)
	header := filepath.Join(root, "src", "point.hpp")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".rht.toml"), []byte("[extract]\nmax_file_size = 8\n"), 0o644))

	for _, format := range []string{"tree", "compact"} {
		out, err := runApp(t, "--root", root, "dump", "-f", format, header)
		require.NoError(t, err)
		assert.Empty(t, out, format)
	}

	out, err := runApp(t, "--root", root, "dump", "-f", "json", header)
	require.NoError(t, err)
	assert.Contains(t, out, `"skipped":true`)
}

func TestNameCommand_LineDirective(t *testing.T) {
	root := setupTestProject(t)
	path := filepath.Join(root, "src", "gen.cpp")
	src := "int first;\n#line 1 \"grammar.y\"\nint moved;\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	out, err := runApp(t, "--root", root, "name", path, "1")
	require.NoError(t, err)
	assert.Equal(t, "VarDecl\tfirst\n", out)
}

func TestFactsAt(t *testing.T) {
	facts := []extract.Fact{
		{Name: "a", Location: astutil.SourceLocation{Filename: "x.cpp", Line: 3, Column: 5}},
		{Name: "b", Location: astutil.SourceLocation{Filename: "gen.y", Line: 3, Column: 5}},
		{Name: "c", Location: astutil.SourceLocation{Filename: "x.cpp", Line: 3, Column: 9}},
	}

	names := func(fs []extract.Fact) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, []string{"a", "c"}, names(factsAt(facts, "x.cpp", 3, 0)))
	assert.Equal(t, []string{"c"}, names(factsAt(facts, "x.cpp", 3, 9)))
	assert.Empty(t, factsAt(facts, "x.cpp", 4, 0))
}
