package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/rht/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadToString(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty", "", ""},
		{"no trailing newline", "a\nb\nc", "a\nb\nc\n"},
		{"trailing newline", "a\nb\n", "a\nb\n"},
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"crlf no trailing newline", "a\r\nb", "a\nb\n"},
		{"blank lines kept", "a\n\n\nb", "a\n\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "src.hpp", tt.content)
			got, err := ReadToString(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadToString_OneNewlinePerLine(t *testing.T) {
	const lines = 25
	var parts []string
	for i := 0; i < lines; i++ {
		parts = append(parts, "int x;")
	}
	path := writeFile(t, "lines.cpp", strings.Join(parts, "\n"))

	got, err := ReadToString(path)
	require.NoError(t, err)
	assert.Equal(t, lines, strings.Count(got, "\n"))
}

func TestReadToString_Missing(t *testing.T) {
	got, err := ReadToString(filepath.Join(t.TempDir(), "missing.hpp"))

	assert.Empty(t, got)
	require.Error(t, err)

	var fileErr *errors.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, errors.ErrorTypeFileNotFound, fileErr.Type)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadToString_Directory(t *testing.T) {
	got, err := ReadToString(t.TempDir())

	assert.Empty(t, got)
	var fileErr *errors.FileError
	require.ErrorAs(t, err, &fileErr)
}

func TestReadBytes(t *testing.T) {
	path := writeFile(t, "b.h", "struct S {};")
	got, err := ReadBytes(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("struct S {};\n"), got)

	_, err = ReadBytes(filepath.Join(t.TempDir(), "nope.h"))
	assert.Error(t, err)
}

func TestReadToString_LongLine(t *testing.T) {
	// Longer than the 16 MiB a bufio.Scanner would accept.
	long := strings.Repeat("0x1f, ", 3*1024*1024)
	path := writeFile(t, "table.inc", "static const char t[] = {"+long+"};\r\nint after;")

	got, err := ReadToString(path)
	require.NoError(t, err)
	assert.Equal(t, "static const char t[] = {"+long+"};\nint after;\n", got)
}
