// Package source reads C/C++ source files for the parser backend.
package source

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/standardbeagle/rht/internal/errors"
)

// ReadToString reads the whole file line by line and terminates every line,
// the last one included, with "\n". A trailing "\r" is dropped from each
// line. A file that cannot be opened or read yields an empty string and a
// *errors.FileError, so an empty file and an unreadable one stay distinct.
// Lines have no length limit.
func ReadToString(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewFileError("open", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	if info, err := f.Stat(); err == nil {
		sb.Grow(int(info.Size()) + 1)
	}

	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			sb.WriteString(strings.TrimSuffix(line, "\r"))
			sb.WriteByte('\n')
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewFileError("read", path, err)
		}
	}
	return sb.String(), nil
}

// ReadBytes is ReadToString for callers that hand the content to the parser.
func ReadBytes(path string) ([]byte, error) {
	s, err := ReadToString(path)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
