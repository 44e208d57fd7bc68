package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrBinaryFile reports a file with a C or C++ extension whose content is
// not text: an object file, archive or executable saved under a source name.
var ErrBinaryFile = errors.New("file appears to be binary")

// FileValidator checks the header of a source file before the whole file is
// read and handed to the parser.
type FileValidator struct {
	ValidationThreshold int64 // Files at or below this size are not checked
	HeaderSize          int64 // Size of header to read for validation
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024, // 64KB header
	}
}

// ValidateSource reads only the header of path and rejects binary content.
// The returned error wraps ErrBinaryFile for rejected files.
func (fv *FileValidator) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, min(fv.HeaderSize, info.Size()))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]

	if format := binaryFormat(header); format != "" {
		return fmt.Errorf("%w: %s signature", ErrBinaryFile, format)
	}
	if isBinaryData(header) {
		return fmt.Errorf("%w: too many control characters", ErrBinaryFile)
	}
	return nil
}

// binaryFormat names the object or archive format whose signature starts
// header, or returns "".
func binaryFormat(header []byte) string {
	signatures := []struct {
		name  string
		magic []byte
	}{
		{"ELF", []byte{0x7F, 'E', 'L', 'F'}},
		{"PE", []byte{'M', 'Z'}},
		{"ar archive", []byte("!<arch>\n")},
		{"Mach-O", []byte{0xCF, 0xFA, 0xED, 0xFE}},
		{"Mach-O", []byte{0xCE, 0xFA, 0xED, 0xFE}},
		{"precompiled header", []byte("CPCH")},
		{"zip", []byte{0x50, 0x4B, 0x03, 0x04}},
	}
	for _, s := range signatures {
		if bytes.HasPrefix(header, s.magic) {
			return s.name
		}
	}
	return ""
}

// isBinaryData checks if file contains binary data
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	// No text encoding a C compiler accepts contains NUL.
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	// Control characters (0-31 except tab, LF, VT, FF, CR) and DEL
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	// If more than 30% non-printable, consider binary
	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}
