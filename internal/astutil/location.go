package astutil

import (
	"fmt"

	"github.com/standardbeagle/rht/internal/ast"
)

// SourceLocation is a resolved position. Line and Column are 1-based; the
// zero value means the parser had no position for the cursor.
type SourceLocation struct {
	Filename string `json:"file"`
	Line     uint   `json:"line"`
	Column   uint   `json:"column"`
}

// String returns the position as "file:line:column".
func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Column)
}

// IsValid reports whether the location carries a file and a line.
func (l SourceLocation) IsValid() bool {
	return l.Filename != "" && l.Line > 0
}

// GetSourceLocation returns the presumed location of c, which honors #line
// directives, so generated code reports the position its generator intended.
func GetSourceLocation(c ast.Cursor) SourceLocation {
	filename, line, column := c.Location().PresumedLocation()
	return SourceLocation{
		Filename: ToString(filename),
		Line:     line,
		Column:   column,
	}
}
