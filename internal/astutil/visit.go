// Package astutil holds the reflection helpers that sit on top of a parser's
// cursor API: a closure-friendly child visitor, qualified-name resolution and
// source location extraction.
package astutil

import (
	"fmt"

	"github.com/standardbeagle/rht/internal/ast"
	"github.com/standardbeagle/rht/internal/errors"
)

// Visitor is the traversal logic handed to VisitChildren. It may capture any
// state; the decision it returns is passed to the parser unchanged.
type Visitor func(child, parent ast.Cursor) ast.ChildVisitResult

// visitFrame travels through the parser's client data slot. It carries the
// caller's closure in and a recovered panic out.
type visitFrame struct {
	visit     Visitor
	panicked  bool
	recovered interface{}
	at        ast.Cursor
}

// visitShim has the parser's fixed callback signature. It unboxes the frame
// and runs the closure, turning a panic into a break so it never unwinds
// through the parser.
func visitShim(child, parent ast.Cursor, data ast.ClientData) (result ast.ChildVisitResult) {
	frame := data.(*visitFrame)
	defer func() {
		if r := recover(); r != nil {
			frame.panicked = true
			frame.recovered = r
			frame.at = child
			result = ast.ChildVisitBreak
		}
	}()
	return frame.visit(child, parent)
}

// VisitChildren calls visit with (child, root) for each direct child of root
// in parser order. It returns true when the traversal ran to completion and
// false when visit returned ast.ChildVisitBreak.
//
// A panic inside visit is held back until the parser call has returned and
// is then re-raised in the caller's goroutine. Use TryVisitChildren to get it
// as an error instead.
func VisitChildren(root ast.Cursor, visit Visitor) bool {
	frame := &visitFrame{visit: visit}
	broke := root.VisitChildren(visitShim, frame)
	if frame.panicked {
		panic(frame.recovered)
	}
	return !broke
}

// TryVisitChildren is VisitChildren with a panic in visit converted into a
// *errors.VisitError. The traversal stops at the panicking child and
// completed is false.
func TryVisitChildren(root ast.Cursor, visit Visitor) (completed bool, err error) {
	frame := &visitFrame{visit: visit}
	broke := root.VisitChildren(visitShim, frame)
	if frame.panicked {
		return false, errors.NewVisitError(describe(frame.at), frame.recovered)
	}
	return !broke, nil
}

func describe(c ast.Cursor) string {
	if ast.IsNull(c) {
		return ast.KindInvalid.String()
	}
	return fmt.Sprintf("%s %s", c.Kind(), FullName(c))
}
