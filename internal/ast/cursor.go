// Package ast defines the cursor contract the reflection helpers consume from
// a C/C++ parsing library. The shapes follow the libclang C API: an opaque
// cursor, a kind enumeration, a fixed-signature child visitor that receives
// one untyped client data value, and parser-owned strings that must be
// disposed after use.
package ast

// ChildVisitResult tells the parser how to proceed after visiting a child.
type ChildVisitResult uint8

const (
	// ChildVisitBreak stops the whole traversal.
	ChildVisitBreak ChildVisitResult = iota
	// ChildVisitContinue moves on to the next sibling without descending.
	ChildVisitContinue
	// ChildVisitRecurse descends into the child's children before moving on.
	ChildVisitRecurse
)

func (r ChildVisitResult) String() string {
	switch r {
	case ChildVisitBreak:
		return "break"
	case ChildVisitContinue:
		return "continue"
	case ChildVisitRecurse:
		return "recurse"
	default:
		return "unknown"
	}
}

// ClientData is the untyped value threaded through every visitor call.
type ClientData any

// CursorVisitor is the fixed callback signature of VisitChildren.
type CursorVisitor func(child, parent Cursor, data ClientData) ChildVisitResult

// Cursor is a read-only handle to one node of a parsed translation unit.
// Handles stay valid until the owning translation unit is closed.
type Cursor interface {
	Kind() Kind
	// SemanticParent returns the logical enclosing scope. The translation
	// unit's parent, and the parent of an invalid cursor, is the null cursor.
	SemanticParent() Cursor
	// DisplayName returns a parser-owned string; convert it exactly once.
	DisplayName() String
	Location() Location
	// VisitChildren calls visitor for each direct child in source order and
	// returns true if a visitor call returned ChildVisitBreak.
	VisitChildren(visitor CursorVisitor, data ClientData) bool
	Equal(other Cursor) bool
}

// Location is an opaque source position attached to a cursor.
type Location interface {
	// PresumedLocation reports the position after #line remapping.
	PresumedLocation() (filename String, line, column uint)
	// SpellingLocation reports the physical position in the parsed buffer.
	SpellingLocation() (filename String, line, column uint)
}

// NullCursor is the invalid cursor. It is its own semantic parent and has no
// children, so ancestor walks that reach it terminate.
var NullCursor Cursor = nullCursor{}

type nullCursor struct{}

func (nullCursor) Kind() Kind                                 { return KindInvalid }
func (nullCursor) SemanticParent() Cursor                     { return NullCursor }
func (nullCursor) DisplayName() String                        { return NewString("") }
func (nullCursor) Location() Location                         { return nullLocation{} }
func (nullCursor) VisitChildren(CursorVisitor, ClientData) bool { return false }

func (nullCursor) Equal(other Cursor) bool {
	return other != nil && other.Kind() == KindInvalid
}

type nullLocation struct{}

func (nullLocation) PresumedLocation() (String, uint, uint) { return NewString(""), 0, 0 }
func (nullLocation) SpellingLocation() (String, uint, uint) { return NewString(""), 0, 0 }

// IsNull reports whether c is nil or the invalid cursor.
func IsNull(c Cursor) bool {
	return c == nil || c.Kind() == KindInvalid
}
