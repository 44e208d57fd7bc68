package astutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/rht/internal/ast"
	rhterrors "github.com/standardbeagle/rht/internal/errors"
)

func sampleTree() *fakeCursor {
	tu := newTree()
	ns := tu.add(ast.KindNamespace, "ns")
	cls := ns.add(ast.KindClassDecl, "Widget")
	cls.add(ast.KindFieldDecl, "width")
	cls.add(ast.KindCXXMethod, "draw()")
	tu.add(ast.KindFunctionDecl, "main()")
	return tu
}

func TestVisitChildren_NoChildren(t *testing.T) {
	tu := newTree()
	calls := 0

	completed := VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		calls++
		return ast.ChildVisitContinue
	})

	assert.True(t, completed)
	assert.Zero(t, calls)
}

func TestVisitChildren_BreakOnFirstChild(t *testing.T) {
	tu := sampleTree()
	calls := 0

	completed := VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		calls++
		return ast.ChildVisitBreak
	})

	assert.False(t, completed)
	assert.Equal(t, 1, calls)
}

func TestVisitChildren_ContinueVisitsDirectChildrenOnly(t *testing.T) {
	tu := sampleTree()
	var names []string

	completed := VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		assert.True(t, parent.Equal(tu))
		names = append(names, ToString(child.DisplayName()))
		return ast.ChildVisitContinue
	})

	assert.True(t, completed)
	assert.Equal(t, []string{"ns", "main()"}, names)
}

func TestVisitChildren_RecursePassesParent(t *testing.T) {
	tu := sampleTree()
	var visited []string

	completed := VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		visited = append(visited, ToString(parent.DisplayName())+">"+ToString(child.DisplayName()))
		return ast.ChildVisitRecurse
	})

	assert.True(t, completed)
	assert.Equal(t, []string{
		"unit.cpp>ns",
		"ns>Widget",
		"Widget>width",
		"Widget>draw()",
		"unit.cpp>main()",
	}, visited)
}

func TestVisitChildren_BreakDuringRecursionStopsEverything(t *testing.T) {
	tu := sampleTree()
	var names []string

	completed := VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		name := ToString(child.DisplayName())
		names = append(names, name)
		if name == "width" {
			return ast.ChildVisitBreak
		}
		return ast.ChildVisitRecurse
	})

	assert.False(t, completed)
	assert.Equal(t, []string{"ns", "Widget", "width"}, names)
}

func TestVisitChildren_ClosureStateIsShared(t *testing.T) {
	tu := sampleTree()
	counts := map[ast.Kind]int{}

	VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		counts[child.Kind()]++
		return ast.ChildVisitRecurse
	})

	assert.Equal(t, 1, counts[ast.KindNamespace])
	assert.Equal(t, 1, counts[ast.KindClassDecl])
	assert.Equal(t, 1, counts[ast.KindFieldDecl])
	assert.Equal(t, 1, counts[ast.KindCXXMethod])
	assert.Equal(t, 1, counts[ast.KindFunctionDecl])
}

func TestVisitChildren_PanicIsRaisedAfterTraversal(t *testing.T) {
	tu := sampleTree()
	calls := 0

	assert.PanicsWithValue(t, "bad node", func() {
		VisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
			calls++
			panic("bad node")
		})
	})
	// the panic became a break at the boundary, so only one call happened
	assert.Equal(t, 1, calls)
}

func TestTryVisitChildren_PanicBecomesError(t *testing.T) {
	tu := sampleTree()
	cause := errors.New("cannot reflect")
	calls := 0

	completed, err := TryVisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		calls++
		if child.Kind() == ast.KindClassDecl {
			panic(cause)
		}
		return ast.ChildVisitRecurse
	})

	assert.False(t, completed)
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var visitErr *rhterrors.VisitError
	require.ErrorAs(t, err, &visitErr)
	assert.Equal(t, "ClassDecl ns::Widget", visitErr.Cursor)
	assert.ErrorIs(t, err, cause)
}

func TestTryVisitChildren_NoPanic(t *testing.T) {
	tu := sampleTree()

	completed, err := TryVisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		return ast.ChildVisitContinue
	})
	assert.True(t, completed)
	assert.NoError(t, err)

	completed, err = TryVisitChildren(tu, func(child, parent ast.Cursor) ast.ChildVisitResult {
		return ast.ChildVisitBreak
	})
	assert.False(t, completed)
	assert.NoError(t, err)
}

func TestVisitChildren_NullCursor(t *testing.T) {
	completed := VisitChildren(ast.NullCursor, func(child, parent ast.Cursor) ast.ChildVisitResult {
		t.Fatal("null cursor has no children")
		return ast.ChildVisitBreak
	})
	assert.True(t, completed)
}
