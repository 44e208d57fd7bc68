package extract

import (
	"fmt"

	"github.com/standardbeagle/rht/internal/ast"
	"github.com/standardbeagle/rht/internal/astutil"
	"github.com/standardbeagle/rht/internal/parser"
)

// Node is a fact together with the reported declarations nested inside it.
type Node struct {
	Fact
	Children []*Node `json:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// TreeResult holds the declaration tree of one file. Skipped and Err follow
// FileResult.
type TreeResult struct {
	Path    string
	Roots   []*Node
	Skipped bool
	Err     error
}

// ExtractFileTree parses path with p and returns its declaration tree. It
// applies the same size limit and binary check as ExtractFile.
func (e *Extractor) ExtractFileTree(p *parser.Parser, path string) TreeResult {
	checked, ok := e.check(path)
	result := TreeResult{Path: path, Skipped: checked.Skipped, Err: checked.Err}
	if !ok {
		return result
	}

	tu, err := p.ParseFile(path)
	if err != nil {
		result.Err = err
		return result
	}
	defer tu.Close()
	result.Roots, result.Err = e.ExtractTree(tu)
	return result
}

// ExtractTree returns the facts of tu nested by lexical containment. A
// cursor outside the kind filter gets no node; the reported declarations
// below it attach to its nearest reported ancestor.
func (e *Extractor) ExtractTree(tu *parser.TranslationUnit) ([]*Node, error) {
	var roots []*Node
	if err := e.buildTree(tu.Cursor(), &roots); err != nil {
		return nil, fmt.Errorf("%s: %w", tu.Path(), err)
	}
	return roots, nil
}

func (e *Extractor) buildTree(parent ast.Cursor, out *[]*Node) error {
	var childErr error
	_, err := astutil.TryVisitChildren(parent, func(child, _ ast.Cursor) ast.ChildVisitResult {
		target := out
		if e.reports(child) {
			n := &Node{Fact: newFact(child)}
			*out = append(*out, n)
			target = &n.Children
		}
		if childErr = e.buildTree(child, target); childErr != nil {
			return ast.ChildVisitBreak
		}
		return ast.ChildVisitContinue
	})
	if err != nil {
		return err
	}
	return childErr
}
