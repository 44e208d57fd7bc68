// Package extract turns parsed C/C++ sources into reflection facts: one
// qualified name, kind and source location per declaration.
package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/rht/internal/ast"
	"github.com/standardbeagle/rht/internal/astutil"
	"github.com/standardbeagle/rht/internal/config"
	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/errors"
	"github.com/standardbeagle/rht/internal/parser"
	"github.com/standardbeagle/rht/internal/security"
)

// Fact is the reflection record of one declaration.
type Fact struct {
	Name     string                 `json:"name"`
	Kind     ast.Kind               `json:"kind"`
	Location astutil.SourceLocation `json:"location"`
}

// FileResult holds the facts of one file. Skipped is set for files over the
// size limit; they have no facts and no error.
type FileResult struct {
	Path    string `json:"path"`
	Facts   []Fact `json:"facts"`
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
}

// Extractor walks translation units and reports the declarations whose kind
// is in its filter.
type Extractor struct {
	kinds       []ast.Kind
	workers     int
	maxFileSize int64
	validator   *security.FileValidator
}

// New creates an extractor from the extract section of cfg.
func New(cfg *config.Config) (*Extractor, error) {
	kinds, err := cfg.KindFilter()
	if err != nil {
		return nil, errors.NewConfigError("extract.kinds", fmt.Sprint(cfg.Extract.Kinds), err)
	}
	return &Extractor{
		kinds:       kinds,
		workers:     cfg.WorkerCount(),
		maxFileSize: cfg.Extract.MaxFileSize,
		validator:   security.NewFileValidator(0),
	}, nil
}

// NewExtractor creates an extractor for the given kinds with no file size
// limit.
func NewExtractor(kinds []ast.Kind, workers int) *Extractor {
	return &Extractor{
		kinds:     kinds,
		workers:   max(1, workers),
		validator: security.NewFileValidator(0),
	}
}

// Kinds returns the kind filter.
func (e *Extractor) Kinds() []ast.Kind {
	return e.kinds
}

// ExtractUnit returns the facts of every declaration in tu, in traversal
// order.
func (e *Extractor) ExtractUnit(tu *parser.TranslationUnit) ([]Fact, error) {
	facts, err := e.ExtractCursor(tu.Cursor())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tu.Path(), err)
	}
	return facts, nil
}

// ExtractCursor returns the facts of the declarations below root.
func (e *Extractor) ExtractCursor(root ast.Cursor) ([]Fact, error) {
	var facts []Fact
	_, err := astutil.TryVisitChildren(root, e.visitor(&facts))
	if err != nil {
		return nil, err
	}
	return facts, nil
}

func (e *Extractor) visitor(facts *[]Fact) astutil.Visitor {
	return func(child, _ ast.Cursor) ast.ChildVisitResult {
		if e.reports(child) {
			*facts = append(*facts, newFact(child))
		}
		return ast.ChildVisitRecurse
	}
}

func (e *Extractor) reports(c ast.Cursor) bool {
	return astutil.Contains(c.Kind(), e.kinds...)
}

func newFact(c ast.Cursor) Fact {
	return Fact{
		Name:     astutil.FullName(c),
		Kind:     c.Kind(),
		Location: astutil.GetSourceLocation(c),
	}
}

// ExtractFile parses path with p and extracts its facts. Binary content
// under a source file name is reported as an error without parsing.
func (e *Extractor) ExtractFile(p *parser.Parser, path string) FileResult {
	result, ok := e.check(path)
	if !ok {
		return result
	}

	tu, err := p.ParseFile(path)
	if err != nil {
		result.Err = err
		return result
	}
	defer tu.Close()
	return e.extract(result, tu)
}

// ExtractCached is ExtractFile through an index: a file whose content has not
// changed since the last call is not parsed again.
func (e *Extractor) ExtractCached(idx *parser.Index, path string) FileResult {
	result, ok := e.check(path)
	if !ok {
		return result
	}

	tu, err := idx.ParseFile(path)
	if err != nil {
		result.Err = err
		return result
	}
	return e.extract(result, tu)
}

// check applies the size limit and the binary content check. It reports
// false when path must not be parsed.
func (e *Extractor) check(path string) (FileResult, bool) {
	result := FileResult{Path: path}
	if e.maxFileSize > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > e.maxFileSize {
			debug.Infof("%s: skipped, %d bytes exceeds the %d byte limit", path, info.Size(), e.maxFileSize)
			result.Skipped = true
			return result, false
		}
	}
	// Other validation failures resurface from ParseFile as typed errors.
	if err := e.validator.ValidateSource(path); stderrors.Is(err, security.ErrBinaryFile) {
		result.Err = errors.NewFileError("validate", path, err)
		return result, false
	}
	return result, true
}

func (e *Extractor) extract(result FileResult, tu *parser.TranslationUnit) FileResult {
	result.Facts, result.Err = e.ExtractUnit(tu)
	debug.LogExtract("%s: %d facts\n", result.Path, len(result.Facts))
	return result
}

// ExtractFiles extracts paths concurrently, one parser per worker. Results
// are in input order. Per-file failures are recorded in the results and
// also returned together as an *errors.MultiError; a cancelled context
// returns the context error.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.workers))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := parser.GetSharedParser()
			if err != nil {
				return err
			}
			defer parser.ReleaseParser(p)

			results[i] = e.ExtractFile(p, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	errs := make([]error, 0)
	for _, r := range results {
		if r.Err != nil {
			debug.Errorf("%s: %v", r.Path, r.Err)
			errs = append(errs, r.Err)
		}
	}
	return results, errors.NewMultiError(errs).ErrorOrNil()
}
