// Package parser loads the GraphQL schema and the GraphQL operations embedded in
// TypeScript sources. It uses gqlparser to parse both, then builds the
// model.Document values the generator consumes.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	gqlp "github.com/vektah/gqlparser/v2/parser"

	"github.com/mlwelles/graphqlOpsGen/config"
	"github.com/mlwelles/graphqlOpsGen/model"
)

var (
	// ErrSchema marks malformed or unreachable schema files.
	ErrSchema = errors.New("schema error")
	// ErrDocuments marks source files whose operations cannot be parsed or
	// validated.
	ErrDocuments = errors.New("document error")
)

// LoadSchema expands pattern and merges every matched file into one schema.
// It returns the schema and the sorted list of files it was built from.
func LoadSchema(pattern string) (*ast.Schema, []string, error) {
	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: expanding %q: %w", ErrSchema, pattern, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: no schema files match %s", ErrSchema, pattern)
	}
	sort.Strings(files)

	sources := make([]*ast.Source, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading %s: %w", ErrSchema, f, err)
		}
		sources = append(sources, &ast.Source{Name: f, Input: string(data)})
	}

	schema, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return schema, files, nil
}

// Loader parses document files on demand and caches the result, so files shared
// between the fragment pool and a target are read once. A file that failed is
// reported by the first Load that meets it only. A Loader is not safe for
// concurrent use.
type Loader struct {
	root   string
	cache  map[string]*model.Document
	failed map[string]bool
}

// NewLoader returns a Loader that reports paths relative to root.
func NewLoader(root string) *Loader {
	return &Loader{
		root:   root,
		cache:  make(map[string]*model.Document),
		failed: make(map[string]bool),
	}
}

// Load expands set and parses every matching file. Files without GraphQL
// literals are dropped. All per-file failures are reported together, alongside
// the documents that did parse.
func (l *Loader) Load(set config.GlobSet) ([]*model.Document, error) {
	paths, err := ExpandGlobs(set, l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocuments, err)
	}
	var (
		docs []*model.Document
		errs []error
	)
	for _, p := range paths {
		if l.failed[p] {
			continue
		}
		doc, err := l.file(p)
		if err != nil {
			l.failed[p] = true
			errs = append(errs, err)
			continue
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(errs) > 0 {
		return docs, fmt.Errorf("%w: %w", ErrDocuments, errors.Join(errs...))
	}
	return docs, nil
}

func (l *Loader) file(path string) (*model.Document, error) {
	if doc, ok := l.cache[path]; ok {
		return doc, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.rel(path), err)
	}
	doc, err := ParseDocument(path, l.rel(path), src)
	if err != nil {
		return nil, err
	}
	l.cache[path] = doc
	return doc, nil
}

func (l *Loader) rel(path string) string {
	if l.root == "" {
		return filepath.ToSlash(path)
	}
	r, err := filepath.Rel(l.root, path)
	if err != nil || strings.HasPrefix(r, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

// ParseDocument extracts and parses the GraphQL literals of one source file. It
// returns nil when the file holds no literals.
func ParseDocument(path, relPath string, src []byte) (*model.Document, error) {
	lits, err := ExtractLiterals(src, SyntaxFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}
	if len(lits) == 0 {
		return nil, nil
	}

	doc := &model.Document{Path: path, RelPath: relPath}
	for _, lit := range lits {
		if strings.TrimSpace(lit.Text) == "" {
			continue
		}
		q, err := gqlp.ParseQuery(&ast.Source{Name: relPath, Input: pad(lit)})
		if err != nil {
			// gqlparser errors already lead with file:line.
			return nil, err
		}
		for _, op := range q.Operations {
			if op.Name == "" {
				line := 0
				if op.Position != nil {
					line = op.Position.Line
				}
				return nil, fmt.Errorf("%s:%d: anonymous %s: operations need a name to be typed", relPath, line, op.Operation)
			}
			doc.Operations = append(doc.Operations, &model.Operation{
				Name:       op.Name,
				Kind:       op.Operation,
				File:       relPath,
				Definition: op,
			})
		}
		for _, f := range q.Fragments {
			doc.Fragments = append(doc.Fragments, &model.Fragment{
				Name:       f.Name,
				TypeName:   f.TypeCondition,
				File:       relPath,
				Definition: f,
			})
		}
	}
	if len(doc.Operations) == 0 && len(doc.Fragments) == 0 {
		return nil, nil
	}
	return doc, nil
}

// pad prefixes the literal so positions reported by gqlparser match the TypeScript
// source.
func pad(lit Literal) string {
	return strings.Repeat("\n", lit.Line-1) + strings.Repeat(" ", lit.Column-1) + lit.Text
}
