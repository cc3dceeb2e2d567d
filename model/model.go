// Package model defines the intermediate representation used between the parser
// and the code generator. The parser populates these types from TypeScript
// sources and GraphQL SDL; the generator reads them to emit typed declarations.
package model

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Document is one source file holding GraphQL operations.
type Document struct {
	Path       string // absolute path of the source file
	RelPath    string // path relative to the repository root, slash separated
	Operations []*Operation
	Fragments  []*Fragment
}

// Operation is a named query, mutation or subscription found in a document.
type Operation struct {
	Name       string
	Kind       ast.Operation // "query", "mutation" or "subscription"
	File       string        // RelPath of the owning document
	Definition *ast.OperationDefinition
}

// Fragment is a named fragment definition found in a document.
type Fragment struct {
	Name       string
	TypeName   string // type condition
	File       string
	Definition *ast.FragmentDefinition
}

// TargetDocuments is the assembled input of one output target.
type TargetDocuments struct {
	Documents []*Document
	// Operations and Fragments are flattened in document order.
	Operations []*Operation
	Fragments  []*Fragment
	// External holds fragments spread by the target but defined elsewhere.
	// They are needed to resolve selections but are not emitted.
	External []*Fragment
	// Query is the combined document that was validated against the schema.
	Query *ast.QueryDocument
}

// FragmentIndex returns every fragment, owned and external, by name.
func (t *TargetDocuments) FragmentIndex() map[string]*ast.FragmentDefinition {
	idx := make(map[string]*ast.FragmentDefinition, len(t.Fragments)+len(t.External))
	for _, f := range t.Fragments {
		idx[f.Name] = f.Definition
	}
	for _, f := range t.External {
		idx[f.Name] = f.Definition
	}
	return idx
}
