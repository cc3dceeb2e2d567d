package parser

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/mlwelles/graphqlOpsGen/model"
)

// ignoredRules are validation rules that do not apply to a document set that is
// split over many files: a fragment may be defined in one target and used in
// another, directives may be client-only, and variables may be declared for
// forward compatibility.
var ignoredRules = map[string]bool{
	"NoUnusedFragments": true,
	"NoUnusedVariables": true,
	"KnownDirectives":   true,
}

// FragmentPool indexes fragment definitions by name across every document the
// generator knows about.
type FragmentPool map[string]*model.Fragment

// NewFragmentPool indexes the fragments of docs. The first definition of a name
// wins; docs are expected in sorted path order so the choice is stable.
func NewFragmentPool(docs []*model.Document) FragmentPool {
	pool := make(FragmentPool)
	for _, d := range docs {
		for _, f := range d.Fragments {
			if _, ok := pool[f.Name]; !ok {
				pool[f.Name] = f
			}
		}
	}
	return pool
}

// Assemble combines the documents of one target into a single query document,
// pulls in fragments that are spread but defined outside the target, and
// validates the result against schema.
//
// Inference rules:
//
//   - Owned fragments: every fragment defined in docs is emitted for the target.
//
//   - External fragments: a spread whose fragment is not owned is resolved from
//     pool, transitively. External fragments shape result types but are not
//     emitted.
//
//   - Unknown fragments: left for validation to report.
func Assemble(docs []*model.Document, pool FragmentPool, schema *ast.Schema) (*model.TargetDocuments, error) {
	td := &model.TargetDocuments{Documents: docs}
	owned := make(map[string]bool)
	for _, d := range docs {
		td.Operations = append(td.Operations, d.Operations...)
		td.Fragments = append(td.Fragments, d.Fragments...)
		for _, f := range d.Fragments {
			owned[f.Name] = true
		}
	}

	external := make(map[string]bool)
	var visit func(ast.SelectionSet)
	visit = func(set ast.SelectionSet) {
		for _, name := range spreads(set) {
			if owned[name] || external[name] {
				continue
			}
			f, ok := pool[name]
			if !ok {
				continue
			}
			external[name] = true
			td.External = append(td.External, f)
			visit(f.Definition.SelectionSet)
		}
	}
	for _, op := range td.Operations {
		visit(op.Definition.SelectionSet)
	}
	for _, f := range td.Fragments {
		visit(f.Definition.SelectionSet)
	}

	q := &ast.QueryDocument{}
	for _, op := range td.Operations {
		q.Operations = append(q.Operations, op.Definition)
	}
	for _, f := range td.Fragments {
		q.Fragments = append(q.Fragments, f.Definition)
	}
	for _, f := range td.External {
		q.Fragments = append(q.Fragments, f.Definition)
	}
	td.Query = q

	if err := validate(schema, q); err != nil {
		return nil, err
	}
	return td, nil
}

func validate(schema *ast.Schema, q *ast.QueryDocument) error {
	if len(q.Operations) == 0 && len(q.Fragments) == 0 {
		return nil
	}
	var errs []error
	for _, e := range validator.Validate(schema, q) {
		if ignoredRules[e.Rule] {
			continue
		}
		errs = append(errs, e)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDocuments, errors.Join(errs...))
}

// spreads returns the fragment names spread anywhere in set, in order, without
// descending into the spread fragments themselves.
func spreads(set ast.SelectionSet) []string {
	var out []string
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			out = append(out, spreads(s.SelectionSet)...)
		case *ast.InlineFragment:
			out = append(out, spreads(s.SelectionSet)...)
		case *ast.FragmentSpread:
			out = append(out, s.Name)
		}
	}
	return out
}

// Errors unwraps the individual gqlparser errors from an aggregate, for callers
// that report them one per line.
func Errors(err error) []*gqlerror.Error {
	var out []*gqlerror.Error
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if ge, ok := err.(*gqlerror.Error); ok {
			out = append(out, ge)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
