package generator

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mlwelles/graphqlOpsGen/model"
)

// operationsPlugin emits a Result and a Variables type for every operation and
// one type per fragment owned by the target.
type operationsPlugin struct{}

func (operationsPlugin) Name() string { return "typescript-operations" }

func (p operationsPlugin) Render(rc *RenderContext) (*Output, error) {
	w := &writer{}
	exp := rc.export()
	first := true
	sep := func() {
		if !first {
			w.Line("")
		}
		first = false
	}

	for _, f := range rc.Docs.Fragments {
		def := rc.Schema.Types[f.TypeName]
		if def == nil {
			return nil, fmt.Errorf("%s: fragment %s on unknown type %q", f.File, f.Name, f.TypeName)
		}
		t, err := rc.selectionType(def, f.Definition.SelectionSet)
		if err != nil {
			return nil, fmt.Errorf("%s: fragment %s: %w", f.File, f.Name, err)
		}
		sep()
		w.Line("%stype %s = %s", exp, fragmentTypeName(rc, f), t)
	}

	for _, op := range rc.Docs.Operations {
		root := rootType(rc.Schema, op.Kind)
		if root == nil {
			return nil, fmt.Errorf("%s: schema has no %s root for %s", op.File, op.Kind, op.Name)
		}
		result, err := rc.selectionType(root, op.Definition.SelectionSet)
		if err != nil {
			return nil, fmt.Errorf("%s: %s %s: %w", op.File, op.Kind, op.Name, err)
		}

		sep()
		base := operationBaseName(rc, op)
		vars := op.Definition.VariableDefinitions
		if len(vars) == 0 {
			w.Line("%stype %sVariables = Exact<{ [key: string]: never }>", exp, base)
		} else {
			w.Block(fmt.Sprintf("%stype %sVariables = Exact<{", exp, base), "}>", func() {
				for _, v := range vars {
					optional := !v.Type.NonNull && !rc.Config.AvoidOptionals.InputValue
					w.Line("%s%s: %s", v.Variable, questionMark(optional), inputTypeRef(rc, v.Type, true))
				}
			})
		}
		w.Line("")
		w.Line("%stype %s%s = %s", exp, base, rc.Config.OperationResultSuffix, result)
	}

	return &Output{Content: w.String()}, nil
}

func rootType(schema *ast.Schema, kind ast.Operation) *ast.Definition {
	switch kind {
	case ast.Query:
		return schema.Query
	case ast.Mutation:
		return schema.Mutation
	case ast.Subscription:
		return schema.Subscription
	}
	return nil
}

// operationBaseName is the name Result and Variables types are derived from.
func operationBaseName(rc *RenderContext, op *model.Operation) string {
	name := rc.TypeName(op.Name)
	if rc.Config.OmitOperationSuffix {
		return name
	}
	suffix := operationSuffix(op.Kind)
	if strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

func fragmentTypeName(rc *RenderContext, f *model.Fragment) string {
	name := rc.TypeName(f.Name)
	if rc.Config.OmitOperationSuffix || strings.HasSuffix(name, "Fragment") {
		return name
	}
	return name + "Fragment"
}

func operationSuffix(kind ast.Operation) string {
	switch kind {
	case ast.Mutation:
		return "Mutation"
	case ast.Subscription:
		return "Subscription"
	default:
		return "Query"
	}
}
