package generator

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

const apolloCacheModule = "@apollo/client/cache"

// apolloHelpersPlugin emits typed Apollo cache type policies for every object
// type in the schema.
type apolloHelpersPlugin struct{}

func (apolloHelpersPlugin) Name() string { return "typescript-apollo-client-helpers" }

func (apolloHelpersPlugin) Render(rc *RenderContext) (*Output, error) {
	out := &Output{Imports: imports{}}
	w := &writer{}
	exp := rc.export()
	objects := rc.userTypes(ast.Object)

	for _, def := range objects {
		name := rc.TypeName(def.Name)
		fields := objectFields(def)
		keys := make([]string, 0, len(fields)+1)
		for _, f := range fields {
			keys = append(keys, quote(f))
		}
		keys = append(keys, name+"KeySpecifier")
		w.Line("%stype %sKeySpecifier = (%s)[]", exp, name, strings.Join(keys, " | "))
		w.Block(exp+"type "+name+"FieldPolicy = {", "}", func() {
			for _, f := range fields {
				w.Line("%s?: FieldPolicy<any> | FieldReadFunction<any>,", f)
			}
		})
	}

	if len(objects) > 0 {
		w.Line("")
	}
	w.Block(exp+"type StrictTypedTypePolicies = {", "}", func() {
		for _, def := range objects {
			name := rc.TypeName(def.Name)
			w.Block(name+"?: Omit<TypePolicy, 'fields' | 'keyFields'> & {", "},", func() {
				w.Line("keyFields?: false | %sKeySpecifier | (() => undefined | %sKeySpecifier),", name, name)
				w.Line("fields?: %sFieldPolicy,", name)
			})
		}
	})
	w.Line("%stype TypedTypePolicies = StrictTypedTypePolicies & TypePolicies", exp)

	out.Imports.Add(apolloCacheModule, "TypePolicies", "TypePolicy")
	if len(objects) > 0 {
		out.Imports.Add(apolloCacheModule, "FieldPolicy", "FieldReadFunction")
	}
	out.Content = w.String()
	return out, nil
}

func objectFields(def *ast.Definition) []string {
	var out []string
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}
