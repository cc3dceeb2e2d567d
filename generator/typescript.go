package generator

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// typescriptPlugin emits the schema-level types operations depend on: helper
// aliases, the Scalars map, input objects and enums. With onlyOperationTypes
// unset it also declares object, interface and union types.
type typescriptPlugin struct{}

func (typescriptPlugin) Name() string { return "typescript" }

func (p typescriptPlugin) Render(rc *RenderContext) (*Output, error) {
	out := &Output{Imports: imports{}}
	w := &writer{}
	exp := rc.export()

	w.Line("%stype Maybe<T> = T | null", exp)
	w.Line("%stype InputMaybe<T> = Maybe<T>", exp)
	w.Line("%stype Exact<T extends { [key: string]: unknown }> = { [K in keyof T]: T[K] }", exp)
	w.Line("")

	w.Doc("All built-in and custom scalars, mapped to their actual values")
	w.Block(exp+p.declare(rc, "Scalars")+" {", "}", func() {
		for _, name := range []string{"ID", "String", "Boolean", "Int", "Float"} {
			w.Line("%s: %s", name, rc.scalarType(name, false))
		}
		for _, def := range rc.userTypes(ast.Scalar) {
			w.Line("%s: %s", def.Name, rc.scalarType(def.Name, false))
		}
	})

	enums := rc.userTypes(ast.Enum)
	if rc.EnumModule != "" && len(enums) > 0 {
		names := make([]string, len(enums))
		for i, e := range enums {
			names[i] = rc.TypeName(e.Name)
		}
		out.Imports.Add(rc.EnumModule, names...)
		if exp != "" {
			w.Line("")
			w.Line("export { %s }", strings.Join(names, ", "))
		}
	} else {
		for _, e := range enums {
			w.Line("")
			p.enum(rc, w, e)
		}
	}

	for _, def := range rc.userTypes(ast.InputObject) {
		w.Line("")
		p.input(rc, w, def)
	}

	if !rc.Target.Config.OnlyOperationTypes {
		for _, kind := range []ast.DefinitionKind{ast.Object, ast.Interface} {
			for _, def := range rc.userTypes(kind) {
				w.Line("")
				p.object(rc, w, def)
			}
		}
		for _, def := range rc.userTypes(ast.Union) {
			w.Line("")
			w.Doc(def.Description)
			members := make([]string, len(def.Types))
			for i, m := range def.Types {
				members[i] = rc.TypeName(m)
			}
			w.Line("%stype %s = %s", exp, rc.TypeName(def.Name), strings.Join(members, " | "))
		}
	}

	out.Content = w.String()
	return out, nil
}

// declare renders the opening of a named object declaration without the brace.
func (typescriptPlugin) declare(rc *RenderContext, name string) string {
	if rc.Config.DeclarationKind == "type" {
		return "type " + name + " ="
	}
	return "interface " + name
}

func (typescriptPlugin) enum(rc *RenderContext, w *writer, def *ast.Definition) {
	w.Doc(def.Description)
	w.Block(rc.export()+"enum "+rc.TypeName(def.Name)+" {", "}", func() {
		for _, v := range def.EnumValues {
			w.Doc(v.Description)
			w.Line("%s = %s,", rc.EnumValueName(v.Name), quote(v.Name))
		}
	})
}

func (p typescriptPlugin) input(rc *RenderContext, w *writer, def *ast.Definition) {
	w.Doc(def.Description)
	w.Block(rc.export()+p.declare(rc, rc.TypeName(def.Name))+" {", "}", func() {
		for _, f := range def.Fields {
			w.Doc(f.Description)
			optional := !f.Type.NonNull && !rc.Config.AvoidOptionals.InputValue
			w.Line("%s%s: %s", f.Name, questionMark(optional), inputTypeRef(rc, f.Type, false))
		}
	})
}

// object declares a schema output type; used only when onlyOperationTypes is off.
func (p typescriptPlugin) object(rc *RenderContext, w *writer, def *ast.Definition) {
	w.Doc(def.Description)
	w.Block(rc.export()+p.declare(rc, rc.TypeName(def.Name))+" {", "}", func() {
		if def.Kind == ast.Object {
			w.Line("__typename?: %s", quote(def.Name))
		}
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			w.Doc(f.Description)
			optional := !f.Type.NonNull && !rc.Config.AvoidOptionals.Field
			w.Line("%s%s: %s", f.Name, questionMark(optional), schemaTypeRef(rc, f.Type))
		}
	})
}

func questionMark(optional bool) string {
	if optional {
		return "?"
	}
	return ""
}

// inputTypeRef renders an input position type, used by input objects and
// operation variables. record reports unmapped scalars, see scalarType.
func inputTypeRef(rc *RenderContext, t *ast.Type, record bool) string {
	var inner string
	if t.Elem != nil {
		inner = "Array<" + inputTypeRef(rc, t.Elem, record) + ">"
	} else {
		inner = namedRef(rc, t.NamedType, record)
	}
	if t.NonNull {
		return inner
	}
	return "InputMaybe<" + inner + ">"
}

// schemaTypeRef renders an output position type by name reference.
func schemaTypeRef(rc *RenderContext, t *ast.Type) string {
	var inner string
	if t.Elem != nil {
		inner = "Array<" + schemaTypeRef(rc, t.Elem) + ">"
	} else {
		inner = namedRef(rc, t.NamedType, false)
	}
	if t.NonNull {
		return inner
	}
	return "Maybe<" + inner + ">"
}

func namedRef(rc *RenderContext, name string, record bool) string {
	def := rc.Schema.Types[name]
	if def != nil && def.Kind == ast.Scalar {
		rc.scalarType(name, record)
		return "Scalars[" + quote(name) + "]"
	}
	return rc.TypeName(name)
}
