package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// fieldGroup is every field selected under one response key.
type fieldGroup struct {
	key         string
	fields      []*ast.Field
	conditional bool // guarded by @include or @skip
}

// collectFields gathers the fields a selection set yields for the concrete type
// typeName, following inline fragments and spreads whose type condition applies.
// Groups keep first-seen order.
func (rc *RenderContext) collectFields(set ast.SelectionSet, typeName string) []*fieldGroup {
	var groups []*fieldGroup
	byKey := make(map[string]*fieldGroup)
	visiting := make(map[string]bool)

	var walk func(ast.SelectionSet, bool)
	walk = func(set ast.SelectionSet, cond bool) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				key := s.Alias
				if key == "" {
					key = s.Name
				}
				g, ok := byKey[key]
				if !ok {
					g = &fieldGroup{key: key}
					byKey[key] = g
					groups = append(groups, g)
				}
				g.fields = append(g.fields, s)
				if cond || conditional(s.Directives) {
					g.conditional = true
				}
			case *ast.InlineFragment:
				if s.TypeCondition == "" || rc.applies(s.TypeCondition, typeName) {
					walk(s.SelectionSet, cond || conditional(s.Directives))
				}
			case *ast.FragmentSpread:
				def, ok := rc.fragments[s.Name]
				if !ok || visiting[s.Name] || !rc.applies(def.TypeCondition, typeName) {
					continue
				}
				visiting[s.Name] = true
				walk(def.SelectionSet, cond || conditional(s.Directives))
				visiting[s.Name] = false
			}
		}
	}
	walk(set, false)
	return groups
}

func conditional(dirs ast.DirectiveList) bool {
	return dirs.ForName("include") != nil || dirs.ForName("skip") != nil
}

// applies reports whether a fragment on condition matches objects of typeName.
func (rc *RenderContext) applies(condition, typeName string) bool {
	if condition == typeName {
		return true
	}
	def := rc.Schema.Types[condition]
	if def == nil {
		return false
	}
	switch def.Kind {
	case ast.Interface, ast.Union:
		for _, p := range rc.Schema.GetPossibleTypes(def) {
			if p.Name == typeName {
				return true
			}
		}
	}
	return false
}

// selectionType renders the TypeScript type of set selected on def, with every
// type resolved inline.
func (rc *RenderContext) selectionType(def *ast.Definition, set ast.SelectionSet) (string, error) {
	switch def.Kind {
	case ast.Object:
		body, explicit, err := rc.objectBody(def, set)
		if err != nil {
			return "", err
		}
		return typenameObject([]string{def.Name}, explicit, body), nil
	case ast.Interface, ast.Union:
		return rc.abstractType(def, set)
	default:
		return "", fmt.Errorf("cannot select fields on %s %s", strings.ToLower(string(def.Kind)), def.Name)
	}
}

// abstractType renders a selection on an interface or union as a union of the
// shapes of its possible types. Types that end up with the same shape share one
// member, their names joined in the __typename literal.
func (rc *RenderContext) abstractType(def *ast.Definition, set ast.SelectionSet) (string, error) {
	possible := append([]*ast.Definition(nil), rc.Schema.GetPossibleTypes(def)...)
	if len(possible) == 0 {
		return "never", nil
	}
	sort.Slice(possible, func(i, j int) bool { return possible[i].Name < possible[j].Name })

	type shape struct {
		names    []string
		explicit bool
		body     string
	}
	var shapes []*shape
	byBody := make(map[string]*shape)
	for _, p := range possible {
		body, explicit, err := rc.objectBody(p, set)
		if err != nil {
			return "", err
		}
		k := fmt.Sprintf("%t|%s", explicit, body)
		if s, ok := byBody[k]; ok {
			s.names = append(s.names, p.Name)
			continue
		}
		s := &shape{names: []string{p.Name}, explicit: explicit, body: body}
		byBody[k] = s
		shapes = append(shapes, s)
	}

	members := make([]string, len(shapes))
	for i, s := range shapes {
		members[i] = typenameObject(s.names, s.explicit, s.body)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return "(" + strings.Join(members, " | ") + ")", nil
}

// typenameObject renders an object literal type led by its __typename member.
func typenameObject(names []string, explicit bool, body string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	member := "__typename?: "
	if explicit {
		member = "__typename: "
	}
	member += strings.Join(quoted, " | ")
	if body == "" {
		return "{ " + member + " }"
	}
	return "{ " + member + ", " + body + " }"
}

// objectBody renders the members of a selection on the object type def,
// excluding __typename. explicit reports whether __typename was selected.
func (rc *RenderContext) objectBody(def *ast.Definition, set ast.SelectionSet) (body string, explicit bool, err error) {
	var members []string
	for _, g := range rc.collectFields(set, def.Name) {
		first := g.fields[0]
		if first.Name == "__typename" {
			if g.key == "__typename" {
				explicit = true
				continue
			}
			members = append(members, fmt.Sprintf("%s: %s", g.key, quote(def.Name)))
			continue
		}
		fd := def.Fields.ForName(first.Name)
		if fd == nil {
			return "", false, fmt.Errorf("type %s has no field %q", def.Name, first.Name)
		}
		var sub ast.SelectionSet
		for _, f := range g.fields {
			sub = append(sub, f.SelectionSet...)
		}
		t, err := rc.outputType(fd.Type, sub)
		if err != nil {
			return "", false, fmt.Errorf("%s.%s: %w", def.Name, first.Name, err)
		}
		optional := g.conditional
		if !fd.Type.NonNull && !rc.avoidOptional(fd.Type) {
			optional = true
		}
		members = append(members, fmt.Sprintf("%s%s: %s", g.key, questionMark(optional), t))
	}
	return strings.Join(members, ", "), explicit, nil
}

// avoidOptional reports whether a nullable field of type t is still emitted as
// a required member.
func (rc *RenderContext) avoidOptional(t *ast.Type) bool {
	for t.Elem != nil {
		t = t.Elem
	}
	if def := rc.Schema.Types[t.NamedType]; def != nil && def.IsCompositeType() {
		return rc.Config.AvoidOptionals.Object
	}
	return rc.Config.AvoidOptionals.Field
}

// outputType renders a field type with scalars, enums and selections resolved.
func (rc *RenderContext) outputType(t *ast.Type, sub ast.SelectionSet) (string, error) {
	var inner string
	if t.Elem != nil {
		elem, err := rc.outputType(t.Elem, sub)
		if err != nil {
			return "", err
		}
		inner = "Array<" + elem + ">"
	} else {
		def := rc.Schema.Types[t.NamedType]
		if def == nil {
			return "", fmt.Errorf("unknown type %q", t.NamedType)
		}
		switch def.Kind {
		case ast.Scalar:
			inner = rc.scalarType(def.Name, true)
		case ast.Enum:
			inner = rc.TypeName(def.Name)
		default:
			s, err := rc.selectionType(def, sub)
			if err != nil {
				return "", err
			}
			inner = s
		}
	}
	if t.NonNull {
		return inner, nil
	}
	if strings.Contains(inner, " | ") && !strings.HasPrefix(inner, "(") && !strings.HasPrefix(inner, "{") && !strings.HasPrefix(inner, "Array<") {
		inner = "(" + inner + ")"
	}
	return inner + " | null", nil
}
