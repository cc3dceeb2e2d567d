package generator

import (
	"fmt"
	"sort"
	"strings"
)

// indentUnit matches the formatter's default so unformatted output is already
// close to the final file.
const indentUnit = "    "

// writer is the TypeScript emission buffer shared by the plugins.
type writer struct {
	b     strings.Builder
	depth int
}

// Line writes one indented line.
func (w *writer) Line(format string, args ...any) {
	if format == "" {
		w.b.WriteByte('\n')
		return
	}
	w.b.WriteString(strings.Repeat(indentUnit, w.depth))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// Block writes open, runs body one level deeper, then writes close.
func (w *writer) Block(open, close string, body func()) {
	w.Line("%s", open)
	w.depth++
	body()
	w.depth--
	w.Line("%s", close)
}

// Doc writes a JSDoc comment. Multi-line text becomes a block comment.
func (w *writer) Doc(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		w.Line("/** %s */", escapeComment(lines[0]))
		return
	}
	w.Line("/**")
	for _, l := range lines {
		l = strings.TrimRight(escapeComment(l), " \t")
		if l == "" {
			w.Line(" *")
			continue
		}
		w.Line(" * %s", l)
	}
	w.Line(" */")
}

func (w *writer) String() string { return w.b.String() }

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

// imports collects named imports per module, sorted and deduplicated.
type imports map[string]map[string]bool

func (im imports) Add(module string, names ...string) {
	set, ok := im[module]
	if !ok {
		set = make(map[string]bool)
		im[module] = set
	}
	for _, n := range names {
		set[n] = true
	}
}

// Lines renders one import statement per module, modules and names sorted.
func (im imports) Lines() []string {
	modules := make([]string, 0, len(im))
	for m := range im {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		names := make([]string, 0, len(im[m]))
		for n := range im[m] {
			names = append(names, n)
		}
		sort.Strings(names)
		out = append(out, fmt.Sprintf("import { %s } from '%s'", strings.Join(names, ", "), m))
	}
	return out
}

// quote renders a TypeScript single-quoted string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
