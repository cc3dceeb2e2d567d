package generator

import (
	"fmt"
	"strings"
)

// Header is the first line of every generated file.
const Header = "// Code generated by graphqlOpsGen. DO NOT EDIT."

// render runs the plugins in order and composes the file: header, the merged
// imports of all plugins, then each plugin's content.
func render(rc *RenderContext, plugins []Plugin) ([]byte, error) {
	merged := imports{}
	var sections []string
	for _, p := range plugins {
		out, err := p.Render(rc)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		for module, names := range out.Imports {
			for n := range names {
				merged.Add(module, n)
			}
		}
		if c := strings.TrimRight(out.Content, "\n"); c != "" {
			sections = append(sections, c)
		}
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\n")
	if lines := merged.Lines(); len(lines) > 0 {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(sections, "\n\n"))
	b.WriteString("\n")
	return []byte(b.String()), nil
}
