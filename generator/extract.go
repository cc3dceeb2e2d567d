package generator

import "fmt"

// extractPlugin emits the aggregate interface mapping every operation name to
// a function from its variables to its result. Test harnesses key mocked
// responses by this interface.
type extractPlugin struct{}

func (extractPlugin) Name() string { return "extractGraphQlOperationCodegenPlugin" }

func (extractPlugin) Render(rc *RenderContext) (*Output, error) {
	w := &writer{}
	name := rc.Target.Config.InterfaceName
	if name == "" {
		return nil, fmt.Errorf("target %s has no operations interface name", rc.Target.ID)
	}
	if len(rc.Docs.Operations) == 0 {
		w.Line("%sinterface %s {}", rc.export(), name)
		return &Output{Content: w.String()}, nil
	}
	w.Block(rc.export()+"interface "+name+" {", "}", func() {
		for _, op := range rc.Docs.Operations {
			base := operationBaseName(rc, op)
			w.Doc(op.File)
			w.Line("%s: (variables: %sVariables) => %s%s", op.Name, base, base, rc.Config.OperationResultSuffix)
		}
	})
	return &Output{Content: w.String()}, nil
}
