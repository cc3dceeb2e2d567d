package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlwelles/graphqlOpsGen/config"
)

func TestWriterBlockAndDoc(t *testing.T) {
	w := &writer{}
	w.Doc("single line with */ inside")
	w.Block("interface A {", "}", func() {
		w.Doc("first\n\nsecond")
		w.Line("a: %s", "string")
	})
	want := "/** single line with *\\/ inside */\n" +
		"interface A {\n" +
		"    /**\n" +
		"     * first\n" +
		"     *\n" +
		"     * second\n" +
		"     */\n" +
		"    a: string\n" +
		"}\n"
	assert.Equal(t, want, w.String())
}

func TestImportsLines(t *testing.T) {
	im := imports{}
	im.Add("b-module", "Z", "A")
	im.Add("a-module", "X")
	im.Add("b-module", "A")
	assert.Equal(t, []string{
		"import { X } from 'a-module'",
		"import { A, Z } from 'b-module'",
	}, im.Lines())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'Query'`, quote("Query"))
	assert.Equal(t, `'it\'s'`, quote("it's"))
	assert.Equal(t, `'a\\b'`, quote(`a\b`))
}

func TestConvertName(t *testing.T) {
	tests := []struct {
		convention string
		underscore bool
		in, want   string
	}{
		{"keep", false, "user_name", "user_name"},
		{"", true, "user_name", "user_name"},
		{"pascalCase", true, "user_name", "UserName"},
		{"pascalCase", false, "user_name", "User_Name"},
		{"change-case-all#pascalCase", true, "repository", "Repository"},
		{"upperCase", false, "git_ref", "GIT_REF"},
		{"lowerCase", true, "GIT_REF", "git_ref"},
		{"titleCase", true, "as_is", "as_is"},
	}
	for _, tt := range tests {
		t.Run(tt.convention+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, convertName(tt.convention, tt.underscore, tt.in))
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	r := DefaultRegistry()
	layout := config.NewLayout("/repo")

	p, err := r.Resolve(layout.ExtractPlugin())
	require.NoError(t, err)
	assert.Equal(t, "extractGraphQlOperationCodegenPlugin", p.Name())

	for _, id := range []config.PluginID{config.PluginTypeScript, config.PluginTypeScriptOperations, config.PluginApolloClientHelpers} {
		p, err := r.Resolve(id)
		require.NoError(t, err)
		assert.Equal(t, string(id), p.Name())
	}

	_, err = r.Resolve("typescript-react-apollo")
	assert.Error(t, err)

	_, err = r.Pipeline(config.Pipeline{config.PluginTypeScript, "nope.js"})
	assert.Error(t, err)
}
