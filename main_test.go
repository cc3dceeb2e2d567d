package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlwelles/graphqlOpsGen/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestGlobsCommand(t *testing.T) {
	root := filepath.FromSlash("/repo")
	out, _, err := execute(t, "--root", root, "globs", "--set", "browser")
	require.NoError(t, err)

	l := config.NewLayout(root)
	assert.Equal(t, strings.Join(l.BrowserDocuments(), "\n")+"\n", out)
}

func TestGlobsCommandJSON(t *testing.T) {
	out, _, err := execute(t, "--root", "/repo", "globs", "--json")
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	cfg, err := config.Build("/repo")
	require.NoError(t, err)
	assert.Equal(t, []string(cfg.AllDocuments), got)
}

func TestGlobsCommandUnknownSet(t *testing.T) {
	_, _, err := execute(t, "--root", "/repo", "globs", "--set", "desktop")
	assert.ErrorContains(t, err, `unknown glob set "desktop"`)
}

func TestTargetsCommand(t *testing.T) {
	out, _, err := execute(t, "--root", "/repo", "targets")
	require.NoError(t, err)
	assert.Contains(t, out, "web\n")
	assert.Contains(t, out, "  interface: WebGraphQlOperations\n")
	assert.Contains(t, out, "  enums:     "+config.SharedModule+" (from shared)\n")
	assert.Contains(t, out, "typescript-apollo-client-helpers")
}

func TestGenerateCommand(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"cmd/frontend/graphqlbackend/schema.graphql": "type Query { viewer: String }",
		"client/web/src/a.ts":                        "gql`query Viewer { viewer }`\n",
	})
	overrides := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(overrides, []byte("errorsOnly: false\n"), 0o644))

	out, _, err := execute(t, "--root", root, "--config", overrides, "generate", "--no-format")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "client", "web", "src", "graphql-operations.ts"))
	assert.Contains(t, out, "(1 operations, 0 fragments)")

	data, err := os.ReadFile(filepath.Join(root, "client", "web", "src", "graphql-operations.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "export type ViewerResult = { __typename?: 'Query', viewer: string | null }")
}

func TestGenerateCommandReportsErrors(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"cmd/frontend/graphqlbackend/schema.graphql": "type Query { viewer: String }",
		"client/web/src/a.ts":                        "gql`query Viewer { nope }`\n",
	})
	_, stderr, err := execute(t, "--root", root, "generate", "--no-format")
	require.Error(t, err)
	assert.Contains(t, stderr, "target web")
	assert.Contains(t, stderr, "nope")
}

func TestGenerateCommandRelativeRoot(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"cmd/frontend/graphqlbackend/schema.graphql": "type Query { viewer: String }",
		"client/web/src/a.ts":                        "gql`query Viewer { viewer }`\n",
	})
	t.Chdir(root)

	t.Run("Flag", func(t *testing.T) {
		_, stderr, err := execute(t, "--root", ".", "generate", "--no-format")
		require.NoError(t, err, stderr)
		assert.FileExists(t, filepath.Join(root, "client", "web", "src", "graphql-operations.ts"))
	})

	t.Run("Env", func(t *testing.T) {
		t.Setenv(config.RootEnv, ".")
		out, stderr, err := execute(t, "targets")
		require.NoError(t, err, stderr)
		assert.Contains(t, out, filepath.Join(root, "client", "web", "src", "graphql-operations.ts"))
	})
}

func TestGenerateCommandNoFormatEnv(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"cmd/frontend/graphqlbackend/schema.graphql": "type Query { viewer: String }",
		"client/web/src/a.ts":                        "gql`query Viewer { viewer }`\n",
	})
	overrides := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(overrides, []byte("errorsOnly: false\nformat: [\"false\"]\n"), 0o644))

	out, _, err := execute(t, "--root", root, "--config", overrides, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "false exited 1")

	t.Setenv(config.NoFormatEnv, "true")
	out, _, err = execute(t, "--root", root, "--config", overrides, "generate")
	require.NoError(t, err)
	assert.NotContains(t, out, "exited")
	assert.Contains(t, out, "(1 operations, 0 fragments)")
}

func TestGenerateCommandReportsUnmappedScalars(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"cmd/frontend/graphqlbackend/schema.graphql": "scalar Upload\ntype Query { file: Upload }",
		"client/web/src/a.ts":                        "gql`query File { file }`\n",
	})
	out, stderr, err := execute(t, "--root", root, "generate", "--no-format")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Upload")
	assert.Contains(t, stderr, "phase=scalar")
}

func TestEnvFileParseFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOT-A-NAME=1\n"), 0o644))
	t.Chdir(dir)

	_, stderr, err := execute(t, "--root", "/repo", "targets")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Failed to load .env")
}
