package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/registry"
	"github.com/flowengine/flowengine/value"
)

type echoNode struct {
	node.Base
	node.NoopLifecycle
}

func echoFactory(id, name string) (node.Node, error) {
	return &echoNode{Base: node.NewBase(id, name, "", node.Simple, nil,
		[]port.Port{port.New("out", value.Simple(value.String))},
	)}, nil
}

func (n *echoNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	return node.Values{"out": value.NewString("ok")}, nil
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(nil)
	require.NoError(t, reg.Register(registry.TypeDef{TypeID: "echo", Factory: echoFactory}))
	return reg
}

func writeGraphFile(t *testing.T, dir string) string {
	t.Helper()
	def := map[string]any{
		"nodes": []map[string]any{
			{
				"id": "n1", "name": "n1", "node_type": "echo",
				"input_ports":  []any{},
				"output_ports": []map[string]any{{"name": "out", "data_type": "String", "required": false}},
			},
		},
		"edges": []any{},
	}
	data, err := json.Marshal(def)
	require.NoError(t, err)
	path := filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestValidateCmdAcceptsValidGraph(t *testing.T) {
	reg := newTestRegistry(t)
	path := writeGraphFile(t, t.TempDir())

	cmd := NewValidateCmd(reg)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "valid")
}

func TestValidateCmdReportsMissingFile(t *testing.T) {
	reg := newTestRegistry(t)
	cmd := NewValidateCmd(reg)
	cmd.SetArgs([]string{"/does/not/exist.json"})
	err := cmd.Execute()
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFileNotFound, exitErr.Code)
}

func TestRunCmdExecutesGraph(t *testing.T) {
	reg := newTestRegistry(t)
	path := writeGraphFile(t, t.TempDir())

	cmd := NewRunCmd(reg)
	cmd.SetArgs([]string{"--graph-json", path})
	require.NoError(t, cmd.Execute())
}
