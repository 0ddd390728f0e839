package textutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/value"
)

func TestUpperNode(t *testing.T) {
	n, err := NewUpperNode("n1", "upper")
	require.NoError(t, err)
	out, err := n.Execute(context.Background(), node.Values{"in": value.NewString("hello")})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out["out"].Str)
}

func TestTemplateNode(t *testing.T) {
	n, err := NewTemplateNode("n1", "tmpl", TemplateConfig{Template: "hi {{.Value}}"})
	require.NoError(t, err)
	out, err := n.Execute(context.Background(), node.Values{"in": value.NewString("world")})
	require.NoError(t, err)
	assert.Equal(t, "hi world", out["out"].Str)
}

func TestTemplateNodeRejectsMalformedTemplateAtConstruction(t *testing.T) {
	_, err := NewTemplateNode("n1", "tmpl", TemplateConfig{Template: "{{.Unterminated"})
	require.Error(t, err)
}

func TestFrontmatterNodeSplitsDocument(t *testing.T) {
	n, err := NewFrontmatterNode("n1", "fm")
	require.NoError(t, err)
	doc := "---\ntitle: hello\n---\nbody text\n"
	out, err := n.Execute(context.Background(), node.Values{"document": value.NewString(doc)})
	require.NoError(t, err)
	assert.Equal(t, "body text\n", out["body"].Str)
	meta := out["frontmatter"].JsonV.(map[string]any)
	assert.Equal(t, "hello", meta["title"])
}

func TestFrontmatterNodeNoFrontmatterPassesThrough(t *testing.T) {
	n, err := NewFrontmatterNode("n1", "fm")
	require.NoError(t, err)
	out, err := n.Execute(context.Background(), node.Values{"document": value.NewString("plain text")})
	require.NoError(t, err)
	assert.Equal(t, "plain text", out["body"].Str)
}
