// Package textutil provides small Simple text-transform nodes (spec
// §1: "concrete node implementations ... text utilities" named as an
// out-of-core external collaborator, implemented here as a sample
// registrant for the registry).
package textutil

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// UpperTypeID is the registry type id for UpperNode.
const UpperTypeID = "textutil.upper"

// UpperNode uppercases its "in" string input onto its "out" output.
type UpperNode struct {
	node.Base
	node.NoopLifecycle
}

// NewUpperNode satisfies registry.Factory.
func NewUpperNode(id, name string) (node.Node, error) {
	return &UpperNode{Base: node.NewBase(id, name, "uppercases the input string", node.Simple,
		[]port.Port{port.New("in", value.Simple(value.String)).WithRequired(true)},
		[]port.Port{port.New("out", value.Simple(value.String))},
	)}, nil
}

func (n *UpperNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	return node.Values{"out": value.NewString(strings.ToUpper(in["in"].Str))}, nil
}

// TemplateTypeID is the registry type id for TemplateNode.
const TemplateTypeID = "textutil.template"

// TemplateConfig configures a TemplateNode, mirroring the teacher's
// TransformNodeConfig pattern: one struct per node family, one field per
// configuration knob.
type TemplateConfig struct {
	// Template is the Go text/template source. {{.Value}} refers to the
	// node's "in" input.
	Template string
}

// TemplateNode renders a Go text template against its "in" input.
type TemplateNode struct {
	node.Base
	node.NoopLifecycle
	tmpl *template.Template
}

// NewTemplateNode builds a template-rendering node. A malformed template
// source fails at construction time rather than at every Execute call.
func NewTemplateNode(id, name string, cfg TemplateConfig) (node.Node, error) {
	tmpl, err := template.New(id).Parse(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("textutil: parse template for node %s: %w", id, err)
	}
	return &TemplateNode{
		Base: node.NewBase(id, name, "renders a Go text template", node.Simple,
			[]port.Port{port.New("in", value.Simple(value.String)).WithRequired(true)},
			[]port.Port{port.New("out", value.Simple(value.String))},
		),
		tmpl: tmpl,
	}, nil
}

func (n *TemplateNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, struct{ Value string }{Value: in["in"].Str}); err != nil {
		return nil, fmt.Errorf("textutil: render template: %w", err)
	}
	return node.Values{"out": value.NewString(buf.String())}, nil
}

// TemplateFactory closes over cfg to produce a registry.Factory, since
// NewTemplateNode needs configuration beyond (id, name).
func TemplateFactory(cfg TemplateConfig) func(id, name string) (node.Node, error) {
	return func(id, name string) (node.Node, error) {
		return NewTemplateNode(id, name, cfg)
	}
}

// FrontmatterTypeID is the registry type id for FrontmatterNode.
const FrontmatterTypeID = "textutil.frontmatter"

// FrontmatterNode splits a "---\n...---\n" YAML frontmatter block from the
// remaining document body, emitting the body as a String and the
// frontmatter as a Json value.
type FrontmatterNode struct {
	node.Base
	node.NoopLifecycle
}

// NewFrontmatterNode satisfies registry.Factory.
func NewFrontmatterNode(id, name string) (node.Node, error) {
	return &FrontmatterNode{Base: node.NewBase(id, name, "splits YAML frontmatter from a document body", node.Simple,
		[]port.Port{port.New("document", value.Simple(value.String)).WithRequired(true)},
		[]port.Port{
			port.New("body", value.Simple(value.String)),
			port.New("frontmatter", value.Simple(value.Json)),
		},
	)}, nil
}

func (n *FrontmatterNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	doc := in["document"].Str

	const delim = "---"
	if !strings.HasPrefix(doc, delim) {
		return node.Values{"body": value.NewString(doc), "frontmatter": value.NewJson(map[string]any{})}, nil
	}

	rest := doc[len(delim):]
	end := strings.Index(rest, "\n"+delim)
	if end == -1 {
		return node.Values{"body": value.NewString(doc), "frontmatter": value.NewJson(map[string]any{})}, nil
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return nil, fmt.Errorf("textutil: parse frontmatter: %w", err)
	}
	body := strings.TrimPrefix(rest[end+1+len(delim):], "\n")

	return node.Values{"body": value.NewString(body), "frontmatter": value.NewJson(meta)}, nil
}
