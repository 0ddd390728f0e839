package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

type upperNode struct {
	Base
	NoopLifecycle
}

func newUpperNode(id string) *upperNode {
	return &upperNode{
		Base: NewBase(id, "upper", "", Simple,
			[]port.Port{port.New("text", value.Simple(value.String)).WithRequired(true)},
			[]port.Port{port.New("result", value.Simple(value.String))},
		),
	}
}

func (n *upperNode) Execute(ctx context.Context, inputs Values) (Values, error) {
	s := inputs["text"].Str
	out := ""
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			r -= 32
		}
		out += string(r)
	}
	return Values{"result": value.NewString(out)}, nil
}

func TestValidateInputsRequiresDeclaredPort(t *testing.T) {
	n := newUpperNode("u1")
	err := ValidateInputs(n, Values{})
	require.Error(t, err)
}

func TestValidateInputsAcceptsMatchingType(t *testing.T) {
	n := newUpperNode("u1")
	err := ValidateInputs(n, Values{"text": value.NewString("hi")})
	require.NoError(t, err)
}

func TestValidateInputsRejectsTypeMismatch(t *testing.T) {
	n := newUpperNode("u1")
	err := ValidateInputs(n, Values{"text": value.NewInteger(1)})
	require.Error(t, err)
}

func TestValidateOutputsRejectsMissingPort(t *testing.T) {
	n := newUpperNode("u1")
	err := ValidateOutputs(n, Values{})
	require.Error(t, err)
}

func TestValidateOutputsRejectsExtraEntry(t *testing.T) {
	n := newUpperNode("u1")
	err := ValidateOutputs(n, Values{"result": value.NewString("HI"), "extra": value.NewString("x")})
	require.Error(t, err)
}

func TestValidateOutputsAccepts(t *testing.T) {
	n := newUpperNode("u1")
	err := ValidateOutputs(n, Values{"result": value.NewString("HI")})
	require.NoError(t, err)
}

func TestUniquePortNamesDetectsDuplicate(t *testing.T) {
	ports := []port.Port{
		port.New("x", value.Simple(value.String)),
		port.New("x", value.Simple(value.Integer)),
	}
	err := UniquePortNames("n1", "input", ports)
	require.Error(t, err)
}

func TestExecuteEndToEnd(t *testing.T) {
	n := newUpperNode("u1")
	out, err := n.Execute(context.Background(), Values{"text": value.NewString("hello")})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out["result"].Str)
}
