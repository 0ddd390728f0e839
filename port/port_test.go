package port

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowengine/flowengine/value"
)

func TestPortBuilders(t *testing.T) {
	p := New("text", value.Simple(value.String)).
		WithDescription("input text").
		WithRequired(true)

	assert.Equal(t, "text", p.Name())
	assert.True(t, p.Type().Equal(value.Simple(value.String)))
	assert.Equal(t, "input text", p.Description())
	assert.True(t, p.Required())
}
