package graphdef

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowengine/flowengine/value"
)

func TestTypeLiteralScalarRoundTrip(t *testing.T) {
	tl := FromType(value.Simple(value.BotAdapterRef))
	data, err := json.Marshal(tl)
	require.NoError(t, err)
	assert.Equal(t, `"BotAdapterRef"`, string(data))

	var back TypeLiteral
	require.NoError(t, json.Unmarshal(data, &back))
	got, err := back.ToType()
	require.NoError(t, err)
	assert.True(t, got.Equal(value.Simple(value.BotAdapterRef)))
}

func TestTypeLiteralListRoundTrip(t *testing.T) {
	tl := FromType(value.ListOf(value.Simple(value.Integer)))
	data, err := json.Marshal(tl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"List":"Integer"}`, string(data))

	var back TypeLiteral
	require.NoError(t, json.Unmarshal(data, &back))
	got, err := back.ToType()
	require.NoError(t, err)
	assert.True(t, got.Equal(value.ListOf(value.Simple(value.Integer))))
}

func TestTypeLiteralCustomRoundTrip(t *testing.T) {
	tl := FromType(value.CustomType("Widget"))
	data, err := json.Marshal(tl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Custom":"Widget"}`, string(data))

	var back TypeLiteral
	require.NoError(t, json.Unmarshal(data, &back))
	got, err := back.ToType()
	require.NoError(t, err)
	assert.True(t, got.Equal(value.CustomType("Widget")))
}

func TestTypeLiteralUnrecognizedScalar(t *testing.T) {
	var tl TypeLiteral
	require.NoError(t, json.Unmarshal([]byte(`"NotAType"`), &tl))
	_, err := tl.ToType()
	require.Error(t, err)
}
