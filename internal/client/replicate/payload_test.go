package replicate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/client/replicate"
)

func TestScene_EncodeDecode(t *testing.T) {
	elements := []json.RawMessage{
		json.RawMessage(`{"type":"rect","x":0,"y":0}`),
		json.RawMessage(`{"type":"arrow","points":[[0,0],[10,10]]}`),
	}

	raw, err := replicate.EncodeScene(elements)
	require.NoError(t, err)

	decoded, err := replicate.DecodeScene(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.JSONEq(t, string(elements[0]), string(decoded[0]))
	assert.JSONEq(t, string(elements[1]), string(decoded[1]))
}

func TestScene_EncodeEmpty(t *testing.T) {
	raw, err := replicate.EncodeScene(nil)
	require.NoError(t, err)

	decoded, err := replicate.DecodeScene(raw)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestScene_DecodeRejectsMalformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "truncated json", raw: `{"v":1,"type":"whiteboard-sc`},
		{name: "not an object", raw: `"just a string"`},
		{name: "wrong type", raw: `{"v":1,"type":"chat-message","elements":[]}`},
		{name: "future version", raw: `{"v":2,"type":"whiteboard-scene","elements":[]}`},
		{name: "missing envelope", raw: `[{"type":"rect"}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := replicate.DecodeScene(tc.raw)
			require.ErrorIs(t, err, replicate.ErrMalformedScene)
		})
	}
}
