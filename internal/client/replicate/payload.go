package replicate

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ScenePayloadType    = "whiteboard-scene"
	ScenePayloadVersion = 1
)

var ErrMalformedScene = errors.New("malformed whiteboard payload")

// SceneEnvelope is the versioned wire form of the whiteboard scene graph.
// Elements stay opaque to the transport; only the envelope is validated,
// so a malformed or future-incompatible payload is rejected deterministically.
type SceneEnvelope struct {
	Version  int               `json:"v"`
	Type     string            `json:"type"`
	Elements []json.RawMessage `json:"elements"`
}

func EncodeScene(elements []json.RawMessage) (string, error) {
	data, err := json.Marshal(SceneEnvelope{
		Version:  ScenePayloadVersion,
		Type:     ScenePayloadType,
		Elements: elements,
	})
	if err != nil {
		return "", fmt.Errorf("encode scene: %w", err)
	}

	return string(data), nil
}

func DecodeScene(raw string) ([]json.RawMessage, error) {
	var envelope SceneEnvelope

	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScene, err)
	}

	if envelope.Type != ScenePayloadType {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrMalformedScene, envelope.Type)
	}

	if envelope.Version != ScenePayloadVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedScene, envelope.Version)
	}

	return envelope.Elements, nil
}
