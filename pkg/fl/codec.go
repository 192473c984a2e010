package fl

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	return em
}

// EncodeModel serializes a model as deterministic CBOR, the compact form
// shipped to embedded clients.
func EncodeModel(m Model) ([]byte, error) {
	if len(m.Weights) == 0 {
		return nil, ErrEmptyModel
	}

	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}

	return data, nil
}

func DecodeModel(data []byte) (Model, error) {
	var m Model
	if err := cbor.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("failed to decode model: %w", err)
	}
	if len(m.Weights) == 0 {
		return Model{}, ErrEmptyModel
	}

	return m, nil
}

func WriteModelFile(path string, m Model) error {
	data, err := EncodeModel(m)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}

	return nil
}

func ReadModelFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("failed to read model file: %w", err)
	}

	return DecodeModel(data)
}
