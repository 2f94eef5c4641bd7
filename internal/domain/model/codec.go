package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodeForest reads a JSON forest keyed by project id. Projects without an
// id take their key.
func DecodeForest(r io.Reader) (Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	if f == nil {
		f = Forest{}
	}
	for id, p := range f {
		if p != nil && p.ID == "" {
			p.ID = id
		}
	}
	return f, nil
}

// ReadForestFile decodes the forest stored at path.
func ReadForestFile(path string) (Forest, error) {
	fh, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("open forest: %w", err)
	}
	defer func() { _ = fh.Close() }()
	return DecodeForest(fh)
}
