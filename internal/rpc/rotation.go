package rpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

type rotationState struct {
	Next int `json:"next"`
}

// LoadRotation seeds the round-robin cursor from path. A missing file
// leaves the cursor at zero.
func LoadRotation(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var st rotationState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	SeedRotation(st.Next)
	return nil
}

// SaveRotation writes the round-robin cursor to path.
func SaveRotation(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(rotationState{Next: Rotation()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
