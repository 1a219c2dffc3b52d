package record

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFile writes a game file as indented JSON.
func SaveFile(path string, file GameFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal game file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write game file: %w", err)
	}
	return nil
}

// LoadFile reads a game file written by SaveFile.
func LoadFile(path string) (GameFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameFile{}, fmt.Errorf("read game file: %w", err)
	}
	var file GameFile
	if err := json.Unmarshal(data, &file); err != nil {
		return GameFile{}, fmt.Errorf("parse game file: %w", err)
	}
	return file, nil
}
