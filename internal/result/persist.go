package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the record as indented JSON. The file is written to a temp
// path in the target directory and renamed into place, so a failed run
// never leaves a partial or corrupt result file behind.
func (r *Record) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".doctriage-result-*")
	if err != nil {
		return fmt.Errorf("failed to create temp result file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write result record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp result file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move result into place: %w", err)
	}
	return nil
}

// Load reads a previously persisted record.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse result record: %w", err)
	}
	return &rec, nil
}
