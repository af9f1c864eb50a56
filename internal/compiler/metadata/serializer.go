package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Serialize converts metadata to indented JSON. The output is
// deterministic for equal input.
func Serialize(metadata *Metadata) ([]byte, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	return data, nil
}

// SerializeYAML converts metadata to YAML
func SerializeYAML(metadata *Metadata) ([]byte, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(metadata); err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// FromYAML parses metadata written by SerializeYAML
func FromYAML(data []byte) (*Metadata, error) {
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteToFile writes metadata to outputPath, as YAML when the extension is
// .yml or .yaml and as JSON otherwise.
func WriteToFile(metadata *Metadata, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".yml", ".yaml":
		data, err = SerializeYAML(metadata)
	default:
		data, err = Serialize(metadata)
	}
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata to %s: %w", outputPath, err)
	}
	return nil
}
