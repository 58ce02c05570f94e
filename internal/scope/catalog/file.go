package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads catalog items from a .json (array), .jsonl (one item per line) or .yaml file
func LoadFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(f)
	case ".jsonl", ".ndjson":
		return decodeJSONLines(f)
	case ".yaml", ".yml":
		return decodeYAML(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// NewFileSource loads path into a MemorySource
func NewFileSource(path string) (*MemorySource, error) {
	items, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemorySource(items), nil
}

func decodeJSON(r io.Reader) ([]Item, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return items, nil
}

func decodeJSONLines(r io.Reader) ([]Item, error) {
	items := make([]Item, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			return nil, fmt.Errorf("failed to decode item on line %d: %w", line, err)
		}
		items = append(items, it)
	}
	return items, scanner.Err()
}

func decodeYAML(r io.Reader) ([]Item, error) {
	var items []Item
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return items, nil
}
