package profile

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a YAML profile from disk.
func LoadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("profile: open %q: %w", path, err)
	}
	defer f.Close()

	p, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("profile: parse %q: %w", path, err)
	}
	return p, nil
}

// LoadFromReader decodes a YAML profile from r and validates it.
// Unknown keys are rejected to catch typos in hand-written fixtures.
func LoadFromReader(r io.Reader) (*Profile, error) {
	p := &Profile{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("profile: decode yaml: %w", err)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}
