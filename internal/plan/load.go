package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// LoadError reports a composition document that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadComposition reads a composition document from path. The format
// follows the extension: .json, .yaml/.yml or .cue. A CUE document may
// either be the composition itself or hold it in a top-level
// "composition" field.
//
// The document is checked against the CUE schema and then validated in
// full. A missing version defaults to 1.
func LoadComposition(path string) (*ir.Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	c, err := ParseComposition(filepath.Base(path), data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return c, nil
}

// ParseComposition decodes a composition document; name selects the
// format by extension and labels CUE error positions.
func ParseComposition(name string, data []byte) (*ir.Composition, error) {
	switch extension(name) {
	case ".yaml", ".yml":
		b, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		data = b
	case ".json", ".cue":
	default:
		return nil, fmt.Errorf("unsupported composition format %q (want .json, .yaml or .cue)", extension(name))
	}

	normalized, err := check("#Composition", "composition", name, data)
	if err != nil {
		return nil, err
	}

	var c ir.Composition
	if err := json.Unmarshal(normalized, &c); err != nil {
		return nil, fmt.Errorf("decode composition: %w", err)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Elements == nil {
		c.Elements = []ir.Element{}
	}
	if c.Patches == nil {
		c.Patches = []ir.Patch{}
	}
	if err := ir.ValidateComposition(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
