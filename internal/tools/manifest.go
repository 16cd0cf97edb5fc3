package tools

import (
	"bytes"
	"fmt"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed tools.yaml
var manifestYAML []byte

// ToolSpec 描述单个工具：名称、说明与参数 JSON Schema。
type ToolSpec struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Parameters  map[string]any `yaml:"parameters" json:"parameters"`

	compiled *jsonschema.Schema
}

// Manifest is the discoverable capability set served to the orchestration
// layer. Schemas are compiled once at load.
type Manifest struct {
	Tools []ToolSpec `yaml:"tools" json:"tools"`

	byName map[string]*ToolSpec
}

func loadManifest() (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(manifestYAML))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse tool manifest failed: %w", err)
	}
	m.byName = make(map[string]*ToolSpec, len(m.Tools))
	for i := range m.Tools {
		spec := &m.Tools[i]
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return nil, fmt.Errorf("tool manifest entry %d has no name", i)
		}
		if _, dup := m.byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q in manifest", spec.Name)
		}
		if len(spec.Parameters) > 0 {
			compiled, err := compileSchema(spec.Parameters)
			if err != nil {
				return nil, fmt.Errorf("compile schema for %q failed: %w", spec.Name, err)
			}
			spec.compiled = compiled
		}
		m.byName[spec.Name] = spec
	}
	return &m, nil
}

// Lookup returns the spec for a tool name.
func (m *Manifest) Lookup(name string) (*ToolSpec, bool) {
	spec, ok := m.byName[strings.TrimSpace(name)]
	return spec, ok
}

// Validate checks args against the tool's compiled schema. Arguments are
// sanitized first because LLM callers sometimes send "3000" instead of 3000.
func (t *ToolSpec) Validate(args map[string]any) error {
	if t.compiled == nil {
		return nil
	}
	return t.compiled.Validate(sanitizeArgs(args))
}
