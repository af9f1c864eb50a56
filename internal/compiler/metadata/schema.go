// Package metadata provides introspection data for loaded classes and
// roles: what `moops inspect` prints, what the language server shows on
// hover, and what generated Go code embeds.
package metadata

import "encoding/json"

// Metadata is the introspection snapshot of one environment
type Metadata struct {
	Version    string            `json:"version" yaml:"version"`
	SourceHash string            `json:"source_hash" yaml:"source_hash"` // Hash of every class shape for change detection
	Classes    []ClassMetadata   `json:"classes" yaml:"classes"`
	Libraries  []LibraryMetadata `json:"libraries,omitempty" yaml:"libraries,omitempty"`
}

// ClassMetadata describes a registered class or role
type ClassMetadata struct {
	Name       string              `json:"name" yaml:"name"`
	Kind       string              `json:"kind" yaml:"kind"` // class or role
	Doc        string              `json:"doc,omitempty" yaml:"doc,omitempty"`
	FilePath   string              `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Line       int                 `json:"line,omitempty" yaml:"line,omitempty"`
	Parent     string              `json:"parent,omitempty" yaml:"parent,omitempty"`
	Lineage    []string            `json:"lineage,omitempty" yaml:"lineage,omitempty"`
	Roles      []string            `json:"roles,omitempty" yaml:"roles,omitempty"`
	Requires   []string            `json:"requires,omitempty" yaml:"requires,omitempty"`
	Attributes []AttributeMetadata `json:"attributes" yaml:"attributes"`
	Methods    []MethodMetadata    `json:"methods" yaml:"methods"`
	Modifiers  []ModifierMetadata  `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// AttributeMetadata describes one attribute
type AttributeMetadata struct {
	Name     string `json:"name" yaml:"name"`
	Access   string `json:"access" yaml:"access"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Builder  string `json:"builder,omitempty" yaml:"builder,omitempty"`
	Trigger  string `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Owner    string `json:"owner" yaml:"owner"`
}

// MethodMetadata describes one method. Accessors are not listed.
type MethodMetadata struct {
	Name      string          `json:"name" yaml:"name"`
	Signature string          `json:"signature" yaml:"signature"`
	Params    []ParamMetadata `json:"params,omitempty" yaml:"params,omitempty"`
	Owner     string          `json:"owner" yaml:"owner"`
	Overrides string          `json:"overrides,omitempty" yaml:"overrides,omitempty"` // owner of the method it overrides
}

// ParamMetadata describes one method parameter
type ParamMetadata struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Named    bool   `json:"named,omitempty" yaml:"named,omitempty"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
}

// ModifierMetadata describes a before or after modifier
type ModifierMetadata struct {
	Kind   string `json:"kind" yaml:"kind"`
	Method string `json:"method" yaml:"method"`
	Owner  string `json:"owner" yaml:"owner"`
}

// LibraryMetadata lists the exports of a type library
type LibraryMetadata struct {
	Name  string   `json:"name" yaml:"name"`
	Types []string `json:"types" yaml:"types"`
}

// Class returns the metadata of the class named name
func (m *Metadata) Class(name string) (*ClassMetadata, bool) {
	for i := range m.Classes {
		if m.Classes[i].Name == name {
			return &m.Classes[i], true
		}
	}
	return nil, false
}

// ClassNames returns every class name in snapshot order
func (m *Metadata) ClassNames() []string {
	out := make([]string, len(m.Classes))
	for i, c := range m.Classes {
		out[i] = c.Name
	}
	return out
}

// Attribute returns an attribute of the class by name
func (c *ClassMetadata) Attribute(name string) (*AttributeMetadata, bool) {
	for i := range c.Attributes {
		if c.Attributes[i].Name == name {
			return &c.Attributes[i], true
		}
	}
	return nil, false
}

// Method returns a method of the class by name
func (c *ClassMetadata) Method(name string) (*MethodMetadata, bool) {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i], true
		}
	}
	return nil, false
}

// ToJSON converts metadata to JSON string
func (m *Metadata) ToJSON() (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON parses metadata from JSON string
func FromJSON(data string) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, err
	}
	return &m, nil
}
