// Package profile loads declarative validation profiles from YAML and
// compiles them into constraints for guarded documents.
//
// A profile names a set of rules; each rule binds one field of a document
// to a list of constraint declarations:
//
//	profile:
//	  name: user-record
//	rules:
//	  - field: user.name
//	    constraints:
//	      - type: not_blank
//	  - field: user.version
//	    constraints:
//	      - type: semver_range
//	        range: ">= 1.0.0, < 2.0.0"
//
// Profiles are validated against an embedded JSON Schema before decoding,
// so malformed declarations fail with a location-bearing error instead of
// compiling into surprising constraints.
package profile

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var profileSchema string

// Profile is a named set of validation rules for one document shape.
type Profile struct {
	Profile Metadata `yaml:"profile"`
	Rules   []Rule   `yaml:"rules"`
}

// Metadata identifies a profile.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Rule binds one document field to a list of constraint declarations. The
// field is a dot-separated path into the document; an empty field selects
// the whole document.
type Rule struct {
	Field       string       `yaml:"field"`
	Description string       `yaml:"description"`
	Optional    bool         `yaml:"optional"`
	Constraints []Declaration `yaml:"constraints"`
}

// Declaration selects a constraint type and its parameters.
type Declaration struct {
	Type    string   `yaml:"type"`
	Pattern string   `yaml:"pattern"`
	Expr    string   `yaml:"expr"`
	Schema  string   `yaml:"schema"`
	Range   string   `yaml:"range"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Async   bool     `yaml:"async"`
}

// Load reads and parses a profile from a YAML file.
func Load(path string) (*Profile, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return LoadFromReader(file)
}

// LoadFromReader reads and parses a profile from an io.Reader.
func LoadFromReader(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var p Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile YAML: %w", err)
	}
	return &p, nil
}

// validateSchema checks the raw document against the embedded profile
// schema before decoding into typed structs.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("profile.json", strings.NewReader(profileSchema)); err != nil {
		return fmt.Errorf("failed to add profile schema: %w", err)
	}
	schema, err := compiler.Compile("profile.json")
	if err != nil {
		return fmt.Errorf("failed to compile profile schema: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}
	return nil
}
