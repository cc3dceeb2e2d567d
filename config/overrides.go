package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides are the user-adjustable knobs read from an optional YAML file.
// Unset fields leave the built-in value alone.
//
//	scalars:
//	  Upload: File
//	format: ["prettier", "--write"]
//	errorsOnly: false
//	strictScalars: true
//	namingConvention:
//	  typeNames: change-case-all#pascalCase
//	  enumValues: keep
//	  transformUnderscore: true
//	declarationKind: type
//	targets:
//	  web:
//	    onlyOperationTypes: false
//	    noExport: true
type Overrides struct {
	Scalars         ScalarMap                    `yaml:"scalars"`
	Format          []string                     `yaml:"format"`
	ErrorsOnly      *bool                        `yaml:"errorsOnly"`
	StrictScalars   *bool                        `yaml:"strictScalars"`
	Naming          *NamingConvention            `yaml:"namingConvention"`
	DeclarationKind string                       `yaml:"declarationKind"`
	Targets         map[TargetID]TargetOverrides `yaml:"targets"`
}

// TargetOverrides adjust one target.
type TargetOverrides struct {
	OnlyOperationTypes *bool `yaml:"onlyOperationTypes"`
	NoExport           *bool `yaml:"noExport"`
}

// LoadOverrides reads overrides from path. Unknown keys are rejected.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides %s: %w", path, err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes overrides from YAML.
func ParseOverrides(data []byte) (*Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		// An empty document decodes to io.EOF; treat it as no overrides.
		if len(bytes.TrimSpace(data)) == 0 {
			return &Overrides{}, nil
		}
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}
	return &o, nil
}

// Apply returns a copy of c with o applied, validated. c is left untouched.
func (c *Config) Apply(o *Overrides) (*Config, error) {
	out := *c
	out.Targets = make([]Target, len(c.Targets))
	copy(out.Targets, c.Targets)
	out.Scalars = c.Scalars.Merge(nil)
	out.Hooks.AfterOneFileWrite = append([]string(nil), c.Hooks.AfterOneFileWrite...)

	if o != nil {
		if len(o.Scalars) > 0 {
			out.Scalars = out.Scalars.Merge(o.Scalars)
		}
		if o.Format != nil {
			out.Hooks.AfterOneFileWrite = append([]string(nil), o.Format...)
		}
		if o.ErrorsOnly != nil {
			out.ErrorsOnly = *o.ErrorsOnly
		}
		if o.StrictScalars != nil {
			out.StrictScalars = *o.StrictScalars
		}
		if o.Naming != nil {
			out.Naming = *o.Naming
		}
		if o.DeclarationKind != "" {
			out.DeclarationKind = o.DeclarationKind
		}
		for id, to := range o.Targets {
			t, ok := out.Target(id)
			if !ok {
				return nil, fmt.Errorf("%w: overrides name unknown target %q", ErrInvalid, id)
			}
			if to.OnlyOperationTypes != nil {
				t.Config.OnlyOperationTypes = *to.OnlyOperationTypes
			}
			if to.NoExport != nil {
				t.Config.NoExport = *to.NoExport
			}
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
