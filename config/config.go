// Package config loads and saves user preferences as YAML.
//
// Preferences hold the extraction defaults, the report format and named
// sets of comparison parameters. Filesystem locations are stored with '/'
// separators and converted to the host form on load.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/meigma/zipview"
	"github.com/meigma/zipview/filter"
	"github.com/meigma/zipview/internal/batch"
)

// FileName is the name of the preferences file inside the config directory.
const FileName = "config.yaml"

// Preferences is the persisted user configuration.
type Preferences struct {
	Extraction Extraction `yaml:"extraction"`
	Comparison Comparison `yaml:"comparison"`
}

// Extraction holds extraction defaults.
type Extraction struct {
	// Directory is the default output directory.
	Directory string `yaml:"directory,omitempty"`

	// Flatten writes every file directly into the output directory.
	Flatten bool `yaml:"flatten"`

	// OnConflict decides what happens to files that already exist.
	OnConflict ConflictPolicy `yaml:"onConflict"`
}

// Comparison holds comparison defaults and saved parameter sets.
type Comparison struct {
	ReportFormat zipview.ReportFormat `yaml:"reportFormat"`
	Params       []Params             `yaml:"params,omitempty"`
}

// Default returns the preferences used when no file exists.
func Default() *Preferences {
	return &Preferences{
		Extraction: Extraction{OnConflict: ConflictFail},
		Comparison: Comparison{ReportFormat: zipview.ReportColumns},
	}
}

// DefaultPath returns the preferences file in the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "zipview", FileName), nil
}

// Load reads preferences from path. A missing file yields Default().
func Load(path string) (*Preferences, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	p.Extraction.Directory = zipview.DenormalizePathname(p.Extraction.Directory)
	return p, nil
}

// Save writes p to path, replacing any existing file only once the new
// content is complete.
func Save(path string, p *Preferences) error {
	out := *p
	out.Extraction.Directory = zipview.NormalizePathname(p.Extraction.Directory)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	w, err := batch.NewFileSink(batch.WithDirMode(0o700)).Writer(path, 0o600)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write config: %w", err)
	}
	return w.Commit()
}

// Params returns the saved comparison parameters called name.
func (p *Preferences) Params(name string) (Params, bool) {
	i := slices.IndexFunc(p.Comparison.Params, func(cp Params) bool { return cp.Name == name })
	if i < 0 {
		return Params{}, false
	}
	return p.Comparison.Params[i], true
}

// SetParams stores cp, replacing any saved parameters of the same name.
func (p *Preferences) SetParams(cp Params) {
	i := slices.IndexFunc(p.Comparison.Params, func(x Params) bool { return x.Name == cp.Name })
	if i < 0 {
		p.Comparison.Params = append(p.Comparison.Params, cp)
		return
	}
	p.Comparison.Params[i] = cp
}

// RemoveParams deletes the saved parameters called name and reports
// whether they existed.
func (p *Preferences) RemoveParams(name string) bool {
	n := len(p.Comparison.Params)
	p.Comparison.Params = slices.DeleteFunc(p.Comparison.Params, func(cp Params) bool { return cp.Name == name })
	return len(p.Comparison.Params) != n
}

// Params is a named set of comparison filters and fields.
type Params struct {
	Name    string          `yaml:"name"`
	Filters []filter.Filter `yaml:"filters,omitempty"`
	Fields  []zipview.Field `yaml:"fields,omitempty"`
}

// FieldSet returns the fields as a set.
func (cp Params) FieldSet() zipview.FieldSet {
	return zipview.NewFieldSet(cp.Fields...)
}

// rawFilter is the stored form of a filter. Inclusive is the key used
// before filters carried an explicit kind.
type rawFilter struct {
	Kind        string  `yaml:"kind"`
	PatternKind string  `yaml:"patternKind"`
	Pattern     *string `yaml:"pattern"`
	Inclusive   *bool   `yaml:"inclusive"`
}

// UnmarshalYAML decodes parameters leniently: filters with an unknown
// pattern kind or no pattern, and unknown fields, are dropped.
func (cp *Params) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string      `yaml:"name"`
		Filters []rawFilter `yaml:"filters"`
		Fields  []string    `yaml:"fields"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := Params{Name: raw.Name}
	for _, rf := range raw.Filters {
		kind, err := filter.ParseKind(rf.Kind)
		if err != nil {
			kind = filter.Exclude
			if rf.Inclusive != nil && *rf.Inclusive {
				kind = filter.Include
			}
		}
		pk, err := filter.ParsePatternKind(rf.PatternKind)
		if err != nil || rf.Pattern == nil {
			continue
		}
		out.Filters = append(out.Filters, filter.Filter{Kind: kind, Pattern: pk, Expr: *rf.Pattern})
	}
	for _, key := range raw.Fields {
		f, err := zipview.ParseField(key)
		if err != nil {
			continue
		}
		if !slices.Contains(out.Fields, f) {
			out.Fields = append(out.Fields, f)
		}
	}
	*cp = out
	return nil
}

// ConflictPolicy decides how extraction treats existing output files.
type ConflictPolicy uint8

const (
	// ConflictFail stops before extracting anything if a file would be replaced.
	ConflictFail ConflictPolicy = iota

	// ConflictSkip leaves existing files alone and extracts the rest.
	ConflictSkip

	// ConflictReplace replaces existing files.
	ConflictReplace
)

var conflictPolicyKeys = [...]string{
	ConflictFail:    "fail",
	ConflictSkip:    "skip",
	ConflictReplace: "replace",
}

func (c ConflictPolicy) String() string {
	if int(c) < len(conflictPolicyKeys) {
		return conflictPolicyKeys[c]
	}
	return fmt.Sprintf("ConflictPolicy(%d)", uint8(c))
}

// ParseConflictPolicy returns the policy with the given key.
func ParseConflictPolicy(key string) (ConflictPolicy, error) {
	for i, k := range conflictPolicyKeys {
		if k == key {
			return ConflictPolicy(i), nil //nolint:gosec // i < len(conflictPolicyKeys)
		}
	}
	return 0, fmt.Errorf("config: unknown conflict policy %q", key)
}

// MarshalText implements encoding.TextMarshaler.
func (c ConflictPolicy) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ConflictPolicy) UnmarshalText(text []byte) error {
	v, err := ParseConflictPolicy(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
