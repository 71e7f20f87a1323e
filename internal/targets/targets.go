// Package targets holds the pinned experimental observables (PMNS and CKM)
// that sweeps are scored against. A Registry is loaded once at startup and
// passed down explicitly; it is never mutated afterward.
package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks configuration defects: unknown orderings, duplicate or
// missing target sources, non-positive sigmas.
var ErrConfig = errors.New("targets: configuration error")

//go:embed targets.yaml
var canonicalYAML []byte

// #region registry
// Registry is the full set of target observables, keyed by domain and,
// for PMNS, by mass ordering. Read-only after construction.
type Registry struct {
	pmnsNO TargetSet
	pmnsIO TargetSet
	ckm    TargetSet
}

// Load builds a Registry from the embedded canonical target file.
func Load() (*Registry, error) {
	var buf yamlFile
	if err := yaml.Unmarshal(canonicalYAML, &buf); err != nil {
		return nil, fmt.Errorf("parse embedded targets: %w", err)
	}
	return buildRegistry(buf)
}

// LoadFrom builds a Registry from an alternate YAML source. Used by tests
// to substitute target sets without touching shared state.
func LoadFrom(r io.Reader) (*Registry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	var buf yamlFile
	if err := yaml.Unmarshal(raw, &buf); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	return buildRegistry(buf)
}

// PMNS returns the PMNS target set for the given mass ordering.
func (r *Registry) PMNS(ordering Ordering) (TargetSet, error) {
	switch ordering {
	case OrderingNO:
		return r.pmnsNO, nil
	case OrderingIO:
		return r.pmnsIO, nil
	default:
		return nil, fmt.Errorf("%w: unknown PMNS ordering %q", ErrConfig, ordering)
	}
}

// CKM returns the CKM (Wolfenstein) target set.
func (r *Registry) CKM() TargetSet {
	return r.ckm
}

// #endregion registry

// #region ordering-parse
// ParseOrdering normalizes a user-supplied ordering string.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "NO", "no", "No":
		return OrderingNO, nil
	case "IO", "io", "Io":
		return OrderingIO, nil
	default:
		return "", fmt.Errorf("%w: unknown PMNS ordering %q", ErrConfig, s)
	}
}

// #endregion ordering-parse

// #region yaml-schema
type yamlFile struct {
	PMNS map[string][]yamlTarget `yaml:"pmns"`
	CKM  []yamlTarget            `yaml:"ckm"`
}

type yamlTarget struct {
	Key    string  `yaml:"key"`
	Value  float64 `yaml:"value"`
	Sigma  float64 `yaml:"sigma"`
	Name   string  `yaml:"name"`
	Units  string  `yaml:"units"`
	Source string  `yaml:"source"`
}

// #endregion yaml-schema

// #region build
func buildRegistry(buf yamlFile) (*Registry, error) {
	pmnsNO, err := buildSet("pmns/NO", buf.PMNS["NO"], PMNSKeys)
	if err != nil {
		return nil, err
	}
	pmnsIO, err := buildSet("pmns/IO", buf.PMNS["IO"], PMNSKeys)
	if err != nil {
		return nil, err
	}
	ckm, err := buildSet("ckm", buf.CKM, CKMKeys)
	if err != nil {
		return nil, err
	}
	return &Registry{pmnsNO: pmnsNO, pmnsIO: pmnsIO, ckm: ckm}, nil
}

// buildSet validates one domain's entries: every required key present,
// no key registered from two sources, every sigma strictly positive.
func buildSet(domain string, entries []yamlTarget, required []string) (TargetSet, error) {
	set := make(TargetSet, len(required))
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: %s entry with empty key", ErrConfig, domain)
		}
		if _, dup := set[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate source for %s key %q", ErrConfig, domain, e.Key)
		}
		if e.Sigma <= 0 {
			return nil, fmt.Errorf("%w: %s key %q has sigma %v (must be > 0)", ErrConfig, domain, e.Key, e.Sigma)
		}
		set[e.Key] = Target{
			Value:  e.Value,
			Sigma:  e.Sigma,
			Name:   e.Name,
			Units:  e.Units,
			Source: e.Source,
		}
	}
	for _, key := range required {
		if _, ok := set[key]; !ok {
			return nil, fmt.Errorf("%w: %s is missing target %q", ErrConfig, domain, key)
		}
	}
	return set, nil
}

// #endregion build
