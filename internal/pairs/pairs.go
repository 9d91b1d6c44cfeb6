// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pairs loads an ordered list of formula pairs from a YAML or TOML
// file. Order is preserved and duplicate pairs are kept.
//
// YAML:
//
//	pairs:
//	  - left: transverse mass
//	    right: Euclidean norm (L2 norm)
//
// TOML:
//
//	[[pairs]]
//	left = "transverse mass"
//	right = "Euclidean norm (L2 norm)"
package pairs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

// File is the on-disk representation of a pair list.
type File struct {
	Pairs []types.FormulaPair `yaml:"pairs" toml:"pairs"`
}

// Load reads the pair list at path. The format is chosen by extension:
// .toml for TOML, .yaml or .yml for YAML.
func Load(path string) ([]types.FormulaPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pairs file: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing pairs file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing pairs file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported pairs file extension %q (want .yaml, .yml or .toml)", ext)
	}

	if err := Validate(f.Pairs); err != nil {
		return nil, fmt.Errorf("pairs file %s: %w", path, err)
	}
	return f.Pairs, nil
}

// Validate rejects an empty list and pairs with a blank phrase.
func Validate(list []types.FormulaPair) error {
	if len(list) == 0 {
		return fmt.Errorf("no pairs defined")
	}
	for i, p := range list {
		if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
			return fmt.Errorf("pair %d: left and right must both be non-empty", i+1)
		}
	}
	return nil
}

// Write saves list to path in the format chosen by its extension.
func Write(path string, list []types.FormulaPair) error {
	f := File{Pairs: list}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		data, err = toml.Marshal(&f)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(&f)
	default:
		return fmt.Errorf("unsupported pairs file extension %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return fmt.Errorf("marshaling pairs: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
