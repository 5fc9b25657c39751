// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// OverlayFileName is the custom-models file inside the config directory.
const OverlayFileName = "models.yaml"

// overlayFile is the YAML layout of the custom-models file:
//
//	models:
//	  - name: my-finetune
//	    description: In-house code model
//	    use_cases: [coding]
//	    variants:
//	      - tag: 7b-q4_k_m
//	        size_gb: 4.2
//	        quantization: Q4_K_M
//	        param_size: 7B
type overlayFile struct {
	Models []Entry `yaml:"models"`
}

// LoadOverlay reads custom entries from a YAML file. A missing file is not
// an error and yields no entries. Entries without a name or variants are
// skipped; missing descriptions and use cases are inferred.
func LoadOverlay(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overlay: %w", err)
	}

	var file overlayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse overlay %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(file.Models))
	for _, e := range file.Models {
		if e.Name == "" || len(e.Variants) == 0 {
			continue
		}
		e.UseCases = validUseCases(e.UseCases)
		if len(e.UseCases) == 0 {
			e.UseCases = InferUseCases(e.Name)
		}
		if e.Description == "" {
			e.Description = Describe(e.Name, e.UseCases)
		}
		for i := range e.Variants {
			v := &e.Variants[i]
			if v.Tag == "" {
				v.Tag = "latest"
			}
			if v.Quantization == "" {
				v.Quantization = ParseQuantization(v.Tag)
			}
			if v.ParamSize == "" {
				v.ParamSize = paramSizeFromNameAndTag(e.Name, v.Tag)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func validUseCases(in []UseCase) []UseCase {
	var out []UseCase
	for _, u := range in {
		if u.Valid() {
			out = append(out, u)
		}
	}
	return out
}

// ApplyOverlay returns base with each overlay entry replacing the base
// entry of the same name, or appended when new. base is not modified.
func ApplyOverlay(base, overlay []Entry) []Entry {
	out := make([]Entry, len(base), len(base)+len(overlay))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, e := range out {
		index[e.Name] = i
	}
	for _, e := range overlay {
		if i, ok := index[e.Name]; ok {
			out[i] = e
			continue
		}
		index[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}
