// Package changeset reads admin edits from a YAML file.
//
//	changes:
//	  - category: homepage
//	    description: New hero copy
//	    payload:
//	      config:
//	        hero: {title: Hello}
//	  - category: content
//	    description: Fix typo
//	    payload:
//	      slug: hello-world
//	      content: |
//	        # Hello
package changeset

import (
	"encoding/json"
	"fmt"
	"os"

	"inkpress/internal/types"
	"inkpress/internal/validator"

	"gopkg.in/yaml.v3"
)

// Entry is one edit of a changeset
type Entry struct {
	Category    types.Category
	Description string
	Payload     types.Payload
}

type fileEntry struct {
	Category    string    `yaml:"category"`
	Description string    `yaml:"description"`
	Payload     yaml.Node `yaml:"payload"`
}

type file struct {
	Changes []fileEntry `yaml:"changes"`
}

// Load reads and validates the changeset at path
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read changeset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a changeset document
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse changeset: %w", err)
	}
	if len(f.Changes) == 0 {
		return nil, types.ErrNoChanges
	}

	v := validator.New()
	entries := make([]Entry, 0, len(f.Changes))
	for i, fe := range f.Changes {
		category, err := types.ParseCategory(fe.Category)
		if err != nil {
			return nil, fmt.Errorf("changes[%d]: %w", i, err)
		}

		if fe.Payload.IsZero() {
			return nil, fmt.Errorf("changes[%d]: payload is required", i)
		}

		// yaml -> generic value -> json keeps a single decoder for payloads
		var raw any
		if err := fe.Payload.Decode(&raw); err != nil {
			return nil, fmt.Errorf("changes[%d]: payload: %w", i, err)
		}
		js, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("changes[%d]: payload: %w", i, err)
		}

		payload, err := types.DecodePayload(category, js)
		if err != nil {
			return nil, fmt.Errorf("changes[%d]: %w", i, err)
		}
		if payload == nil {
			return nil, fmt.Errorf("changes[%d]: payload is required", i)
		}
		if err := v.Struct(payload); err != nil {
			return nil, fmt.Errorf("changes[%d]: %w", i, err)
		}

		desc := fe.Description
		if desc == "" {
			desc = "Update " + category.String()
		}
		entries = append(entries, Entry{Category: category, Description: desc, Payload: payload})
	}
	return entries, nil
}
