package domain

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups style modifiers under one heading.
type Category struct {
	Category  string   `yaml:"category" json:"category"`
	Modifiers []string `yaml:"modifiers" json:"modifiers"`
}

// Catalog is the list of modifier categories a roll draws from.
type Catalog []Category

// Roll is one random pick of modifiers.
type Roll struct {
	Block string   `json:"block"`
	Tags  []string `json:"tags"`
}

// ParseCatalog reads a YAML list of categories. Categories without
// modifiers are dropped.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw []Category
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse modifier catalog: %w", err)
	}
	cat := make(Catalog, 0, len(raw))
	for _, c := range raw {
		if len(c.Modifiers) == 0 {
			continue
		}
		cat = append(cat, c)
	}
	return cat, nil
}

// LoadCatalog reads the catalog from a YAML file. A missing file yields an
// empty catalog.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read modifier catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Roll picks between one and all categories, and within each between one and
// all of its modifiers, without repeats. The block lists them one category per
// line, ready to be placed in a completion request.
func (c Catalog) Roll(r *rand.Rand) Roll {
	if len(c) == 0 {
		return Roll{}
	}

	var b strings.Builder
	b.WriteString("Suggested style modifiers: \n")
	var tags []string

	cats := r.Perm(len(c))[:r.Intn(len(c))+1]
	for _, ci := range cats {
		category := c[ci]
		mods := r.Perm(len(category.Modifiers))[:r.Intn(len(category.Modifiers))+1]
		picked := make([]string, len(mods))
		for i, mi := range mods {
			picked[i] = category.Modifiers[mi]
		}
		tags = append(tags, picked...)
		fmt.Fprintf(&b, "%s: %s\n", category.Category, strings.Join(picked, ", "))
	}
	b.WriteString("\n")
	return Roll{Block: b.String(), Tags: tags}
}
