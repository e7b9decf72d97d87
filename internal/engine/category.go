package engine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// Category is a named group of glob patterns describing one kind of browser
// data. The catalog is fixed at build time; users only select by name.
type Category struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

var catalog []Category

func init() {
	if err := yaml.Unmarshal(categoriesYAML, &catalog); err != nil {
		panic(fmt.Sprintf("invalid embedded category catalog: %v", err))
	}
}

// Categories returns the full catalog in declaration order.
func Categories() []Category {
	return catalog
}

// CategoryNames returns the names of all known categories.
func CategoryNames() []string {
	names := make([]string, 0, len(catalog))
	for _, c := range catalog {
		names = append(names, c.Name)
	}
	return names
}

// PatternsFor returns the ordered union of the glob patterns of the selected
// categories. An empty selection means all categories. Unknown names are
// silently ignored so that configs written against older catalogs keep
// working.
func PatternsFor(names []string) []string {
	selected := catalog
	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
		selected = nil
		for _, c := range catalog {
			if wanted[c.Name] {
				selected = append(selected, c)
			}
		}
	}

	seen := make(map[string]bool)
	var patterns []string
	for _, c := range selected {
		for _, p := range c.Patterns {
			if !seen[p] {
				seen[p] = true
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}
