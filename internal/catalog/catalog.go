// ABOUTME: Suggested category catalog loaded from a TOML file
// ABOUTME: Falls back to a built-in list when no catalog is configured

// Package catalog serves the category suggestions clients show when
// composing a transaction. The list is advisory; transactions may use
// any category string.
package catalog

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Category kinds restrict which transaction type a suggestion applies to.
const (
	KindIncome  = "income"
	KindExpense = "expense"
	KindBoth    = "both"
)

// Category is one suggestion entry.
type Category struct {
	Name string `toml:"name" json:"name"`
	Kind string `toml:"kind" json:"kind"`
}

// catalogFile is the TOML document shape: repeated [[category]] tables.
type catalogFile struct {
	Categories []Category `toml:"category"`
}

// Load reads and validates a catalog file. Entries without a kind default
// to "both".
func Load(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog %s defines no categories", path)
	}

	for i := range f.Categories {
		c := &f.Categories[i]
		if c.Name == "" {
			return nil, fmt.Errorf("category entry %d: name is required", i+1)
		}
		if c.Kind == "" {
			c.Kind = KindBoth
		}
		switch c.Kind {
		case KindIncome, KindExpense, KindBoth:
		default:
			return nil, fmt.Errorf("category %q: kind must be income, expense, or both", c.Name)
		}
	}

	return f.Categories, nil
}

// Default returns the built-in suggestion list used when no catalog file
// is configured.
func Default() []Category {
	return []Category{
		{Name: "salary", Kind: KindIncome},
		{Name: "freelance", Kind: KindIncome},
		{Name: "groceries", Kind: KindExpense},
		{Name: "rent", Kind: KindExpense},
		{Name: "utilities", Kind: KindExpense},
		{Name: "transport", Kind: KindExpense},
		{Name: "dining", Kind: KindExpense},
		{Name: "entertainment", Kind: KindExpense},
		{Name: "health", Kind: KindExpense},
		{Name: "other", Kind: KindBoth},
	}
}
