// Package catalog holds the static registry of screening conditions.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// Family groups conditions that share an evaluation algorithm.
type Family string

const (
	FamilyCloseOpen      Family = "close_vs_open"
	FamilyMonotonic      Family = "monotonic_chain"
	FamilyRange          Family = "range_superiority"
	FamilyDegenerate     Family = "degenerate_bar"
	FamilyCrossSession   Family = "cross_session"
	FamilyOrdinal        Family = "ordinal_bar"
	FamilyFirstBar       Family = "first_qualifying_bar"
	FamilyAnchorMultiple Family = "anchor_multiple"
)

// Definition describes one condition. Description is for display only.
type Definition struct {
	ID          int        `json:"id"`
	Description string     `json:"description"`
	Family      Family     `json:"family"`
	Comparator  Comparator `json:"comparator"`
}

// Inverse returns the comparator shown for the inverted form.
func (d Definition) Inverse() Comparator { return d.Comparator.Inverse() }

// Invertible reports whether the condition may be activated in inverted form.
func (d Definition) Invertible() bool { return d.Comparator.Invertible() }

var ErrUnknownCondition = errors.New("unknown condition")

// Catalog is an immutable, id-ordered set of definitions.
type Catalog struct {
	defs []Definition
	byID map[int]int
}

// New validates and indexes defs. IDs must be positive and unique.
func New(defs []Definition) (*Catalog, error) {
	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Catalog{defs: sorted, byID: make(map[int]int, len(sorted))}
	for i, d := range sorted {
		if d.ID <= 0 {
			return nil, fmt.Errorf("condition id %d must be positive", d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate condition id %d", d.ID)
		}
		if d.Comparator == "" {
			sorted[i].Comparator = Unknown
		}
		c.byID[d.ID] = i
	}
	return c, nil
}

var defaultCatalog = mustNew(definitions())

func mustNew(defs []Definition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in condition catalog.
func Default() *Catalog { return defaultCatalog }

// List returns all definitions ordered by id.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id int) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Lookup is Get with ErrUnknownCondition for missing ids.
func (c *Catalog) Lookup(id int) (Definition, error) {
	d, ok := c.Get(id)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %d", ErrUnknownCondition, id)
	}
	return d, nil
}

func (c *Catalog) Len() int { return len(c.defs) }

// IDs returns every id in ascending order.
func (c *Catalog) IDs() []int {
	out := make([]int, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.ID
	}
	return out
}
