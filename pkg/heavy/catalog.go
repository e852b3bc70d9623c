// Package heavy holds the catalog of npm packages known to inflate
// serverless cold starts, together with lighter alternatives.
//
// A Catalog is read-only once built. Analyzers receive one at
// construction time and only ever ask two questions of it: Find (exact
// name match) and Contains (membership).
package heavy

import "sync"

// Package describes one known heavy dependency.
type Package struct {
	Name               string  `json:"name" yaml:"name" mapstructure:"name"`
	TypicalSizeBytes   int64   `json:"typicalSizeBytes" yaml:"typicalSizeBytes" mapstructure:"typicalSizeBytes"`
	Reason             string  `json:"reason" yaml:"reason" mapstructure:"reason"`
	Alternative        string  `json:"alternative" yaml:"alternative" mapstructure:"alternative"`
	EstimatedSavingsMs float64 `json:"estimatedSavingsMs" yaml:"estimatedSavingsMs" mapstructure:"estimatedSavingsMs"`
}

// Catalog is an immutable, name-indexed set of heavy packages.
type Catalog struct {
	entries []Package
	index   map[string]int
}

// NewCatalog builds a catalog from entries. When a name repeats, the
// first entry wins. Entries without a name are dropped.
func NewCatalog(entries []Package) *Catalog {
	c := &Catalog{
		entries: make([]Package, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if _, dup := c.index[e.Name]; dup {
			continue
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	return NewCatalog(builtin)
})

// Default returns the built-in catalog. It is constructed once.
func Default() *Catalog {
	return defaultCatalog()
}

// Find returns the entry whose name equals name exactly.
func (c *Catalog) Find(name string) (Package, bool) {
	if c == nil {
		return Package{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Package{}, false
	}
	return c.entries[i], true
}

// Contains reports whether name is a known heavy package.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.Find(name)
	return ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// All returns a copy of the entries in catalog order.
func (c *Catalog) All() []Package {
	if c == nil {
		return nil
	}
	out := make([]Package, len(c.entries))
	copy(out, c.entries)
	return out
}

// Extend returns a new catalog in which extra entries replace entries
// of the same name and unknown names are appended. The receiver is not
// modified.
func (c *Catalog) Extend(extra []Package) *Catalog {
	overrides := make(map[string]Package, len(extra))
	var appended []Package
	for _, e := range extra {
		if e.Name == "" {
			continue
		}
		if _, seen := overrides[e.Name]; seen {
			continue
		}
		overrides[e.Name] = e
		if !c.Contains(e.Name) {
			appended = append(appended, e)
		}
	}

	merged := make([]Package, 0, c.Len()+len(appended))
	for _, e := range c.All() {
		if o, ok := overrides[e.Name]; ok {
			e = o
		}
		merged = append(merged, e)
	}
	merged = append(merged, appended...)
	return NewCatalog(merged)
}
