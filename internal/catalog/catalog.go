package catalog

import (
	"context"
	"fmt"
)

// Check is one entry of the CHECK catalog: a named course with a fixed
// number of classes and groups.
type Check struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Clases int    `json:"clases"`
	Grupos int    `json:"grupos"`
}

// Fetcher retrieves the catalog from the backend.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]Check, error)
}

// Catalog is a validated lookup table of checks keyed by ID.
type Catalog struct {
	checks map[int]Check
	order  []int
}

// New builds a catalog from a list of checks, validating it once so that
// lookups never need to re-check entries.
func New(checks []Check) (*Catalog, error) {
	c := &Catalog{checks: make(map[int]Check, len(checks))}
	for _, chk := range checks {
		if chk.ID <= 0 {
			return nil, fmt.Errorf("catalog: invalid check id %d", chk.ID)
		}
		if _, dup := c.checks[chk.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate check id %d", chk.ID)
		}
		if chk.Nombre == "" {
			return nil, fmt.Errorf("catalog: check %d has no name", chk.ID)
		}
		if chk.Clases < 0 || chk.Grupos < 0 {
			return nil, fmt.Errorf("catalog: check %d has negative clases/grupos", chk.ID)
		}
		c.checks[chk.ID] = chk
		c.order = append(c.order, chk.ID)
	}
	return c, nil
}

// Load fetches the catalog through a fetcher and validates it.
func Load(ctx context.Context, f Fetcher) (*Catalog, error) {
	checks, err := f.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return New(checks)
}

// Get returns the check with the given ID.
func (c *Catalog) Get(id int) (Check, bool) {
	chk, ok := c.checks[id]
	return chk, ok
}

// Nombre returns the display name for a check ID, or "" if unknown.
func (c *Catalog) Nombre(id int) string {
	return c.checks[id].Nombre
}

// List returns all checks in the order the backend supplied them.
func (c *Catalog) List() []Check {
	out := make([]Check, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.checks[id])
	}
	return out
}

// Len returns the number of checks.
func (c *Catalog) Len() int {
	return len(c.checks)
}

// ValidClase reports whether clase is within the declared class count of the
// check. Unknown check IDs are never valid.
func (c *Catalog) ValidClase(id, clase int) bool {
	chk, ok := c.checks[id]
	return ok && clase >= 1 && clase <= chk.Clases
}

// ValidGrupo reports whether grupo is within the declared group count of the
// check.
func (c *Catalog) ValidGrupo(id, grupo int) bool {
	chk, ok := c.checks[id]
	return ok && grupo >= 1 && grupo <= chk.Grupos
}
