// Package catalog loads the donation tiers offered on the page.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
)

//go:embed tiers.yaml
var defaultTiers []byte

// Catalog is an immutable, ordered set of tiers.
type Catalog struct {
	tiers []domain.Tier
	byID  map[string]int
}

type file struct {
	Tiers []domain.Tier `yaml:"tiers"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultTiers)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded tiers invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse tiers: %w", err)
	}
	return New(f.Tiers)
}

// New builds a catalog from tiers after validating them.
func New(tiers []domain.Tier) (*Catalog, error) {
	if err := domain.ValidateCatalog(tiers); err != nil {
		return nil, fmt.Errorf("invalid tiers: %w", err)
	}
	c := &Catalog{
		tiers: make([]domain.Tier, len(tiers)),
		byID:  make(map[string]int, len(tiers)),
	}
	copy(c.tiers, tiers)
	for i, t := range c.tiers {
		c.byID[t.ID] = i
	}
	return c, nil
}

// Get returns the tier with the given id.
func (c *Catalog) Get(id string) (domain.Tier, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Tier{}, false
	}
	return c.tiers[i], true
}

// List returns the tiers in catalog order. The slice is a copy.
func (c *Catalog) List() []domain.Tier {
	out := make([]domain.Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Len returns the number of tiers.
func (c *Catalog) Len() int { return len(c.tiers) }
