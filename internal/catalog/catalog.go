// Package catalog holds the product configuration the engine needs: canonical
// product names, per-section time allocations and free-text maximum points.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/spf13/viper"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrUnknownSection = errors.New("unknown section for product")
)

type Section struct {
	Name    string `mapstructure:"name"`
	Minutes int    `mapstructure:"minutes"`
}

type Product struct {
	ID               string    `mapstructure:"id"`
	Name             string    `mapstructure:"name"`
	WritingMaxPoints int       `mapstructure:"writing_max_points"`
	Sections         []Section `mapstructure:"sections"`
}

// Allocation is the time allowed for a section in a given mode.
type Allocation struct {
	Seconds   int
	Unlimited bool
}

// SecondsPtr returns nil for unlimited allocations, matching the session row.
func (a Allocation) SecondsPtr() *int {
	if a.Unlimited {
		return nil
	}
	s := a.Seconds
	return &s
}

type sectionKey struct {
	product string
	section string
}

type Catalog struct {
	products []Product
	byID     map[string]Product
	minutes  map[sectionKey]int
}

// New validates products and builds the lookup tables.
func New(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, errors.New("catalog has no products")
	}
	c := &Catalog{
		products: products,
		byID:     make(map[string]Product, len(products)),
		minutes:  make(map[sectionKey]int),
	}
	for i, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("product #%d: empty id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %q: empty name", p.ID)
		}
		if p.WritingMaxPoints <= 0 {
			return nil, fmt.Errorf("product %q: writing_max_points must be positive", p.ID)
		}
		if len(p.Sections) == 0 {
			return nil, fmt.Errorf("product %q: no sections", p.ID)
		}
		for _, s := range p.Sections {
			key := sectionKey{product: p.ID, section: foldSection(s.Name)}
			if key.section == "" {
				return nil, fmt.Errorf("product %q: section with empty name", p.ID)
			}
			if s.Minutes <= 0 {
				return nil, fmt.Errorf("product %q section %q: minutes must be positive", p.ID, s.Name)
			}
			if _, dup := c.minutes[key]; dup {
				return nil, fmt.Errorf("product %q: duplicate section %q", p.ID, s.Name)
			}
			c.minutes[key] = s.Minutes
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

// Load reads a catalog from a YAML file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	if path == "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(defaultCatalog)); err != nil {
			return nil, fmt.Errorf("read built-in catalog: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	var file struct {
		Products []Product `mapstructure:"products"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(file.Products)
}

func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CanonicalProduct maps a product id to the name questions are tagged with.
func (c *Catalog) CanonicalProduct(productID string) (string, error) {
	p, ok := c.byID[productID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return p.Name, nil
}

// TimeLimit returns the section's allocation. Diagnostic and practice share
// the same minutes; drill is unlimited.
func (c *Catalog) TimeLimit(productID, section string, mode model.Mode) (Allocation, error) {
	if _, ok := c.byID[productID]; !ok {
		return Allocation{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	minutes, ok := c.minutes[sectionKey{product: productID, section: foldSection(section)}]
	if !ok {
		return Allocation{}, fmt.Errorf("%w: %s/%s", ErrUnknownSection, productID, section)
	}
	if !mode.Timed() {
		return Allocation{Unlimited: true}, nil
	}
	return Allocation{Seconds: minutes * 60}, nil
}

func (c *Catalog) WritingMaxPoints(productID string) (int, error) {
	p, ok := c.byID[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return p.WritingMaxPoints, nil
}

func foldSection(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
