// Package authority is a small remote authority for the catalog client:
// it serves the dashboard page, owns cart membership and records feedback.
// Recommendations are a fixed catalog order.
package authority

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/artpar/shelf/internal/core"
)

// DefaultVendor is used for products that name none.
const DefaultVendor = "Meevyy"

//go:embed catalog.yaml
var defaultCatalog []byte

// Product is one catalog entry.
type Product struct {
	ID          core.ProductID `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Category    string         `yaml:"category" json:"category,omitempty"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Price       float64        `yaml:"price" json:"price"`
	ImageURL    string         `yaml:"image_url" json:"image_url,omitempty"`
	Vendor      string         `yaml:"vendor" json:"vendor"`
	Tags        []string       `yaml:"tags" json:"tags,omitempty"`
}

// Section is a named row of the dashboard holding the next Size products.
type Section struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Size  int    `yaml:"size"`
}

// Catalog is the ordered product list plus the dashboard layout.
type Catalog struct {
	Sections []Section `yaml:"sections"`
	Products []Product `yaml:"products"`

	byID map[core.ProductID]int
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file; an empty path yields the built-in one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Products) == 0 {
		return nil, errors.New("catalog has no products")
	}

	c.byID = make(map[core.ProductID]int, len(c.Products))
	for i := range c.Products {
		p := &c.Products[i]
		if p.ID.IsZero() {
			return nil, fmt.Errorf("product %d: missing id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %s: negative price", p.ID)
		}
		if p.Vendor == "" {
			p.Vendor = DefaultVendor
		}
		c.byID[p.ID] = i
	}

	for _, s := range c.Sections {
		if s.Name == "" || s.Size <= 0 {
			return nil, fmt.Errorf("section %q: name and positive size required", s.Name)
		}
	}
	return &c, nil
}

// Find returns the product for id.
func (c *Catalog) Find(id core.ProductID) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.Products[i], true
}

// Replacement returns the first product, in catalog order, whose id is not
// in exclude.
func (c *Catalog) Replacement(exclude []core.ProductID) (Product, bool) {
	for _, p := range c.Products {
		if !slices.Contains(exclude, p.ID) {
			return p, true
		}
	}
	return Product{}, false
}

// SectionProducts is a section with the products it shows.
type SectionProducts struct {
	Section
	Products []Product
}

// Layout deals the catalog into its sections in order. Sections past the
// end of the catalog are empty.
func (c *Catalog) Layout() []SectionProducts {
	out := make([]SectionProducts, 0, len(c.Sections))
	next := 0
	for _, s := range c.Sections {
		end := min(next+s.Size, len(c.Products))
		sp := SectionProducts{Section: s}
		if next < end {
			sp.Products = slices.Clone(c.Products[next:end])
		}
		next = end
		out = append(out, sp)
	}
	return out
}
