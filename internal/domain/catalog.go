package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Criteria filters a product search. Empty fields match everything.
type Criteria struct {
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
}

// Normalize trims and lower-cases every criterion
func (c Criteria) Normalize() Criteria {
	return Criteria{
		Title:       strings.ToLower(strings.TrimSpace(c.Title)),
		Category:    strings.ToLower(strings.TrimSpace(c.Category)),
		Subcategory: strings.ToLower(strings.TrimSpace(c.Subcategory)),
	}
}

// IsEmpty reports whether no criterion is set
func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return n.Title == "" && n.Category == "" && n.Subcategory == ""
}

// Search returns the products whose title, category and subcategory equal the
// given criteria, ignoring case and surrounding whitespace. It is an exact match,
// not a substring match. The input is never modified and the result keeps its order.
func Search(products []*Product, c Criteria) []*Product {
	result := make([]*Product, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if matches(c.Title, p.Title()) &&
			matches(c.Category, p.Category()) &&
			matches(c.Subcategory, p.Subcategory()) {
			result = append(result, p)
		}
	}
	return result
}

func matches(criterion, value string) bool {
	criterion = strings.TrimSpace(criterion)
	if criterion == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), criterion)
}

// Catalog owns every sellable product for the lifetime of the process
type Catalog struct {
	mu       sync.RWMutex
	products []*Product
}

// NewCatalog creates a catalog holding products, in order.
// Products sharing an ID are rejected.
func NewCatalog(products ...*Product) (*Catalog, error) {
	c := &Catalog{products: make([]*Product, 0, len(products))}
	for _, p := range products {
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a product
func (c *Catalog) Add(p *Product) error {
	if p == nil {
		return fmt.Errorf("%w: product is required", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(p.ID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateProduct, p.ID())
	}
	c.products = append(c.products, p)
	return nil
}

// Remove drops the product with the given ID and returns it
func (c *Catalog) Remove(id uuid.UUID) (*Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	p := c.products[i]
	c.products = append(c.products[:i:i], c.products[i+1:]...)
	return p, nil
}

// Get returns the product with the given ID
func (c *Catalog) Get(id uuid.UUID) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return c.products[i], nil
}

// Contains reports whether the product with the given ID is in the catalog
func (c *Catalog) Contains(id uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id) >= 0
}

// List returns a copy of the product list
func (c *Catalog) List() []*Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Search filters the catalog, see Search
func (c *Catalog) Search(criteria Criteria) []*Product {
	return Search(c.List(), criteria)
}

// Unavailable returns the products that are out of stock
func (c *Catalog) Unavailable() []*Product {
	var out []*Product
	for _, p := range c.List() {
		if p.Available() <= 0 {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) indexOf(id uuid.UUID) int {
	for i, p := range c.products {
		if p.ID() == id {
			return i
		}
	}
	return -1
}
