package menu

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hostelgrub/api/internal/store"
	"gopkg.in/yaml.v3"
)

// Starter is the catalog written into a fresh document when no menu file is
// configured.
func Starter() []store.MenuItem {
	return []store.MenuItem{
		{ID: "m1", Name: "Classic Masala Maggi", Category: "Maggi", Price: 45, InStock: true},
		{ID: "m2", Name: "Cheese Maggi", Category: "Maggi", Price: 65, InStock: true},
		{ID: "m3", Name: "Egg Maggi", Category: "Maggi", Price: 70, InStock: true},
		{ID: "d1", Name: "Coca-Cola (500ml)", Category: "Cold Drinks", Price: 40, InStock: true},
		{ID: "d2", Name: "Sprite (500ml)", Category: "Cold Drinks", Price: 40, InStock: true},
		{ID: "d3", Name: "Cold Coffee", Category: "Cold Drinks", Price: 55, InStock: true},
		{ID: "s1", Name: "Salted Chips", Category: "Snacks", Price: 25, InStock: true},
		{ID: "s2", Name: "Aloo Bhujia", Category: "Snacks", Price: 30, InStock: true},
		{ID: "s3", Name: "Nachos", Category: "Snacks", Price: 45, InStock: true},
		{ID: "b1", Name: "Parle-G Biscuit", Category: "Biscuits", Price: 10, InStock: true},
		{ID: "b2", Name: "Oreo Biscuit", Category: "Biscuits", Price: 30, InStock: true},
	}
}

type catalogFile struct {
	Items []store.MenuItem `yaml:"items"`
}

// LoadFile reads a YAML catalog of the form:
//
//	items:
//	  - id: m1
//	    name: Classic Masala Maggi
//	    category: Maggi
//	    price: 45
//	    inStock: true
func LoadFile(path string) ([]store.MenuItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}
	if err := Validate(f.Items); err != nil {
		return nil, err
	}
	return f.Items, nil
}

// Validate checks that ids are present and unique and prices are not negative.
func Validate(items []store.MenuItem) error {
	if len(items) == 0 {
		return errors.New("menu has no items")
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return fmt.Errorf("menu item[%d]: id is required", i)
		}
		if seen[id] {
			return fmt.Errorf("menu item[%d]: duplicate id %q", i, id)
		}
		if it.Price < 0 {
			return fmt.Errorf("menu item %q: price must be >= 0", id)
		}
		seen[id] = true
	}
	return nil
}

// Catalog is a read-only lookup over a menu snapshot.
type Catalog struct {
	items []store.MenuItem
	byID  map[string]store.MenuItem
}

// NewCatalog indexes items by id.
func NewCatalog(items []store.MenuItem) *Catalog {
	byID := make(map[string]store.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return &Catalog{items: items, byID: byID}
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (store.MenuItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Items returns the catalog in stored order.
func (c *Catalog) Items() []store.MenuItem {
	out := make([]store.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

// Resolve returns the catalog from path, or the starter catalog when path is
// empty.
func Resolve(path string) ([]store.MenuItem, error) {
	if path == "" {
		return Starter(), nil
	}
	return LoadFile(path)
}
