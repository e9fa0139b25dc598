package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
)

// CatalogEntry is one product record as published by the catalog service.
type CatalogEntry struct {
	ProductID  int64   `json:"productId"`
	StoreID    int64   `json:"storeId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Weight     float64 `json:"weight"`
	CategoryID int64   `json:"categoryId"`
}

// StaticCatalog is a file-backed CatalogView for scope validation: a dump of
// the catalog service's product and category listing.
type StaticCatalog struct {
	entries    []CatalogEntry
	categories map[int64]bool
}

func LoadStaticCatalog(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	categories := make(map[int64]bool)
	for _, e := range entries {
		if e.CategoryID != 0 {
			categories[e.CategoryID] = true
		}
	}
	return &StaticCatalog{entries: entries, categories: categories}, nil
}

func (c *StaticCatalog) HasProduct(storeID, productID int64) bool {
	for _, e := range c.entries {
		if e.StoreID == storeID && e.ProductID == productID {
			return true
		}
	}
	return false
}

func (c *StaticCatalog) HasCategory(categoryID int64) bool {
	return c.categories[categoryID]
}

// Entries exposes the raw listing for the products endpoint.
func (c *StaticCatalog) Entries() []CatalogEntry {
	return c.entries
}

// AllowAllCatalog skips scope validation entirely; used when no catalog dump
// is configured.
type AllowAllCatalog struct{}

func (AllowAllCatalog) HasProduct(storeID, productID int64) bool { return true }
func (AllowAllCatalog) HasCategory(categoryID int64) bool { return true }
