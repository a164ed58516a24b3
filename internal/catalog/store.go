package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrDuplicateID = errors.New("product id already exists")
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductInput is a create/update body. A nil field was absent or null in the JSON.
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"inStock"`
}

// UnmarshalJSON only accepts the exact field names. encoding/json would otherwise
// match "NAME" or "Price" case-insensitively.
func (in *ProductInput) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	var out ProductInput
	if err := errors.Join(
		field(fields, "name", &out.Name),
		field(fields, "description", &out.Description),
		field(fields, "price", &out.Price),
		field(fields, "category", &out.Category),
		field(fields, "inStock", &out.InStock),
	); err != nil {
		return err
	}

	*in = out
	return nil
}

// field decodes fields[key] into dst. An absent key or a JSON null leaves dst nil.
func field[T any](fields map[string]json.RawMessage, key string, dst **T) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Complete reports whether every required field is present. Strings must also be
// non-empty; price and inStock only need to be non-null, so 0 and false pass.
func (in ProductInput) Complete() bool {
	return nonEmpty(in.Name) &&
		nonEmpty(in.Description) &&
		in.Price != nil &&
		nonEmpty(in.Category) &&
		in.InStock != nil
}

func nonEmpty(s *string) bool { return s != nil && *s != "" }

// ApplyTo merges the supplied fields over p. The id is never touched.
func (in ProductInput) ApplyTo(p Product) Product {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}

type Filter struct {
	Category string
	Search   string
}

func (f Filter) Match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, f Filter) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, id string, in ProductInput) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
}

func SeedProducts() []Product {
	return []Product{
		{ID: "1", Name: "Laptop", Description: "High-performance laptop with 16GB RAM", Price: 1200, Category: "electronics", InStock: true},
		{ID: "2", Name: "Smartphone", Description: "Latest model with 128GB storage", Price: 800, Category: "electronics", InStock: true},
		{ID: "3", Name: "Coffee Maker", Description: "Programmable coffee maker with timer", Price: 50, Category: "kitchen", InStock: false},
	}
}
