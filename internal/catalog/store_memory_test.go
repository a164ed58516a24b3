package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestMemStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(SeedProducts())

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter keeps insertion order", Filter{}, []string{"1", "2", "3"}},
		{"category exact", Filter{Category: "kitchen"}, []string{"3"}},
		{"category is case sensitive", Filter{Category: "Kitchen"}, nil},
		{"search case insensitive", Filter{Search: "LAP"}, []string{"1"}},
		{"search substring", Filter{Search: "o"}, []string{"1", "2", "3"}},
		{"category then search", Filter{Category: "electronics", Search: "phone"}, []string{"2"}},
		{"no match", Filter{Search: "toaster"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(SeedProducts())

	p := Product{ID: "x1", Name: "Kettle", Description: "Boils", Price: 0, Category: "kitchen", InStock: false}
	if err := s.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, p); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate create err=%v", err)
	}

	got, err := s.Get(ctx, "x1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("product mismatch (-want +got):\n%s", diff)
	}

	all, _ := s.List(ctx, Filter{})
	if last := all[len(all)-1]; last.ID != "x1" {
		t.Fatalf("created product not appended, last=%s", last.ID)
	}

	deleted, err := s.Delete(ctx, "2")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.Name != "Smartphone" {
		t.Fatalf("deleted=%+v", deleted)
	}
	if _, err := s.Get(ctx, "2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err=%v", err)
	}
	if _, err := s.Delete(ctx, "2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err=%v", err)
	}

	all, _ = s.List(ctx, Filter{})
	if len(all) != 3 {
		t.Fatalf("len=%d want=3", len(all))
	}
}

func TestMemStore_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(SeedProducts())

	got, err := s.Update(ctx, "1", ProductInput{Price: ptr(999.5), InStock: ptr(false)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := SeedProducts()[0]
	want.Price = 999.5
	want.InStock = false
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}

	stored, _ := s.Get(ctx, "1")
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Fatalf("stored mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Update(ctx, "nope", ProductInput{Name: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing err=%v", err)
	}
}

func TestMemStore_CountByCategory(t *testing.T) {
	s := NewMemStore(SeedProducts())

	got, err := s.CountByCategory(context.Background())
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	want := map[string]int{"electronics": 2, "kitchen": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestMemStore_SeedIsCopied(t *testing.T) {
	seed := SeedProducts()
	s := NewMemStore(seed)
	seed[0].Name = "changed"

	p, _ := s.Get(context.Background(), "1")
	if p.Name != "Laptop" {
		t.Fatalf("store shares seed backing array: %q", p.Name)
	}
}

func TestProductInput_Complete(t *testing.T) {
	full := ProductInput{
		Name:        ptr("n"),
		Description: ptr("d"),
		Price:       ptr(0.0),
		Category:    ptr("c"),
		InStock:     ptr(false),
	}
	if !full.Complete() {
		t.Fatalf("zero price and false inStock must be accepted")
	}

	t.Run("missing price", func(t *testing.T) {
		in := full
		in.Price = nil
		if in.Complete() {
			t.Fatalf("expected incomplete")
		}
	})

	t.Run("missing inStock", func(t *testing.T) {
		in := full
		in.InStock = nil
		if in.Complete() {
			t.Fatalf("expected incomplete")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		in := full
		in.Name = ptr("")
		if in.Complete() {
			t.Fatalf("expected incomplete")
		}
	})

	t.Run("missing category", func(t *testing.T) {
		in := full
		in.Category = nil
		if in.Complete() {
			t.Fatalf("expected incomplete")
		}
	})
}

func TestProductInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    ProductInput
		wantErr bool
	}{
		{"all fields", `{"name":"a","description":"b","price":1.5,"category":"c","inStock":false}`,
			ProductInput{Name: ptr("a"), Description: ptr("b"), Price: ptr(1.5), Category: ptr("c"), InStock: ptr(false)}, false},
		{"null is absent", `{"name":null,"price":2}`, ProductInput{Price: ptr(2.0)}, false},
		{"keys must match exactly", `{"NAME":"a","Price":1,"instock":true}`, ProductInput{}, false},
		{"unknown keys ignored", `{"id":"x","name":"a"}`, ProductInput{Name: ptr("a")}, false},
		{"wrong type", `{"price":"12"}`, ProductInput{}, true},
		{"not an object", `[1]`, ProductInput{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ProductInput
			err := json.Unmarshal([]byte(tt.body), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("input mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
