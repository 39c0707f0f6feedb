package memstore

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/table"
)

// Seed loads the demo menu and floor plan, with the same ids as the SQL seed.
func Seed(s *Store) {
	now := s.now()
	category := func(id string) *string { return &id }

	products := []struct{ id, name, desc, price, category string }{
		{"a1000000-0000-4000-8000-000000000001", "Nachos", "Nachos con queso y guacamole", "8.99", "c1000000-0000-4000-8000-000000000001"},
		{"a1000000-0000-4000-8000-000000000002", "Alitas de pollo", "Alitas de pollo con salsa BBQ", "10.99", "c1000000-0000-4000-8000-000000000001"},
		{"a1000000-0000-4000-8000-000000000003", "Hamburguesa", "Hamburguesa con queso y papas fritas", "12.99", "c1000000-0000-4000-8000-000000000002"},
		{"a1000000-0000-4000-8000-000000000004", "Pizza", "Pizza de pepperoni", "14.99", "c1000000-0000-4000-8000-000000000002"},
		{"a1000000-0000-4000-8000-000000000005", "Pasta", "Pasta con salsa de tomate", "11.99", "c1000000-0000-4000-8000-000000000002"},
		{"a1000000-0000-4000-8000-000000000006", "Helado", "Helado de vainilla con chocolate", "5.99", "c1000000-0000-4000-8000-000000000003"},
		{"a1000000-0000-4000-8000-000000000007", "Brownie", "Brownie con helado", "6.99", "c1000000-0000-4000-8000-000000000003"},
		{"a1000000-0000-4000-8000-000000000008", "Refresco", "Refresco de cola", "2.99", "c1000000-0000-4000-8000-000000000004"},
		{"a1000000-0000-4000-8000-000000000009", "Agua", "Agua mineral", "1.99", "c1000000-0000-4000-8000-000000000004"},
		{"a1000000-0000-4000-8000-000000000010", "Café", "Café americano", "2.99", "c1000000-0000-4000-8000-000000000004"},
	}
	for _, p := range products {
		s.Products().Put(product.Product{
			ID:          p.id,
			Name:        p.name,
			Description: p.desc,
			Price:       decimal.RequireFromString(p.price),
			CategoryID:  category(p.category),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	tables := []struct {
		id, name string
		capacity int
		desc     string
	}{
		{"b1000000-0000-4000-8000-000000000001", "Mesa 1", 4, "Cerca de la entrada"},
		{"b1000000-0000-4000-8000-000000000002", "Mesa 2", 4, "Cerca de la ventana"},
		{"b1000000-0000-4000-8000-000000000003", "Mesa 3", 6, "En el centro"},
		{"b1000000-0000-4000-8000-000000000004", "Mesa 4", 2, "Para parejas"},
		{"b1000000-0000-4000-8000-000000000005", "Mesa 5", 8, "Para grupos grandes"},
	}
	for _, t := range tables {
		s.Tables().Put(table.Table{ID: t.id, Name: t.name, Capacity: t.capacity, Description: t.desc, CreatedAt: now, UpdatedAt: now})
	}
}
