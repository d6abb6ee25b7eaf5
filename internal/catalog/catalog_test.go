package catalog_test

import (
	"github.com/tayloree/shopcli/internal/api"
)

func rating(v float64) *float64 { return &v }

func node(name string, children ...api.Category) api.Category {
	if children == nil {
		children = []api.Category{}
	}
	return api.Category{Name: name, SubCategories: children}
}

func sampleTree() []api.Category {
	return []api.Category{
		node("Electronics",
			node("Mobiles", node("Android"), node("iOS")),
			node("Laptops"),
			node("Smart Watches"),
		),
		node("Fashion", node("Shoes")),
		node("Electronics", node("Shadowed")),
	}
}

func sampleCatalog() []api.Product {
	return []api.Product{
		{ID: "1", Name: "Galaxy S24", Category: "Electronics", Tags: []string{"Mobiles", "Android", "5G"}, Brand: "Samsung", RAM: "8GB", Price: 64999, Discount: "20% OFF", Rating: rating(4.5)},
		{ID: "2", Name: "XPS 13", Category: "Electronics", Tags: []string{"Laptops"}, Brand: "Dell", RAM: "16GB", Price: 99999, Rating: rating(4.3)},
		{ID: "3", Name: "iPhone 16", Category: "Electronics", SubCategories: []api.SubCategoryRef{{Name: "Mobiles"}}, Brand: "Apple", RAM: "8GB", Price: 79999, Discount: "10"},
		{ID: "4", Name: "Redmi Note", Category: "electronic", SubCategory: &api.SubCategoryRef{Name: "mobile"}, Brand: "Xiaomi", RAM: "6GB", Price: 14999, Discount: "35% OFF", Rating: rating(4.1)},
		{ID: "5", Name: "Running Shoes", Category: "Fashion", Tags: []string{"Shoes"}, Brand: "Nike", Price: 4999, Rating: rating(4.8)},
		{ID: "6", Name: "Mobile Stand", Category: "Electronics", Brand: "Generic", Price: 499},
		{ID: "7", Name: "Smart Watch Mobile Edition", Category: "Fashion", Brand: "Noise", Price: 2999},
	}
}

func productIDs(products []api.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
