package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a payload is not well-formed JSON.
var ErrInvalidJSON = errors.New("invalid JSON payload")

// ParseCategories decodes a category collection. It accepts a bare array or an
// object wrapping the array under "categories" or "data".
func ParseCategories(body []byte) ([]Category, error) {
	list, err := collection(body, "categories")
	if err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}

	categories := make([]Category, 0, len(list))
	for _, raw := range list {
		if c, ok := parseCategory(raw); ok {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

// ParseProducts decodes a product collection. It accepts a bare array or an
// object wrapping the array under "products" or "data".
func ParseProducts(body []byte) ([]Product, error) {
	list, err := collection(body, "products")
	if err != nil {
		return nil, fmt.Errorf("parsing products: %w", err)
	}

	products := make([]Product, 0, len(list))
	for _, raw := range list {
		if !raw.IsObject() {
			continue
		}
		products = append(products, parseProduct(raw))
	}
	return products, nil
}

// ParseSnapshot decodes a {"categories": [...], "products": [...]} document.
func ParseSnapshot(body []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parsing snapshot: %w", ErrInvalidJSON)
	}
	doc := gjson.ParseBytes(body)

	categories, err := ParseCategories([]byte(doc.Get("categories").Raw))
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	products, err := ParseProducts([]byte(doc.Get("products").Raw))
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &Snapshot{Categories: categories, Products: products}, nil
}

func collection(body []byte, key string) ([]gjson.Result, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	doc := gjson.ParseBytes(body)
	switch {
	case doc.IsArray():
		return doc.Array(), nil
	case doc.Get(key).IsArray():
		return doc.Get(key).Array(), nil
	case doc.Get("data").IsArray():
		return doc.Get("data").Array(), nil
	case doc.Type == gjson.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected an array or a %q envelope", key)
	}
}

// parseCategory accepts either a bare name string or an object node.
func parseCategory(raw gjson.Result) (Category, bool) {
	switch {
	case raw.Type == gjson.String:
		return Category{Name: raw.String(), SubCategories: []Category{}}, true
	case raw.IsObject():
		c := Category{
			ID:            idOf(raw),
			Name:          raw.Get("name").String(),
			SubCategories: []Category{},
		}
		for _, sub := range raw.Get("subCategories").Array() {
			if child, ok := parseCategory(sub); ok {
				c.SubCategories = append(c.SubCategories, child)
			}
		}
		return c, true
	default:
		return Category{}, false
	}
}

func parseProduct(raw gjson.Result) Product {
	p := Product{
		ID:       idOf(raw),
		Name:     raw.Get("name").String(),
		Brand:    raw.Get("brand").String(),
		RAM:      raw.Get("ram").String(),
		Category: raw.Get("category").String(),
		Price:    raw.Get("price").Float(),
		Discount: discountOf(raw.Get("discount")),
		Stock:    int(raw.Get("stock").Int()),
		Image:    raw.Get("image").String(),
	}

	// Unpopulated references arrive as bare id strings and carry no name.
	for _, sub := range raw.Get("subCategories").Array() {
		if sub.IsObject() && sub.Get("name").String() != "" {
			p.SubCategories = append(p.SubCategories, SubCategoryRef{
				ID:   idOf(sub),
				Name: sub.Get("name").String(),
			})
		}
	}

	legacy := raw.Get("subCategory")
	switch {
	case legacy.IsObject() && legacy.Get("name").String() != "":
		p.SubCategory = &SubCategoryRef{ID: idOf(legacy), Name: legacy.Get("name").String()}
	case legacy.Type == gjson.String && legacy.String() != "":
		p.SubCategory = &SubCategoryRef{Name: legacy.String()}
	}

	// Tags stays nil only when the field is missing; the matcher tells the two apart.
	if tags := raw.Get("tags"); tags.IsArray() {
		p.Tags = []string{}
		for _, tag := range tags.Array() {
			if tag.Type == gjson.String {
				p.Tags = append(p.Tags, tag.String())
			}
		}
	}

	if v := raw.Get("originalPrice"); v.Type == gjson.Number {
		f := v.Float()
		p.OriginalPrice = &f
	}
	if v := raw.Get("rating"); v.Type == gjson.Number {
		f := v.Float()
		p.Rating = &f
	}
	return p
}

func idOf(raw gjson.Result) string {
	for _, key := range []string{"id", "_id"} {
		v := raw.Get(key)
		switch v.Type {
		case gjson.String:
			return v.String()
		case gjson.Number:
			return v.Raw
		}
	}
	return ""
}

// discountOf keeps string discounts verbatim and renders numeric ones as
// integers. Zero means no discount.
func discountOf(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Number:
		if v.Float() == 0 {
			return ""
		}
		if v.Float() == float64(v.Int()) {
			return strconv.FormatInt(v.Int(), 10)
		}
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return ""
	}
}
