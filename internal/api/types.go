package api

// Category is a node of the storefront category tree. Upstream payloads may
// list subcategories as bare strings or as objects; both decode into this shape.
type Category struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	SubCategories []Category `json:"subCategories"`
}

// IsLeaf reports whether the category has no children.
func (c Category) IsLeaf() bool {
	return len(c.SubCategories) == 0
}

// SubCategoryRef is a populated subcategory reference carried by a product.
type SubCategoryRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Product represents a single catalog listing.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	RAM           string           `json:"ram,omitempty"`
	Category      string           `json:"category,omitempty"`
	SubCategories []SubCategoryRef `json:"subCategories,omitempty"`
	SubCategory   *SubCategoryRef  `json:"subCategory,omitempty"`
	// Tags is nil when the upstream record has no tags field at all.
	Tags          []string         `json:"tags"`
	Price         float64          `json:"price"`
	OriginalPrice *float64         `json:"originalPrice,omitempty"`
	Discount      string           `json:"discount,omitempty"`
	Rating        *float64         `json:"rating,omitempty"`
	Stock         int              `json:"stock,omitempty"`
	Image         string           `json:"image,omitempty"`
}

// Snapshot is an offline copy of both catalog collections.
type Snapshot struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}
