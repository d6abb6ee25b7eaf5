package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/filter"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	offTag       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	dealStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// ProductJSON is the JSON output shape for a product.
type ProductJSON struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	RAM           string   `json:"ram"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice"`
	Savings       float64  `json:"savings"`
	Discount      string   `json:"discount"`
	Rating        *float64 `json:"rating"`
}

// ListingJSON is the JSON output shape for a category page.
type ListingJSON struct {
	Breadcrumbs []string       `json:"breadcrumbs"`
	Paths       []string       `json:"paths"`
	Category    string         `json:"category"`
	IsLeaf      bool           `json:"isLeaf"`
	Sort        string         `json:"sort"`
	Matched     int            `json:"matched"`
	Total       int            `json:"total"`
	Facets      catalog.Facets `json:"facets"`
	Filter      filter.Options `json:"filter"`
	Products    []ProductJSON  `json:"products"`
}

// FacetsJSON is the JSON output shape for the facets command.
type FacetsJSON struct {
	Breadcrumbs []string           `json:"breadcrumbs"`
	Category    string             `json:"category"`
	Facets      catalog.Facets     `json:"facets"`
	PriceBands  []filter.PriceBand `json:"priceBands"`
	Discounts   []int              `json:"discounts"`
}

// CategoryJSON is the JSON output shape for one node of the category tree.
type CategoryJSON struct {
	Name          string         `json:"name"`
	Path          string         `json:"path"`
	IsLeaf        bool           `json:"isLeaf"`
	SubCategories []CategoryJSON `json:"subCategories"`
}

// PrintListing renders a category page to the writer.
func PrintListing(w io.Writer, listing *catalog.Listing) {
	fmt.Fprintf(w, "\n%s — %s\n",
		headerStyle.Render(strings.Join(listing.Resolution.Names(), " › ")),
		cyanStyle.Render(countLabel(listing)),
	)
	fmt.Fprintf(w, "%s\n\n", dimStyle.Render("Sorted by "+listing.Sort.Label()))

	if len(listing.Products) == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("No products match the current filters."))
		return
	}
	for _, p := range listing.Products {
		printProduct(w, p)
		fmt.Fprintln(w)
	}
}

// PrintListingJSON renders a category page as JSON.
func PrintListingJSON(w io.Writer, listing *catalog.Listing) error {
	return json.NewEncoder(w).Encode(ToListingJSON(listing))
}

// ToListingJSON converts a listing into its JSON output shape.
func ToListingJSON(listing *catalog.Listing) ListingJSON {
	products := make([]ProductJSON, 0, len(listing.Products))
	for _, p := range listing.Products {
		products = append(products, ToProductJSON(p))
	}
	return ListingJSON{
		Breadcrumbs: listing.Resolution.Names(),
		Paths:       listing.Resolution.BreadcrumbPaths(),
		Category:    listing.Resolution.Node.Name,
		IsLeaf:      listing.Resolution.IsLeaf,
		Sort:        string(listing.Sort),
		Matched:     listing.Matched,
		Total:       listing.Total,
		Facets:      listing.Facets,
		Filter:      listing.Filter,
		Products:    products,
	}
}

// PrintFacets renders the filterable values of a category.
func PrintFacets(w io.Writer, res *catalog.Resolution, facets catalog.Facets) {
	fmt.Fprintf(w, "\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("Filters for %s:", strings.Join(res.Names(), " › "))),
	)
	printFacetLine(w, "Brands", facets.Brands)
	printFacetLine(w, "RAM", facets.RAM)
	printFacetLine(w, "Tags", facets.Tags)
	if facets.PriceMax > 0 {
		fmt.Fprintf(w, "  %s: %s - %s\n", cyanStyle.Render("Price"),
			FormatPrice(facets.PriceMin), FormatPrice(facets.PriceMax))
	}

	bands := make([]string, 0, len(filter.PriceBands))
	for _, b := range filter.PriceBands {
		bands = append(bands, b.ID)
	}
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("Price bands: "+strings.Join(bands, ", ")))
}

// PrintFacetsJSON renders facets as JSON.
func PrintFacetsJSON(w io.Writer, res *catalog.Resolution, facets catalog.Facets) error {
	return json.NewEncoder(w).Encode(FacetsJSON{
		Breadcrumbs: res.Names(),
		Category:    res.Node.Name,
		Facets:      facets,
		PriceBands:  filter.PriceBands,
		Discounts:   filter.DiscountPresets,
	})
}

// PrintCategoryTree renders the category forest as an indented tree.
func PrintCategoryTree(w io.Writer, categories []api.Category) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Categories:"))
	catalog.Walk(categories, func(path []api.Category) {
		node := path[len(path)-1]
		indent := strings.Repeat("  ", len(path))
		name := cyanStyle.Render(node.Name)
		if len(path) == 1 {
			name = titleStyle.Render(node.Name)
		}
		if node.IsLeaf() {
			fmt.Fprintf(w, "%s%s\n", indent, name)
			return
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, name, dimStyle.Render(fmt.Sprintf("(%d)", len(node.SubCategories))))
	})
	fmt.Fprintln(w)
}

// PrintCategoriesJSON renders the category forest as JSON.
func PrintCategoriesJSON(w io.Writer, categories []api.Category) error {
	return json.NewEncoder(w).Encode(CategoryTree(categories))
}

// CategoryTree converts the category forest into its JSON output shape.
func CategoryTree(categories []api.Category) []CategoryJSON {
	return toCategoryJSON(categories, "")
}

// PrintCatalogContext prints a dim line naming the catalog source.
func PrintCatalogContext(w io.Writer, source string, products int) {
	fmt.Fprintf(w, "%s\n", dimStyle.Render(fmt.Sprintf("Catalog: %s (%d products)", source, products)))
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func countLabel(listing *catalog.Listing) string {
	if listing.Total == len(listing.Products) {
		return fmt.Sprintf("%d products", listing.Total)
	}
	return fmt.Sprintf("showing %d of %d products", len(listing.Products), listing.Total)
}

func printFacetLine(w io.Writer, label string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(w, "  %s: %s\n", cyanStyle.Render(label), dimStyle.Render("none"))
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", cyanStyle.Render(label), wordWrap(strings.Join(values, ", "), 68, "    "))
}

func printProduct(w io.Writer, p api.Product) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Unnamed product"
	}

	// Title line
	tag := ""
	if p.Discount != "" {
		tag = offTag.Render(discountLabel(p.Discount)) + " "
	}
	fmt.Fprintf(w, "  %s%s\n", tag, titleStyle.Render(name))

	// Price / savings
	parts := []string{priceStyle.Render(FormatPrice(p.Price))}
	if saved, pct := Savings(p); saved.IsPositive() {
		parts = append(parts, dealStyle.Render(fmt.Sprintf("was %s, save %s (%d%%)",
			FormatPrice(*p.OriginalPrice), FormatPrice(saved.InexactFloat64()), pct)))
	}
	if p.Rating != nil {
		parts = append(parts, fmt.Sprintf("★ %.1f", *p.Rating))
	}
	fmt.Fprintf(w, "    %s\n", strings.Join(parts, " | "))

	// Meta
	var meta []string
	if p.Brand != "" {
		meta = append(meta, p.Brand)
	}
	if p.RAM != "" {
		meta = append(meta, p.RAM)
	}
	if len(p.Tags) > 0 {
		meta = append(meta, strings.Join(p.Tags, ", "))
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(wordWrap(strings.Join(meta, " | "), 72, "    ")))
	}
}

// discountLabel keeps labels like "20% OFF" and dresses up bare numbers.
func discountLabel(discount string) string {
	if pct, ok := filter.DiscountPercent(discount); ok && strings.TrimSpace(discount) == fmt.Sprint(pct) {
		return fmt.Sprintf("%d%% OFF", pct)
	}
	return strings.ToUpper(strings.TrimSpace(discount))
}

// ToProductJSON converts a product into its JSON output shape.
func ToProductJSON(p api.Product) ProductJSON {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	saved, _ := Savings(p)
	return ProductJSON{
		ID:            p.ID,
		Name:          strings.TrimSpace(p.Name),
		Brand:         p.Brand,
		RAM:           p.RAM,
		Category:      p.Category,
		Tags:          tags,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Savings:       saved.InexactFloat64(),
		Discount:      p.Discount,
		Rating:        p.Rating,
	}
}

func toCategoryJSON(categories []api.Category, parent string) []CategoryJSON {
	out := make([]CategoryJSON, 0, len(categories))
	for _, c := range categories {
		path := c.Name
		if parent != "" {
			path = parent + "/" + c.Name
		}
		out = append(out, CategoryJSON{
			Name:          c.Name,
			Path:          path,
			IsLeaf:        c.IsLeaf(),
			SubCategories: toCategoryJSON(c.SubCategories, path),
		})
	}
	return out
}

func wordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
