package catalog

import (
	"errors"
	"net/url"
	"strings"

	"github.com/tayloree/shopcli/internal/api"
)

// ErrCategoryNotFound is returned when the first path segment names no root category.
var ErrCategoryNotFound = errors.New("category not found")

// Resolution is the outcome of walking a category path.
type Resolution struct {
	Node        api.Category   `json:"node"`
	Breadcrumbs []api.Category `json:"breadcrumbs"`
	IsLeaf      bool           `json:"isLeaf"`
}

// SplitPath turns a slash-delimited URL path into decoded segments. Empty
// segments are dropped; a segment that fails to decode is kept verbatim.
func SplitPath(raw string) []string {
	parts := strings.Split(raw, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if decoded, err := url.PathUnescape(part); err == nil {
			part = decoded
		}
		if strings.TrimSpace(part) == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// ResolvePath walks segments down the category forest. The first segment must
// name a root or ErrCategoryNotFound is returned. A deeper segment with no
// matching child is skipped and the next segment is tried against the same
// node. The returned categories are copies; the input forest is never shared.
func ResolvePath(categories []api.Category, segments []string) (*Resolution, error) {
	if len(segments) == 0 {
		return nil, ErrCategoryNotFound
	}

	root, ok := findByName(categories, segments[0])
	if !ok {
		return nil, ErrCategoryNotFound
	}

	breadcrumbs := []api.Category{cloneCategory(root)}
	current := root
	for _, segment := range segments[1:] {
		child, ok := findByName(current.SubCategories, segment)
		if !ok {
			continue
		}
		breadcrumbs = append(breadcrumbs, cloneCategory(child))
		current = child
	}

	return &Resolution{
		Node:        cloneCategory(current),
		Breadcrumbs: breadcrumbs,
		IsLeaf:      current.IsLeaf(),
	}, nil
}

func cloneCategory(c api.Category) api.Category {
	if c.SubCategories == nil {
		return c
	}
	subs := make([]api.Category, len(c.SubCategories))
	for i, sub := range c.SubCategories {
		subs[i] = cloneCategory(sub)
	}
	c.SubCategories = subs
	return c
}

// Resolve is ResolvePath over a raw slash-delimited path.
func Resolve(categories []api.Category, rawPath string) (*Resolution, error) {
	return ResolvePath(categories, SplitPath(rawPath))
}

// Base returns the root category of the resolved path.
func (r *Resolution) Base() api.Category {
	return r.Breadcrumbs[0]
}

// Depth is the number of levels actually resolved.
func (r *Resolution) Depth() int {
	return len(r.Breadcrumbs)
}

// BreadcrumbPaths returns the cumulative path of every breadcrumb, suitable
// for building navigation links.
func (r *Resolution) BreadcrumbPaths() []string {
	paths := make([]string, 0, len(r.Breadcrumbs))
	var b strings.Builder
	for i, c := range r.Breadcrumbs {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(url.PathEscape(c.Name))
		paths = append(paths, b.String())
	}
	return paths
}

// Names returns the breadcrumb names root first.
func (r *Resolution) Names() []string {
	names := make([]string, 0, len(r.Breadcrumbs))
	for _, c := range r.Breadcrumbs {
		names = append(names, c.Name)
	}
	return names
}

func findByName(categories []api.Category, name string) (api.Category, bool) {
	want := Normalize(name)
	for _, c := range categories {
		if Normalize(c.Name) == want {
			return c, true
		}
	}
	return api.Category{}, false
}

// Walk visits every category depth first with its ancestry, root first.
func Walk(categories []api.Category, fn func(path []api.Category)) {
	var visit func(nodes []api.Category, ancestry []api.Category)
	visit = func(nodes []api.Category, ancestry []api.Category) {
		for _, c := range nodes {
			path := append(ancestry[:len(ancestry):len(ancestry)], c)
			fn(path)
			visit(c.SubCategories, path)
		}
	}
	visit(categories, nil)
}
