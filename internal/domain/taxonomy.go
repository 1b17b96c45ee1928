package domain

// CategoryLookup answers whether a category, and a subcategory within it, exist.
// It is consulted when registering products.
type CategoryLookup interface {
	CategoryExists(name string) bool

	// SubcategoryExists matches the subcategory case-insensitively
	SubcategoryExists(category, subcategory string) bool
}
