package types

import "fmt"

// Category identifies the kind of document a pending change targets.
// It is also the deduplication key of the pending-change ledger.
type Category string

const (
	CategoryHomepage Category = "homepage"
	CategoryContent  Category = "content"
	CategorySettings Category = "settings"
)

// Categories lists every valid category
var Categories = []Category{CategoryHomepage, CategoryContent, CategorySettings}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryHomepage, CategoryContent, CategorySettings:
		return true
	}
	return false
}

// ParseCategory converts s into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}
