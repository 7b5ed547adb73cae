package model

import "time"

const (
	// DefaultTitle is assigned to every newly created document.
	DefaultTitle = "Untitled Document"
	// DefaultCategory is assigned to every newly created document.
	DefaultCategory = CategoryFormElement
)

// Category is the fixed classification of a document.
type Category string

const (
	CategoryFormElement Category = "Form Element"
	CategoryPermission  Category = "Permission"
	CategoryValidator   Category = "Validator"
	CategoryPlugin      Category = "Plugin"
	CategoryApp         Category = "App"
	CategoryHelper      Category = "Helper"
	CategoryTutorial    Category = "Tutorial"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFormElement,
	CategoryPermission,
	CategoryValidator,
	CategoryPlugin,
	CategoryApp,
	CategoryHelper,
	CategoryTutorial,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Document is an authored rich-text document.
// Content holds the serialized block tree exactly as stored; it is nil when the
// document has no body yet.
type Document struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Content   *string    `json:"-"`
	Category  Category   `json:"category"`
	IsPublic  bool       `json:"is_public"`
	OwnerID   string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// LastUpdated returns the update timestamp, falling back to creation time.
func (d *Document) LastUpdated() time.Time {
	if d.UpdatedAt != nil {
		return *d.UpdatedAt
	}
	return d.CreatedAt
}

// DocumentSummary is the light projection used by listings and the public sidebar.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentPatch carries independently persisted field updates.
// Nil fields are left untouched. When ExpectedUpdatedAt is set the update only
// applies if the stored updated_at still matches it.
type DocumentPatch struct {
	Title             *string
	Content           *string
	Category          *Category
	IsPublic          *bool
	ExpectedUpdatedAt *time.Time
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil && p.IsPublic == nil
}
