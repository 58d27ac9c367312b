package model

import (
	"strings"
	"time"
)

// TransferCategoryID is the reserved category used to tag both legs of a
// transfer pair. It is seeded by migration, cannot be deleted, and is hidden
// from user-facing category listings.
const TransferCategoryID int64 = 1

// TransferCategoryName is the display name of the reserved transfer category.
const TransferCategoryName = "Transfer"

// Category represents a user-defined transaction category.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int64
	ColorTag  int64
}

// IsTransferCategory reports whether this is the reserved transfer category.
func (c *Category) IsTransferCategory() bool {
	return c.ID == TransferCategoryID
}

// Validate checks that the category is well-formed enough to persist.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
