package models

import (
	"time"

	"github.com/google/uuid"
)

// Importance bounds for list items.
const (
	MinImportance     = 1
	MaxImportance     = 5
	DefaultImportance = 3
)

// ListItem is a single entry in a list.
//
// IsAdjudicated is true exactly when AdjudicatedBy is set.
type ListItem struct {
	ID            uuid.UUID  `json:"id"`
	ListID        uuid.UUID  `json:"list_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ImageURLs     []string   `json:"image_urls"`
	URLs          []string   `json:"urls"`
	Importance    int        `json:"importance"`
	EstimatedCost float64    `json:"estimated_cost"`
	IsAdjudicated bool       `json:"is_adjudicated"`
	AdjudicatedBy *uuid.UUID `json:"adjudicated_by"`
	AdjudicatedAt *time.Time `json:"adjudicated_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsClaimedBy returns true if the item is currently claimed by userID.
func (i *ListItem) IsClaimedBy(userID uuid.UUID) bool {
	return i.IsAdjudicated && i.AdjudicatedBy != nil && *i.AdjudicatedBy == userID
}

// Redacted returns a copy for the list owner: it still says whether the item
// is taken, but not by whom or when.
func (i ListItem) Redacted() ListItem {
	i.AdjudicatedBy = nil
	i.AdjudicatedAt = nil
	return i
}
