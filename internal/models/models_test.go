package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestListItem_IsClaimedBy(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name string
		item ListItem
		user uuid.UUID
		want bool
	}{
		{"available item", ListItem{}, userID, false},
		{"claimed by user", ListItem{IsAdjudicated: true, AdjudicatedBy: &userID}, userID, true},
		{"claimed by other", ListItem{IsAdjudicated: true, AdjudicatedBy: &otherID}, userID, false},
		{"flag without claimant", ListItem{IsAdjudicated: true}, userID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsClaimedBy(tt.user); got != tt.want {
				t.Errorf("IsClaimedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListItem_Redacted(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	item := ListItem{
		Name:          "Bike",
		IsAdjudicated: true,
		AdjudicatedBy: &userID,
		AdjudicatedAt: &now,
	}

	redacted := item.Redacted()
	if redacted.AdjudicatedBy != nil || redacted.AdjudicatedAt != nil {
		t.Errorf("Redacted() left the claimant visible: %+v", redacted)
	}
	if !redacted.IsAdjudicated {
		t.Error("Redacted() hid that the item is claimed")
	}
	if redacted.Name != "Bike" {
		t.Errorf("Redacted() Name = %q, want %q", redacted.Name, "Bike")
	}
	if !item.IsAdjudicated {
		t.Error("Redacted() modified the original item")
	}
}

func TestProfile_Name(t *testing.T) {
	p := &Profile{Email: "ana@example.com"}
	if got := p.Name(); got != "ana@example.com" {
		t.Errorf("Name() = %q, want email fallback", got)
	}
	p.DisplayName = "Ana"
	if got := p.Name(); got != "Ana" {
		t.Errorf("Name() = %q, want %q", got, "Ana")
	}
}
