package match

import (
	"testing"

	"jbmap/internal/models"
)

func TestExactMatcher_Empty(t *testing.T) {
	groups, err := NewExactMatcher().FindGroups(nil)
	if err != nil {
		t.Fatalf("FindGroups failed: %v", err)
	}
	if groups != nil {
		t.Errorf("expected nil for empty input, got %v", groups)
	}
}

func TestExactMatcher_NoDuplicates(t *testing.T) {
	images := []*models.ImageInfo{
		{Path: "a.jpg", FileHash: "abc123"},
		{Path: "b.jpg", FileHash: "def456"},
		{Path: "c.jpg"},
		{Path: "d.jpg"}, // missing hashes never match each other
	}
	groups, _ := NewExactMatcher().FindGroups(images)
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestExactMatcher_Duplicates(t *testing.T) {
	images := []*models.ImageInfo{
		{Path: "a.jpg", FileHash: "abc123", Score: 1.0},
		{Path: "b.jpg", FileHash: "abc123", Score: 2.0},
		{Path: "c.jpg", FileHash: "def456", Score: 1.0},
	}
	groups, _ := NewExactMatcher().FindGroups(images)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Keep.Path != "b.jpg" {
		t.Errorf("expected b.jpg kept, got %s", groups[0].Keep.Path)
	}
}
