package models

import "testing"

func TestFormatQualityMultiplier(t *testing.T) {
	tests := []struct {
		format   string
		expected float64
	}{
		{"png", 1.2},
		{"tiff", 1.2},
		{"webp", 1.1},
		{"jpeg", 1.0},
		{"gif", 0.9},
		{"unknown", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := FormatQualityMultiplier(tt.format); got != tt.expected {
				t.Errorf("FormatQualityMultiplier(%q) = %v, want %v", tt.format, got, tt.expected)
			}
		})
	}
}

func TestReclaimable(t *testing.T) {
	g := &DuplicateGroup{
		Keep:   &ImageInfo{FileSize: 500},
		Remove: []*ImageInfo{{FileSize: 100}, {FileSize: 250}},
	}
	if got := g.Reclaimable(); got != 350 {
		t.Errorf("Reclaimable() = %d, want 350", got)
	}
}
