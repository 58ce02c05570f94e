package accel

import (
	"reflect"
	"testing"
)

func TestNewBatch(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"valid size", 50, 50},
		{"zero defaults", 0, DefaultBatchSize},
		{"negative defaults", -1, DefaultBatchSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := NewBatch(tt.size)
			if batch.Size() != tt.expected {
				t.Errorf("expected size %d, got %d", tt.expected, batch.Size())
			}
		})
	}
}

func TestWindows(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		n        int
		expected []Window
	}{
		{"empty", 3, 0, nil},
		{"negative", 3, -2, nil},
		{"smaller than batch", 3, 2, []Window{{0, 2}}},
		{"exact multiple", 2, 4, []Window{{0, 2}, {2, 4}}},
		{"remainder", 3, 7, []Window{{0, 3}, {3, 6}, {6, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBatch(tt.size).Windows(tt.n)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}

			total := 0
			for _, w := range got {
				total += w.Len()
			}
			if tt.n > 0 && total != tt.n {
				t.Errorf("windows cover %d elements, want %d", total, tt.n)
			}
		})
	}
}
