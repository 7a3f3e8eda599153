package models

import (
	"path/filepath"
	"testing"
)

// TestClassName verifies lookup and the placeholder for unknown codes.
func TestClassName(t *testing.T) {
	if name := ClassName(DefaultClasses, 0); name != "water" {
		t.Errorf("ClassName(0) = %q, want %q", name, "water")
	}
	if name := ClassName(DefaultClasses, 99); name != "class 99" {
		t.Errorf("ClassName(99) = %q, want %q", name, "class 99")
	}
}

// TestPairFor verifies the dataset file naming convention.
func TestPairFor(t *testing.T) {
	pair := PairFor(filepath.Join("data", "beach.jpg"))

	if want := filepath.Join("data", "beach_seg.bin"); pair.Segmentation != want {
		t.Errorf("segmentation path = %q, want %q", pair.Segmentation, want)
	}
	if want := filepath.Join("data", "beach_codes.bin"); pair.Codes != want {
		t.Errorf("codes path = %q, want %q", pair.Codes, want)
	}

	// No extension: suffixes are appended directly.
	pair = PairFor("snapshot")
	if pair.Segmentation != "snapshot_seg.bin" {
		t.Errorf("segmentation path = %q, want %q", pair.Segmentation, "snapshot_seg.bin")
	}
}
