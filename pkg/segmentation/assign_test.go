package segmentation

import (
	"testing"

	"coastlabel/pkg/labelmap"
)

// TestAssignCodes verifies that color clustering groups same-colored
// superpixels under a shared class code.
func TestAssignCodes(t *testing.T) {
	// 60x60 photo with three bands and a segmentation with one superpixel
	// per 20-pixel band strip, two strips per band.
	img := createBandsImage(60, 60)
	seg := labelmap.NewGrid(60, 60)
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			seg.Set(x, y, y/10) // six horizontal strips, ids 0..5
		}
	}

	codes, err := AssignCodes(img, seg, 3)
	if err != nil {
		t.Fatalf("AssignCodes failed: %v", err)
	}

	if len(codes) != 6 {
		t.Fatalf("got %d codes, want 6", len(codes))
	}

	// The code list must be a valid Reconstruct input.
	if err := labelmap.Validate(seg, codes); err != nil {
		t.Errorf("assigned codes fail validation: %v", err)
	}

	// Strips within the same color band must share a code, and different
	// bands must not.
	if codes[0] != codes[1] || codes[2] != codes[3] || codes[4] != codes[5] {
		t.Errorf("same-color superpixels got different codes: %v", codes)
	}
	if codes[0] == codes[2] || codes[2] == codes[4] || codes[0] == codes[4] {
		t.Errorf("different-color superpixels share a code: %v", codes)
	}

	// All codes must be in [0, numClasses).
	for i, c := range codes {
		if c < 0 || c >= 3 {
			t.Errorf("code %d for superpixel %d outside [0,3)", c, i)
		}
	}
}

// TestAssignCodesMoreClassesThanSegments verifies the identity mapping
// when merging is impossible.
func TestAssignCodesMoreClassesThanSegments(t *testing.T) {
	img := createBandsImage(30, 30)
	seg := labelmap.NewGrid(30, 30)
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			seg.Set(x, y, y/15) // two superpixels
		}
	}

	codes, err := AssignCodes(img, seg, 5)
	if err != nil {
		t.Fatalf("AssignCodes failed: %v", err)
	}

	if len(codes) != 2 || codes[0] != 0 || codes[1] != 1 {
		t.Errorf("expected identity codes [0 1], got %v", codes)
	}
}

// TestAssignCodesErrors verifies the input validation paths.
func TestAssignCodesErrors(t *testing.T) {
	img := createBandsImage(30, 30)
	seg := labelmap.NewGrid(30, 30)

	t.Run("NilImage", func(t *testing.T) {
		if _, err := AssignCodes(nil, seg, 2); err == nil {
			t.Error("accepted a nil image")
		}
	})

	t.Run("NonPositiveClasses", func(t *testing.T) {
		if _, err := AssignCodes(img, seg, 0); err == nil {
			t.Error("accepted zero classes")
		}
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		small := labelmap.NewGrid(10, 10)
		if _, err := AssignCodes(img, small, 2); err == nil {
			t.Error("accepted a segmentation smaller than the image")
		}
	})
}
