package segmentation

import (
	"image"
	"image/color"
	"testing"

	"coastlabel/pkg/labelmap"
)

// createBandsImage builds a test photo with three horizontal color bands,
// roughly sky / water / sand.
func createBandsImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		var c color.RGBA
		switch {
		case y < height/3:
			c = color.RGBA{R: 110, G: 170, B: 235, A: 255} // sky
		case y < 2*height/3:
			c = color.RGBA{R: 25, G: 95, B: 140, A: 255} // water
		default:
			c = color.RGBA{R: 215, G: 195, B: 150, A: 255} // sand
		}
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// TestSegmentProducesValidMap verifies that the segmentation satisfies the
// reconstruction input contract: same shape as the image and contiguous
// ids starting at zero.
func TestSegmentProducesValidMap(t *testing.T) {
	img := createBandsImage(96, 96)

	opts := DefaultOptions()
	opts.NumSuperpixels = 36

	seg, err := Segment(img, opts)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if seg.Width != 96 || seg.Height != 96 {
		t.Fatalf("segmentation shape %dx%d, want 96x96", seg.Width, seg.Height)
	}

	numSegments, err := labelmap.NumSegments(seg)
	if err != nil {
		t.Fatalf("NumSegments failed: %v", err)
	}
	if numSegments < 2 {
		t.Errorf("expected multiple superpixels, got %d", numSegments)
	}

	// Every id in [0, numSegments) must actually occur, and none outside.
	seen := make([]bool, numSegments)
	for i, id := range seg.Cells {
		if id < 0 || id >= numSegments {
			t.Fatalf("cell %d holds id %d outside [0,%d)", i, id, numSegments)
		}
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			t.Errorf("id %d is never used: ids are not contiguous", id)
		}
	}
}

// TestSegmentDeterministic verifies that segmenting the same image twice
// yields the same map.
func TestSegmentDeterministic(t *testing.T) {
	img := createBandsImage(64, 64)
	opts := DefaultOptions()
	opts.NumSuperpixels = 16

	first, err := Segment(img, opts)
	if err != nil {
		t.Fatalf("first Segment failed: %v", err)
	}
	second, err := Segment(img, opts)
	if err != nil {
		t.Fatalf("second Segment failed: %v", err)
	}

	if !first.Equal(second) {
		t.Error("segmentation is not deterministic for identical input")
	}
}

// TestSegmentTinyImage verifies behavior on an image smaller than the seed
// step: a single superpixel covering everything.
func TestSegmentTinyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	seg, err := Segment(img, Options{NumSuperpixels: 1, Compactness: 25, Iterations: 5})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	for i, id := range seg.Cells {
		if id != 0 {
			t.Errorf("cell %d holds id %d, want 0", i, id)
		}
	}
}

// TestSegmentRejectsEmptyInput verifies the error paths.
func TestSegmentRejectsEmptyInput(t *testing.T) {
	if _, err := Segment(nil, DefaultOptions()); err == nil {
		t.Error("Segment accepted a nil image")
	}

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Segment(empty, DefaultOptions()); err == nil {
		t.Error("Segment accepted an empty image")
	}
}

// TestOptionsForSize verifies the size-derived superpixel counts stay in a
// sane range.
func TestOptionsForSize(t *testing.T) {
	testCases := []struct {
		name string
		size image.Point
		min  int
		max  int
	}{
		{"Zero", image.Point{}, DefaultOptions().NumSuperpixels, DefaultOptions().NumSuperpixels},
		{"Thumbnail", image.Pt(128, 96), 16, 100},
		{"Photo", image.Pt(1600, 1200), 500, 2000},
		{"Huge", image.Pt(8000, 8000), 2000, 2000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opt := OptionsForSize(tc.size)
			if opt.NumSuperpixels < tc.min || opt.NumSuperpixels > tc.max {
				t.Errorf("NumSuperpixels = %d, want within [%d,%d]",
					opt.NumSuperpixels, tc.min, tc.max)
			}
		})
	}
}
