package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"coastlabel/pkg/labelmap"
)

// TestPalette verifies palette size, stability, and color separation.
func TestPalette(t *testing.T) {
	if Palette(0) != nil {
		t.Error("Palette(0) should be nil")
	}

	p := Palette(5)
	if len(p) != 5 {
		t.Fatalf("got %d colors, want 5", len(p))
	}

	// Stable across calls.
	q := Palette(5)
	for i := range p {
		if p[i] != q[i] {
			t.Errorf("palette entry %d differs between calls: %v vs %v", i, p[i], q[i])
		}
	}

	// All entries distinct.
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			if p[i] == p[j] {
				t.Errorf("palette entries %d and %d are identical: %v", i, j, p[i])
			}
		}
	}
}

// TestLabelImage verifies per-class coloring and the out-of-palette error.
func TestLabelImage(t *testing.T) {
	labels, err := labelmap.GridFromRows([][]int{
		{0, 1},
		{1, 0},
	})
	if err != nil {
		t.Fatalf("failed to build label grid: %v", err)
	}
	palette := Palette(2)

	img, err := LabelImage(labels, palette)
	if err != nil {
		t.Fatalf("LabelImage failed: %v", err)
	}

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("image size %v, want 2x2", img.Bounds())
	}

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := palette[labels.At(x, y)]
			if got := img.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	t.Run("CodeOutsidePalette", func(t *testing.T) {
		_, err := LabelImage(labels, Palette(1))
		var rangeErr *labelmap.CodeRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected *labelmap.CodeRangeError, got %T: %v", err, err)
		}
	})

	t.Run("EmptyGrid", func(t *testing.T) {
		_, err := LabelImage(&labelmap.Grid{}, palette)
		var shapeErr *labelmap.ShapeError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("expected *labelmap.ShapeError, got %T: %v", err, err)
		}
	})
}

// TestOverlay verifies alpha compositing over the source photo.
func TestOverlay(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	labels, err := labelmap.GridFromRows([][]int{{0, 1}})
	if err != nil {
		t.Fatalf("failed to build label grid: %v", err)
	}
	palette := []color.RGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}

	t.Run("FullAlpha", func(t *testing.T) {
		out, err := Overlay(src, labels, palette, 1.0)
		if err != nil {
			t.Fatalf("Overlay failed: %v", err)
		}
		if got := out.RGBAAt(0, 0); got != palette[0] {
			t.Errorf("alpha=1 pixel (0,0) = %v, want pure class color %v", got, palette[0])
		}
		if got := out.RGBAAt(1, 0); got != palette[1] {
			t.Errorf("alpha=1 pixel (1,0) = %v, want pure class color %v", got, palette[1])
		}
	})

	t.Run("ZeroAlpha", func(t *testing.T) {
		out, err := Overlay(src, labels, palette, 0.0)
		if err != nil {
			t.Fatalf("Overlay failed: %v", err)
		}
		if got := out.RGBAAt(0, 0); got.R != 200 || got.G != 200 || got.B != 200 {
			t.Errorf("alpha=0 pixel (0,0) = %v, want source color", got)
		}
	})

	t.Run("HalfAlpha", func(t *testing.T) {
		out, err := Overlay(src, labels, palette, 0.5)
		if err != nil {
			t.Fatalf("Overlay failed: %v", err)
		}
		got := out.RGBAAt(0, 0)
		if got.R != 100 {
			t.Errorf("alpha=0.5 pixel (0,0) red = %d, want 100", got.R)
		}
	})

	t.Run("BadInputs", func(t *testing.T) {
		if _, err := Overlay(nil, labels, palette, 0.5); err == nil {
			t.Error("accepted a nil source")
		}
		if _, err := Overlay(src, labels, palette, 1.5); err == nil {
			t.Error("accepted alpha > 1")
		}
		wrongSize := labelmap.NewGrid(3, 3)
		if _, err := Overlay(src, wrongSize, palette, 0.5); err == nil {
			t.Error("accepted a label grid that does not match the image")
		}
	})
}

// TestResizeAndFit verifies scaling behavior.
func TestResizeAndFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))

	out, err := Resize(src, 20, 10)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 10 {
		t.Errorf("resized to %v, want 20x10", out.Bounds())
	}

	t.Run("FitShrinksKeepingAspect", func(t *testing.T) {
		fit, err := FitWithin(src, 10, 10)
		if err != nil {
			t.Fatalf("FitWithin failed: %v", err)
		}
		b := fit.Bounds()
		if b.Dx() != 10 || b.Dy() != 5 {
			t.Errorf("fit to %dx%d, want 10x5", b.Dx(), b.Dy())
		}
	})

	t.Run("FitLeavesSmallImages", func(t *testing.T) {
		fit, err := FitWithin(src, 100, 100)
		if err != nil {
			t.Fatalf("FitWithin failed: %v", err)
		}
		if fit != src {
			t.Error("FitWithin should return small images unchanged")
		}
	})

	t.Run("BadInputs", func(t *testing.T) {
		if _, err := Resize(src, 0, 10); err == nil {
			t.Error("accepted zero width")
		}
		if _, err := FitWithin(src, -1, 10); err == nil {
			t.Error("accepted negative bound")
		}
	})
}

// TestSavePNG verifies that the written file decodes back to the same size.
func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.png")

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	if err := SavePNG(img, path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open written file: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode written PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 3 {
		t.Errorf("decoded size %v, want 4x3", decoded.Bounds())
	}
}
