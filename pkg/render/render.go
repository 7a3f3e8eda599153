// Package render turns label images into viewable pictures: solid
// class-color maps, overlays on the source photograph, and PNG output.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"coastlabel/pkg/labelmap"
)

// Palette returns n visually separated class colors. Hues are spaced
// evenly around the HCL wheel at fixed chroma and lightness, so any two
// classes stay distinguishable and the palette is stable across calls.
func Palette(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}

	palette := make([]color.RGBA, n)
	for i := 0; i < n; i++ {
		hue := float64(i) * 360.0 / float64(n)
		c := colorful.Hcl(hue, 0.6, 0.6).Clamped()
		r, g, b := c.RGB255()
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

// LabelImage renders a label grid as a solid-color image, one palette
// entry per class code. A code outside the palette range is an error, the
// same precondition failure as an id without a code entry.
func LabelImage(labels *labelmap.Grid, palette []color.RGBA) (*image.RGBA, error) {
	if err := labelmap.Validate(labels, codesUpTo(len(palette))); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, labels.Width, labels.Height))
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			img.SetRGBA(x, y, palette[labels.At(x, y)])
		}
	}
	return img, nil
}

// Overlay composites class colors over the source photograph with the
// given alpha in [0,1]. The label grid must match the image size.
func Overlay(src image.Image, labels *labelmap.Grid, palette []color.RGBA, alpha float64) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("overlay requires a non-nil source image")
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("overlay alpha %.2f outside [0,1]", alpha)
	}

	bounds := src.Bounds()
	if bounds.Dx() != labels.Width || bounds.Dy() != labels.Height {
		return nil, &labelmap.ShapeError{
			Width:  labels.Width,
			Height: labels.Height,
			Reason: fmt.Sprintf("label grid does not match image size %dx%d", bounds.Dx(), bounds.Dy()),
		}
	}

	if err := labelmap.Validate(labels, codesUpTo(len(palette))); err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, labels.Width, labels.Height))
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			sr, sg, sb, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			p := palette[labels.At(x, y)]

			out.SetRGBA(x, y, color.RGBA{
				R: blend(uint8(sr>>8), p.R, alpha),
				G: blend(uint8(sg>>8), p.G, alpha),
				B: blend(uint8(sb>>8), p.B, alpha),
				A: 255,
			})
		}
	}
	return out, nil
}

// Resize scales an image to the given size with approximate bilinear
// interpolation. Photographs are scaled down before segmentation so the
// superpixel step stays in a useful range.
func Resize(src image.Image, width, height int) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("resize requires a non-nil source image")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize target %dx%d must be positive", width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// FitWithin scales an image down to fit inside maxWidth x maxHeight while
// keeping its aspect ratio. Images already small enough are returned
// unchanged.
func FitWithin(src image.Image, maxWidth, maxHeight int) (image.Image, error) {
	if src == nil {
		return nil, fmt.Errorf("resize requires a non-nil source image")
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("resize bounds %dx%d must be positive", maxWidth, maxHeight)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src, nil
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}

	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return Resize(src, nw, nh)
}

// SavePNG writes an image to path as PNG.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// codesUpTo builds the identity code list [0..n), used to validate label
// grids against a palette via the same precondition check Reconstruct uses.
func codesUpTo(n int) []int {
	codes := make([]int, n)
	for i := range codes {
		codes[i] = i
	}
	return codes
}

func blend(base, over uint8, alpha float64) uint8 {
	v := (1-alpha)*float64(base) + alpha*float64(over)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}
