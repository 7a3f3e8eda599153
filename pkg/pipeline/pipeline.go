// Package pipeline runs the end-to-end labeling flow: load a coastal
// photograph (or an existing segmentation pair), produce a superpixel
// segmentation, assign class codes, reconstruct the per-pixel label image,
// and render and summarize it.
package pipeline

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"coastlabel/pkg/codec"
	"coastlabel/pkg/labelmap"
	"coastlabel/pkg/render"
	"coastlabel/pkg/segmentation"
	"coastlabel/pkg/stats"
)

// Params holds the pipeline configuration. Exactly one input must be set:
// either ImagePath (photo to segment and label) or SegPath+CodesPath (an
// already-labeled dataset pair to reconstruct).
type Params struct {
	// ImagePath is the photo input (PNG or JPEG).
	ImagePath string

	// SegPath and CodesPath are the dataset pair input.
	SegPath   string
	CodesPath string

	// Segmentation controls SLIC when running from a photo. A zero value
	// means size-derived defaults.
	Segmentation segmentation.Options

	// NumClasses is the number of class codes assigned by color
	// clustering when running from a photo.
	NumClasses int

	// OverlayAlpha controls the class-color tint over the photo.
	OverlayAlpha float64

	// MaxWidth and MaxHeight bound the working image size; larger photos
	// are scaled down before segmentation. Zero disables the bound.
	MaxWidth  int
	MaxHeight int

	// SaveIntermediary enables dumping the intermediate artifacts
	// (segmentation pair, rendered stages) under IntermediaryDir.
	SaveIntermediary bool
	IntermediaryDir  string

	// Verbose enables step logging.
	Verbose bool
}

// Result carries everything the pipeline produced for one image.
type Result struct {
	// Segmentation is the superpixel map used for reconstruction.
	Segmentation *labelmap.Grid

	// Codes is the per-superpixel class code list.
	Codes []int

	// Labels is the reconstructed per-pixel class-label image.
	Labels *labelmap.Grid

	// LabelImage is the solid class-color rendering of Labels.
	LabelImage *image.RGBA

	// Overlay is the class colors composited over the photo; nil when the
	// pipeline ran from a dataset pair instead of a photo.
	Overlay *image.RGBA

	// Distribution is the pixel count per class code.
	Distribution map[int]int

	// Entropy is the Shannon entropy of the class distribution in bits.
	Entropy float64
}

// Run executes the pipeline for a single input.
func Run(params *Params) (*Result, error) {
	switch {
	case params.ImagePath != "" && params.SegPath != "":
		return nil, fmt.Errorf("image and dataset pair inputs are mutually exclusive")
	case params.ImagePath != "":
		return runFromImage(params)
	case params.SegPath != "" && params.CodesPath != "":
		return runFromPair(params)
	default:
		return nil, fmt.Errorf("no input: set either an image path or a segmentation/codes pair")
	}
}

func runFromImage(params *Params) (*Result, error) {
	logf(params, "Step 1: Loading image %s...\n", params.ImagePath)
	img, err := LoadImage(params.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	if params.MaxWidth > 0 && params.MaxHeight > 0 {
		img, err = render.FitWithin(img, params.MaxWidth, params.MaxHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to resize image: %w", err)
		}
	}
	bounds := img.Bounds()
	logf(params, "Working size: %dx%d\n", bounds.Dx(), bounds.Dy())

	opts := params.Segmentation
	if opts.NumSuperpixels <= 0 {
		opts = segmentation.OptionsForSize(bounds.Size())
	}

	logf(params, "Step 2: Segmenting into ~%d superpixels...\n", opts.NumSuperpixels)
	seg, err := segmentation.Segment(img, opts)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	numSegments, err := labelmap.NumSegments(seg)
	if err != nil {
		return nil, err
	}
	logf(params, "Produced %d superpixels\n", numSegments)

	numClasses := params.NumClasses
	if numClasses <= 0 {
		numClasses = 6
	}

	logf(params, "Step 3: Assigning %d class codes by color clustering...\n", numClasses)
	codes, err := segmentation.AssignCodes(img, seg, numClasses)
	if err != nil {
		return nil, fmt.Errorf("class code assignment failed: %w", err)
	}

	if params.SaveIntermediary {
		if err := saveSegmentationStage(params, seg, codes); err != nil {
			fmt.Printf("Warning: failed to save segmentation stage: %v\n", err)
		}
	}

	result, err := finish(params, seg, codes)
	if err != nil {
		return nil, err
	}

	logf(params, "Step 6: Rendering overlay...\n")
	palette := render.Palette(paletteSize(result.Labels))
	overlay, err := render.Overlay(img, result.Labels, palette, overlayAlpha(params))
	if err != nil {
		return nil, fmt.Errorf("overlay rendering failed: %w", err)
	}
	result.Overlay = overlay

	if params.SaveIntermediary {
		if err := saveImageStage(params, "03_overlay", overlay); err != nil {
			fmt.Printf("Warning: failed to save overlay stage: %v\n", err)
		}
	}

	return result, nil
}

func runFromPair(params *Params) (*Result, error) {
	logf(params, "Step 1: Reading dataset pair %s / %s...\n", params.SegPath, params.CodesPath)
	seg, codes, err := codec.ReadPair(params.SegPath, params.CodesPath)
	if err != nil {
		return nil, err
	}

	return finish(params, seg, codes)
}

// finish runs the shared tail of the pipeline: reconstruction, label
// rendering, and statistics.
func finish(params *Params, seg *labelmap.Grid, codes []int) (*Result, error) {
	logf(params, "Step 4: Reconstructing label image...\n")
	labels, err := labelmap.Reconstruct(seg, codes)
	if err != nil {
		return nil, fmt.Errorf("label reconstruction failed: %w", err)
	}

	logf(params, "Step 5: Rendering label image and computing statistics...\n")
	palette := render.Palette(paletteSize(labels))
	labelImg, err := render.LabelImage(labels, palette)
	if err != nil {
		return nil, fmt.Errorf("label rendering failed: %w", err)
	}

	distribution, err := stats.Distribution(labels)
	if err != nil {
		return nil, err
	}
	entropy, err := stats.Entropy(labels)
	if err != nil {
		return nil, err
	}

	if params.SaveIntermediary {
		if err := saveImageStage(params, "02_label_image", labelImg); err != nil {
			fmt.Printf("Warning: failed to save label image stage: %v\n", err)
		}
	}

	return &Result{
		Segmentation: seg,
		Codes:        codes,
		Labels:       labels,
		LabelImage:   labelImg,
		Distribution: distribution,
		Entropy:      entropy,
	}, nil
}

// paletteSize returns the palette length needed to cover every code in a
// label image.
func paletteSize(labels *labelmap.Grid) int {
	maxCode := 0
	for _, c := range labels.Cells {
		if c > maxCode {
			maxCode = c
		}
	}
	return maxCode + 1
}

func overlayAlpha(params *Params) float64 {
	if params.OverlayAlpha <= 0 || params.OverlayAlpha > 1 {
		return 0.45
	}
	return params.OverlayAlpha
}

func saveSegmentationStage(params *Params, seg *labelmap.Grid, codes []int) error {
	dir := filepath.Join(params.IntermediaryDir, "01_segmentation")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := codec.WriteSegmentation(filepath.Join(dir, "seg.bin"), seg); err != nil {
		return err
	}
	return codec.WriteCodes(filepath.Join(dir, "codes.bin"), codes)
}

func saveImageStage(params *Params, stage string, img image.Image) error {
	dir := filepath.Join(params.IntermediaryDir, stage)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return render.SavePNG(img, filepath.Join(dir, "out.png"))
}

func logf(params *Params, format string, args ...interface{}) {
	if params.Verbose {
		fmt.Printf(format, args...)
	}
}

// LoadImage loads a PNG or JPEG image from a file.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// ListImages returns the image files in a directory sorted by the numeric
// part of their filenames, so frame_2.png sorts before frame_10.png. This
// keeps time sequences of shoreline frames in capture order.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	sort.Slice(paths, func(i, j int) bool {
		ni := extractNumber(paths[i])
		nj := extractNumber(paths[j])
		if ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})

	return paths, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}
