package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Class pairs an integer class code with its semantic name.
type Class struct {
	// Code is the integer written into label images.
	Code int

	// Name is the human-readable class name.
	Name string
}

// DefaultClasses is the class set used for coastal scenes when no class
// file is configured. Codes match the list order.
var DefaultClasses = []Class{
	{Code: 0, Name: "water"},
	{Code: 1, Name: "sand"},
	{Code: 2, Name: "sky"},
	{Code: 3, Name: "vegetation"},
	{Code: 4, Name: "rock"},
	{Code: 5, Name: "structure"},
}

// ClassName returns the name for a code, or a numeric placeholder for
// codes without a definition.
func ClassName(classes []Class, code int) string {
	for _, c := range classes {
		if c.Code == code {
			return c.Name
		}
	}
	return fmt.Sprintf("class %d", code)
}

// PairPaths holds the two dataset files describing one labeled image.
type PairPaths struct {
	// Segmentation is the path of the superpixel grid file.
	Segmentation string

	// Codes is the path of the per-superpixel class code file.
	Codes string
}

// PairFor derives the conventional dataset file pair for an image path:
// beach.jpg -> beach_seg.bin / beach_codes.bin next to the image.
func PairFor(imagePath string) PairPaths {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	return PairPaths{
		Segmentation: base + "_seg.bin",
		Codes:        base + "_codes.bin",
	}
}
