// Package stats summarizes label images: how much of the scene each class
// covers, how mixed the labeling is, and how well two labelings agree.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"coastlabel/pkg/labelmap"
)

// Distribution returns the pixel count per class code in a label image.
func Distribution(labels *labelmap.Grid) (map[int]int, error) {
	if err := checkGrid(labels); err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for _, code := range labels.Cells {
		counts[code]++
	}
	return counts, nil
}

// Fractions returns the fraction of pixels per class code, summing to 1.
func Fractions(labels *labelmap.Grid) (map[int]float64, error) {
	counts, err := Distribution(labels)
	if err != nil {
		return nil, err
	}

	total := float64(labels.Width * labels.Height)
	fractions := make(map[int]float64, len(counts))
	for code, n := range counts {
		fractions[code] = float64(n) / total
	}
	return fractions, nil
}

// Entropy returns the Shannon entropy in bits of the class distribution.
// A scene covered by a single class has entropy 0; k equally covered
// classes have entropy log2(k).
func Entropy(labels *labelmap.Grid) (float64, error) {
	fractions, err := Fractions(labels)
	if err != nil {
		return 0, err
	}

	// stat.Entropy wants a normalized distribution and returns nats.
	dist := make([]float64, 0, len(fractions))
	for _, p := range fractions {
		dist = append(dist, p)
	}
	return stat.Entropy(dist) / math.Ln2, nil
}

// Agreement describes how two same-shape label images relate, e.g. a
// predicted labeling against ground truth.
type Agreement struct {
	// Confusion counts pixels by (code in a, code in b).
	Confusion map[[2]int]int

	// Accuracy is the fraction of pixels labeled identically.
	Accuracy float64

	// Kappa is Cohen's kappa: agreement corrected for the agreement two
	// independent labelings with these class distributions would reach by
	// chance. 1 is perfect, 0 is chance level.
	Kappa float64
}

// Compare computes the agreement between two label images of equal shape.
func Compare(a, b *labelmap.Grid) (Agreement, error) {
	if err := checkGrid(a); err != nil {
		return Agreement{}, err
	}
	if err := checkGrid(b); err != nil {
		return Agreement{}, err
	}
	if a.Width != b.Width || a.Height != b.Height {
		return Agreement{}, &labelmap.ShapeError{
			Width:  b.Width,
			Height: b.Height,
			Reason: "label images have different shapes",
		}
	}

	confusion := make(map[[2]int]int)
	matches := 0
	countsA := make(map[int]int)
	countsB := make(map[int]int)

	for i := range a.Cells {
		ca, cb := a.Cells[i], b.Cells[i]
		confusion[[2]int{ca, cb}]++
		countsA[ca]++
		countsB[cb]++
		if ca == cb {
			matches++
		}
	}

	total := float64(len(a.Cells))
	accuracy := float64(matches) / total

	// Chance agreement from the marginal class distributions.
	chance := 0.0
	for code, na := range countsA {
		if nb, ok := countsB[code]; ok {
			chance += (float64(na) / total) * (float64(nb) / total)
		}
	}

	kappa := 1.0
	if chance < 1 {
		kappa = (accuracy - chance) / (1 - chance)
	}

	return Agreement{
		Confusion: confusion,
		Accuracy:  accuracy,
		Kappa:     kappa,
	}, nil
}

// Codes returns the class codes present in a label image in ascending
// order.
func Codes(labels *labelmap.Grid) ([]int, error) {
	counts, err := Distribution(labels)
	if err != nil {
		return nil, err
	}

	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes, nil
}

// checkGrid applies the shape precondition. Codes can be any integers
// here, so only dimensions are checked.
func checkGrid(g *labelmap.Grid) error {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		w, h := 0, 0
		if g != nil {
			w, h = g.Width, g.Height
		}
		return &labelmap.ShapeError{Width: w, Height: h, Reason: "empty grid"}
	}
	if len(g.Cells) != g.Width*g.Height {
		return &labelmap.ShapeError{Width: g.Width, Height: g.Height, Reason: "cell buffer does not match dimensions"}
	}
	return nil
}
