package segmentation

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"coastlabel/pkg/labelmap"
)

// AssignCodes derives a per-superpixel class code list by clustering the
// superpixels' mean Lab colors into numClasses groups. Superpixels with
// similar color (sand, water, sky) end up sharing a code. Clusters are
// ordered by population, so code 0 is the most common class in the image.
//
// The returned list has exactly NumSegments(seg) entries and is a valid
// input for labelmap.Reconstruct.
func AssignCodes(img image.Image, seg *labelmap.Grid, numClasses int) ([]int, error) {
	if img == nil {
		return nil, fmt.Errorf("code assignment requires a non-nil image")
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("number of classes must be positive, got %d", numClasses)
	}

	numSegments, err := labelmap.NumSegments(seg)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() != seg.Width || bounds.Dy() != seg.Height {
		return nil, &labelmap.ShapeError{
			Width:  seg.Width,
			Height: seg.Height,
			Reason: fmt.Sprintf("segmentation does not match image size %dx%d", bounds.Dx(), bounds.Dy()),
		}
	}

	means, err := meanLabColors(img, seg, numSegments)
	if err != nil {
		return nil, err
	}

	if numClasses >= numSegments {
		// Nothing to merge: each superpixel keeps its own code.
		codes := make([]int, numSegments)
		for i := range codes {
			codes[i] = i
		}
		return codes, nil
	}

	// Cluster superpixel mean colors. The fitting itself is delegated,
	// like every other numerical routine in this module.
	observations := make(clusters.Observations, numSegments)
	for i, m := range means {
		observations[i] = clusters.Coordinates{m[0], m[1], m[2]}
	}

	km := kmeans.New()
	cc, err := km.Partition(observations, numClasses)
	if err != nil {
		return nil, fmt.Errorf("kmeans clustering failed: %w", err)
	}
	if len(cc) == 0 {
		return nil, fmt.Errorf("kmeans clustering produced no clusters")
	}

	// Order clusters by population so code 0 names the dominant class.
	sort.SliceStable(cc, func(i, j int) bool {
		return len(cc[i].Observations) > len(cc[j].Observations)
	})

	codes := make([]int, numSegments)
	for i, m := range means {
		codes[i] = nearestCluster(cc, m)
	}

	return codes, nil
}

// meanLabColors computes the mean Lab color of every superpixel.
func meanLabColors(img image.Image, seg *labelmap.Grid, numSegments int) ([][3]float64, error) {
	bounds := img.Bounds()

	sums := make([][3]float64, numSegments)
	counts := make([]int, numSegments)

	for y := 0; y < seg.Height; y++ {
		for x := 0; x < seg.Width; x++ {
			id := seg.At(x, y)
			if id < 0 || id >= numSegments {
				return nil, &labelmap.CodeRangeError{ID: id, X: x, Y: y, NumCodes: numSegments}
			}

			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			c := colorful.Color{
				R: float64(r) / 65535.0,
				G: float64(g) / 65535.0,
				B: float64(b) / 65535.0,
			}
			cl, ca, cb := c.Lab()

			sums[id][0] += cl
			sums[id][1] += ca
			sums[id][2] += cb
			counts[id]++
		}
	}

	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		n := float64(counts[i])
		sums[i][0] /= n
		sums[i][1] /= n
		sums[i][2] /= n
	}

	return sums, nil
}

// nearestCluster returns the index of the cluster whose center is closest
// to the given Lab color.
func nearestCluster(cc clusters.Clusters, m [3]float64) int {
	best := 0
	bestD := -1.0
	for i, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		d0 := c.Center[0] - m[0]
		d1 := c.Center[1] - m[1]
		d2 := c.Center[2] - m[2]
		d := d0*d0 + d1*d1 + d2*d2
		if bestD < 0 || d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}
