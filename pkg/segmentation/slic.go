// Package segmentation produces superpixel segmentation maps from coastal
// photographs using the SLIC algorithm, and can assign class codes to the
// resulting superpixels by clustering their mean colors.
//
// The output of Segment is a labelmap.Grid whose cells hold contiguous
// superpixel ids starting at 0, which is exactly the input contract of
// labelmap.Reconstruct.
package segmentation

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"coastlabel/pkg/labelmap"
)

// Options controls the SLIC segmentation.
type Options struct {
	// NumSuperpixels is the target superpixel count. The actual count can
	// differ slightly after connectivity enforcement.
	NumSuperpixels int

	// Compactness trades color similarity against spatial proximity.
	// Higher values produce more regular, grid-like superpixels. Typical
	// values are 10-40.
	Compactness float64

	// Iterations is the number of assignment/update rounds. SLIC converges
	// quickly; 10 is the conventional choice.
	Iterations int
}

// DefaultOptions returns the standard SLIC parameters.
func DefaultOptions() Options {
	return Options{
		NumSuperpixels: 400,
		Compactness:    25,
		Iterations:     10,
	}
}

// OptionsForSize derives a superpixel count from the image size, targeting
// superpixels of roughly 40x40 pixels. Small thumbnails get a finer step so
// coarse inputs still yield a usable number of regions.
func OptionsForSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}

	step := 40.0
	if size.X*size.Y <= 512*512 {
		step = 32.0
	}

	n := int(float64(size.X*size.Y) / (step * step))
	if n < 16 {
		n = 16
	}
	if n > 2000 {
		n = 2000
	}
	opt.NumSuperpixels = n
	return opt
}

// labImage holds the CIE-Lab conversion of the input as interleaved
// L,a,b triples, len = W*H*3.
type labImage struct {
	W, H int
	Pix  []float64
}

func (l *labImage) offset(x, y int) int {
	return (y*l.W + x) * 3
}

// center is a SLIC cluster center in joint color-space coordinates.
type center struct {
	l, a, b, cx, cy float64
}

// Segment partitions an image into superpixels and returns the
// segmentation map. Ids are contiguous in [0, K) where K is the final
// superpixel count.
func Segment(img image.Image, opts Options) (*labelmap.Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("segmentation requires a non-nil image")
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("segmentation requires a non-empty image, got %dx%d", w, h)
	}

	if opts.NumSuperpixels <= 0 {
		opts.NumSuperpixels = 1
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultOptions().Iterations
	}
	if opts.Compactness <= 0 {
		opts.Compactness = DefaultOptions().Compactness
	}

	lab := toLab(img)

	// Seed spacing so that seeds tile the image with roughly the requested
	// superpixel count.
	step := int(math.Sqrt(float64(w*h) / float64(opts.NumSuperpixels)))
	if step < 1 {
		step = 1
	}

	centers := seedCenters(lab, step)
	clusters := assignAndUpdate(lab, centers, step, opts)
	seg := enforceConnectivity(clusters, w, h, len(centers))

	return seg, nil
}

// toLab converts the input image to CIE-Lab. SLIC distances in Lab track
// perceived color difference far better than RGB distances do.
func toLab(img image.Image) *labImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	lab := &labImage{W: w, H: h, Pix: make([]float64, w*h*3)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			c := colorful.Color{
				R: float64(r) / 65535.0,
				G: float64(g) / 65535.0,
				B: float64(b) / 65535.0,
			}
			cl, ca, cb := c.Lab()
			off := lab.offset(x, y)
			lab.Pix[off] = cl
			lab.Pix[off+1] = ca
			lab.Pix[off+2] = cb
		}
	}
	return lab
}

// seedCenters places initial cluster centers on a regular grid, nudging
// each seed to the lowest-gradient pixel in its 3x3 neighborhood so seeds
// avoid sitting on edges.
func seedCenters(lab *labImage, step int) []center {
	w, h := lab.W, lab.H

	var centers []center
	for cy := step / 2; cy < h; cy += step {
		for cx := step / 2; cx < w; cx += step {
			lx, ly := cx, cy
			minGrad := math.MaxFloat64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := cx+dx, cy+dy
					if nx < 0 || ny < 0 || nx >= w-1 || ny >= h-1 {
						continue
					}
					down := lab.Pix[lab.offset(nx, ny+1)]
					right := lab.Pix[lab.offset(nx+1, ny)]
					here := lab.Pix[lab.offset(nx, ny)]
					grad := math.Abs(down-here) + math.Abs(right-here)
					if grad < minGrad {
						minGrad = grad
						lx, ly = nx, ny
					}
				}
			}

			off := lab.offset(lx, ly)
			centers = append(centers, center{
				l: lab.Pix[off], a: lab.Pix[off+1], b: lab.Pix[off+2],
				cx: float64(lx), cy: float64(ly),
			})
		}
	}

	if len(centers) == 0 {
		// Image smaller than a single step: one superpixel covering it all.
		off := lab.offset(w/2, h/2)
		centers = append(centers, center{
			l: lab.Pix[off], a: lab.Pix[off+1], b: lab.Pix[off+2],
			cx: float64(w / 2), cy: float64(h / 2),
		})
	}

	return centers
}

// assignAndUpdate runs the SLIC assignment/update iterations and returns
// the per-pixel cluster indices. Each center only competes for pixels in a
// 2*step window around it, which is what makes SLIC linear in image size.
func assignAndUpdate(lab *labImage, centers []center, step int, opts Options) []int {
	w, h := lab.W, lab.H
	nc := opts.Compactness
	ns := float64(step)

	clusters := make([]int, w*h)
	distances := make([]float64, w*h)

	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range distances {
			distances[i] = math.MaxFloat64
			clusters[i] = -1
		}

		for ci, c := range centers {
			x0 := clampInt(int(c.cx)-step, 0, w)
			x1 := clampInt(int(c.cx)+step, 0, w)
			y0 := clampInt(int(c.cy)-step, 0, h)
			y1 := clampInt(int(c.cy)+step, 0, h)

			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					off := lab.offset(x, y)
					dL := lab.Pix[off] - c.l
					dA := lab.Pix[off+1] - c.a
					dB := lab.Pix[off+2] - c.b
					dx := float64(x) - c.cx
					dy := float64(y) - c.cy

					dc := math.Sqrt(dL*dL + dA*dA + dB*dB)
					ds := math.Sqrt(dx*dx + dy*dy)
					d := math.Sqrt((dc/nc)*(dc/nc) + (ds/ns)*(ds/ns))

					idx := y*w + x
					if d < distances[idx] {
						distances[idx] = d
						clusters[idx] = ci
					}
				}
			}
		}

		// Recompute centers as the mean of their assigned pixels.
		type acc struct {
			l, a, b, sx, sy float64
			n               int
		}
		sums := make([]acc, len(centers))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				ci := clusters[y*w+x]
				if ci < 0 {
					continue
				}
				off := lab.offset(x, y)
				sums[ci].l += lab.Pix[off]
				sums[ci].a += lab.Pix[off+1]
				sums[ci].b += lab.Pix[off+2]
				sums[ci].sx += float64(x)
				sums[ci].sy += float64(y)
				sums[ci].n++
			}
		}
		for ci := range centers {
			if sums[ci].n == 0 {
				continue
			}
			n := float64(sums[ci].n)
			centers[ci] = center{
				l: sums[ci].l / n, a: sums[ci].a / n, b: sums[ci].b / n,
				cx: sums[ci].sx / n, cy: sums[ci].sy / n,
			}
		}
	}

	// Pixels outside every search window (possible on extreme aspect
	// ratios) fall back to the nearest center spatially.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if clusters[idx] >= 0 {
				continue
			}
			best, bestD := 0, math.MaxFloat64
			for ci, c := range centers {
				dx := float64(x) - c.cx
				dy := float64(y) - c.cy
				if d := dx*dx + dy*dy; d < bestD {
					bestD = d
					best = ci
				}
			}
			clusters[idx] = best
		}
	}

	return clusters
}

// enforceConnectivity relabels clusters into contiguous ids, merging
// fragments smaller than a quarter of the mean superpixel area into a
// neighboring region. SLIC assignment can leave a cluster split into
// disconnected islands; downstream code expects each id to name one region.
func enforceConnectivity(clusters []int, w, h, numCenters int) *labelmap.Grid {
	seg := labelmap.NewGrid(w, h)
	for i := range seg.Cells {
		seg.Cells[i] = -1
	}

	minSize := (w * h) / numCenters / 4
	dx4 := []int{-1, 0, 1, 0}
	dy4 := []int{0, -1, 0, 1}

	label := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			start := y*w + x
			if seg.Cells[start] != -1 {
				continue
			}

			// Flood-fill the connected component of this pixel's cluster.
			elems := make([]int, 1, 64)
			elems[0] = start
			seg.Cells[start] = label

			// Remember an adjacent already-labeled region to absorb
			// undersized fragments into.
			adjLabel := label
			for k := 0; k < 4; k++ {
				nx, ny := x+dx4[k], y+dy4[k]
				if nx >= 0 && nx < w && ny >= 0 && ny < h && seg.Cells[ny*w+nx] >= 0 && seg.Cells[ny*w+nx] != label {
					adjLabel = seg.Cells[ny*w+nx]
					break
				}
			}

			for c := 0; c < len(elems); c++ {
				cur := elems[c]
				cx, cy := cur%w, cur/w
				for k := 0; k < 4; k++ {
					nx, ny := cx+dx4[k], cy+dy4[k]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nIdx := ny*w + nx
					if seg.Cells[nIdx] == -1 && clusters[nIdx] == clusters[cur] {
						seg.Cells[nIdx] = label
						elems = append(elems, nIdx)
					}
				}
			}

			if len(elems) < minSize && adjLabel != label {
				for _, e := range elems {
					seg.Cells[e] = adjLabel
				}
				continue
			}
			label++
		}
	}

	return seg
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
