package labelmap

// Reconstruct produces a per-pixel class-label image from a superpixel
// segmentation map and a per-superpixel class code list: every cell's
// superpixel id is replaced by codes[id].
//
// The output is always written into a freshly allocated grid. Relabeling the
// segmentation in place by increasing id is only correct when class codes
// never collide with not-yet-visited superpixel ids; a fresh output buffer
// removes that hazard entirely, so codes may overlap the id range freely.
//
// The input grid is never modified. The call is pure and deterministic.
//
// Returns:
//   - *ShapeError if seg is nil, empty, or internally inconsistent
//   - *CodeRangeError if any cell holds an id outside [0, len(codes))
func Reconstruct(seg *Grid, codes []int) (*Grid, error) {
	if err := seg.check(); err != nil {
		return nil, err
	}

	out := NewGrid(seg.Width, seg.Height)
	for i, id := range seg.Cells {
		if id < 0 || id >= len(codes) {
			return nil, &CodeRangeError{
				ID:       id,
				X:        i % seg.Width,
				Y:        i / seg.Width,
				NumCodes: len(codes),
			}
		}
		out.Cells[i] = codes[id]
	}

	return out, nil
}

// Validate checks the reconstruction preconditions without allocating an
// output grid: the segmentation must be well formed and every id must index
// into codes. It returns the same error kinds as Reconstruct.
func Validate(seg *Grid, codes []int) error {
	if err := seg.check(); err != nil {
		return err
	}
	for i, id := range seg.Cells {
		if id < 0 || id >= len(codes) {
			return &CodeRangeError{
				ID:       id,
				X:        i % seg.Width,
				Y:        i / seg.Width,
				NumCodes: len(codes),
			}
		}
	}
	return nil
}

// NumSegments returns the number of superpixels referenced by a
// segmentation map, i.e. the highest id plus one. A valid class code list
// for the map must have at least this many entries.
func NumSegments(seg *Grid) (int, error) {
	if err := seg.check(); err != nil {
		return 0, err
	}

	maxID := 0
	for _, id := range seg.Cells {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1, nil
}
