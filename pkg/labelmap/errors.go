package labelmap

import "fmt"

// ShapeError reports an empty or malformed grid input. It covers zero
// dimensions, nil grids, and cell buffers that disagree with the declared
// dimensions.
type ShapeError struct {
	// Width and Height are the offending grid dimensions.
	Width  int
	Height int

	// Reason describes what made the shape invalid.
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid grid shape %dx%d: %s", e.Width, e.Height, e.Reason)
}

// CodeRangeError reports a superpixel id with no corresponding entry in the
// class code list. It also covers negative ids, which can never index the
// list.
type CodeRangeError struct {
	// ID is the superpixel id that failed the lookup.
	ID int

	// X and Y are the coordinates of the first cell holding the id.
	X, Y int

	// NumCodes is the length of the class code list.
	NumCodes int
}

func (e *CodeRangeError) Error() string {
	return fmt.Sprintf("superpixel id %d at cell (%d,%d) has no class code (code list has %d entries)",
		e.ID, e.X, e.Y, e.NumCodes)
}
