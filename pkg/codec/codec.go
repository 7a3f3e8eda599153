// Package codec reads and writes the binary pair files that carry a
// labeled dataset: one file holding the superpixel segmentation grid of an
// image, one holding its flat per-superpixel class code sequence.
//
// Both formats are little-endian with a 4-byte magic and a version byte, so
// a truncated or foreign file fails fast instead of decoding into garbage.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"coastlabel/pkg/labelmap"
)

const (
	gridMagic  = "CLSG"
	codesMagic = "CLSC"

	formatVersion = 1

	// maxDim, maxCells, and maxCodes bound sizes read from disk so a
	// corrupt header cannot trigger an enormous allocation. The cell cap
	// binds the width*height product: two individually plausible
	// dimensions can still multiply into terabytes.
	maxDim   = 1 << 20
	maxCells = 1 << 26
	maxCodes = 1 << 26

	// readChunk is the number of cells decoded per binary.Read call, so
	// the staging buffer stays small regardless of payload size.
	readChunk = 1 << 16
)

// WriteSegmentation writes a segmentation grid to path.
//
// Layout: magic "CLSG", version byte, uint32 width, uint32 height, then
// width*height int32 cells in row-major order, all little-endian.
func WriteSegmentation(path string, seg *labelmap.Grid) error {
	if seg == nil || seg.Width <= 0 || seg.Height <= 0 {
		return fmt.Errorf("cannot write empty segmentation to %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create segmentation file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, gridMagic); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(seg.Width)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(seg.Height)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writeCells(w, seg.Cells); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return w.Flush()
}

// ReadSegmentation reads a segmentation grid written by WriteSegmentation.
func ReadSegmentation(path string) (*labelmap.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segmentation file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err := readHeader(r, gridMagic); err != nil {
		return nil, fmt.Errorf("invalid segmentation file %s: %w", path, err)
	}

	var width, height uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("invalid segmentation file %s: %w", path, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("invalid segmentation file %s: %w", path, err)
	}
	if width == 0 || height == 0 || width > maxDim || height > maxDim {
		return nil, fmt.Errorf("invalid segmentation file %s: unreasonable dimensions %dx%d",
			path, width, height)
	}
	if uint64(width)*uint64(height) > maxCells {
		return nil, fmt.Errorf("invalid segmentation file %s: %dx%d exceeds %d cells",
			path, width, height, maxCells)
	}

	g := labelmap.NewGrid(int(width), int(height))
	if err := readCells(r, g.Cells); err != nil {
		return nil, fmt.Errorf("invalid segmentation file %s: %w", path, err)
	}

	return g, nil
}

// WriteCodes writes a class code sequence to path.
//
// Layout: magic "CLSC", version byte, uint32 length, then int32 codes,
// all little-endian.
func WriteCodes(path string, codes []int) error {
	if len(codes) == 0 {
		return fmt.Errorf("cannot write empty code list to %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create code file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, codesMagic); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(codes))); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writeCells(w, codes); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return w.Flush()
}

// ReadCodes reads a class code sequence written by WriteCodes.
func ReadCodes(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open code file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if err := readHeader(r, codesMagic); err != nil {
		return nil, fmt.Errorf("invalid code file %s: %w", path, err)
	}

	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("invalid code file %s: %w", path, err)
	}
	if length == 0 || length > maxCodes {
		return nil, fmt.Errorf("invalid code file %s: unreasonable length %d", path, length)
	}

	codes := make([]int, int(length))
	if err := readCells(r, codes); err != nil {
		return nil, fmt.Errorf("invalid code file %s: %w", path, err)
	}

	return codes, nil
}

// ReadPair reads a segmentation grid and its class code list and validates
// them against each other, so every id in the grid is guaranteed to have a
// code entry.
func ReadPair(segPath, codesPath string) (*labelmap.Grid, []int, error) {
	seg, err := ReadSegmentation(segPath)
	if err != nil {
		return nil, nil, err
	}

	codes, err := ReadCodes(codesPath)
	if err != nil {
		return nil, nil, err
	}

	if err := labelmap.Validate(seg, codes); err != nil {
		return nil, nil, fmt.Errorf("pair %s / %s is inconsistent: %w", segPath, codesPath, err)
	}

	return seg, codes, nil
}

func writeHeader(w io.Writer, magic string) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	_, err := w.Write([]byte{formatVersion})
	return err
}

func readHeader(r io.Reader, magic string) error {
	buf := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("truncated header: %w", err)
	}
	if !bytes.Equal(buf[:len(magic)], []byte(magic)) {
		return fmt.Errorf("bad magic %q, want %q", buf[:len(magic)], magic)
	}
	if buf[len(magic)] != formatVersion {
		return fmt.Errorf("unsupported format version %d", buf[len(magic)])
	}
	return nil
}

func writeCells(w io.Writer, cells []int) error {
	for _, v := range cells {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("value %d does not fit in int32", v)
		}
		if err := binary.Write(w, binary.LittleEndian, int32(v)); err != nil {
			return err
		}
	}
	return nil
}

func readCells(r io.Reader, cells []int) error {
	chunk := readChunk
	if len(cells) < chunk {
		chunk = len(cells)
	}
	buf := make([]int32, chunk)
	for off := 0; off < len(cells); off += readChunk {
		n := len(cells) - off
		if n > readChunk {
			n = readChunk
		}
		if err := binary.Read(r, binary.LittleEndian, buf[:n]); err != nil {
			return fmt.Errorf("truncated payload: %w", err)
		}
		for i := 0; i < n; i++ {
			cells[off+i] = int(buf[i])
		}
	}
	return nil
}
