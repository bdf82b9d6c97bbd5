package models

import (
	"fmt"
	"slices"
)

// RowRange is the half-open row interval [Start, End).
type RowRange struct {
	Start int
	End   int
}

func (r RowRange) Len() int {
	return max(r.End-r.Start, 0)
}

func (r RowRange) Empty() bool {
	return r.End <= r.Start
}

func (r RowRange) Contains(row int) bool {
	return row >= r.Start && row < r.End
}

func (r RowRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Source is a read-only view of an input image shared by all workers of a run.
type Source struct {
	img *Image
}

func NewSource(img *Image) Source {
	return Source{img: img}
}

func (s Source) Width() int    { return s.img.Width }
func (s Source) Height() int   { return s.img.Height }
func (s Source) Channels() int { return s.img.Channels }

func (s Source) At(r, c, ch int) byte {
	return s.img.Pix[s.img.Offset(r, c, ch)]
}

// Intensity returns the single gradient sample for pixel (r, c). One and two
// channel images use channel 0; three or more channels use BT.601 luma over
// the first three.
func (s Source) Intensity(r, c int) int {
	off := (r*s.img.Width + c) * s.img.Channels
	p := s.img.Pix
	if s.img.Channels < 3 {
		return int(p[off])
	}
	return (299*int(p[off]) + 587*int(p[off+1]) + 114*int(p[off+2]) + 500) / 1000
}

// Band is an exclusive writable view over the rows of one RowRange. Its
// buffer is a capacity-limited sub-slice of the output, so a write to a row
// outside the range panics instead of reaching a neighbouring band.
type Band struct {
	rows     RowRange
	width    int
	channels int
	pix      []byte
}

func (b Band) Rows() RowRange { return b.rows }

// SetPixel writes v to every channel of pixel (r, c); r is an absolute row.
func (b Band) SetPixel(r, c int, v byte) {
	if !b.rows.Contains(r) || c < 0 || c >= b.width {
		panic(fmt.Sprintf("pixel (%d,%d) outside band %s of width %d", r, c, b.rows, b.width))
	}
	off := ((r-b.rows.Start)*b.width + c) * b.channels
	px := b.pix[off : off+b.channels : off+b.channels]
	for ch := range px {
		px[ch] = v
	}
}

// Bands carves out one exclusive view of out per range. Ranges must lie in
// [0, Height] and non-empty ranges must not overlap.
func Bands(out *Image, ranges []RowRange) ([]Band, error) {
	if err := out.Validate(); err != nil {
		return nil, err
	}

	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b RowRange) int { return a.Start - b.Start })

	prevEnd := 0
	for _, r := range sorted {
		if r.Start < 0 || r.End > out.Height || r.Start > r.End {
			return nil, fmt.Errorf("row range %s outside image height %d", r, out.Height)
		}
		if r.Empty() {
			continue
		}
		if r.Start < prevEnd {
			return nil, fmt.Errorf("row range %s overlaps a previous range ending at %d", r, prevEnd)
		}
		prevEnd = r.End
	}

	stride := out.Width * out.Channels
	bands := make([]Band, len(ranges))
	for i, r := range ranges {
		lo, hi := r.Start*stride, r.End*stride
		bands[i] = Band{
			rows:     r,
			width:    out.Width,
			channels: out.Channels,
			pix:      out.Pix[lo:hi:hi],
		}
	}
	return bands, nil
}
