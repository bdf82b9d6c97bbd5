package models

import (
	"bytes"
	"fmt"
)

// Image is a raster of Width*Height pixels with Channels interleaved 8-bit
// samples per pixel, stored row-major.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewImage allocates a zero-filled image
func NewImage(width, height, channels int) *Image {
	if width < 0 || height < 0 || channels < 1 {
		return &Image{Channels: max(channels, 1)}
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Offset returns the index of sample ch of pixel (r, c) in Pix.
func (img *Image) Offset(r, c, ch int) int {
	return (r*img.Width+c)*img.Channels + ch
}

func (img *Image) At(r, c, ch int) byte {
	return img.Pix[img.Offset(r, c, ch)]
}

func (img *Image) Set(r, c, ch int, v byte) {
	img.Pix[img.Offset(r, c, ch)] = v
}

// Validate checks that the dimensions are non-negative and that the buffer
// length matches them.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("image is nil")
	}
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("invalid dimensions %dx%d", img.Width, img.Height)
	}
	if img.Channels < 1 {
		return fmt.Errorf("invalid channel count %d", img.Channels)
	}
	if want := img.Width * img.Height * img.Channels; len(img.Pix) != want {
		return fmt.Errorf("buffer length %d does not match %dx%dx%d (%d)",
			len(img.Pix), img.Width, img.Height, img.Channels, want)
	}
	return nil
}

// InteriorRows is the number of rows with a full 3x3 neighbourhood.
func (img *Image) InteriorRows() int {
	return max(img.Height-2, 0)
}

func (img *Image) Clone() *Image {
	clone := &Image{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		Pix:      make([]byte, len(img.Pix)),
	}
	copy(clone.Pix, img.Pix)
	return clone
}

// SameLayout reports whether both images share width, height and channels.
func (img *Image) SameLayout(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height && img.Channels == other.Channels
}

// Equal compares layout and every sample.
func (img *Image) Equal(other *Image) bool {
	if img == nil || other == nil {
		return img == other
	}
	return img.SameLayout(other) && bytes.Equal(img.Pix, other.Pix)
}

func (img *Image) String() string {
	return fmt.Sprintf("%dx%dx%d", img.Width, img.Height, img.Channels)
}
