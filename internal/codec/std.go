package codec

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"sobel-bench/internal/models"
)

// Std decodes through image.Decode with the stdlib and golang.org/x/image
// formats registered.
type Std struct {
	logger Logger
}

func NewStd(log Logger) *Std {
	return &Std{logger: log}
}

func (s *Std) Name() string { return "std" }

func (s *Std) Decode(r io.Reader) (*models.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image with standard library: %w", err)
	}

	raster := FromImage(img)
	s.logger.Debug("StdCodec", "image decoded", map[string]interface{}{
		"format":   format,
		"width":    raster.Width,
		"height":   raster.Height,
		"channels": raster.Channels,
	})
	return raster, format, nil
}

func (s *Std) Encode(w io.Writer, img *models.Image, format string) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("no valid image data to save: %w", err)
	}

	out := ToImage(img)
	switch format {
	case "jpeg":
		return jpeg.Encode(w, out, &jpeg.Options{Quality: 95})
	case "bmp":
		return bmp.Encode(w, out)
	case "tiff":
		return tiff.Encode(w, out, &tiff.Options{Compression: tiff.Deflate})
	case "png", "":
		return png.Encode(w, out)
	default:
		s.logger.Warning("StdCodec", "format not supported, using PNG", map[string]interface{}{
			"requested_format": format,
		})
		return png.Encode(w, out)
	}
}

// FromImage converts img into a 1-channel raster for grayscale models and a
// 3-channel RGB raster otherwise. Alpha is discarded.
func FromImage(img image.Image) *models.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch typed := img.(type) {
	case *image.Gray:
		out := models.NewImage(width, height, 1)
		for y := 0; y < height; y++ {
			row := typed.Pix[y*typed.Stride : y*typed.Stride+width]
			copy(out.Pix[y*width:], row)
		}
		return out
	case *image.Gray16:
		out := models.NewImage(width, height, 1)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Pix[y*width+x] = byte(typed.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y >> 8)
			}
		}
		return out
	}

	out := models.NewImage(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := (y*width + x) * 3
			out.Pix[off] = c.R
			out.Pix[off+1] = c.G
			out.Pix[off+2] = c.B
		}
	}
	return out
}

// ToImage wraps a raster in the closest image.Image model. One and two
// channel rasters become Gray (channel 0), three and more become opaque
// NRGBA built from the first three channels.
func ToImage(img *models.Image) image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	pixels := img.Width * img.Height

	if img.Channels < 3 {
		out := image.NewGray(rect)
		for i := 0; i < pixels; i++ {
			out.Pix[i] = img.Pix[i*img.Channels]
		}
		return out
	}

	out := image.NewNRGBA(rect)
	for i := 0; i < pixels; i++ {
		src := img.Pix[i*img.Channels : i*img.Channels+3]
		dst := out.Pix[i*4 : i*4+4]
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 0xff
	}
	return out
}
