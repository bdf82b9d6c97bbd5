//go:build opencv

package codec

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"sobel-bench/internal/models"
)

func init() {
	backends["opencv"] = func(log Logger) Codec { return NewOpenCV(log) }
}

// OpenCV decodes and encodes through gocv. It accepts every format the
// linked OpenCV build supports.
type OpenCV struct {
	logger Logger
}

func NewOpenCV(log Logger) *OpenCV {
	return &OpenCV{logger: log}
}

func (o *OpenCV) Name() string { return "opencv" }

func (o *OpenCV) Decode(r io.Reader) (*models.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadAnyColor)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image with OpenCV: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, "", fmt.Errorf("OpenCV produced an empty Mat")
	}

	var raster *models.Image
	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		raster = &models.Image{Width: mat.Cols(), Height: mat.Rows(), Channels: 1, Pix: mat.ToBytes()}
	case gocv.MatTypeCV8UC3:
		rgb := gocv.NewMat()
		defer rgb.Close()
		gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)
		raster = &models.Image{Width: rgb.Cols(), Height: rgb.Rows(), Channels: 3, Pix: rgb.ToBytes()}
	default:
		return nil, "", fmt.Errorf("unsupported MatType %d after decode", int(mat.Type()))
	}

	o.logger.Debug("OpenCVCodec", "image decoded", map[string]interface{}{
		"width":    raster.Width,
		"height":   raster.Height,
		"channels": raster.Channels,
	})
	return raster, "opencv", nil
}

func (o *OpenCV) Encode(w io.Writer, img *models.Image, format string) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("no valid image data to save: %w", err)
	}

	var matType gocv.MatType
	switch img.Channels {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType = gocv.MatTypeCV8UC3
	default:
		return fmt.Errorf("unsupported channel count: %d", img.Channels)
	}

	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, matType, img.Pix)
	if err != nil {
		return fmt.Errorf("Mat creation failed: %w", err)
	}
	defer mat.Close()

	out := mat
	if img.Channels == 3 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
		out = bgr
	}

	ext := gocv.FileExt("." + format)
	if format == "jpeg" {
		ext = gocv.JPEGFileExt
	}
	buf, err := gocv.IMEncode(ext, out)
	if err != nil {
		return fmt.Errorf("OpenCV encode to %s failed: %w", format, err)
	}
	defer buf.Close()

	_, err = w.Write(buf.GetBytes())
	return err
}
