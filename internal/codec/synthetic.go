package codec

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"sobel-bench/internal/models"
)

type generator func(img *models.Image)

var synthetics = map[string]generator{
	// Left half 0, right half 255.
	"step": func(img *models.Image) {
		fill(img, func(r, c int) byte {
			if c >= img.Width/2 {
				return 255
			}
			return 0
		})
	},
	// Horizontal ramp from 0 to 255.
	"gradient": func(img *models.Image) {
		fill(img, func(r, c int) byte {
			if img.Width < 2 {
				return 0
			}
			return byte(c * 255 / (img.Width - 1))
		})
	},
	// 8x8 checkerboard.
	"checker": func(img *models.Image) {
		fill(img, func(r, c int) byte {
			if (r/8+c/8)%2 == 0 {
				return 0
			}
			return 255
		})
	},
	// Seeded uniform noise, independent per channel.
	"noise": func(img *models.Image) {
		rng := rand.New(rand.NewPCG(uint64(img.Width), uint64(img.Height)))
		for i := range img.Pix {
			img.Pix[i] = byte(rng.UintN(256))
		}
	},
}

func fill(img *models.Image, value func(r, c int) byte) {
	for r := 0; r < img.Height; r++ {
		for c := 0; c < img.Width; c++ {
			v := value(r, c)
			for ch := 0; ch < img.Channels; ch++ {
				img.Set(r, c, ch, v)
			}
		}
	}
}

func SyntheticKinds() []string {
	kinds := make([]string, 0, len(synthetics))
	for kind := range synthetics {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Synthetic builds a deterministic generated image.
func Synthetic(kind string, width, height, channels int) (*models.Image, error) {
	gen, ok := synthetics[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown synthetic image %q (available: %s)", kind, strings.Join(SyntheticKinds(), ", "))
	}
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid synthetic dimensions %dx%dx%d", width, height, channels)
	}
	img := models.NewImage(width, height, channels)
	gen(img)
	return img, nil
}

// ParseSynthetic reads "kind:WxH" or "kind:WxHxC" (C defaults to 1).
func ParseSynthetic(desc string) (*models.Image, error) {
	kind, dims, ok := strings.Cut(desc, ":")
	if !ok {
		return nil, fmt.Errorf("synthetic image %q must look like kind:WxH[xC]", desc)
	}

	parts := strings.Split(strings.ToLower(dims), "x")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("synthetic image %q must look like kind:WxH[xC]", desc)
	}
	values := []int{0, 0, 1}
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("synthetic image %q: %w", desc, err)
		}
		values[i] = v
	}
	return Synthetic(kind, values[0], values[1], values[2])
}
