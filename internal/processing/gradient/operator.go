// Package gradient evaluates 3x3 directional derivative operators on a
// single neighbourhood of intensity samples.
package gradient

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kernel is a 3x3 convolution kernel, row-major from the top-left sample.
type Kernel [3][3]int

// Window holds the 3x3 intensity neighbourhood of one pixel, row-major.
type Window [3][3]int

// Gradient is the result of applying an Operator to a Window.
type Gradient struct {
	Gx        int
	Gy        int
	Magnitude uint8
}

// Operator pairs the horizontal and vertical kernels. It is a value type:
// callers hold copies, so the kernels cannot change under a running worker.
type Operator struct {
	Name string
	X    Kernel
	Y    Kernel
}

func Sobel() Operator {
	return Operator{
		Name: "sobel",
		X:    Kernel{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}},
		Y:    Kernel{{1, 2, 1}, {0, 0, 0}, {-1, -2, -1}},
	}
}

func Prewitt() Operator {
	return Operator{
		Name: "prewitt",
		X:    Kernel{{-1, 0, 1}, {-1, 0, 1}, {-1, 0, 1}},
		Y:    Kernel{{1, 1, 1}, {0, 0, 0}, {-1, -1, -1}},
	}
}

func Scharr() Operator {
	return Operator{
		Name: "scharr",
		X:    Kernel{{-3, 0, 3}, {-10, 0, 10}, {-3, 0, 3}},
		Y:    Kernel{{3, 10, 3}, {0, 0, 0}, {-3, -10, -3}},
	}
}

var operators = map[string]func() Operator{
	"sobel":   Sobel,
	"prewitt": Prewitt,
	"scharr":  Scharr,
}

// Lookup returns the operator registered under name (case-insensitive).
func Lookup(name string) (Operator, error) {
	ctor, ok := operators[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Operator{}, fmt.Errorf("unknown gradient operator %q (available: %s)",
			name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply correlates both kernels with w and combines them into a magnitude
// rounded to the nearest integer and clamped to [0, 255].
func (op Operator) Apply(w *Window) Gradient {
	var gx, gy int
	for k := 0; k < 3; k++ {
		for l := 0; l < 3; l++ {
			v := w[k][l]
			gx += v * op.X[k][l]
			gy += v * op.Y[k][l]
		}
	}
	return Gradient{Gx: gx, Gy: gy, Magnitude: Magnitude(gx, gy)}
}

func Magnitude(gx, gy int) uint8 {
	m := math.Round(math.Sqrt(float64(gx*gx + gy*gy)))
	if m > 255 {
		return 255
	}
	return uint8(m)
}
