// Package partition splits the interior rows of an image into contiguous
// blocks, one per worker.
package partition

import (
	"fmt"
	"strings"

	"sobel-bench/internal/models"
)

// Policy decides which workers receive the rows left over when the interior
// row count is not divisible by the worker count.
type Policy int

const (
	// SpreadRemainder gives one extra row to each of the first R mod N workers.
	SpreadRemainder Policy = iota
	// LastTakesRemainder gives every leftover row to the last worker.
	LastTakesRemainder
)

func (p Policy) String() string {
	switch p {
	case SpreadRemainder:
		return "spread"
	case LastTakesRemainder:
		return "last"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "spread":
		return SpreadRemainder, nil
	case "last":
		return LastTakesRemainder, nil
	default:
		return 0, fmt.Errorf("unknown partition policy %q (want spread or last)", s)
	}
}

// Rows divides the interior rows 1..height-2 of an image into exactly n
// contiguous, disjoint ranges in ascending order. Their lengths sum to the
// interior row count. When there are fewer interior rows than workers some
// ranges are empty: under SpreadRemainder the trailing ones sit at the
// bottom border row, under LastTakesRemainder the leading ones sit at row 1.
func Rows(height, n int, policy Policy) ([]models.RowRange, error) {
	if n < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", n)
	}
	if policy != SpreadRemainder && policy != LastTakesRemainder {
		return nil, fmt.Errorf("unsupported partition policy %s", policy)
	}

	interior := max(height-2, 0)
	base, extra := interior/n, interior%n

	ranges := make([]models.RowRange, n)
	start := 1
	for i := range n {
		size := base
		switch policy {
		case SpreadRemainder:
			if i < extra {
				size++
			}
		case LastTakesRemainder:
			if i == n-1 {
				size += extra
			}
		}
		ranges[i] = models.RowRange{Start: start, End: start + size}
		start += size
	}
	return ranges, nil
}
