package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sobel-bench/internal/models"
)

func TestRowsCoverInteriorExactlyOnce(t *testing.T) {
	for _, policy := range []Policy{SpreadRemainder, LastTakesRemainder} {
		for height := 0; height <= 40; height++ {
			for n := 1; n <= 36; n++ {
				ranges, err := Rows(height, n, policy)
				require.NoError(t, err)
				require.Len(t, ranges, n)

				interior := max(height-2, 0)
				seen := make([]int, height)
				total := 0
				next := 1
				for _, r := range ranges {
					require.Equal(t, next, r.Start, "%s h=%d n=%d: ranges must be contiguous", policy, height, n)
					require.LessOrEqual(t, r.Start, r.End)
					next = r.End
					total += r.Len()
					for row := r.Start; row < r.End; row++ {
						require.True(t, row >= 1 && row <= height-2, "%s h=%d n=%d: row %d is a border row", policy, height, n, row)
						seen[row]++
					}
				}
				assert.Equal(t, interior, total, "%s h=%d n=%d", policy, height, n)
				for row := 1; row <= height-2; row++ {
					assert.Equal(t, 1, seen[row], "%s h=%d n=%d row %d", policy, height, n, row)
				}
				if interior >= n && policy == SpreadRemainder {
					for _, r := range ranges {
						assert.False(t, r.Empty(), "h=%d n=%d", height, n)
					}
				}
			}
		}
	}
}

func TestRowsNonDivisible(t *testing.T) {
	// 10 interior rows over 4 workers: base 2, remainder 2.
	spread, err := Rows(12, 4, SpreadRemainder)
	require.NoError(t, err)
	assert.Equal(t, []models.RowRange{
		{Start: 1, End: 4},
		{Start: 4, End: 7},
		{Start: 7, End: 9},
		{Start: 9, End: 11},
	}, spread)

	last, err := Rows(12, 4, LastTakesRemainder)
	require.NoError(t, err)
	assert.Equal(t, []models.RowRange{
		{Start: 1, End: 3},
		{Start: 3, End: 5},
		{Start: 5, End: 7},
		{Start: 7, End: 11},
	}, last)
}

func TestRowsFewerRowsThanWorkers(t *testing.T) {
	// 2 interior rows, 4 workers.
	spread, err := Rows(4, 4, SpreadRemainder)
	require.NoError(t, err)
	assert.Equal(t, []models.RowRange{
		{Start: 1, End: 2},
		{Start: 2, End: 3},
		{Start: 3, End: 3},
		{Start: 3, End: 3},
	}, spread)

	last, err := Rows(4, 4, LastTakesRemainder)
	require.NoError(t, err)
	assert.Equal(t, []models.RowRange{
		{Start: 1, End: 1},
		{Start: 1, End: 1},
		{Start: 1, End: 1},
		{Start: 1, End: 3},
	}, last)
}

func TestRowsNoInterior(t *testing.T) {
	ranges, err := Rows(2, 3, SpreadRemainder)
	require.NoError(t, err)
	for _, r := range ranges {
		assert.True(t, r.Empty())
	}
}

func TestRowsRejectsBadInput(t *testing.T) {
	_, err := Rows(10, 0, SpreadRemainder)
	assert.Error(t, err)
	_, err = Rows(10, -3, SpreadRemainder)
	assert.Error(t, err)
	_, err = Rows(10, 2, Policy(7))
	assert.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, SpreadRemainder, p)

	p, err = ParsePolicy("LAST")
	require.NoError(t, err)
	assert.Equal(t, LastTakesRemainder, p)
	assert.Equal(t, "last", p.String())

	_, err = ParsePolicy("roundrobin")
	assert.Error(t, err)
}
