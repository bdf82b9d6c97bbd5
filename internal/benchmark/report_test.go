package benchmark

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sobel-bench/internal/models"
)

func sampleResults() []Result {
	return []Result{
		{Workers: 1, Duration: 40 * time.Millisecond, Samples: []time.Duration{40 * time.Millisecond}, Verified: true, MatchesBaseline: true},
		{Workers: 0, Duration: time.Microsecond, Samples: []time.Duration{time.Microsecond}, Err: errors.New("invalid configuration: workers: must be at least 1, got 0")},
		{Workers: 4, Duration: 10 * time.Millisecond, Samples: []time.Duration{12 * time.Millisecond, 8 * time.Millisecond}, Verified: true, MatchesBaseline: true},
	}
}

func TestTextReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, "text")
	results := sampleResults()

	require.NoError(t, r.Header(Host{GOOS: "linux", GOARCH: "amd64", NumCPU: 8, GOMAXPROCS: 8}, RunInfo{
		Input: models.NewImage(64, 32, 1), Source: "step:64x32", Operator: "sobel", Policy: "spread", Repeat: 2,
	}))
	ref := Reference(results)
	for _, res := range results {
		require.NoError(t, r.Result(res, ref))
	}
	require.NoError(t, r.Summary(results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "# host goos=linux goarch=amd64 go= cpus=8 gomaxprocs=8 features=none", lines[0])
	assert.Contains(t, lines[1], "size=64x32x1")
	assert.Equal(t, "workers=1 elapsed_ms=40.000 speedup=1.00x verified=ok status=ok", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "workers=0 elapsed_ms=0.001 status=error error="), lines[3])
	assert.Equal(t, "workers=4 elapsed_ms=10.000 min_ms=8.000 runs=2 speedup=4.00x verified=ok status=ok", lines[4])
	assert.Equal(t, "# summary fastest_workers=4 fastest_ms=10.000 failures=1", lines[5])
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, "json")
	results := sampleResults()

	ref := Reference(results)
	for _, res := range results {
		require.NoError(t, r.Result(res, ref))
	}
	require.NoError(t, r.Summary(results))

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), scanner.Text())
		entries = append(entries, entry)
	}
	require.Len(t, entries, 4)

	for _, entry := range entries[:3] {
		assert.Equal(t, "result", entry["kind"])
		assert.Contains(t, entry, "workers")
		assert.Contains(t, entry, "elapsed_ms")
	}
	assert.EqualValues(t, 4, entries[2]["workers"])
	assert.EqualValues(t, 4, entries[2]["speedup"])
	assert.Equal(t, "error", entries[1]["status"])
	assert.Equal(t, "summary", entries[3]["kind"])
	assert.EqualValues(t, 4, entries[3]["fastest_workers"])
	assert.EqualValues(t, 1, entries[3]["failures"])
}

func TestReferenceFallsBackToFirstSuccess(t *testing.T) {
	results := []Result{
		{Workers: 1, Err: errors.New("failed")},
		{Workers: 2, Duration: time.Millisecond},
		{Workers: 4, Duration: 2 * time.Millisecond},
	}
	assert.Equal(t, 2, Reference(results).Workers)
	assert.Equal(t, 2, Fastest(results).Workers)
}

func TestSummaryWithoutSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, "text")
	require.NoError(t, r.Summary([]Result{{Workers: 0, Err: errors.New("bad")}}))
	assert.Equal(t, "# summary failures=1\n", buf.String())
}
