package benchmark

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"sobel-bench/internal/models"
)

// RunInfo describes the benchmark setup for the report header.
type RunInfo struct {
	Input    *models.Image
	Source   string
	Operator string
	Policy   string
	Repeat   int
}

// Reporter writes one line per worker count: worker count and elapsed
// milliseconds always, plus speedup, verification and errors when known.
// Format "text" gives key=value lines, "json" one object per line.
type Reporter struct {
	mu     sync.Mutex
	out    *bufio.Writer
	json   zerolog.Logger
	format string
}

func NewReporter(w io.Writer, format string) *Reporter {
	buf := bufio.NewWriter(w)
	return &Reporter{
		out:    buf,
		json:   zerolog.New(buf),
		format: format,
	}
}

func (r *Reporter) Header(host Host, info RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.format == "json" {
		r.json.Log().
			Str("kind", "host").
			Str("goos", host.GOOS).
			Str("goarch", host.GOARCH).
			Str("go", host.GoVersion).
			Int("cpus", host.NumCPU).
			Int("gomaxprocs", host.GOMAXPROCS).
			Strs("features", host.Features).
			Send()
		r.json.Log().
			Str("kind", "input").
			Str("source", info.Source).
			Int("width", info.Input.Width).
			Int("height", info.Input.Height).
			Int("channels", info.Input.Channels).
			Str("operator", info.Operator).
			Str("policy", info.Policy).
			Int("repeat", info.Repeat).
			Send()
		return r.out.Flush()
	}

	fmt.Fprintf(r.out, "# host goos=%s goarch=%s go=%s cpus=%d gomaxprocs=%d features=%s\n",
		host.GOOS, host.GOARCH, host.GoVersion, host.NumCPU, host.GOMAXPROCS, featureList(host.Features))
	fmt.Fprintf(r.out, "# input source=%s size=%s operator=%s policy=%s repeat=%d\n",
		info.Source, info.Input, info.Operator, info.Policy, info.Repeat)
	return r.out.Flush()
}

// Result reports res. reference is the duration speedup is measured against;
// zero omits the speedup.
func (r *Reporter) Result(res Result, reference Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	speedup := 0.0
	if reference.OK() && res.OK() && res.Duration > 0 {
		speedup = float64(reference.Duration) / float64(res.Duration)
	}

	if r.format == "json" {
		event := r.json.Log().
			Str("kind", "result").
			Int("workers", res.Workers).
			Float64("elapsed_ms", Milliseconds(res.Duration)).
			Float64("min_ms", Milliseconds(res.Min())).
			Int("runs", len(res.Samples)).
			Str("run_id", res.RunID.String())
		if speedup > 0 {
			event = event.Float64("speedup", speedup)
		}
		if res.Verified {
			event = event.Bool("matches_baseline", res.MatchesBaseline)
		}
		if res.Err != nil {
			event = event.Str("status", "error").AnErr("error", res.Err)
		} else {
			event = event.Str("status", "ok")
		}
		event.Send()
		return r.out.Flush()
	}

	line := []string{
		fmt.Sprintf("workers=%d", res.Workers),
		fmt.Sprintf("elapsed_ms=%.3f", Milliseconds(res.Duration)),
	}
	if len(res.Samples) > 1 {
		line = append(line, fmt.Sprintf("min_ms=%.3f", Milliseconds(res.Min())), fmt.Sprintf("runs=%d", len(res.Samples)))
	}
	if speedup > 0 {
		line = append(line, fmt.Sprintf("speedup=%.2fx", speedup))
	}
	if res.Verified {
		line = append(line, "verified="+lo.Ternary(res.MatchesBaseline, "ok", "mismatch"))
	}
	if res.Err != nil {
		line = append(line, "status=error", fmt.Sprintf("error=%q", res.Err.Error()))
	} else {
		line = append(line, "status=ok")
	}
	fmt.Fprintln(r.out, strings.Join(line, " "))
	return r.out.Flush()
}

// Summary reports the fastest successful worker count and the failures.
func (r *Reporter) Summary(results []Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok := lo.Filter(results, func(res Result, _ int) bool { return res.OK() })
	failures := len(results) - len(ok)

	if r.format == "json" {
		event := r.json.Log().Str("kind", "summary").Int("failures", failures)
		if len(ok) > 0 {
			fastest := Fastest(ok)
			event = event.Int("fastest_workers", fastest.Workers).
				Float64("fastest_ms", Milliseconds(fastest.Duration))
		}
		event.Send()
		return r.out.Flush()
	}

	if len(ok) == 0 {
		fmt.Fprintf(r.out, "# summary failures=%d\n", failures)
	} else {
		fastest := Fastest(ok)
		fmt.Fprintf(r.out, "# summary fastest_workers=%d fastest_ms=%.3f failures=%d\n",
			fastest.Workers, Milliseconds(fastest.Duration), failures)
	}
	return r.out.Flush()
}

// Shutdown flushes anything still buffered.
func (r *Reporter) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out.Flush()
}

// Reference picks the result speedups are relative to: the single-worker
// run when it succeeded, otherwise the first successful run.
func Reference(results []Result) Result {
	if single, found := lo.Find(results, func(res Result) bool { return res.OK() && res.Workers == 1 }); found {
		return single
	}
	first, _ := lo.Find(results, func(res Result) bool { return res.OK() })
	return first
}

// Fastest returns the successful result with the lowest duration.
func Fastest(results []Result) Result {
	ok := lo.Filter(results, func(res Result, _ int) bool { return res.OK() })
	return lo.MinBy(ok, func(a, b Result) bool { return a.Duration < b.Duration })
}

func featureList(features []string) string {
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ",")
}
