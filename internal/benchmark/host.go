package benchmark

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Host describes the machine a benchmark ran on.
type Host struct {
	GOOS       string
	GOARCH     string
	GoVersion  string
	NumCPU     int
	GOMAXPROCS int
	Features   []string
}

func DescribeHost() Host {
	return Host{
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		Features:   cpuFeatures(),
	}
}

func cpuFeatures() []string {
	flags := []struct {
		name string
		on   bool
	}{
		{"sse4.2", cpu.X86.HasSSE42},
		{"avx", cpu.X86.HasAVX},
		{"avx2", cpu.X86.HasAVX2},
		{"avx512f", cpu.X86.HasAVX512F},
		{"asimd", cpu.ARM64.HasASIMD},
		{"sve", cpu.ARM64.HasSVE},
	}

	var features []string
	for _, f := range flags {
		if f.on {
			features = append(features, f.name)
		}
	}
	return features
}
