package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sobel-bench/internal/codec"
	"sobel-bench/internal/config"
	"sobel-bench/internal/logger"
)

func syntheticConfig(t *testing.T, workers ...int) config.Config {
	cfg := config.Default()
	cfg.Synthetic = "checker:40x30"
	cfg.WorkerCounts = workers
	cfg.LogLevel = "error"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestApplyFlagsOverridesOnlyChangedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerFlags(fs)
	require.NoError(t, fs.Parse([]string{"--workers=1,3", "--policy=last", "--verify=false"}))

	cfg := config.Default()
	cfg.Operator = "prewitt"
	cfg.Repeat = 4
	require.NoError(t, applyFlags(fs, &cfg))

	assert.Equal(t, []int{1, 3}, cfg.WorkerCounts)
	assert.Equal(t, "last", cfg.Policy)
	assert.False(t, cfg.Verify)
	assert.Equal(t, "prewitt", cfg.Operator)
	assert.Equal(t, 4, cfg.Repeat)
}

func TestRunSyntheticReportsEveryCount(t *testing.T) {
	cfg := syntheticConfig(t, 1, 2, 4)
	cfg.Output = filepath.Join(t.TempDir(), "edges.png")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out, logger.NoOp{}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "# host "))
	assert.Contains(t, lines[1], "source=synthetic:checker:40x30 size=40x30x1 operator=sobel policy=spread")
	for i, workers := range []string{"workers=1 ", "workers=2 ", "workers=4 "} {
		assert.True(t, strings.HasPrefix(lines[2+i], workers), lines[2+i])
		assert.Contains(t, lines[2+i], "verified=ok status=ok")
	}
	assert.Contains(t, lines[5], "failures=0")

	saved, err := codec.Load(codec.NewStd(logger.NoOp{}), cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, 40, saved.Width)
	assert.Equal(t, 30, saved.Height)
}

func TestRunReportsFailedCounts(t *testing.T) {
	cfg := syntheticConfig(t, 1, 0, 2)

	var out bytes.Buffer
	err := run(context.Background(), cfg, &out, logger.NoOp{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 worker counts failed")

	assert.Contains(t, out.String(), "workers=0 ")
	assert.Contains(t, out.String(), "status=error")
	assert.Contains(t, out.String(), "workers=2 ")
}

func TestRunMissingInputIsDecodeError(t *testing.T) {
	cfg := config.Default()
	cfg.Input = filepath.Join(t.TempDir(), "missing.png")

	var out bytes.Buffer
	err := run(context.Background(), cfg, &out, logger.NoOp{})
	require.ErrorIs(t, err, codec.ErrDecode)
	assert.Empty(t, out.String())
}

func TestRootCommandRejectsInvalidConfiguration(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--workers=1", "--format=xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of input or synthetic")
	assert.Contains(t, err.Error(), "unknown report format")
}
