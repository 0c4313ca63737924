package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/loader"
	"github.com/born-ml/streamnet/internal/tensor"
)

var acousticGraph = filepath.Join("..", "..", "internal", "graph", "testdata", "acoustic.json")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// weights writes deterministic acoustic-graph weights and returns their path.
func weights(t *testing.T) string {
	t.Helper()
	desc, err := graph.LoadDescription(acousticGraph)
	require.NoError(t, err)
	m, err := graph.Build(desc, cpu.New())
	require.NoError(t, err)
	k := 0
	for _, p := range m.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = float32(0.2 * math.Sin(0.37*float64(k)+0.5))
			k++
		}
	}
	path := filepath.Join(t.TempDir(), "acoustic.safetensors")
	require.NoError(t, loader.SaveFrom(path, m, tensor.Float32))
	return path
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "describe", "--graph", acousticGraph)
	require.NoError(t, err)
	for _, want := range []string{"Residual-0", "Conv1d-0", "GroupNorm-0", "Linear-0", "weight[10 32]", "13,364 parameters in 8 tensors"} {
		assert.Contains(t, out, want)
	}

	out, err = execute(t, "describe", "--graph", acousticGraph, "--as", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Sequential")

	_, err = execute(t, "describe", "--graph", acousticGraph, "--as", "toml")
	assert.Error(t, err)

	_, err = execute(t, "describe")
	assert.Error(t, err, "no graph")
}

func TestRunAndExport(t *testing.T) {
	dir := t.TempDir()
	w := weights(t)

	safetensorsOut := filepath.Join(dir, "safetensors.txt")
	_, err := execute(t, "run", "--graph", acousticGraph, "--weights", w,
		"--output", safetensorsOut, "--chunk-frames", "7", "--no-progress")
	require.NoError(t, err)
	values := lines(t, safetensorsOut)
	assert.Len(t, values, 25*10)

	artifact := filepath.Join(dir, "acoustic.born")
	_, err = execute(t, "export", "--graph", acousticGraph, "--weights", w,
		"--export", artifact, "--dtype", "float32", "--metadata", "source=test")
	require.NoError(t, err)

	artifactOut := filepath.Join(dir, "artifact.txt")
	_, err = execute(t, "run", "--weights", artifact, "--output", artifactOut, "--no-progress")
	require.NoError(t, err)
	assert.Equal(t, values, lines(t, artifactOut))

	startOut := filepath.Join(dir, "start.txt")
	_, err = execute(t, "run", "--weights", artifact, "--output", startOut, "--start", "--no-progress")
	require.NoError(t, err)
	assert.Len(t, lines(t, startOut), 29*10)

	half := filepath.Join(dir, "half.safetensors")
	_, err = execute(t, "export", "--graph", acousticGraph, "--weights", w, "--export", half)
	require.NoError(t, err)
	r, err := loader.NewSafeTensorsReader(half)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	info, err := r.TensorInfo("Linear-0.weight")
	require.NoError(t, err)
	assert.Equal(t, loader.SafeTensorsF16, info.DType)
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	abs, err := filepath.Abs(acousticGraph)
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"description: "+abs+"\nweights: "+weights(t)+"\noutput: out.txt\nchunkFrames: 5\nrampFrames: 20\n"), 0o600))

	_, err = execute(t, "run", "--config", cfgPath, "--no-progress")
	require.NoError(t, err)
	// Conv1d-0 with right padding: (20+1-5)/2+1 = 9 frames; the residual yields 7.
	assert.Len(t, lines(t, filepath.Join(dir, "out.txt")), 7*10)

	_, err = execute(t, "run", "--config", cfgPath, "--chunk-frames", "0", "--no-progress")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "streamnet "+version))
}
