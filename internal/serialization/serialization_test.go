package serialization_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/serialization"
	"github.com/born-ml/streamnet/internal/tensor"
)

type backend = *cpu.CPUBackend

// weightedGraph builds the small test graph with deterministic parameters.
func weightedGraph(t *testing.T) nn.Module[backend] {
	t.Helper()
	desc := must.M1(graph.LoadDescription(filepath.Join("..", "graph", "testdata", "small.yaml")))
	m := must.M1(graph.Build(desc, cpu.New()))
	k := 0
	for _, p := range m.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = float32(k%11)/8 - 0.6
			k++
		}
	}
	return m
}

// TestExport_HalfPrecision tests the default float16 export and reload.
func TestExport_HalfPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	src := weightedGraph(t)
	opts := serialization.DefaultExportOptions()
	opts.Metadata = map[string]string{"source": "test"}
	require.NoError(t, serialization.Export(path, src, opts))

	a, err := serialization.ReadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, serialization.ModelType, a.Header.ModelType)
	assert.Equal(t, "test", a.Header.Metadata["source"])
	assert.NotZero(t, a.Flags&serialization.FlagHalfPrecision)
	assert.NotZero(t, a.Flags&serialization.FlagHasMetadata)
	assert.Equal(t, must.M1(graph.Describe(src)), a.Description)

	named := nn.NamedParameters(src)
	require.Equal(t, len(named), a.Stream.Len())
	for i, np := range named {
		assert.Equal(t, np.Name, a.Stream.Names[i])
		assert.Equal(t, "float16", a.Header.Tensors[i].DType)
		assert.InDeltaSlice(t, np.Parameter.Tensor().Data(), a.Stream.Tensors[i].AsFloat32(), 1e-3)
	}
}

// TestExport_ExplicitDType tests that the requested storage type is used,
// including float32, the zero value.
func TestExport_ExplicitDType(t *testing.T) {
	tests := []struct {
		dtype tensor.DataType
		want  string
		half  bool
	}{
		{tensor.Float32, "float32", false},
		{tensor.Float16, "float16", true},
		{tensor.BFloat16, "bfloat16", true},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.born")
			require.NoError(t, serialization.Export(path, weightedGraph(t), serialization.ExportOptions{DType: tt.dtype}))

			a, err := serialization.ReadArtifact(path)
			require.NoError(t, err)
			assert.Equal(t, tt.half, a.Flags&serialization.FlagHalfPrecision != 0)
			for _, meta := range a.Header.Tensors {
				assert.Equal(t, tt.want, meta.DType)
			}
		})
	}
}

// TestLoad_MatchesSource tests that a float32 artifact computes exactly the
// same outputs as its source graph.
func TestLoad_MatchesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	src := weightedGraph(t)
	require.NoError(t, serialization.Export(path, src, serialization.ExportOptions{DType: tensor.Float32}))

	dst, err := serialization.Load(path, cpu.New())
	require.NoError(t, err)

	x := tensor.Arange(0, 4*9, cpu.New()).Reshape(1, 4, 9)
	want := must.M1(src.Forward(x))
	got := must.M1(dst.Forward(x))
	assert.Equal(t, want.Data(), got.Data())
}

// TestReadArtifact_Corruption tests magic, version and checksum checks.
func TestReadArtifact_Corruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.born")
	require.NoError(t, serialization.Export(path, weightedGraph(t), serialization.DefaultExportOptions()))
	good, err := os.ReadFile(path)
	require.NoError(t, err)

	corrupt := func(name string, mutate func([]byte)) string {
		data := append([]byte(nil), good...)
		mutate(data)
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}

	_, err = serialization.ReadArtifact(corrupt("magic.born", func(b []byte) { b[0] = 'X' }))
	assert.ErrorIs(t, err, serialization.ErrInvalidMagic)

	_, err = serialization.ReadArtifact(corrupt("version.born", func(b []byte) { b[4] = 9 }))
	assert.ErrorIs(t, err, serialization.ErrUnsupportedVersion)

	_, err = serialization.ReadArtifact(corrupt("data.born", func(b []byte) { b[len(b)-1] ^= 0xff }))
	assert.ErrorIs(t, err, serialization.ErrChecksumMismatch)

	truncated := filepath.Join(dir, "truncated.born")
	require.NoError(t, os.WriteFile(truncated, good[:len(good)-2], 0o600))
	_, err = serialization.ReadArtifact(truncated)
	assert.ErrorIs(t, err, serialization.ErrInvalidArtifact)
}

// TestValidateTensorOffsets tests overlap and size checks.
func TestValidateTensorOffsets(t *testing.T) {
	ok := []serialization.TensorMeta{
		{Name: "a", DType: "float16", Shape: []int{2}, Offset: 0, Size: 4},
		{Name: "b", DType: "float16", Shape: []int{}, Offset: 4, Size: 2},
	}
	require.NoError(t, serialization.ValidateTensorOffsets(ok, 6))

	overlap := []serialization.TensorMeta{
		{Name: "a", DType: "float16", Shape: []int{2}, Offset: 0, Size: 4},
		{Name: "b", DType: "float16", Shape: []int{2}, Offset: 2, Size: 4},
	}
	err := serialization.ValidateTensorOffsets(overlap, 8)
	var vErr *serialization.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "offset_overlap", vErr.Type)

	wrongSize := []serialization.TensorMeta{{Name: "a", DType: "float32", Shape: []int{2}, Offset: 0, Size: 4}}
	err = serialization.ValidateTensorOffsets(wrongSize, 8)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "size_mismatch", vErr.Type)

	assert.Error(t, serialization.ValidateTensorName("a/b"))
	assert.Error(t, serialization.ValidateTensorName(""))
	assert.NoError(t, serialization.ValidateTensorName("Residual-0.module.Conv1d-0.weight"))
}
