package graph_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

type backend = *cpu.CPUBackend

func names(m nn.Module[backend]) []string {
	var out []string
	for _, child := range m.(nn.Container[backend]).Children() {
		out = append(out, child.Name)
	}
	return out
}

// TestBuild_SequentialNaming tests per-kind child names.
func TestBuild_SequentialNaming(t *testing.T) {
	desc, err := graph.Parse([]byte(`{"name": "Sequential", "children": [
		{"name": "Conv1d", "inChannels": 2, "outChannels": 2, "kernelSize": 1, "stride": 1, "groups": 1},
		{"name": "ReLU"},
		{"name": "Conv1d", "inChannels": 2, "outChannels": 2, "kernelSize": 1, "stride": 1, "groups": 1}
	]}`), graph.JSON)
	require.NoError(t, err)

	m, err := graph.Build(desc, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"Conv1d-0", "ReLU-0", "Conv1d-1"}, names(m))
}

// TestBuild_UnknownKind tests that an unknown tag fails without a graph.
func TestBuild_UnknownKind(t *testing.T) {
	m, err := graph.Build(&graph.Description{Name: "Foo"}, cpu.New())
	require.Error(t, err)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, graph.ErrUnknownModuleKind)

	var kindErr *graph.KindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "Foo", kindErr.Tag)
	assert.Equal(t, "", kindErr.Path)
}

// TestBuild_NestedErrorPath tests that nested failures name their location.
func TestBuild_NestedErrorPath(t *testing.T) {
	desc := &graph.Description{Name: "Sequential", Children: []*graph.Description{
		{Name: "ReLU"},
		{Name: "Residual", Module: &graph.Description{Name: "Sequential", Children: []*graph.Description{
			{Name: "Identity"},
			{Name: "LSTM"},
		}}},
	}}

	m, err := graph.Build(desc, cpu.New())
	assert.Nil(t, m)
	var kindErr *graph.KindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "children[1].module.children[1]", kindErr.Path)
	assert.Contains(t, err.Error(), "children[1].module.children[1]")
}

// TestBuild_InvalidDescription tests configuration failures.
func TestBuild_InvalidDescription(t *testing.T) {
	tests := []struct {
		name string
		desc *graph.Description
		path string
	}{
		{
			name: "groups do not divide channels",
			desc: &graph.Description{Name: "Sequential", Children: []*graph.Description{
				{Name: "Conv1d", InChannels: 4, OutChannels: 4, KernelSize: 3, Stride: 1, Groups: 3},
			}},
			path: "children[0]",
		},
		{
			name: "residual without module",
			desc: &graph.Description{Name: "Residual"},
		},
		{
			name: "groupnorm without beta",
			desc: &graph.Description{Name: "GroupNorm", Alpha: graph.Scalar(1)},
		},
		{
			name: "reshape without shape",
			desc: &graph.Description{Name: "Reshape"},
		},
		{
			name: "linear without features",
			desc: &graph.Description{Name: "Linear"},
		},
		{
			name: "nil child",
			desc: &graph.Description{Name: "Sequential", Children: []*graph.Description{nil}},
			path: "children[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := graph.Build(tt.desc, cpu.New())
			assert.Nil(t, m)
			require.ErrorIs(t, err, graph.ErrInvalidDescription)
			assert.NotErrorIs(t, err, graph.ErrUnknownModuleKind)

			var descErr *graph.DescriptionError
			require.ErrorAs(t, err, &descErr)
			assert.Equal(t, tt.path, descErr.Path)
		})
	}
}

// TestBuild_ConfigErrorUnwraps tests that node errors stay reachable.
func TestBuild_ConfigErrorUnwraps(t *testing.T) {
	_, err := graph.Build(&graph.Description{Name: "Permute", Permutation: []int{1, 1}}, cpu.New())
	assert.ErrorIs(t, err, graph.ErrInvalidDescription)
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
}

// TestLoadDescription_YAML tests YAML parsing, scalar/list floats and the
// GroupNorm prefix rule.
func TestLoadDescription_YAML(t *testing.T) {
	desc, err := graph.LoadDescription(filepath.Join("testdata", "small.yaml"))
	require.NoError(t, err)
	require.Len(t, desc.Children, 4)

	norm := desc.Children[2]
	assert.Equal(t, "GroupNormW2L", norm.Name)
	assert.Equal(t, graph.Vector(1, 2, 3, 4), norm.Alpha)
	assert.Equal(t, graph.Scalar(0.5), norm.Beta)

	m, err := graph.Build(desc, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"Conv1d-0", "ReLU-0", "GroupNormW2L-0", "Conv1d-1"}, names(m))

	params := m.Parameters()
	require.Len(t, params, 6)
	assert.Equal(t, tensor.Shape{2, 2, 3}, params[0].Shape())
	assert.Equal(t, tensor.Shape{4}, params[2].Shape())
	assert.Equal(t, tensor.Shape{}, params[3].Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, params[2].Tensor().Data())

	x := tensor.Full(tensor.Shape{1, 4, 9}, 1, cpu.New())
	out, err := m.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 3}, out.Shape())
}

// TestLoadDescription_Errors tests missing files and malformed input.
func TestLoadDescription_Errors(t *testing.T) {
	_, err := graph.LoadDescription(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = graph.Parse([]byte(`{"name": "GroupNorm", "alpha": "wide"}`), graph.JSON)
	assert.ErrorIs(t, err, graph.ErrInvalidDescription)

	_, err = graph.Parse([]byte("name: [unterminated"), graph.YAML)
	assert.ErrorIs(t, err, graph.ErrInvalidDescription)
}

// TestDescribe_RoundTrip tests Build -> Describe -> Save -> Load -> Build.
func TestDescribe_RoundTrip(t *testing.T) {
	for _, file := range []string{"acoustic.json", "small.yaml"} {
		t.Run(file, func(t *testing.T) {
			desc, err := graph.LoadDescription(filepath.Join("testdata", file))
			require.NoError(t, err)
			m, err := graph.Build(desc, cpu.New())
			require.NoError(t, err)

			described, err := graph.Describe(m)
			require.NoError(t, err)
			assert.Equal(t, desc, described)

			for _, ext := range []string{".json", ".yaml"} {
				path := filepath.Join(t.TempDir(), "graph"+ext)
				require.NoError(t, described.Save(path))
				loaded, err := graph.LoadDescription(path)
				require.NoError(t, err)
				assert.Equal(t, desc, loaded, ext)
			}
		})
	}
}

// TestBuild_Acoustic tests the reference acoustic graph end to end.
func TestBuild_Acoustic(t *testing.T) {
	desc, err := graph.LoadDescription(filepath.Join("testdata", "acoustic.json"))
	require.NoError(t, err)
	m, err := graph.Build(desc, cpu.New())
	require.NoError(t, err)

	named := nn.NamedParameters(m)
	require.Len(t, named, 8)
	assert.Equal(t, "Conv1d-0.weight", named[0].Name)
	assert.Equal(t, "GroupNorm-0.alpha", named[2].Name)
	assert.Equal(t, "Residual-0.module.Conv1d-0.weight", named[4].Name)
	assert.Equal(t, tensor.Shape{8, 8, 3}, named[4].Parameter.Shape())
	assert.Equal(t, "Linear-0.bias", named[7].Name)

	x := tensor.Arange(0, 57*80, cpu.New())
	out, err := m.Forward(x)
	require.NoError(t, err)
	// Conv1d-0: (57-5)/2+1 = 27 frames; the residual's inner conv yields 25.
	assert.Equal(t, tensor.Shape{25, 10}, out.Shape())
}
