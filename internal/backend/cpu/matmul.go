package cpu

import (
	"fmt"

	"github.com/born-ml/streamnet/internal/tensor"
)

// MatMul multiplies 2D matrices: [M, K] @ [K, N] -> [M, N].
//
// The loop order (i, k, j) walks both b and the output row-major, which keeps
// the inner loop sequential in memory.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	M, K := aShape[0], aShape[1]
	if bShape[0] != K {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", aShape, bShape))
	}
	N := bShape[1]

	result := cpu.newResult("matmul", tensor.Shape{M, N})
	out := result.AsFloat32()
	aData := a.AsFloat32()
	bData := b.AsFloat32()

	for i := 0; i < M; i++ {
		row := out[i*N : (i+1)*N]
		for k := 0; k < K; k++ {
			aik := aData[i*K+k]
			bRow := bData[k*N : (k+1)*N]
			for j := range row {
				row[j] += aik * bRow[j]
			}
		}
	}
	return result
}
