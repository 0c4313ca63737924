package cpu

import (
	"fmt"

	"github.com/born-ml/streamnet/internal/parallel"
	"github.com/born-ml/streamnet/internal/tensor"
)

// Conv1D performs an unpadded, single-group 1D convolution.
//
// Input shape: [batch, in_channels, length]
// Kernel shape: [out_channels, in_channels, kernel_size]
// Bias shape: [out_channels] (optional, may be nil)
// Output shape: [batch, out_channels, out_length]
//
// out_length = (length - kernel_size) / stride + 1, or 0 when the input is
// shorter than the kernel. Streaming convolutions rely on the zero-length case
// to defer short inputs to the next call. Output channels are computed in
// parallel.
func (cpu *CPUBackend) Conv1D(input, kernel, bias *tensor.RawTensor, stride int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 3 {
		panic(fmt.Sprintf("conv1d: input must be 3D [N,C,T], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 3 {
		panic(fmt.Sprintf("conv1d: kernel must be 3D [C_out,C_in,K], got %dD", len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv1d: stride must be positive, got %d", stride))
	}

	N, CIn, T := inputShape[0], inputShape[1], inputShape[2]
	COut, CInK, K := kernelShape[0], kernelShape[1], kernelShape[2]

	if CIn != CInK {
		panic(fmt.Sprintf("conv1d: input channels %d != kernel channels %d", CIn, CInK))
	}
	if bias != nil && bias.NumElements() != COut {
		panic(fmt.Sprintf("conv1d: bias has %d elements, want %d", bias.NumElements(), COut))
	}

	TOut := 0
	if T >= K {
		TOut = (T-K)/stride + 1
	}

	output := cpu.newResult("conv1d", tensor.Shape{N, COut, TOut})
	if TOut == 0 {
		return output
	}

	in := input.AsFloat32()
	w := kernel.AsFloat32()
	out := output.AsFloat32()
	var b []float32
	if bias != nil {
		b = bias.AsFloat32()
	}

	parallel.ForBatch(N, COut, func(n, o int) {
		inBatch := in[n*CIn*T : (n+1)*CIn*T]
		outRow := out[(n*COut+o)*TOut : (n*COut+o+1)*TOut]
		for t := range outRow {
			start := t * stride
			var sum float32
			for c := 0; c < CIn; c++ {
				inRow := inBatch[c*T+start : c*T+start+K]
				wRow := w[(o*CIn+c)*K : (o*CIn+c+1)*K]
				for k, wk := range wRow {
					sum += wk * inRow[k]
				}
			}
			if b != nil {
				sum += b[o]
			}
			outRow[t] = sum
		}
	}, cpu.parallel)

	return output
}
