package feature

import (
	"math"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Normalize applies per-utterance mean and variance normalization in place:
// each column of the [T, F] matrix x is shifted to zero mean and scaled to
// unit population standard deviation.
func Normalize(x *tensor.RawTensor) {
	shape := x.Shape()
	if len(shape) != 2 {
		panic("feature: Normalize expects a [T, F] matrix")
	}
	frames, bins := shape[0], shape[1]
	if frames == 0 {
		return
	}
	data := x.AsFloat32()

	for f := 0; f < bins; f++ {
		sum := 0.0
		for t := 0; t < frames; t++ {
			sum += float64(data[t*bins+f])
		}
		mean := sum / float64(frames)

		sq := 0.0
		for t := 0; t < frames; t++ {
			d := float64(data[t*bins+f]) - mean
			sq += d * d
		}
		std := max(math.Sqrt(sq/float64(frames)), 1e-10)

		for t := 0; t < frames; t++ {
			data[t*bins+f] = float32((float64(data[t*bins+f]) - mean) / std)
		}
	}
}

// Ramp returns the synthetic [frames, bins] input 0, 1, 2, ... normalized as a
// whole to zero mean and unit sample standard deviation. It is the standard
// smoke input for comparing runtimes.
func Ramp(frames, bins int) *tensor.RawTensor {
	out, err := tensor.NewRaw(tensor.Shape{frames, bins}, tensor.CPU)
	if err != nil {
		panic(err)
	}
	data := out.AsFloat32()
	n := len(data)
	if n == 0 {
		return out
	}

	mean := float64(n-1) / 2
	std := 0.0
	if n > 1 {
		// Sample variance of 0..n-1 is n(n+1)/12.
		std = math.Sqrt(float64(n) * float64(n+1) / 12)
	}
	for i := range data {
		v := float64(i) - mean
		if std > 0 {
			v /= std
		}
		data[i] = float32(v)
	}
	return out
}
