package tensor

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{1, 80, 0}, backend) // empty carry buffer
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	raw, err := NewRaw(shape, b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New(raw, b)
}

// Full creates a tensor filled with a specific value.
func Full[B Backend](shape Shape, value float32, b B) *Tensor[B] {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Arange creates a 1D tensor with values [start, start+1, ..., end-1].
func Arange[B Backend](start, end int, b B) *Tensor[B] {
	n := max(end-start, 0)
	t := Zeros(Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = float32(start + i)
	}
	return t
}
