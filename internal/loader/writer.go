package loader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/tensor"
)

// headerAlignment pads the JSON header so tensor data starts 8-byte aligned.
const headerAlignment = 8

// WriteSafeTensors writes stream to path with every tensor stored as dt.
// Data offsets follow stream order.
func WriteSafeTensors(path string, stream *ParameterStream, dt tensor.DataType, metadata map[string]string) error {
	if len(stream.Names) != len(stream.Tensors) {
		return errors.Errorf("write safetensors: %d names for %d tensors", len(stream.Names), len(stream.Tensors))
	}
	dtype, err := dtypeOf(dt)
	if err != nil {
		return err
	}

	header := SafeTensorsHeader{
		Metadata: metadata,
		Tensors:  make(map[string]SafeTensorInfo, len(stream.Tensors)),
	}
	var offset int64
	for i, name := range stream.Names {
		if _, dup := header.Tensors[name]; dup {
			return errors.Errorf("write safetensors: duplicate tensor name %q", name)
		}
		t := stream.Tensors[i]
		size := int64(t.NumElements() * dt.Size())
		header.Tensors[name] = SafeTensorInfo{
			DType:       dtype,
			Shape:       append([]int{}, t.Shape()...),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal safetensors header")
	}
	if pad := len(headerJSON) % headerAlignment; pad != 0 {
		headerJSON = append(headerJSON, bytes.Repeat([]byte(" "), headerAlignment-pad)...)
	}

	file, err := os.Create(path) //nolint:gosec // G304: output path comes from the command line.
	if err != nil {
		return errors.Wrap(err, "create safetensors")
	}
	w := bufio.NewWriter(file)

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "write header size")
	}
	if _, err := w.Write(headerJSON); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "write header")
	}
	for i, t := range stream.Tensors {
		if _, err := w.Write(EncodeFloat32(dt, t.AsFloat32())); err != nil {
			_ = file.Close()
			return errors.Wrapf(err, "write tensor %s", stream.Names[i])
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "flush safetensors")
	}
	return errors.Wrap(file.Close(), "close safetensors")
}
