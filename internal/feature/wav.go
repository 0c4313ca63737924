package feature

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// ErrInvalidWAV is returned for input that is not 16-bit PCM RIFF/WAVE.
var ErrInvalidWAV = errors.New("invalid WAV")

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// maxFormatChunk bounds the fmt chunk; WAVE_FORMAT_EXTENSIBLE needs 40 bytes.
	maxFormatChunk = 64
)

// Audio is mono PCM audio normalized to [-1, 1].
type Audio struct {
	SampleRate int
	Samples    []float32
}

// Duration returns the length of the audio in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// LoadWAV reads a WAV file.
func LoadWAV(path string) (*Audio, error) {
	//nolint:gosec // G304: audio path is user input.
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open WAV")
	}
	defer func() { _ = f.Close() }()

	a, err := ReadWAV(bufio.NewReader(f))
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return a, nil
}

// ReadWAV decodes 16-bit PCM RIFF/WAVE data. Multi-channel audio is averaged
// to mono. Unknown chunks are skipped.
func ReadWAV(r io.Reader) (*Audio, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, errors.Wrap(ErrInvalidWAV, "short RIFF header")
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, errors.Wrap(ErrInvalidWAV, "not a RIFF/WAVE stream")
	}

	var (
		channels   int
		sampleRate int
		haveFormat bool
	)
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, errors.Wrap(ErrInvalidWAV, "missing data chunk")
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			if size < 16 || size > maxFormatChunk {
				return nil, errors.Wrapf(ErrInvalidWAV, "fmt chunk of %d bytes", size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, errors.Wrap(ErrInvalidWAV, "short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != wavFormatPCM && format != wavFormatExtensible {
				return nil, errors.Wrapf(ErrInvalidWAV, "format tag %d is not PCM", format)
			}
			if bits != 16 {
				return nil, errors.Wrapf(ErrInvalidWAV, "%d-bit samples, want 16", bits)
			}
			if channels < 1 || sampleRate < 1 {
				return nil, errors.Wrapf(ErrInvalidWAV, "%d channels at %d Hz", channels, sampleRate)
			}
			haveFormat = true
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, errors.Wrap(ErrInvalidWAV, "short fmt chunk")
				}
			}

		case "data":
			if !haveFormat {
				return nil, errors.Wrap(ErrInvalidWAV, "data chunk before fmt chunk")
			}
			body, err := io.ReadAll(io.LimitReader(r, size))
			if err != nil {
				return nil, errors.Wrap(err, "read data chunk")
			}
			return &Audio{SampleRate: sampleRate, Samples: mixdown(body, channels)}, nil

		default:
			// Chunks are word aligned.
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return nil, errors.Wrapf(ErrInvalidWAV, "short %q chunk", id)
			}
		}
	}
}

func mixdown(pcm []byte, channels int) []float32 {
	frames := len(pcm) / (2 * channels)
	out := make([]float32, frames)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			sum += float32(int16(binary.LittleEndian.Uint16(pcm[off:]))) / 32768
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// WriteWAV encodes a as mono 16-bit PCM. Samples outside [-1, 1] are clipped.
func WriteWAV(w io.Writer, a *Audio) error {
	dataSize := len(a.Samples) * 2
	hdr := make([]byte, 44)
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(36+dataSize)) //nolint:gosec // bounded by slice length.
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], wavFormatPCM)
	binary.LittleEndian.PutUint16(hdr[22:], 1)
	binary.LittleEndian.PutUint32(hdr[24:], uint32(a.SampleRate))   //nolint:gosec // sample rates are small.
	binary.LittleEndian.PutUint32(hdr[28:], uint32(a.SampleRate*2)) //nolint:gosec // sample rates are small.
	binary.LittleEndian.PutUint16(hdr[32:], 2)
	binary.LittleEndian.PutUint16(hdr[34:], 16)
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(dataSize)) //nolint:gosec // bounded by slice length.

	body := make([]byte, dataSize)
	for i, s := range a.Samples {
		v := math.Round(float64(s) * 32767)
		v = math.Max(-32768, math.Min(32767, v))
		binary.LittleEndian.PutUint16(body[i*2:], uint16(int16(v)))
	}
	if _, err := w.Write(hdr); err != nil {
		return errors.Wrap(err, "write WAV header")
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "write WAV data")
	}
	return nil
}
