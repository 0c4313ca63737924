// Package feature turns audio into the [T, F] feature matrices streamed
// through acoustic graphs.
//
// The front-end follows the Kaldi convention:
//
//	SampleRate:  16000
//	WindowSize:  400 (25 ms)
//	HopSize:     160 (10 ms)
//	FFTSize:     512
//	NumMels:     80
//	PreEmphasis: 0.97
//
// Input audio is read from RIFF/WAVE PCM16 files, mixed down to mono and
// resampled to the front-end rate. Features are normalized per utterance.
package feature
