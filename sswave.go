// Package sswave decodes and encodes the wavetable storage embedded in
// Shapeshifter firmware images.
//
// A firmware image holds 128 named wavetables at fixed addresses. Each
// wavetable is made of 8 waveforms of 512 signed 16-bit little-endian
// samples. Every byte of the name table and the wavetable table is stored
// with its bit order reversed.
//
// The Codec type decodes names, waveforms and whole banks from any
// io.ReaderAt, and writes waveforms and names back into an Image with
// read-modify-write semantics: only the bytes owned by the target range
// are touched.
//
//	codec, err := sswave.New()
//	img, err := sswave.LoadImage("firmware.jic")
//	bank, err := codec.DecodeBank(img)
//	wt, err := bank.Lookup("SAW1")
//	artifacts := codec.ExportWavetable(wt, false)
package sswave
