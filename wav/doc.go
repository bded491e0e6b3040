// Package wav reads and writes the WAV containers used to exchange
// wavetables and single-cycle waveforms.
//
// The package supports PCM integer (8/16/24/32-bit) and IEEE float
// (32/64-bit) data, including WAVE_FORMAT_EXTENSIBLE headers. It reads and
// writes the LIST/INFO chunk and the smpl chunk so exported single cycles
// carry their name and loop points.
package wav
