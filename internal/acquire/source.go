// Package acquire fills sample windows from an audio input.
package acquire

import (
	"context"

	"github.com/cybre/matrix-sound-meter/internal/dsp"
)

// Source captures one full window per call. Acquire blocks until every code
// in w has been written or ctx is done.
type Source interface {
	Acquire(ctx context.Context, w *dsp.SampleWindow) error
}

// Quantize converts normalised float samples (full scale ±1) into converter
// codes centred on dsp.Midscale. gain scales the input before conversion;
// full scale maps to ±VRef/2. Samples beyond len(w) are ignored and missing
// samples are filled with Midscale.
func Quantize(samples []float32, gain float64, w *dsp.SampleWindow) {
	for i := range w {
		if i >= len(samples) {
			w[i] = dsp.Midscale
			continue
		}
		v := float64(samples[i]) * gain * (dsp.VRef / 2)
		w[i] = dsp.VoltageToCode(v)
	}
}
