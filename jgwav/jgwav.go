// Package jgwav turns a captured JG WAV recorder command buffer into a
// standard PCM WAV file for offline inspection. It is auxiliary to the
// core: nothing under hardware/ or machine imports it, and it never runs
// inside a time slice.
//
// _examples/original_source/src/nc1020.cpp leaves GenerateAndPlayJGWav as a
// stub the real device firmware fills in with a sample-rate conversion and
// DAC write; this package is the host-side equivalent, grounded on the
// teacher's own use of github.com/go-audio/wav in
// hardware/memory/cartridge/supercharger/soundload_pcm.go.
package jgwav

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Project-Muteki/nc1020/curated"
)

// SampleRate is the playback rate assumed for recorded JG WAV buffers. The
// firmware protocol carries no rate field of its own, so this is a fixed
// assumption rather than a value recovered from the recording.
const SampleRate = 8000

// Export writes samples, a raw 8-bit unsigned PCM buffer as recorded by
// hardware/ioports.Ports' OnWavReady callback, to w as a mono 8-bit WAV
// file.
func Export(w io.WriteSeeker, samples []byte) error {
	enc := wav.NewEncoder(w, SampleRate, 8, 1, 1)
	if enc == nil {
		return curated.Errorf("jgwav: %v", "failed to create WAV encoder")
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 8,
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("jgwav: %v", err)
	}

	if err := enc.Close(); err != nil {
		return curated.Errorf("jgwav: %v", err)
	}

	return nil
}
