package snapshot_test

import (
	"bytes"
	"testing"

	"github.com/Project-Muteki/nc1020/snapshot"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := snapshot.NewBlob()
	b.PC = 0x8123
	b.A = 0x42
	b.RAM[0x1000] = 0xAB
	b.ClockBuffer[5] = 0x80
	b.WavPlaying = true
	b.FlashBuffer[0xFF] = 0x01
	b.LCDAddr = 0x1234
	b.KeypadMatrix[3] = 0xFE

	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, b); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := snapshot.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.PC != b.PC || got.A != b.A || got.RAM[0x1000] != b.RAM[0x1000] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ClockBuffer[5] != 0x80 || !got.WavPlaying || got.FlashBuffer[0xFF] != 0x01 {
		t.Fatalf("round trip mismatch on nested buffers: %+v", got)
	}
	if got.LCDAddr != 0x1234 || got.KeypadMatrix[3] != 0xFE {
		t.Fatalf("round trip mismatch on tail fields: %+v", got)
	}
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	var buf bytes.Buffer
	b := snapshot.NewBlob()
	b.Version = 0xFF
	if err := snapshot.Encode(&buf, b); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := snapshot.Decode(&buf); err == nil {
		t.Fatalf("Decode should reject a mismatched format version")
	}
}
