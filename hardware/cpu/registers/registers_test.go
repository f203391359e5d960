package registers_test

import (
	"testing"

	"github.com/Project-Muteki/nc1020/hardware/cpu/registers"
)

func TestStatusRegisterRoundTrip(t *testing.T) {
	var sr registers.StatusRegister
	sr.FromValue(0xA5)
	if got := sr.Value(); got != 0xA5|0x20 {
		t.Fatalf("round trip through FromValue/Value changed the byte: got %#02x", got)
	}
}

func TestStatusRegisterReset(t *testing.T) {
	var sr registers.StatusRegister
	sr.FromValue(0xFF)
	sr.Reset()
	if sr.Value() != 0x20 {
		t.Fatalf("Reset should clear every flag except the always-set bit 5, got %#02x", sr.Value())
	}
}

func TestSetNZ(t *testing.T) {
	var sr registers.StatusRegister
	sr.SetNZ(0)
	if !sr.Zero || sr.Sign {
		t.Fatalf("SetNZ(0) should set Zero and clear Sign")
	}
	sr.SetNZ(0x80)
	if sr.Zero || !sr.Sign {
		t.Fatalf("SetNZ(0x80) should clear Zero and set Sign")
	}
}

func TestStackPointerPushPull(t *testing.T) {
	sp := registers.NewStackPointer(0xFF)
	addr := sp.Push()
	if addr != 0x01FF {
		t.Fatalf("first push should target 0x01FF, got %#04x", addr)
	}
	if sp.Value() != 0xFE {
		t.Fatalf("push should decrement the pointer, got %#02x", sp.Value())
	}

	sp.Load(0xFE)
	addr = sp.Pull()
	if addr != 0x01FF || sp.Value() != 0xFF {
		t.Fatalf("pull should increment then read, got addr=%#04x sp=%#02x", addr, sp.Value())
	}
}

func TestStackPointerWraps(t *testing.T) {
	sp := registers.NewStackPointer(0x00)
	sp.Push()
	if sp.Value() != 0xFF {
		t.Fatalf("stack pointer must wrap within one page, got %#02x", sp.Value())
	}
}
