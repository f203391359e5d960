package ioports_test

import (
	"testing"

	"github.com/Project-Muteki/nc1020/hal"
	"github.com/Project-Muteki/nc1020/hardware/clock"
	"github.com/Project-Muteki/nc1020/hardware/ioports"
	"github.com/Project-Muteki/nc1020/hardware/keypad"
	"github.com/Project-Muteki/nc1020/hardware/memory"
)

type fakeHAL struct {
	page      [hal.PageSize]byte
	bbs       [hal.BBSSize]byte
	shadowBbs [hal.BBSSize]byte
}

func (h *fakeHAL) LoadNorPage(int) bool      { return true }
func (h *fakeHAL) SaveNorPage(int) bool      { return true }
func (h *fakeHAL) WipeNorFlash() bool        { return true }
func (h *fakeHAL) LoadRomPage(int, int) bool { return true }
func (h *fakeHAL) LoadBbsPage(int, int) bool { return true }
func (h *fakeHAL) SaveState([]byte) bool     { return true }
func (h *fakeHAL) LoadState([]byte) bool     { return true }
func (h *fakeHAL) Page() []byte              { return h.page[:] }
func (h *fakeHAL) BBS() []byte               { return h.bbs[:] }
func (h *fakeHAL) ShadowBBS() []byte         { return h.shadowBbs[:] }

func newPorts() *ioports.Ports {
	ram := &memory.RAM{}
	mm := memory.NewMap(ram, &fakeHAL{})
	mm.Reset()
	clk := &clock.Clock{}
	kp := &keypad.Matrix{}
	return ioports.New(ram, mm, clk, kp)
}

func TestWriteThenReadDefaultPort(t *testing.T) {
	p := newPorts()
	p.Write(0x01, 0x42)
	if v := p.Read(0x01); v != 0x42 {
		t.Fatalf("Read(0x01) = %#02x, want 0x42", v)
	}
}

func TestWrite06LatchesLCDAddrOnce(t *testing.T) {
	p := newPorts()
	p.Write(0x06, 0x10)
	addr := p.LCDAddr()
	if addr == 0 {
		t.Fatalf("LCD address should be latched after first write to port 6")
	}
	p.Write(0x06, 0xFF)
	if p.LCDAddr() != addr {
		t.Fatalf("LCD address should not change once latched")
	}
}

func TestWrite09BroadcastsKeypadRow(t *testing.T) {
	p := newPorts()
	kp := &keypad.Matrix{}
	kp.SetKey(0x03, true) // row 3, col 0
	p2 := ioports.New(&memory.RAM{}, memory.NewMap(&memory.RAM{}, &fakeHAL{}), &clock.Clock{}, kp)
	p2.Write(0x09, 0x01)
	if v := p2.Read(0x08); v != kp.Rows()[0] {
		t.Fatalf("Read(0x08) = %#02x, want row 0 = %#02x", v, kp.Rows()[0])
	}
	_ = p
}

func TestWavRecorderEmitsOnCompletion(t *testing.T) {
	p := newPorts()
	var captured []byte
	p.OnWavReady = func(samples []byte) { captured = samples }

	p.Write(0x20, 0x80)
	p.Write(0x22, 0x05)
	p.Write(0x23, 0xC4)
	p.Write(0x22, 0x06)
	p.Write(0x23, 0xC4)
	p.Write(0x23, 0x80)

	if len(captured) != 2 || captured[0] != 0x05 || captured[1] != 0x06 {
		t.Fatalf("captured = %v, want [0x05 0x06]", captured)
	}
}

func TestWav0xC2DoesNotOverrunBufferAtBoundary(t *testing.T) {
	p := newPorts()
	p.Write(0x20, 0x80)
	for i := 0; i < ioports.WavBufferSize; i++ {
		p.Write(0x22, byte(i))
		p.Write(0x23, 0xC4)
	}
	// wav.index is now WavBufferSize; a following 0xC2 write must not panic.
	p.Write(0x22, 0xAA)
	p.Write(0x23, 0xC2)
}
