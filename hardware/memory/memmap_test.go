package memory_test

import (
	"testing"

	"github.com/Project-Muteki/nc1020/hal"
	"github.com/Project-Muteki/nc1020/hardware/memory"
)

// fakeHAL is a minimal hal.Provider whose NOR/ROM loads can be told to
// fail without touching Page(), so tests can observe what SwitchBank does
// with the buffer afterwards.
type fakeHAL struct {
	page      [hal.PageSize]byte
	bbs       [hal.BBSSize]byte
	shadowBbs [hal.BBSSize]byte

	failLoads bool
}

func (h *fakeHAL) LoadNorPage(int) bool      { return !h.failLoads }
func (h *fakeHAL) SaveNorPage(int) bool      { return true }
func (h *fakeHAL) WipeNorFlash() bool        { return true }
func (h *fakeHAL) LoadRomPage(int, int) bool { return !h.failLoads }
func (h *fakeHAL) LoadBbsPage(int, int) bool { return true }
func (h *fakeHAL) SaveState([]byte) bool     { return true }
func (h *fakeHAL) LoadState([]byte) bool     { return true }
func (h *fakeHAL) Page() []byte              { return h.page[:] }
func (h *fakeHAL) BBS() []byte               { return h.bbs[:] }
func (h *fakeHAL) ShadowBBS() []byte         { return h.shadowBbs[:] }

func TestSwitchBankKeepsStaleBufferOnLoadFailure(t *testing.T) {
	ram := &memory.RAM{}
	h := &fakeHAL{}
	mm := memory.NewMap(ram, h)
	mm.Reset()

	// Select NOR bank 1 successfully, then mark the buffer with a
	// recognisable byte at the slot-2 origin.
	ram.IOPorts()[0x00] = 0x01
	mm.SwitchBank()
	h.page[0] = 0xAB
	mm.SwitchBank() // no bank change, but re-establish slots from h.page

	h.failLoads = true
	ram.IOPorts()[0x00] = 0x02
	mm.SwitchBank()

	if mm.Peek(0x4000) != 0xAB {
		t.Fatalf("Peek(0x4000) = %#02x after a failed load, want stale 0xAB", mm.Peek(0x4000))
	}
}

func TestSwitchBankDeadZoneLeavesSlotsNull(t *testing.T) {
	ram := &memory.RAM{}
	h := &fakeHAL{}
	mm := memory.NewMap(ram, h)
	mm.Reset()

	ram.IOPorts()[0x00] = 0x40 // inside the 0x20-0x80 dead zone
	mm.SwitchBank()

	if mm.Peek(0x4000) != 0 {
		t.Fatalf("Peek(0x4000) = %#02x in the bank dead zone, want 0 (null slot)", mm.Peek(0x4000))
	}
}

func TestSwitchVolumeClampsOutOfRangeVolume(t *testing.T) {
	ram := &memory.RAM{}
	h := &fakeHAL{}
	mm := memory.NewMap(ram, h)
	mm.Reset()

	// An out-of-range volume (only 0-2 are valid) must clamp to 0, which
	// is observable through the volume-0/roaBBS==1 shadow case: if the
	// clamp did not happen, SwitchVolume would go through the HAL instead of
	// aliasing ram_page3.
	ram.Page3()[0] = 0x77
	mm.SwitchVolume(0xFF, 0x01)
	// slot 6 covers 0xC000-0xDFFF.
	if mm.Peek(0xC000) != 0x77 {
		t.Fatalf("Peek(0xC000) = %#02x, want 0x77 -- out-of-range volume should clamp to 0", mm.Peek(0xC000))
	}
}

func TestReloadBBSVolumeZeroShadowsRAMPage3(t *testing.T) {
	ram := &memory.RAM{}
	h := &fakeHAL{}
	mm := memory.NewMap(ram, h)
	mm.Reset()

	ram.Page3()[0] = 0x42
	mm.ReloadBBS(0x01) // low nibble 1, volume 0 -> ram_page3 shadow
	// slot 6 covers 0xC000-0xDFFF.
	if mm.Peek(0xC000) != 0x42 {
		t.Fatalf("Peek(0xC000) = %#02x, want 0x42 from ram_page3 shadow", mm.Peek(0xC000))
	}
}
