package memory

import (
	"github.com/Project-Muteki/nc1020/hal"
	"github.com/Project-Muteki/nc1020/hardware/memory/memorymap"
)

// Map is the 8-slot memory map described in spec.md §3/§4.2: an array of
// byte slices, each covering one 8 KiB region of the 6502 address space,
// re-pointed on bank/volume/zero-page switches.
type Map struct {
	ram *RAM
	hal hal.Provider

	slots [memorymap.NumSlots][]byte

	// bak40 backs the zero-page window's block 0 (spec.md §4.2): "block 0
	// denotes the backup buffer bak_40".
	bak40 [0x40]byte

	// volume is clamped ram_io[0x0D] as last applied by SwitchVolume; bank
	// switching needs it to resolve ROM pages.
	volume uint8
}

// NewMap creates a Map bound to the given RAM array and HAL provider. Call
// Reset before use.
func NewMap(ram *RAM, provider hal.Provider) *Map {
	return &Map{ram: ram, hal: provider}
}

// Reset re-establishes slot 0 and re-runs the volume/bank switch, matching
// ResetStates in the original source.
func (m *Map) Reset() {
	m.volume = 0
	m.slots[0] = m.ram.Page0()
	m.slots[2] = m.ram.Page2()
	m.SwitchVolume(0, 0)
}

// Peek reads a single byte directly from the memory map, with no I/O-port
// or flash-state-machine interception. Equivalent to the source's
// `memmap[addr >> 13][addr & 0x1FFF]`.
func (m *Map) Peek(addr uint16) uint8 {
	slot := m.slots[memorymap.SlotIndex(addr)]
	off := memorymap.SlotOffset(addr)
	if int(off) >= len(slot) {
		// a bank pointer left null by an out-of-range bank selection
		// (spec.md §4.2): "reads return indeterminate bytes".
		return 0
	}
	return slot[off]
}

// PokeRAM writes addr directly into the underlying RAM array. Valid for any
// address below 0x4000, where the source always writes straight to RAM
// regardless of which slot is currently mapped there.
func (m *Map) PokeRAM(addr uint16, value uint8) {
	m.ram.Bytes()[addr] = value
}

// SlotAtIsRAM reports whether the slot currently covering addr aliases
// ram_page2 or ram_page3 -- the cases spec.md §4.2 calls out as "writes to
// slot pointers equal to ram_page2 or ram_page3 always go through".
func (m *Map) SlotAtIsRAM(addr uint16) bool {
	slot := m.slots[memorymap.SlotIndex(addr)]
	return SameBacking(slot, m.ram.Page2()) || SameBacking(slot, m.ram.Page3())
}

// PokeSlot writes to the slot currently covering addr, assuming the caller
// has already established (via SlotAtIsRAM) that the slot is RAM-backed.
func (m *Map) PokeSlot(addr uint16, value uint8) {
	slot := m.slots[memorymap.SlotIndex(addr)]
	off := memorymap.SlotOffset(addr)
	if int(off) < len(slot) {
		slot[off] = value
	}
}

// CurrentBank returns the bank index selected by port 0x00, used by the
// flash state machine to find the NOR page backing the currently mapped
// bank.
func (m *Map) CurrentBank() uint8 {
	return m.ram.IOPorts()[0x00]
}

// bankBuffer resolves a bank index to the HAL scratch buffer it maps to,
// per spec.md §4.2: "bank<0x20 selects NOR page bank ... bank>=0x80 selects
// ROM page bank-0x80 in the current volume; otherwise the bank pointer is
// null". A failed load leaves hal.Page()'s contents untouched and stale
// (spec.md §7); the buffer is still returned in that case. nil is reserved
// for the genuinely unmapped bank-index dead zone.
func (m *Map) bankBuffer(bankIdx uint8) []byte {
	switch {
	case bankIdx < hal.NorPages:
		m.hal.LoadNorPage(int(bankIdx))
		return m.hal.Page()
	case bankIdx >= 0x80:
		m.hal.LoadRomPage(int(m.volume), int(bankIdx)-0x80)
		return m.hal.Page()
	default:
		return nil
	}
}

// SwitchBank reloads slots 2-5 from the bank currently selected by port
// 0x00 (spec.md §4.2). It only consults port 0x00; SwitchVolume calls it as
// its final bank reload step.
func (m *Map) SwitchBank() {
	bank := m.bankBuffer(m.CurrentBank())
	if bank == nil {
		m.slots[2], m.slots[3], m.slots[4], m.slots[5] = nil, nil, nil, nil
		return
	}
	m.slots[2] = bank[0x0000:0x2000]
	m.slots[3] = bank[0x2000:0x4000]
	m.slots[4] = bank[0x4000:0x6000]
	m.slots[5] = bank[0x6000:0x8000]
}

// SwitchVolume implements the port 0x0D handler of spec.md §4.2: clamp the
// volume, reload slot 1 based on bit 2 of port 0x0A, reload slot 6 from the
// BBS page named by the low nibble of port 0x0A (or ram_page3 in the
// volume-0 shadow case), reload slot 7 from the shadow BBS buffer, and
// re-run the bank switch.
func (m *Map) SwitchVolume(volume uint8, portA uint8) {
	if volume > 2 {
		volume = 0
	}
	m.volume = volume

	if portA&0x04 != 0 {
		m.slots[1] = m.ram.Page2()
	} else {
		m.slots[1] = m.ram.Page1()
	}

	roaBBS := portA & 0x0F
	if volume == 0 && roaBBS == 1 {
		m.slots[6] = m.ram.Page3()
	} else {
		m.hal.LoadBbsPage(int(volume), int(roaBBS))
		m.slots[6] = m.hal.BBS()
	}
	m.slots[7] = m.hal.ShadowBBS()

	m.SwitchBank()
}

// ReloadBBS implements the port 0x0A handler of spec.md §4.3: reload slot 6
// from the BBS page named by the new value's low nibble, without touching
// the other slots.
func (m *Map) ReloadBBS(value uint8) {
	roaBBS := value & 0x0F
	if m.volume == 0 && roaBBS == 1 {
		m.slots[6] = m.ram.Page3()
		return
	}
	m.hal.LoadBbsPage(int(m.volume), int(roaBBS))
	m.slots[6] = m.hal.BBS()
}

// ptr40 resolves a zero-page window block index to its backing storage, per
// spec.md §4.2's GetPtr40: index<4 means the I/O port shadow itself,
// otherwise the 64-byte block at ram_buff + index*0x40.
func (m *Map) ptr40(index uint8) []byte {
	if index < 4 {
		return m.ram.IOPorts()
	}
	base := int(index) << 6
	return m.ram.Bytes()[base : base+0x40]
}

// SwitchZeroPageWindow implements the port 0x0F handler of spec.md §4.2:
// swap the visible 64 bytes at 0x0040-0x0080 between the old and new block,
// preserving the invariant that the window always shows the selected
// block's content.
func (m *Map) SwitchZeroPageWindow(oldBlock, newBlock uint8) {
	if oldBlock == newBlock {
		return
	}
	visible := m.ram.ZeroPageWindow()
	if oldBlock != 0 {
		copy(m.ptr40(oldBlock), visible)
		if newBlock != 0 {
			copy(visible, m.ptr40(newBlock))
		} else {
			copy(visible, m.bak40[:])
		}
	} else {
		copy(m.bak40[:], visible)
		copy(visible, m.ptr40(newBlock))
	}
}

// Bak40 exposes the zero-page backup buffer for the snapshot codec.
func (m *Map) Bak40() []byte { return m.bak40[:] }
