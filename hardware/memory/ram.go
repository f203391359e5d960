// Package memory implements the NC1020's 32 KiB RAM array and the 8-slot
// banked memory map over the full 6502 address space.
//
// Grounded on the teacher's hardware/memory package (Memory ties together
// RAM, ports and cartridge much like our Memory ties together RAM, I/O and
// the HAL-backed banks) but restructured per spec.md §9's note on raw
// overlapping buffer views: rather than aliasing ram_io/ram_40/ram_page0..3
// as separate pointers into one array, RAM exposes index-range accessors
// over a single owned byte array, and callers take Go slices of it where
// the source took pointers. Slice re-slicing (ram[0x4000:0x6000]) shares
// the same backing array, preserving the "ram_page2 == &ram[0x4000]"
// identity the source relies on, but as a slice-of-same-backing-array
// comparison rather than raw pointer arithmetic.
package memory

import "github.com/Project-Muteki/nc1020/hardware/memory/memorymap"

// RAMSize is the size of the NC1020's battery-backed RAM.
const RAMSize = memorymap.RamSize

// RAM is the NC1020's 32 KiB address space, addressed from 0x0000.
type RAM struct {
	bytes [RAMSize]byte
}

// Bytes returns the entire backing array as a slice. Used by the snapshot
// codec.
func (r *RAM) Bytes() []byte { return r.bytes[:] }

// IOPorts returns the low 0x40-byte I/O port shadow (ram_io in the
// original source).
func (r *RAM) IOPorts() []byte { return r.bytes[0x0000:memorymap.IOPortLimit] }

// ZeroPageWindow returns the swappable 64-byte window at 0x0040-0x0080
// (ram_40).
func (r *RAM) ZeroPageWindow() []byte { return r.bytes[memorymap.IOPortLimit:0x0080] }

// Stack returns the single page of stack memory at 0x0100-0x0200.
func (r *RAM) Stack() []byte { return r.bytes[memorymap.StackBase:memorymap.StackLimit] }

// Page0 is the first 8 KiB sub-page (0x0000-0x2000), used as memory map
// slot 0.
func (r *RAM) Page0() []byte { return r.bytes[0x0000:0x2000] }

// Page1 is the second 8 KiB sub-page (0x2000-0x4000), one of the two
// candidates for memory map slot 1.
func (r *RAM) Page1() []byte { return r.bytes[0x2000:0x4000] }

// Page2 is the third 8 KiB sub-page (0x4000-0x6000): the other candidate
// for slot 1, and, with Page3, one of the two identities Map.SlotAtIsRAM
// treats as "this slot is writable RAM".
func (r *RAM) Page2() []byte { return r.bytes[0x4000:0x6000] }

// Page3 is the fourth 8 KiB sub-page (0x6000-0x8000): the slot-6 fallback
// used when volume 0 selects the shadowed BBS page.
func (r *RAM) Page3() []byte { return r.bytes[0x6000:0x8000] }

// Reset zeroes the entire RAM array.
func (r *RAM) Reset() {
	for i := range r.bytes {
		r.bytes[i] = 0
	}
}

// SameBacking reports whether slot and candidate are views over the same
// backing array at the same offset -- the slice-based replacement for the
// source's `page == ram_page2` pointer comparison.
func SameBacking(slot, candidate []byte) bool {
	if len(slot) == 0 || len(candidate) == 0 || len(slot) != len(candidate) {
		return false
	}
	return &slot[0] == &candidate[0]
}
