// Package registers implements the NC1020's 6502-class register file: the
// program counter, the three general purpose 8-bit registers, the stack
// pointer, and the status register.
//
// Grounded on the teacher's hardware/cpu/registers package, but simplified:
// the teacher represents registers as bit-slices so that Add/Subtract can
// report carry and overflow from first principles. The NC1020 core instead
// keeps registers as plain uint8/uint16 values and computes carry/overflow
// with ordinary arithmetic, which is the representation the rest of the
// example corpus (e.g. tehmaze-mos65xx, beevik-go6502) uses for 6502 cores.
package registers

import "fmt"

// Register is an 8-bit general purpose register (A, X or Y).
type Register struct {
	label string
	value uint8
}

// NewRegister creates a Register with the given label and initial value.
func NewRegister(value uint8, label string) Register {
	return Register{label: label, value: value}
}

// Label returns the canonical name of the register.
func (r Register) Label() string { return r.label }

// Value returns the 8-bit contents of the register.
func (r Register) Value() uint8 { return r.value }

// Load sets the register's contents.
func (r *Register) Load(v uint8) { r.value = v }

// IsZero reports whether the register holds zero.
func (r Register) IsZero() bool { return r.value == 0 }

// IsNegative reports whether bit 7 is set.
func (r Register) IsNegative() bool { return r.value&0x80 != 0 }

func (r Register) String() string { return fmt.Sprintf("%02x", r.value) }

// StackPointer is the 8-bit stack pointer. It always indexes into the
// single page of stack memory at 0x0100-0x01FF.
type StackPointer struct {
	value uint8
}

// NewStackPointer creates a StackPointer with the given initial value.
func NewStackPointer(value uint8) StackPointer {
	return StackPointer{value: value}
}

// Label returns the canonical name of the stack pointer.
func (sp StackPointer) Label() string { return "SP" }

// Value returns the current stack pointer value.
func (sp StackPointer) Value() uint8 { return sp.value }

// Load sets the stack pointer's contents.
func (sp *StackPointer) Load(v uint8) { sp.value = v }

// Push returns the address the next pushed byte should be written to, and
// decrements the pointer, wrapping within the 0x00-0xFF range as the 6502
// stack does (it does not grow beyond one page).
func (sp *StackPointer) Push() (addr uint16) {
	addr = 0x0100 | uint16(sp.value)
	sp.value--
	return addr
}

// Pull increments the pointer and returns the address to read the next
// pulled byte from.
func (sp *StackPointer) Pull() (addr uint16) {
	sp.value++
	return 0x0100 | uint16(sp.value)
}

func (sp StackPointer) String() string { return fmt.Sprintf("%02x", sp.value) }

// ProgramCounter is the 16-bit program counter.
type ProgramCounter struct {
	value uint16
}

// NewProgramCounter creates a ProgramCounter with the given initial value.
func NewProgramCounter(value uint16) ProgramCounter {
	return ProgramCounter{value: value}
}

// Label returns the canonical name of the program counter.
func (pc ProgramCounter) Label() string { return "PC" }

// Value returns the current program counter value.
func (pc ProgramCounter) Value() uint16 { return pc.value }

// Load sets the program counter's contents.
func (pc *ProgramCounter) Load(v uint16) { pc.value = v }

// Add advances the program counter by n, wrapping at 0x10000.
func (pc *ProgramCounter) Add(n uint16) { pc.value += n }

func (pc ProgramCounter) String() string { return fmt.Sprintf("%04x", pc.value) }

// StatusRegister holds the seven flags of the 6502 status byte, laid out
// N V · B D I Z C (bit 7 down to bit 0); bit 5 is unused and always reads
// back as 1.
type StatusRegister struct {
	Sign             bool // N
	Overflow         bool // V
	Break            bool // B
	DecimalMode      bool // D
	InterruptDisable bool // I
	Zero             bool // Z
	Carry            bool // C
}

// NewStatusRegister returns a zeroed status register.
func NewStatusRegister() StatusRegister { return StatusRegister{} }

// Label returns the canonical name of the status register.
func (sr StatusRegister) Label() string { return "P" }

// Reset clears every flag.
func (sr *StatusRegister) Reset() { sr.FromValue(0) }

// Value packs the flags into an 8-bit value suitable for pushing to the
// stack or storing in a snapshot.
func (sr StatusRegister) Value() uint8 {
	var v uint8
	if sr.Sign {
		v |= 0x80
	}
	if sr.Overflow {
		v |= 0x40
	}
	if sr.Break {
		v |= 0x10
	}
	if sr.DecimalMode {
		v |= 0x08
	}
	if sr.InterruptDisable {
		v |= 0x04
	}
	if sr.Zero {
		v |= 0x02
	}
	if sr.Carry {
		v |= 0x01
	}
	v |= 0x20 // bit 5 is unused, always reads as 1
	return v
}

// FromValue unpacks an 8-bit value (e.g. pulled from the stack) into the
// flags.
func (sr *StatusRegister) FromValue(v uint8) {
	sr.Sign = v&0x80 != 0
	sr.Overflow = v&0x40 != 0
	sr.Break = v&0x10 != 0
	sr.DecimalMode = v&0x08 != 0
	sr.InterruptDisable = v&0x04 != 0
	sr.Zero = v&0x02 != 0
	sr.Carry = v&0x01 != 0
}

// SetNZ sets the Sign and Zero flags from the given result, as almost every
// load/transfer/arithmetic instruction does.
func (sr *StatusRegister) SetNZ(v uint8) {
	sr.Sign = v&0x80 != 0
	sr.Zero = v == 0
}

func (sr StatusRegister) String() string {
	flag := func(set bool, c byte) byte {
		if set {
			return c
		}
		return c + ('a' - 'A')
	}
	b := []byte{
		flag(sr.Sign, 'N'),
		flag(sr.Overflow, 'V'),
		'-',
		flag(sr.Break, 'B'),
		flag(sr.DecimalMode, 'D'),
		flag(sr.InterruptDisable, 'I'),
		flag(sr.Zero, 'Z'),
		flag(sr.Carry, 'C'),
	}
	return string(b)
}
