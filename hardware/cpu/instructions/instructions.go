// Package instructions declares the documented 6502 opcode table as data,
// not as a 256-way switch. Each Definition names an addressing mode, a base
// cycle count, and whether a page-crossing access to that mode costs an
// extra cycle; the cpu package turns a Definition plus a Mnemonic into
// behaviour.
//
// Grounded on the teacher's hardware/cpu/instructions package (the
// Definition/AddressingMode/EffectCategory shape is carried over directly)
// and on beevik-go6502's declarative mnemonic table, which is where the
// "describe all 151 opcodes as a table, dispatch generically" idea in
// spec.md §9 actually appears worked out across an addressing-mode axis.
package instructions

import "fmt"

// AddressingMode describes how an instruction fetches its operand.
type AddressingMode int

// The addressing modes spec.md §4.1 requires support for.
const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	Relative // branches

	Absolute
	ZeroPage
	Indirect // JMP (abs) only

	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y

	AbsoluteIndexedX
	AbsoluteIndexedY

	ZeroPageIndexedX
	ZeroPageIndexedY
)

// EffectCategory classifies an instruction by how it touches memory, which
// determines whether the page-cross cycle bonus applies (spec.md §4.1:
// "Writes and read-modify-write do not take the page-cross bonus").
type EffectCategory int

// The effect categories used to decide cycle accounting and flow control.
const (
	Read EffectCategory = iota
	Write
	RMW
	Flow // branches and JMP
	Subroutine
	Interrupt
	Other // register/flag-only instructions, no memory access
)

// Definition is one row of the opcode table.
type Definition struct {
	OpCode         uint8
	Mnemonic       string
	Bytes          int
	Cycles         int
	AddressingMode AddressingMode
	PageSensitive  bool
	Effect         EffectCategory
}

func (d Definition) String() string {
	return fmt.Sprintf("%02x %s (%d bytes, %d cycles, mode=%d)", d.OpCode, d.Mnemonic, d.Bytes, d.Cycles, d.AddressingMode)
}

// IsBranch reports whether the instruction is one of the eight relative
// branch instructions.
func (d Definition) IsBranch() bool {
	return d.AddressingMode == Relative && d.Effect == Flow
}

// definitions is indexed by opcode. A nil entry (Mnemonic == "") means the
// opcode is undocumented: per spec.md §4.1 it is a no-op that advances PC by
// one and costs no cycles.
var definitions [256]Definition

func def(op uint8, mnemonic string, bytes, cycles int, mode AddressingMode, pageSensitive bool, effect EffectCategory) {
	definitions[op] = Definition{
		OpCode:         op,
		Mnemonic:       mnemonic,
		Bytes:          bytes,
		Cycles:         cycles,
		AddressingMode: mode,
		PageSensitive:  pageSensitive,
		Effect:         effect,
	}
}

// Lookup returns the Definition for an opcode, and whether it is
// documented. An undocumented opcode returns a Definition with an empty
// Mnemonic.
func Lookup(opcode uint8) (Definition, bool) {
	d := definitions[opcode]
	return d, d.Mnemonic != ""
}

func init() {
	// addressing-mode shorthand, matched against the classic 6502
	// instruction reference. "x"/"y" suffix is the indexed variant.
	const (
		imp = Implied
		acc = Accumulator
		imm = Immediate
		rel = Relative
		abs = Absolute
		zpg = ZeroPage
		ind = Indirect
		izx = IndexedIndirect
		izy = IndirectIndexed
		abx = AbsoluteIndexedX
		aby = AbsoluteIndexedY
		zpx = ZeroPageIndexedX
		zpy = ZeroPageIndexedY
	)

	// ADC
	def(0x69, "ADC", 2, 2, imm, false, Read)
	def(0x65, "ADC", 2, 3, zpg, false, Read)
	def(0x75, "ADC", 2, 4, zpx, false, Read)
	def(0x6D, "ADC", 3, 4, abs, false, Read)
	def(0x7D, "ADC", 3, 4, abx, true, Read)
	def(0x79, "ADC", 3, 4, aby, true, Read)
	def(0x61, "ADC", 2, 6, izx, false, Read)
	def(0x71, "ADC", 2, 5, izy, true, Read)

	// AND
	def(0x29, "AND", 2, 2, imm, false, Read)
	def(0x25, "AND", 2, 3, zpg, false, Read)
	def(0x35, "AND", 2, 4, zpx, false, Read)
	def(0x2D, "AND", 3, 4, abs, false, Read)
	def(0x3D, "AND", 3, 4, abx, true, Read)
	def(0x39, "AND", 3, 4, aby, true, Read)
	def(0x21, "AND", 2, 6, izx, false, Read)
	def(0x31, "AND", 2, 5, izy, true, Read)

	// ASL
	def(0x0A, "ASL", 1, 2, acc, false, RMW)
	def(0x06, "ASL", 2, 5, zpg, false, RMW)
	def(0x16, "ASL", 2, 6, zpx, false, RMW)
	def(0x0E, "ASL", 3, 6, abs, false, RMW)
	def(0x1E, "ASL", 3, 7, abx, false, RMW)

	// branches
	def(0x90, "BCC", 2, 2, rel, false, Flow)
	def(0xB0, "BCS", 2, 2, rel, false, Flow)
	def(0xF0, "BEQ", 2, 2, rel, false, Flow)
	def(0x30, "BMI", 2, 2, rel, false, Flow)
	def(0xD0, "BNE", 2, 2, rel, false, Flow)
	def(0x10, "BPL", 2, 2, rel, false, Flow)
	def(0x50, "BVC", 2, 2, rel, false, Flow)
	def(0x70, "BVS", 2, 2, rel, false, Flow)

	// BIT
	def(0x24, "BIT", 2, 3, zpg, false, Read)
	def(0x2C, "BIT", 3, 4, abs, false, Read)

	// BRK / RTI / interrupts
	def(0x00, "BRK", 1, 7, imp, false, Interrupt)
	def(0x40, "RTI", 1, 6, imp, false, Interrupt)

	// flag clear/set
	def(0x18, "CLC", 1, 2, imp, false, Other)
	def(0xD8, "CLD", 1, 2, imp, false, Other)
	def(0x58, "CLI", 1, 2, imp, false, Other)
	def(0xB8, "CLV", 1, 2, imp, false, Other)
	def(0x38, "SEC", 1, 2, imp, false, Other)
	def(0xF8, "SED", 1, 2, imp, false, Other)
	def(0x78, "SEI", 1, 2, imp, false, Other)

	// CMP
	def(0xC9, "CMP", 2, 2, imm, false, Read)
	def(0xC5, "CMP", 2, 3, zpg, false, Read)
	def(0xD5, "CMP", 2, 4, zpx, false, Read)
	def(0xCD, "CMP", 3, 4, abs, false, Read)
	def(0xDD, "CMP", 3, 4, abx, true, Read)
	def(0xD9, "CMP", 3, 4, aby, true, Read)
	def(0xC1, "CMP", 2, 6, izx, false, Read)
	def(0xD1, "CMP", 2, 5, izy, true, Read)

	// CPX / CPY
	def(0xE0, "CPX", 2, 2, imm, false, Read)
	def(0xE4, "CPX", 2, 3, zpg, false, Read)
	def(0xEC, "CPX", 3, 4, abs, false, Read)
	def(0xC0, "CPY", 2, 2, imm, false, Read)
	def(0xC4, "CPY", 2, 3, zpg, false, Read)
	def(0xCC, "CPY", 3, 4, abs, false, Read)

	// DEC
	def(0xC6, "DEC", 2, 5, zpg, false, RMW)
	def(0xD6, "DEC", 2, 6, zpx, false, RMW)
	def(0xCE, "DEC", 3, 6, abs, false, RMW)
	def(0xDE, "DEC", 3, 7, abx, false, RMW)

	// DEX / DEY / INX / INY
	def(0xCA, "DEX", 1, 2, imp, false, Other)
	def(0x88, "DEY", 1, 2, imp, false, Other)
	def(0xE8, "INX", 1, 2, imp, false, Other)
	def(0xC8, "INY", 1, 2, imp, false, Other)

	// EOR
	def(0x49, "EOR", 2, 2, imm, false, Read)
	def(0x45, "EOR", 2, 3, zpg, false, Read)
	def(0x55, "EOR", 2, 4, zpx, false, Read)
	def(0x4D, "EOR", 3, 4, abs, false, Read)
	def(0x5D, "EOR", 3, 4, abx, true, Read)
	def(0x59, "EOR", 3, 4, aby, true, Read)
	def(0x41, "EOR", 2, 6, izx, false, Read)
	def(0x51, "EOR", 2, 5, izy, true, Read)

	// INC
	def(0xE6, "INC", 2, 5, zpg, false, RMW)
	def(0xF6, "INC", 2, 6, zpx, false, RMW)
	def(0xEE, "INC", 3, 6, abs, false, RMW)
	def(0xFE, "INC", 3, 7, abx, false, RMW)

	// JMP / JSR / RTS
	def(0x4C, "JMP", 3, 3, abs, false, Flow)
	def(0x6C, "JMP", 3, 5, ind, false, Flow)
	def(0x20, "JSR", 3, 6, abs, false, Subroutine)
	def(0x60, "RTS", 1, 6, imp, false, Subroutine)

	// LDA / LDX / LDY
	def(0xA9, "LDA", 2, 2, imm, false, Read)
	def(0xA5, "LDA", 2, 3, zpg, false, Read)
	def(0xB5, "LDA", 2, 4, zpx, false, Read)
	def(0xAD, "LDA", 3, 4, abs, false, Read)
	def(0xBD, "LDA", 3, 4, abx, true, Read)
	def(0xB9, "LDA", 3, 4, aby, true, Read)
	def(0xA1, "LDA", 2, 6, izx, false, Read)
	def(0xB1, "LDA", 2, 5, izy, true, Read)

	def(0xA2, "LDX", 2, 2, imm, false, Read)
	def(0xA6, "LDX", 2, 3, zpg, false, Read)
	def(0xB6, "LDX", 2, 4, zpy, false, Read)
	def(0xAE, "LDX", 3, 4, abs, false, Read)
	def(0xBE, "LDX", 3, 4, aby, true, Read)

	def(0xA0, "LDY", 2, 2, imm, false, Read)
	def(0xA4, "LDY", 2, 3, zpg, false, Read)
	def(0xB4, "LDY", 2, 4, zpx, false, Read)
	def(0xAC, "LDY", 3, 4, abs, false, Read)
	def(0xBC, "LDY", 3, 4, abx, true, Read)

	// LSR
	def(0x4A, "LSR", 1, 2, acc, false, RMW)
	def(0x46, "LSR", 2, 5, zpg, false, RMW)
	def(0x56, "LSR", 2, 6, zpx, false, RMW)
	def(0x4E, "LSR", 3, 6, abs, false, RMW)
	def(0x5E, "LSR", 3, 7, abx, false, RMW)

	// NOP
	def(0xEA, "NOP", 1, 2, imp, false, Other)

	// ORA
	def(0x09, "ORA", 2, 2, imm, false, Read)
	def(0x05, "ORA", 2, 3, zpg, false, Read)
	def(0x15, "ORA", 2, 4, zpx, false, Read)
	def(0x0D, "ORA", 3, 4, abs, false, Read)
	def(0x1D, "ORA", 3, 4, abx, true, Read)
	def(0x19, "ORA", 3, 4, aby, true, Read)
	def(0x01, "ORA", 2, 6, izx, false, Read)
	def(0x11, "ORA", 2, 5, izy, true, Read)

	// stack ops
	def(0x48, "PHA", 1, 3, imp, false, Write)
	def(0x08, "PHP", 1, 3, imp, false, Write)
	def(0x68, "PLA", 1, 4, imp, false, Read)
	def(0x28, "PLP", 1, 4, imp, false, Read)

	// ROL / ROR
	def(0x2A, "ROL", 1, 2, acc, false, RMW)
	def(0x26, "ROL", 2, 5, zpg, false, RMW)
	def(0x36, "ROL", 2, 6, zpx, false, RMW)
	def(0x2E, "ROL", 3, 6, abs, false, RMW)
	def(0x3E, "ROL", 3, 7, abx, false, RMW)

	def(0x6A, "ROR", 1, 2, acc, false, RMW)
	def(0x66, "ROR", 2, 5, zpg, false, RMW)
	def(0x76, "ROR", 2, 6, zpx, false, RMW)
	def(0x6E, "ROR", 3, 6, abs, false, RMW)
	def(0x7E, "ROR", 3, 7, abx, false, RMW)

	// SBC
	def(0xE9, "SBC", 2, 2, imm, false, Read)
	def(0xE5, "SBC", 2, 3, zpg, false, Read)
	def(0xF5, "SBC", 2, 4, zpx, false, Read)
	def(0xED, "SBC", 3, 4, abs, false, Read)
	def(0xFD, "SBC", 3, 4, abx, true, Read)
	def(0xF9, "SBC", 3, 4, aby, true, Read)
	def(0xE1, "SBC", 2, 6, izx, false, Read)
	def(0xF1, "SBC", 2, 5, izy, true, Read)

	// STA / STX / STY
	def(0x85, "STA", 2, 3, zpg, false, Write)
	def(0x95, "STA", 2, 4, zpx, false, Write)
	def(0x8D, "STA", 3, 4, abs, false, Write)
	def(0x9D, "STA", 3, 5, abx, false, Write)
	def(0x99, "STA", 3, 5, aby, false, Write)
	def(0x81, "STA", 2, 6, izx, false, Write)
	def(0x91, "STA", 2, 6, izy, false, Write)

	def(0x86, "STX", 2, 3, zpg, false, Write)
	def(0x96, "STX", 2, 4, zpy, false, Write)
	def(0x8E, "STX", 3, 4, abs, false, Write)

	def(0x84, "STY", 2, 3, zpg, false, Write)
	def(0x94, "STY", 2, 4, zpx, false, Write)
	def(0x8C, "STY", 3, 4, abs, false, Write)

	// transfers
	def(0xAA, "TAX", 1, 2, imp, false, Other)
	def(0xA8, "TAY", 1, 2, imp, false, Other)
	def(0xBA, "TSX", 1, 2, imp, false, Other)
	def(0x8A, "TXA", 1, 2, imp, false, Other)
	def(0x9A, "TXS", 1, 2, imp, false, Other)
	def(0x98, "TYA", 1, 2, imp, false, Other)
}
