// Package flash implements the NC1020's NOR flash command state machine:
// the unlock/program/erase protocol a program running on the device pokes
// into the 0x4000-0xC000 flash window, and the read-side polling intercept
// that reports command completion.
//
// Grounded on the Store()/Load() flash handling in the original source
// (fp_step/fp_type/fp_bank_idx/fp_bak1/fp_bak2/fp_buff): this is a literal
// port of that state machine, including its one latent bug (see Write,
// fpType 1), which spec.md §9 calls out as deliberately preserved for
// snapshot compatibility with existing saves.
package flash

import (
	"github.com/Project-Muteki/nc1020/hal"
	"github.com/Project-Muteki/nc1020/hardware/memory/memorymap"
)

// Step values the FSM can be in. Named for readability; the original source
// only used the bare integers 0-6.
const (
	StepIdle = iota
	StepUnlock1
	StepUnlock2
	StepCommand
	StepErase1
	StepErase2
	StepDone
)

// Command types selected at StepCommand. The original source names these
// only by number; the names below describe what each one does rather than
// claiming a JEDEC command name, since the protocol is a simplified
// approximation rather than a real SST/AMD command set.
const (
	TypeNone = iota
	TypeByteRestoreProgram // 0x90: records two bytes, restores them on 0xF0
	TypeMaskProgram        // 0xA0: ANDs value into the byte at addr
	TypeEraseFamily        // 0x80: full-chip wipe (0x10) or sector erase (0x30)
	TypeBufferMaskProgram  // 0xA8: ANDs value into the 256-byte scratch buffer
	TypeBufferEraseFamily  // 0x88: full-chip wipe (0x10) or buffer clear (0x48)
	TypeUnused             // 0x78: selected but never progresses past StepCommand
)

// FSM holds the flash command state machine's working state. It operates
// directly on a hal.Provider's Page() buffer, which the caller is
// responsible for keeping loaded to the NOR page named by the current bank
// (memory.Map.SwitchBank does this whenever the bank register changes).
type FSM struct {
	hal hal.Provider

	step     uint8
	typ      uint8
	bankIdx  uint8
	bak1     uint8
	bak2     uint8
	buff     [0x100]byte
}

// New creates an FSM bound to provider.
func New(provider hal.Provider) *FSM {
	return &FSM{hal: provider}
}

// Reset returns the FSM to its idle state and clears the byte-program
// scratch buffer, matching ResetStates in the original source.
func (f *FSM) Reset() {
	f.step = StepIdle
	f.typ = TypeNone
	f.bankIdx = 0
	f.bak1 = 0
	f.bak2 = 0
	f.buff = [0x100]byte{}
}

// Buffer exposes the 256-byte scratch buffer used by the buffer-program
// command, for the snapshot codec.
func (f *FSM) Buffer() []byte { return f.buff[:] }

// State exposes the scalar FSM fields for the snapshot codec.
func (f *FSM) State() (step, typ, bankIdx, bak1, bak2 uint8) {
	return f.step, f.typ, f.bankIdx, f.bak1, f.bak2
}

// SetState restores the scalar FSM fields from a snapshot.
func (f *FSM) SetState(step, typ, bankIdx, bak1, bak2 uint8) {
	f.step, f.typ, f.bankIdx, f.bak1, f.bak2 = step, typ, bankIdx, bak1, bak2
}

// InterceptRead implements the polling-completion read intercept in the
// original source's Load(): while a mask-program is waiting to be polled,
// or an erase-family command is in its terminal step, any read in the flash
// window resets the FSM to idle and reports busy-done status 0x88 instead
// of the underlying memory content.
func (f *FSM) InterceptRead(addr uint16) (value uint8, handled bool) {
	if (f.step == StepErase1 && f.typ == TypeMaskProgram) ||
		(f.step == StepDone && f.typ == TypeEraseFamily) {
		if addr >= memorymap.FlashWindowLow && addr < memorymap.FlashWindowHigh {
			f.step = StepIdle
			return 0x88, true
		}
	}
	return 0, false
}

// Write feeds one write in the flash window through the command state
// machine. bankIdx is the bank register's current value (port 0x00); the
// caller must ensure the HAL's Page() buffer already holds that bank's NOR
// page contents (true whenever bankIdx < hal.NorPages and the bank register
// hasn't changed since). Writes while bankIdx selects a ROM bank (>=0x20)
// are silently ignored, matching the source.
func (f *FSM) Write(bankIdx uint8, addr uint16, value uint8) {
	if bankIdx >= 0x20 {
		return
	}
	bank := f.hal.Page()

	switch f.step {
	case StepIdle:
		if addr == 0x5555 && value == 0xAA {
			f.step = StepUnlock1
		}
		return
	case StepUnlock1:
		if addr == 0xAAAA && value == 0x55 {
			f.step = StepUnlock2
			return
		}
	case StepUnlock2:
		if addr == 0x5555 {
			switch value {
			case 0x90:
				f.typ = TypeByteRestoreProgram
			case 0xA0:
				f.typ = TypeMaskProgram
			case 0x80:
				f.typ = TypeEraseFamily
			case 0xA8:
				f.typ = TypeBufferMaskProgram
			case 0x88:
				f.typ = TypeBufferEraseFamily
			case 0x78:
				f.typ = TypeUnused
			}
			if f.typ != TypeNone {
				if f.typ == TypeByteRestoreProgram {
					f.bankIdx = bankIdx
					f.bak1 = bank[0x4000]
					// NOTE: the original source assigns fp_bak1 twice here
					// and never sets fp_bak2 -- a latent bug preserved for
					// snapshot compatibility (spec.md §9).
					f.bak1 = bank[0x4001]
				}
				f.step = StepCommand
				return
			}
		}
	case StepCommand:
		switch f.typ {
		case TypeByteRestoreProgram:
			if value == 0xF0 {
				bank[0x4000] = f.bak1
				bank[0x4001] = f.bak2
				f.hal.SaveNorPage(int(bankIdx))
				f.step = StepIdle
				return
			}
		case TypeMaskProgram:
			bank[addr-0x4000] &= value
			f.hal.SaveNorPage(int(bankIdx))
			f.step = StepErase1
			return
		case TypeBufferMaskProgram:
			f.buff[addr&0xFF] &= value
			f.step = StepErase1
			return
		case TypeEraseFamily, TypeBufferEraseFamily:
			if addr == 0x5555 && value == 0xAA {
				f.step = StepErase1
				return
			}
		}
	case StepErase1:
		switch f.typ {
		case TypeEraseFamily, TypeBufferEraseFamily:
			if addr == 0xAAAA && value == 0x55 {
				f.step = StepErase2
				return
			}
		}
	case StepErase2:
		if addr == 0x5555 && value == 0x10 {
			f.hal.WipeNorFlash()
			if f.typ == TypeBufferEraseFamily {
				for i := range f.buff {
					f.buff[i] = 0xFF
				}
			}
			f.step = StepDone
			return
		}
		switch f.typ {
		case TypeEraseFamily:
			if value == 0x30 {
				base := addr - (addr % 0x800) - 0x4000
				for i := uint16(0); i < 0x800; i++ {
					bank[base+i] = 0xFF
				}
				f.hal.SaveNorPage(int(bankIdx))
				f.step = StepDone
				return
			}
		case TypeBufferEraseFamily:
			if value == 0x48 {
				for i := range f.buff {
					f.buff[i] = 0xFF
				}
				f.step = StepDone
				return
			}
		}
	}

	if addr == 0x8000 && value == 0xF0 {
		f.step = StepIdle
	}
}
