// Package machine is the NC1020 core's facade: it owns the CPU, the
// banked memory map, the I/O port decoder, the flash state machine, the
// clock and the keypad matrix as one value, wires them into a single
// address-space Bus, and drives the timer/IRQ/sleep model that ties them
// together over a time slice.
//
// Grounded on Initialize/ResetStates/RunTimeSlice/SetKey/ReleaseAllKeys/
// CopyLcdBuffer/LoadStates/SaveStates in the original source, restructured
// per spec.md §9's guidance to re-architect the whole simulator as one
// opaque value a caller owns and passes around, rather than a module of
// package-level globals (nc1020_states, memmap, hal were all file-scope
// statics in the original).
package machine

import (
	"bytes"

	"github.com/Project-Muteki/nc1020"
	"github.com/Project-Muteki/nc1020/hal"
	"github.com/Project-Muteki/nc1020/hardware/clock"
	"github.com/Project-Muteki/nc1020/hardware/cpu"
	"github.com/Project-Muteki/nc1020/hardware/flash"
	"github.com/Project-Muteki/nc1020/hardware/ioports"
	"github.com/Project-Muteki/nc1020/hardware/keypad"
	"github.com/Project-Muteki/nc1020/hardware/memory"
	"github.com/Project-Muteki/nc1020/hardware/memory/memorymap"
	"github.com/Project-Muteki/nc1020/logger"
	"github.com/Project-Muteki/nc1020/snapshot"
)

// Timing constants, matching the original source's defaults.
const (
	DefaultCyclesPerSecond = 5120000
	Timer0Freq             = 2
	Timer1Freq             = 0x100
)

// Machine is the NC1020 core: one value holding every piece of hardware
// state, bound to a host-supplied HAL.
type Machine struct {
	provider hal.Provider

	ram   *memory.RAM
	mm    *memory.Map
	clk   *clock.Clock
	kp    *keypad.Matrix
	fsm   *flash.FSM
	ports *ioports.Ports
	cpu   *cpu.CPU

	cyclesTimer0        uint32
	cyclesTimer1        uint32
	cyclesTimer1SpeedUp uint32
	cyclesMs            uint32

	cycles       uint32
	timer0Cycles uint32
	timer1Cycles uint32
	timer0Toggle bool
	shouldIRQ    bool
}

// Config holds the host-supplied parameters Initialize needs, as a plain
// struct of named fields rather than a growing parameter list -- grounded
// on hardware/preferences.ARMPreferences' style of one documented field
// per host-tunable setting.
type Config struct {
	// CPUFrequency overrides DefaultCyclesPerSecond as the basis for timer
	// period computation, useful for hosts that want to run the core
	// faster or slower than real time. Zero means use the default.
	CPUFrequency uint32
}

// Initialize builds a Machine bound to provider. It returns an error if
// provider is nil; every other field of Machine is zero-value-safe and
// Reset brings it to a well-defined power-on state.
func Initialize(provider hal.Provider, cfg Config) (*Machine, error) {
	if provider == nil {
		return nil, nc1020.New(nc1020.NilProvider)
	}

	ram := &memory.RAM{}
	mm := memory.NewMap(ram, provider)
	clk := &clock.Clock{}
	kp := &keypad.Matrix{}
	ports := ioports.New(ram, mm, clk, kp)
	fsm := flash.New(provider)

	m := &Machine{
		provider: provider,
		ram:      ram,
		mm:       mm,
		clk:      clk,
		kp:       kp,
		fsm:      fsm,
		ports:    ports,
	}
	m.cpu = cpu.New(m)

	cpuSpeed := cfg.CPUFrequency
	if cpuSpeed == 0 {
		cpuSpeed = DefaultCyclesPerSecond
	}
	m.cyclesTimer0 = cpuSpeed / Timer0Freq
	m.cyclesTimer1 = cpuSpeed / Timer1Freq
	m.cyclesTimer1SpeedUp = cpuSpeed / Timer1Freq / 20
	m.cyclesMs = cpuSpeed / 1000

	m.Reset()
	logger.Log("machine", "initialized")
	return m, nil
}

// Ports exposes the I/O port decoder so a host can wire OnWavReady.
func (m *Machine) Ports() *ioports.Ports { return m.ports }

// Reset returns every component to its power-on state, matching
// ResetStates in the original source.
func (m *Machine) Reset() {
	m.ram.Reset()
	m.mm.Reset()
	*m.kp = keypad.Matrix{}
	m.clk.Reset()
	m.fsm.Reset()
	m.ports.Reset()

	m.timer0Toggle = false
	m.shouldIRQ = false
	m.cycles = 0

	m.cpu.Reset()

	m.timer0Cycles = m.cyclesTimer0
	m.timer1Cycles = m.cyclesTimer1
}

// Read implements cpu.Bus. It is also the Load() path the original source
// uses for every 6502 memory read: I/O ports, the flash busy-poll
// intercept, the wake-key injection at 0x045F, then the plain memory map.
func (m *Machine) Read(addr uint16) uint8 {
	if addr < ioports.Limit {
		return m.ports.Read(uint8(addr))
	}
	if v, handled := m.fsm.InterceptRead(addr); handled {
		return v
	}
	if addr == 0x045F && m.kp.ConsumeWakeUpPending() {
		m.mm.PokeRAM(addr, m.kp.WakeUpKey())
	}
	return m.mm.Peek(addr)
}

// Write implements cpu.Bus, matching Store() in the original source.
func (m *Machine) Write(addr uint16, value uint8) {
	if addr < ioports.Limit {
		m.ports.Write(uint8(addr), value)
		return
	}
	if addr < memorymap.FlashWindowLow {
		m.mm.PokeRAM(addr, value)
		return
	}
	if m.mm.SlotAtIsRAM(addr) {
		m.mm.PokeSlot(addr, value)
		return
	}
	if addr >= memorymap.HighROMLimit {
		return
	}
	if addr >= memorymap.FlashWindowHigh {
		// slot 6 outside the RAM shadow case is BBS, not part of the flash
		// window the state machine indexes into.
		return
	}
	m.fsm.Write(m.mm.CurrentBank(), addr, value)
}

// SetKey forwards a key transition to the keypad matrix.
func (m *Machine) SetKey(keyID uint8, down bool) { m.kp.SetKey(keyID, down) }

// ReleaseAllKeys clears the keypad matrix.
func (m *Machine) ReleaseAllKeys() { m.kp.ReleaseAllKeys() }

// CopyLCDBuffer copies the 1600-byte LCD framebuffer window into buffer. It
// reports false if the LCD base address has not been latched yet (no
// program has written to port 0x06 since the last reset).
func (m *Machine) CopyLCDBuffer(buffer []byte) bool {
	addr := m.ports.LCDAddr()
	if addr == 0 {
		return false
	}
	copy(buffer, m.ram.Bytes()[addr:addr+1600])
	return true
}

// RegisterState is a read-only snapshot of the CPU's register file,
// returned by Registers.
type RegisterState struct {
	PC             uint16
	A, X, Y, SP, P uint8
}

// Registers returns the current CPU register file. It is a read-only
// observer: mutating the returned value has no effect on the running
// machine.
func (m *Machine) Registers() RegisterState {
	return RegisterState{
		PC: m.cpu.PC.Value(),
		A:  m.cpu.A.Value(),
		X:  m.cpu.X.Value(),
		Y:  m.cpu.Y.Value(),
		SP: m.cpu.SP.Value(),
		P:  m.cpu.P.Value(),
	}
}

// JGWavBuffer returns the in-core JG WAV recorder's working buffer, sized
// to however many samples have been recorded so far. It is a read-only
// observer over the recorder's live state.
func (m *Machine) JGWavBuffer() []byte {
	_, index, _ := m.ports.WavState()
	return m.ports.WavBuffer()[:index]
}

// RunTimeSlice executes instructions until timeSliceMs worth of CPU cycles
// have elapsed, servicing the two interleaved timers and any pending
// wake-from-sleep between instructions. speedUp shortens timer1's period
// by a factor of 20, matching the original source's fast-forward mode.
func (m *Machine) RunTimeSlice(timeSliceMs uint32, speedUp bool) {
	endCycles := timeSliceMs * m.cyclesMs

	for m.cycles < endCycles {
		m.cycles += uint32(m.cpu.Step())

		if m.cycles >= m.timer0Cycles {
			m.timer0Cycles += m.cyclesTimer0
			m.timer0Toggle = !m.timer0Toggle
			if !m.timer0Toggle {
				m.clk.AdjustTime()
			}
			if !m.clk.IsCountDown() || m.timer0Toggle {
				m.ram.IOPorts()[0x3D] = 0
			} else {
				m.ram.IOPorts()[0x3D] = 0x20
				m.clk.SetFlags(m.clk.Flags() &^ 0x02)
			}
			m.shouldIRQ = true
		}

		if m.shouldIRQ {
			if taken, spent := m.cpu.ServiceIRQ(); taken {
				m.shouldIRQ = false
				m.cycles += uint32(spent)
			}
		}

		if m.cycles >= m.timer1Cycles {
			if speedUp {
				m.timer1Cycles += m.cyclesTimer1SpeedUp
			} else {
				m.timer1Cycles += m.cyclesTimer1
			}
			m.clk.Buffer()[4]++
			if m.kp.ConsumeShouldWakeUp() {
				m.ram.IOPorts()[0x01] |= 0x01
				m.ram.IOPorts()[0x02] |= 0x01
				m.cpu.PC.Load(m.readResetVector())
			} else {
				m.ram.IOPorts()[0x01] |= 0x08
				m.shouldIRQ = true
			}
		}
	}

	m.cycles -= endCycles
	if endCycles > m.timer0Cycles {
		m.timer0Cycles = 0
	} else {
		m.timer0Cycles -= endCycles
	}
	if endCycles > m.timer1Cycles {
		m.timer1Cycles = 0
	} else {
		m.timer1Cycles -= endCycles
	}
}

func (m *Machine) readResetVector() uint16 {
	lo := uint16(m.Read(memorymap.ResetVector))
	hi := uint16(m.Read(memorymap.ResetVector + 1))
	return lo | hi<<8
}

// SaveSnapshot serializes the machine's entire state and asks the HAL to
// persist it. It returns an nc1020.Error describing the failure if the
// blob cannot be encoded or the HAL rejects the write; the machine's
// running state is unaffected either way.
func (m *Machine) SaveSnapshot() error {
	b := m.toBlob()
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, b); err != nil {
		e := nc1020.New(nc1020.SnapshotEncodeFailed, err)
		logger.Logf("machine", "%v", e)
		return e
	}
	if !m.provider.SaveState(buf.Bytes()) {
		e := nc1020.New(nc1020.HALSaveStateFailed)
		logger.Logf("machine", "%v", e)
		return e
	}
	return nil
}

// LoadSnapshot resets the machine, then asks the HAL for a previously
// persisted snapshot and restores it. A missing or mismatched-version
// snapshot leaves the machine in its freshly reset state and returns a
// nc1020.Error describing why, matching LoadStates in the original
// source's false-return behavior but with a reportable cause.
func (m *Machine) LoadSnapshot() error {
	m.Reset()
	raw := make([]byte, snapshot.Size())
	if !m.provider.LoadState(raw) {
		e := nc1020.New(nc1020.HALLoadStateFailed)
		logger.Logf("machine", "%v", e)
		return e
	}
	b, err := snapshot.Decode(bytes.NewReader(raw))
	if err != nil {
		logger.Logf("machine", "snapshot decode failed: %v", err)
		return err
	}
	m.fromBlob(b)
	m.mm.SwitchVolume(m.ram.IOPorts()[0x0D], m.ram.IOPorts()[0x0A])
	return nil
}

func (m *Machine) toBlob() *snapshot.Blob {
	b := snapshot.NewBlob()
	b.PC = m.cpu.PC.Value()
	b.A = m.cpu.A.Value()
	b.PS = m.cpu.P.Value()
	b.X = m.cpu.X.Value()
	b.Y = m.cpu.Y.Value()
	b.SP = m.cpu.SP.Value()

	copy(b.RAM[:], m.ram.Bytes())
	copy(b.Bak40[:], m.mm.Bak40())

	copy(b.ClockBuffer[:], m.clk.Buffer())
	b.ClockFlags = m.clk.Flags()

	copy(b.WavBuffer[:], m.ports.WavBuffer())
	b.WavFlags, b.WavIndex, b.WavPlaying = m.ports.WavState()

	step, typ, bankIdx, bak1, bak2 := m.fsm.State()
	b.FlashStep, b.FlashType, b.FlashBankIdx, b.FlashBak1, b.FlashBak2 = step, typ, bankIdx, bak1, bak2
	copy(b.FlashBuffer[:], m.fsm.Buffer())

	b.Slept = m.kp.Slept()
	b.ShouldWakeUp = m.kp.ShouldWakeUp()
	b.WakeUpPending = m.kp.WakeUpPending()
	b.WakeUpKey = m.kp.WakeUpKey()

	b.Timer0Toggle = m.timer0Toggle
	b.Cycles = m.cycles
	b.Timer0Cycles = m.timer0Cycles
	b.Timer1Cycles = m.timer1Cycles
	b.ShouldIRQ = m.shouldIRQ

	b.LCDAddr = m.ports.LCDAddr()
	copy(b.KeypadMatrix[:], m.kp.Rows())

	return b
}

func (m *Machine) fromBlob(b *snapshot.Blob) {
	m.cpu.PC.Load(b.PC)
	m.cpu.A.Load(b.A)
	m.cpu.P.FromValue(b.PS)
	m.cpu.X.Load(b.X)
	m.cpu.Y.Load(b.Y)
	m.cpu.SP.Load(b.SP)

	copy(m.ram.Bytes(), b.RAM[:])
	copy(m.mm.Bak40(), b.Bak40[:])

	copy(m.clk.Buffer(), b.ClockBuffer[:])
	m.clk.SetFlags(b.ClockFlags)

	copy(m.ports.WavBuffer(), b.WavBuffer[:])
	m.ports.SetWavState(b.WavFlags, b.WavIndex, b.WavPlaying)

	m.fsm.SetState(b.FlashStep, b.FlashType, b.FlashBankIdx, b.FlashBak1, b.FlashBak2)
	copy(m.fsm.Buffer(), b.FlashBuffer[:])

	m.kp.SetSlept(b.Slept)
	m.kp.SetShouldWakeUp(b.ShouldWakeUp)
	m.kp.SetWakeUpPending(b.WakeUpPending)
	m.kp.SetWakeUpKey(b.WakeUpKey)
	copy(m.kp.Rows(), b.KeypadMatrix[:])

	m.timer0Toggle = b.Timer0Toggle
	m.cycles = b.Cycles
	m.timer0Cycles = b.Timer0Cycles
	m.timer1Cycles = b.Timer1Cycles
	m.shouldIRQ = b.ShouldIRQ

	m.ports.SetLCDAddr(b.LCDAddr)
}
