// Package ioports implements the NC1020's I/O port decoder: the
// dispatch table for the 64 addresses below 0x0040, most of which are a
// plain read/write shadow, with a dozen addresses wired to side effects on
// the memory map, the clock, the keypad matrix, the LCD base address, and
// the in-core JG WAV recorder buffer.
//
// Grounded on the io_read/io_write dispatch tables and their handler
// functions (ReadXX/Read06/Read3B/Read3F, Write00/05/06/08/09/0A/0D/0F/20/
// 23/3F) in the original source.
package ioports

import (
	"github.com/Project-Muteki/nc1020/hardware/clock"
	"github.com/Project-Muteki/nc1020/hardware/keypad"
	"github.com/Project-Muteki/nc1020/hardware/memory"
	"github.com/Project-Muteki/nc1020/hardware/memory/memorymap"
)

// Limit is the number of addresses this decoder covers (ports 0x00-0x3F).
const Limit = memorymap.IOPortLimit

// WavBufferSize is the size of the in-core JG WAV recorder's sample buffer.
const WavBufferSize = 0x20

// wavState tracks the port 0x20/0x23 JG WAV recorder protocol.
type wavState struct {
	buffer  [WavBufferSize]byte
	flags   uint8
	index   uint8
	playing bool
}

// Ports decodes reads and writes in the 0x00-0x3F I/O port window.
type Ports struct {
	ram *memory.RAM
	mm  *memory.Map
	clk *clock.Clock
	kp  *keypad.Matrix

	lcdAddr uint32
	wav     wavState

	// OnWavReady is invoked with a copy of the recorded nibble buffer
	// whenever a recording session completes (port 0x23 write of 0x80 with
	// a non-empty buffer, while no playback is in progress). A host wires
	// this to the jgwav package to render the recording to a .wav file.
	// Left nil, recordings are simply dropped, matching
	// GenerateAndPlayJGWav's empty body in the original source.
	OnWavReady func(samples []byte)
}

// New creates a Ports decoder bound to its collaborators.
func New(ram *memory.RAM, mm *memory.Map, clk *clock.Clock, kp *keypad.Matrix) *Ports {
	return &Ports{ram: ram, mm: mm, clk: clk, kp: kp}
}

// LCDAddr returns the LCD framebuffer base address latched by port 0x06,
// or 0 if it has not been latched since the last reset.
func (p *Ports) LCDAddr() uint32 { return p.lcdAddr }

// SetLCDAddr restores the latched LCD base address from a snapshot.
func (p *Ports) SetLCDAddr(addr uint32) { p.lcdAddr = addr }

// WavBuffer exposes the recorder's working buffer for the snapshot codec.
func (p *Ports) WavBuffer() []byte { return p.wav.buffer[:] }

// WavState exposes the recorder's scalar fields for the snapshot codec.
func (p *Ports) WavState() (flags, index uint8, playing bool) {
	return p.wav.flags, p.wav.index, p.wav.playing
}

// SetWavState restores the recorder's scalar fields from a snapshot.
func (p *Ports) SetWavState(flags, index uint8, playing bool) {
	p.wav.flags, p.wav.index, p.wav.playing = flags, index, playing
}

// Reset clears the latched LCD address and recorder state, matching
// ResetStates in the original source.
func (p *Ports) Reset() {
	p.lcdAddr = 0
	p.wav = wavState{}
}

func (p *Ports) io() []byte { return p.ram.IOPorts() }

// Read dispatches a read to one of the 64 I/O ports.
func (p *Ports) Read(addr uint8) uint8 {
	switch addr {
	case 0x3B:
		if p.io()[0x3D]&0x03 == 0 {
			return p.clk.Buffer()[0x3B] &^ 0x01
		}
		return p.io()[addr]
	case 0x3F:
		return p.clk.ReadIndexed(p.io()[0x3E])
	default:
		return p.io()[addr]
	}
}

// Write dispatches a write to one of the 64 I/O ports.
func (p *Ports) Write(addr uint8, value uint8) {
	switch addr {
	case 0x00:
		old := p.io()[addr]
		p.io()[addr] = value
		if value != old {
			p.mm.SwitchBank()
		}
	case 0x05:
		old := p.io()[addr]
		p.io()[addr] = value
		if (old^value)&0x08 != 0 {
			p.kp.SetSlept(value&0x08 == 0)
		}
	case 0x06:
		p.io()[addr] = value
		if p.lcdAddr == 0 {
			p.lcdAddr = uint32(p.io()[0x0C]&0x03)<<12 | uint32(value)<<4
		}
		p.io()[0x09] &^= 0x01
	case 0x08:
		p.io()[addr] = value
		p.io()[0x0B] &^= 0x01
	case 0x09:
		p.io()[addr] = value
		rows := p.kp.Rows()
		switch value {
		case 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80:
			for i := 0; i < 8; i++ {
				if value == 1<<i {
					p.io()[0x08] = rows[i]
				}
			}
		case 0x00:
			p.io()[0x0B] |= 0x01
			if rows[7] == 0xFE {
				p.io()[0x0B] &^= 0x01
			}
		case 0x7F:
			if p.io()[0x15] == 0x7F {
				var all uint8
				for _, r := range rows {
					all |= r
				}
				p.io()[0x08] = all
			}
		}
	case 0x0A:
		old := p.io()[addr]
		p.io()[addr] = value
		if value != old {
			p.mm.ReloadBBS(value)
		}
	case 0x0D:
		old := p.io()[addr]
		p.io()[addr] = value
		if value != old {
			p.mm.SwitchVolume(value, p.io()[0x0A])
		}
	case 0x0F:
		old := p.io()[addr] & 0x07
		p.io()[addr] = value
		newBlock := value & 0x07
		if newBlock != old {
			p.mm.SwitchZeroPageWindow(old, newBlock)
		}
	case 0x20:
		p.io()[addr] = value
		if value == 0x80 || value == 0x40 {
			p.wav.buffer = [WavBufferSize]byte{}
			p.io()[0x20] = 0
			p.wav.flags = 1
			p.wav.index = 0
		}
	case 0x23:
		p.io()[addr] = value
		switch value {
		case 0xC2:
			if p.wav.index < WavBufferSize {
				p.wav.buffer[p.wav.index] = p.io()[0x22]
			}
		case 0xC4:
			if p.wav.index < WavBufferSize {
				p.wav.buffer[p.wav.index] = p.io()[0x22]
				p.wav.index++
			}
		case 0x80:
			p.io()[0x20] = 0x80
			p.wav.flags = 0
			if p.wav.index != 0 && !p.wav.playing {
				if p.OnWavReady != nil {
					sample := make([]byte, p.wav.index)
					copy(sample, p.wav.buffer[:p.wav.index])
					p.OnWavReady(sample)
				}
				p.wav.index = 0
			}
		}
	case 0x3F:
		p.io()[addr] = value
		idx := p.io()[0x3E]
		if override, ok := p.clk.WriteIndexed(idx, value); ok {
			p.io()[0x3D] = override
		}
	default:
		p.io()[addr] = value
	}
}
