// Package clock implements the NC1020's 80-byte real-time-clock buffer:
// the wall-clock advance driven by the 2 Hz timer, the countdown-alarm
// test it feeds into the IRQ handler, and the indexed register write path
// exposed through I/O port 0x3F.
//
// Grounded on AdjustTime/IsCountDown/Write3F in the original source.
package clock

// BufferSize is the size of the clock's register file.
const BufferSize = 80

// Clock holds the 80-byte RTC register buffer and its flag byte.
type Clock struct {
	buff  [BufferSize]byte
	flags uint8
}

// Buffer exposes the raw register file: seconds/minutes/hours/day at
// indices 0-3, alarm compare registers at 5-7, and implementation-defined
// control bytes above that (clock_buff in the original source).
func (c *Clock) Buffer() []byte { return c.buff[:] }

// Flags returns clock_flags.
func (c *Clock) Flags() uint8 { return c.flags }

// SetFlags sets clock_flags, for the snapshot codec.
func (c *Clock) SetFlags(v uint8) { c.flags = v }

// Reset zeroes the buffer and flags.
func (c *Clock) Reset() {
	c.buff = [BufferSize]byte{}
	c.flags = 0
}

// AdjustTime advances the seconds/minutes/hours/day registers by one tick,
// carrying into the next register at 60/60/24 as appropriate. Called once
// per full timer0 cycle (every other 2 Hz toggle, i.e. once a second).
func (c *Clock) AdjustTime() {
	c.buff[0]++
	if c.buff[0] < 60 {
		return
	}
	c.buff[0] = 0
	c.buff[1]++
	if c.buff[1] < 60 {
		return
	}
	c.buff[1] = 0
	c.buff[2]++
	if c.buff[2] < 24 {
		return
	}
	c.buff[2] &= 0xC0
	c.buff[3]++
}

// IsCountDown reports whether one of the three alarm compare registers
// (indices 5-7, each gated by its own bit-7 enable) currently matches the
// corresponding clock field, and the countdown-alarm feature is armed via
// both clock_buff[10] bit 1 and clock_flags bit 1.
func (c *Clock) IsCountDown() bool {
	if c.buff[10]&0x02 == 0 || c.flags&0x02 == 0 {
		return false
	}
	return (c.buff[7]&0x80 != 0 && (c.buff[7]^c.buff[2])&0x1F == 0) ||
		(c.buff[6]&0x80 != 0 && (c.buff[6]^c.buff[1])&0x3F == 0) ||
		(c.buff[5]&0x80 != 0 && (c.buff[5]^c.buff[0])&0x3F == 0)
}

// ReadIndexed implements port 0x3F's indexed register read (Read3F in the
// original source): idx names a register in Buffer(), out of range reads
// as zero.
func (c *Clock) ReadIndexed(idx uint8) uint8 {
	if idx < BufferSize {
		return c.buff[idx]
	}
	return 0
}

// WriteIndexed implements port 0x3F's indexed register write (Write3F).
// Indices 0-6 are only writable while the buffer isn't halted (bit 7 of
// register 0x0B). Indices 0x0A and 0x0B fold part of the written value into
// clock_flags; 0x0B additionally reports an override byte the caller must
// store into I/O port 0x3D (ram_io[0x3D] = 0xF8 in the source).
func (c *Clock) WriteIndexed(idx, value uint8) (portOverride uint8, hasOverride bool) {
	if idx >= 0x07 {
		switch idx {
		case 0x0B:
			c.flags |= value & 0x07
			c.buff[0x0B] = value ^ ((c.buff[0x0B] ^ value) & 0x7F)
			return 0xF8, true
		case 0x0A:
			c.flags |= value & 0x07
			c.buff[0x0A] = value
		default:
			c.buff[idx%BufferSize] = value
		}
		return 0, false
	}
	if c.buff[0x0B]&0x80 == 0 && idx < BufferSize {
		c.buff[idx] = value
	}
	return 0, false
}
