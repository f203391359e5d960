// Package keypad implements the NC1020's 8x8 keypad matrix, and the
// wake-from-sleep handshake a key press drives when the device is asleep.
//
// Grounded on SetKey/ReleaseAllKeys in the original source.
package keypad

// NumRows is the number of rows in the keypad matrix.
const NumRows = 8

// Matrix holds the 8x8 keypad state and the sleep/wake handshake fields
// SetKey drives.
type Matrix struct {
	rows [NumRows]uint8

	slept         bool
	shouldWakeUp  bool
	wakeUpPending bool
	wakeUpKey     uint8
}

// Rows exposes the raw 8-byte matrix (keypad_matrix in the original
// source), one bitmask per row, for port 0x09's read path and the snapshot
// codec.
func (m *Matrix) Rows() []uint8 { return m.rows[:] }

// Slept reports whether the device is currently asleep.
func (m *Matrix) Slept() bool { return m.slept }

// SetSlept sets the sleep flag directly; used by the I/O port handler for
// port 0x05, which toggles sleep independently of key presses.
func (m *Matrix) SetSlept(v bool) { m.slept = v }

// ShouldWakeUp reports whether a wake-up is pending delivery on the next
// timer1 tick.
func (m *Matrix) ShouldWakeUp() bool { return m.shouldWakeUp }

// ConsumeShouldWakeUp reports and clears ShouldWakeUp, matching the
// should_wake_up handling in RunTimeSlice's timer1 block.
func (m *Matrix) ConsumeShouldWakeUp() bool {
	v := m.shouldWakeUp
	m.shouldWakeUp = false
	return v
}

// WakeUpPending and WakeUpKey back the 0x045F wake-key injection in Load().
func (m *Matrix) WakeUpPending() bool { return m.wakeUpPending }
func (m *Matrix) WakeUpKey() uint8    { return m.wakeUpKey }

// ConsumeWakeUpPending reports and clears WakeUpPending.
func (m *Matrix) ConsumeWakeUpPending() bool {
	v := m.wakeUpPending
	m.wakeUpPending = false
	return v
}

// SetShouldWakeUp, SetWakeUpPending and SetWakeUpKey restore the wake
// handshake fields from a snapshot.
func (m *Matrix) SetShouldWakeUp(v bool)  { m.shouldWakeUp = v }
func (m *Matrix) SetWakeUpPending(v bool) { m.wakeUpPending = v }
func (m *Matrix) SetWakeUpKey(v uint8)    { m.wakeUpKey = v }

// wakeKeyFor maps a wake-capable key id to the code SetKey injects at
// 0x045F once the device wakes, per the switch in the original source.
func wakeKeyFor(keyID uint8) uint8 {
	switch keyID {
	case 0x08:
		return 0x00
	case 0x09:
		return 0x0A
	case 0x0A:
		return 0x08
	case 0x0B:
		return 0x06
	case 0x0C:
		return 0x04
	case 0x0D:
		return 0x02
	case 0x0E:
		return 0x0C
	case 0x0F:
		return 0x00
	default:
		return 0x00
	}
}

// SetKey records a key transition. keyID is row + col*8 as the original
// source packs it; down reports whether the key was pressed (true) or
// released (false).
//
// Pressing the power key (0x0F) while awake puts the device to sleep.
// Pressing any key in 0x08-0x0F (except 0x0E) while asleep arms a pending
// wake-up: the next timer1 tick in RunTimeSlice redirects PC to the reset
// vector instead of servicing the periodic IRQ.
func (m *Matrix) SetKey(keyID uint8, down bool) {
	row := keyID % 8
	col := keyID / 8
	bits := uint8(1) << col
	if keyID == 0x0F {
		bits = 0xFE
	}
	if down {
		m.rows[row] |= bits
	} else {
		m.rows[row] &^= bits
	}

	if !down {
		return
	}

	if m.slept {
		if keyID >= 0x08 && keyID <= 0x0F && keyID != 0x0E {
			m.wakeUpKey = wakeKeyFor(keyID)
			m.shouldWakeUp = true
			m.wakeUpPending = true
			m.slept = false
		}
		return
	}

	if keyID == 0x0F {
		m.slept = true
	}
}

// ReleaseAllKeys clears the entire matrix, leaving sleep/wake state alone.
func (m *Matrix) ReleaseAllKeys() {
	m.rows = [NumRows]uint8{}
}
