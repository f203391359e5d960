package cpu_test

import (
	"testing"

	"github.com/Project-Muteki/nc1020/hardware/cpu"
)

type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(addr uint16) uint8       { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, v uint8)   { b.mem[addr] = v }
func (b *flatBus) load(addr uint16, code []byte) {
	copy(b.mem[addr:], code)
}

func newCPU(resetVector uint16) (*cpu.CPU, *flatBus) {
	bus := &flatBus{}
	bus.mem[0xFFFC] = byte(resetVector)
	bus.mem[0xFFFD] = byte(resetVector >> 8)
	c := cpu.New(bus)
	c.Reset()
	return c, bus
}

func TestResetLoadsVector(t *testing.T) {
	c, _ := newCPU(0x8000)
	if c.PC.Value() != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000", c.PC.Value())
	}
	if c.SP.Value() != 0xFF {
		t.Fatalf("SP = %#02x, want 0xFF", c.SP.Value())
	}
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	c, bus := newCPU(0x8000)
	bus.load(0x8000, []byte{0xA9, 0x00}) // LDA #$00
	c.Step()
	if !c.P.Zero || c.P.Sign {
		t.Fatalf("unexpected flags after LDA #$00: %s", c.P)
	}

	c, bus = newCPU(0x8000)
	bus.load(0x8000, []byte{0xA9, 0x80}) // LDA #$80
	c.Step()
	if c.P.Zero || !c.P.Sign {
		t.Fatalf("unexpected flags after LDA #$80: %s", c.P)
	}
}

func TestADCCarryAndOverflow(t *testing.T) {
	c, bus := newCPU(0x8000)
	bus.load(0x8000, []byte{0xA9, 0x7F, 0x69, 0x01}) // LDA #$7F; ADC #$01
	c.Step()
	c.Step()
	if c.A.Value() != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", c.A.Value())
	}
	if !c.P.Overflow || !c.P.Sign || c.P.Carry {
		t.Fatalf("unexpected flags after signed overflow: %s", c.P)
	}
}

func TestSBCBorrow(t *testing.T) {
	c, bus := newCPU(0x8000)
	// SEC; LDA #$05; SBC #$06 -> borrow, carry clear, result 0xFF
	bus.load(0x8000, []byte{0x38, 0xA9, 0x05, 0xE9, 0x06})
	c.Step()
	c.Step()
	c.Step()
	if c.A.Value() != 0xFF {
		t.Fatalf("A = %#02x, want 0xFF", c.A.Value())
	}
	if c.P.Carry {
		t.Fatalf("carry should be clear after a borrow")
	}
}

func TestBranchTakenCyclesIncludePageCross(t *testing.T) {
	c, bus := newCPU(0x80EE)
	bus.load(0x80EE, []byte{0xF0, 0x20}) // BEQ +32, crosses from 0x80F0 to 0x8110
	c.P.Zero = true
	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 (2 base + taken + page cross)", cycles)
	}
	if c.PC.Value() != 0x8110 {
		t.Fatalf("PC = %#04x, want 0x8110", c.PC.Value())
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, bus := newCPU(0x8000)
	bus.load(0x8000, []byte{0x20, 0x00, 0x90}) // JSR $9000
	bus.load(0x9000, []byte{0x60})             // RTS
	c.Step()
	if c.PC.Value() != 0x9000 {
		t.Fatalf("PC = %#04x after JSR, want 0x9000", c.PC.Value())
	}
	c.Step()
	if c.PC.Value() != 0x8003 {
		t.Fatalf("PC = %#04x after RTS, want 0x8003", c.PC.Value())
	}
}

func TestBRKPushesBreakFlagAndJumpsToIRQVector(t *testing.T) {
	c, bus := newCPU(0x8000)
	bus.mem[0xFFFE] = 0x00
	bus.mem[0xFFFF] = 0x90
	bus.load(0x8000, []byte{0x00}) // BRK
	c.Step()
	if c.PC.Value() != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000", c.PC.Value())
	}
	if !c.P.InterruptDisable {
		t.Fatalf("interrupt-disable should be set after BRK")
	}
	pushedFlags := bus.mem[0x01FD]
	if pushedFlags&0x10 == 0 {
		t.Fatalf("break flag should be set in the pushed status byte")
	}
}

func TestServiceIRQRespectsInterruptDisable(t *testing.T) {
	c, _ := newCPU(0x8000)
	c.P.InterruptDisable = true
	taken, cycles := c.ServiceIRQ()
	if taken || cycles != 0 {
		t.Fatalf("IRQ should not be serviced while I flag is set")
	}
}
