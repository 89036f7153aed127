// Package chipsim simulates a KSZ8851SNL behind the driver's Bus interface:
// a register file with reset defaults, the TXQ/RXQ streaming protocol and the
// handshake side effects the driver depends on (global reset, manual enqueue,
// error frame release, auto-dequeue). It exists so driver behavior can be
// tested on a host without hardware.
package chipsim

import (
	"errors"
	"fmt"

	"github.com/soypat/ksz8851"
	"github.com/soypat/lneto/ethernet"
)

// Register addresses the simulator gives side effects or derived values.
// Kept in sync with the driver's register table.
const (
	regGRR     = 0x26
	regTXSR    = 0x72
	regTXMIR   = 0x78
	regRXFHSR  = 0x7C
	regRXFHBCR = 0x7E
	regTXQCR   = 0x80
	regRXQCR   = 0x82
	regISR     = 0x92
	regRXFCTR  = 0x9C
	regCIDER   = 0xC0
	regP1MBSR  = 0xE6
)

const (
	rxqcrStartDMA   = 1 << 3
	rxqcrReleaseErr = 1 << 0
	txqcrManual     = 1 << 0

	defaultTxAvail = 6144
	// releasePolls is how many RXQCR reads report the release bit still set
	// after an error frame discard, exercising the driver's bounded wait.
	releasePolls = 2
)

// SentFrame is one frame the simulated MAC accepted via manual enqueue.
type SentFrame struct {
	CtrlWord uint16 // TX control word as written to the TXQ
	Length   uint16 // length field as written to the TXQ
	Payload  []byte
	Raw      []byte // full stream including opcode byte and padding
}

// FrameID returns the 6-bit identifier from the control word.
func (f SentFrame) FrameID() uint8 { return uint8(f.CtrlWord & 0x3f) }

type rxFrame struct {
	status  uint16
	payload []byte
}

// Chip is a simulated KSZ8851SNL. The zero value is not usable; call New.
// Chip is not safe for concurrent use, matching the single-owner bus model.
type Chip struct {
	regs [128]uint16

	rxq       []rxFrame
	pendingTx []byte
	inReset   bool
	releaseN  int
	linkUp    bool
	txAvail   uint16

	// Sent holds every frame accepted by manual enqueue, in order.
	Sent []SentFrame
	// Transactions counts bus transactions of any kind.
	Transactions int
	// FailNext, when non-nil, makes the next transaction fail with it.
	FailNext error
	// CorruptStreamHeader makes the RXQ stream carry a status word differing
	// from the one served over register access.
	CorruptStreamHeader bool
	// OverrideCIDER, when nonzero, replaces the chip identity register to
	// simulate a different part on the bus.
	OverrideCIDER uint16
	// OverrideMBIR, when nonzero, replaces the self-test result register.
	OverrideMBIR uint16
	// OverrideRxByteCount, when nonzero, replaces the byte count reported for
	// the frame at the head of the RXQ to simulate a confused chip.
	OverrideRxByteCount uint16
	// TxParseErr records a malformed TXQ stream seen at enqueue time.
	TxParseErr error
}

// New returns a simulated chip in power-on state with the link down.
func New() *Chip {
	c := &Chip{txAvail: defaultTxAvail}
	c.resetRegs()
	return c
}

func (c *Chip) resetRegs() {
	c.regs = [128]uint16{}
	c.regs[0x08>>1] = 0x0100 // CCR: strapped for SPI
	c.regs[regCIDER>>1] = 0x8872
	c.regs[0x24>>1] = 0x1010 // MBIR: both self-tests finished, none failed
	c.regs[0xE4>>1] = 0x3100 // P1MBCR: AN enabled, 100M full advertised
}

// SetLink raises or drops the simulated PHY link. Survives chip reset, as a
// cable would.
func (c *Chip) SetLink(up bool) { c.linkUp = up }

// SetTxAvail overrides the TXQ memory the chip reports as available.
func (c *Chip) SetTxAvail(n uint16) { c.txAvail = n }

// EnqueueRx queues a good frame for reception. The stream byte count the chip
// reports is len(payload)+6, matching the header/trailer accounting the real
// chip performs with the 2-byte IP alignment offset enabled.
func (c *Chip) EnqueueRx(payload []byte) {
	c.EnqueueRxWithStatus(payload, 1<<15|1<<5) // valid | unicast
}

// EnqueueRxWithStatus queues a frame with an explicit frame header status
// word, e.g. with error bits set to provoke a discard.
func (c *Chip) EnqueueRxWithStatus(payload []byte, status uint16) {
	c.rxq = append(c.rxq, rxFrame{status: status, payload: append([]byte{}, payload...)})
}

// PendingRx returns the number of frames queued and not yet read or released.
func (c *Chip) PendingRx() int { return len(c.rxq) }

// Snapshot returns a copy of the static register file for comparing chip
// configuration between runs.
func (c *Chip) Snapshot() [128]uint16 { return c.regs }

// Transaction implements [ksz8851.Bus].
func (c *Chip) Transaction(ops ...ksz8851.Op) error {
	c.Transactions++
	if c.FailNext != nil {
		err := c.FailNext
		c.FailNext = nil
		return err
	}
	var w []byte
	var r [][]byte
	for _, op := range ops {
		if op.W != nil {
			w = append(w, op.W...)
		}
		if op.R != nil {
			r = append(r, op.R)
		}
	}
	if len(w) == 0 {
		return errors.New("chipsim: transaction without command phase")
	}
	switch w[0] >> 6 {
	case 0b00: // register read
		addr, err := decodeRegCmd(w)
		if err != nil {
			return err
		}
		v := c.readReg(addr)
		return fill(r, []byte{uint8(v), uint8(v >> 8)})
	case 0b01: // register write
		addr, err := decodeRegCmd(w)
		if err != nil {
			return err
		}
		if len(w) != 4 {
			return fmt.Errorf("chipsim: register write of %d data bytes", len(w)-2)
		}
		c.writeReg(addr, uint16(w[2])|uint16(w[3])<<8)
		return nil
	case 0b10: // RXQ stream read
		if c.regs[regRXQCR>>1]&rxqcrStartDMA == 0 {
			return errors.New("chipsim: RXQ stream read without DMA access enabled")
		}
		if len(c.rxq) == 0 {
			return errors.New("chipsim: RXQ stream read with empty queue")
		}
		stream := c.buildRxStream()
		err := fill(r, stream)
		if err != nil {
			return err
		}
		// Auto-dequeue: the driver configures adrfe, so a fully read frame
		// leaves the queue.
		c.rxq = c.rxq[1:]
		return nil
	case 0b11: // TXQ stream write
		if c.regs[regRXQCR>>1]&rxqcrStartDMA == 0 {
			return errors.New("chipsim: TXQ stream write without DMA access enabled")
		}
		c.pendingTx = append(c.pendingTx, w...)
		return nil
	}
	panic("unreachable")
}

// decodeRegCmd reverses the 2-byte command header into a register address,
// validating the byte-enable nibble against the address alignment.
func decodeRegCmd(w []byte) (uint8, error) {
	if len(w) < 2 {
		return 0, errors.New("chipsim: short command header")
	}
	base := (w[0]&0b11)<<6 | (w[1]>>2)&0x3C
	switch (w[0] >> 2) & 0xf {
	case 0b0011:
		return base, nil
	case 0b1100:
		return base + 2, nil
	}
	return 0, fmt.Errorf("chipsim: bad byte enable %#04b for address %#02x", (w[0]>>2)&0xf, base)
}

// fill distributes src across the read legs in order and errors if the total
// read length disagrees with the stream the chip would clock out.
func fill(r [][]byte, src []byte) error {
	for _, leg := range r {
		if len(src) < len(leg) {
			return fmt.Errorf("chipsim: read overrun, %d bytes left for %d byte leg", len(src), len(leg))
		}
		copy(leg, src)
		src = src[len(leg):]
	}
	if len(src) != 0 {
		return fmt.Errorf("chipsim: read underrun, %d stream bytes unread", len(src))
	}
	return nil
}

// Reg exposes the register file to tests, including derived registers.
func (c *Chip) Reg(addr uint8) uint16 { return c.readReg(addr) }

func (c *Chip) readReg(addr uint8) uint16 {
	switch addr {
	case regCIDER:
		if c.OverrideCIDER != 0 {
			return c.OverrideCIDER
		}
	case 0x24: // MBIR
		if c.OverrideMBIR != 0 {
			return c.OverrideMBIR
		}
	}
	switch addr {
	case regTXMIR:
		return c.txAvail
	case regRXFCTR:
		return uint16(len(c.rxq))<<8 | c.regs[addr>>1]&0x00ff
	case regRXFHSR:
		if len(c.rxq) == 0 {
			return 0
		}
		return c.rxq[0].status
	case regRXFHBCR:
		if len(c.rxq) == 0 {
			return 0
		}
		if c.OverrideRxByteCount != 0 {
			return c.OverrideRxByteCount
		}
		return uint16(len(c.rxq[0].payload)) + 6
	case regRXQCR:
		v := c.regs[addr>>1]
		if c.releaseN > 0 {
			c.releaseN--
			return v | rxqcrReleaseErr
		}
		return v
	case regP1MBSR:
		const capabilities = 0x7800 | 1<<3 | 1<<0
		v := uint16(capabilities)
		if c.linkUp {
			v |= 1<<2 | 1<<5 // link up, AN complete
		}
		return v
	}
	return c.regs[addr>>1]
}

func (c *Chip) writeReg(addr uint8, v uint16) {
	switch addr {
	case regGRR:
		if v&1 != 0 {
			c.inReset = true
		} else if c.inReset {
			c.inReset = false
			c.resetRegs()
			c.rxq = nil
			c.pendingTx = nil
			c.releaseN = 0
		}
		c.regs[addr>>1] = v
	case regTXQCR:
		if v&txqcrManual != 0 {
			c.enqueuePending()
		}
		// Manual enqueue self-clears once the frame is out; the simulated
		// MAC transmits instantly.
		c.regs[addr>>1] = v &^ txqcrManual
	case regRXQCR:
		if v&rxqcrReleaseErr != 0 && c.releaseN == 0 {
			if len(c.rxq) > 0 {
				c.rxq = c.rxq[1:]
			}
			c.releaseN = releasePolls
		}
		c.regs[addr>>1] = v &^ rxqcrReleaseErr
	case regISR:
		// Write 1 to clear.
		c.regs[addr>>1] &^= v
	case regCIDER, regTXSR, regRXFHSR, regRXFHBCR, regTXMIR:
		// Read-only.
	default:
		c.regs[addr>>1] = v
	}
}

func (c *Chip) enqueuePending() {
	stream := c.pendingTx
	c.pendingTx = nil
	if len(stream) < 5 {
		c.TxParseErr = fmt.Errorf("chipsim: short TXQ stream of %d bytes", len(stream))
		return
	}
	ctl := uint16(stream[1]) | uint16(stream[2])<<8
	length := uint16(stream[3]) | uint16(stream[4])<<8
	body := stream[5:]
	pad := (4 - int(length)%4) % 4
	if len(body) != int(length)+pad {
		c.TxParseErr = fmt.Errorf("chipsim: TXQ stream body %d bytes, want %d payload + %d pad",
			len(body), length, pad)
		return
	}
	for _, b := range body[length:] {
		if b != 0 {
			c.TxParseErr = errors.New("chipsim: nonzero TXQ padding")
			return
		}
	}
	c.Sent = append(c.Sent, SentFrame{
		CtrlWord: ctl,
		Length:   length,
		Payload:  append([]byte{}, body[:length]...),
		Raw:      append([]byte{}, stream...),
	})
	c.regs[regTXSR>>1] = ctl & 0x3f
	c.regs[regISR>>1] |= 1 << 14 // TX done
}

// buildRxStream lays out the head frame exactly as the chip clocks it out
// with single-frame bursts and the IP header offset enabled: 4 dummy bytes,
// status word, byte count, 2 alignment bytes, payload, FCS, then discard
// bytes up to 4-byte alignment of the byte count.
func (c *Chip) buildRxStream() []byte {
	f := c.rxq[0]
	bc := uint16(len(f.payload)) + 6
	status := f.status
	if c.CorruptStreamHeader {
		status ^= 1 << 6 // flip the multicast classification bit
	}
	fcs := ethernet.CRC32(f.payload)
	stream := make([]byte, 0, 12+len(f.payload)+4+3)
	stream = append(stream, 0, 0, 0, 0)
	stream = append(stream, uint8(status), uint8(status>>8))
	stream = append(stream, uint8(bc), uint8(bc>>8))
	stream = append(stream, 0, 0)
	stream = append(stream, f.payload...)
	stream = append(stream, uint8(fcs), uint8(fcs>>8), uint8(fcs>>16), uint8(fcs>>24))
	for i := 0; i < (4-int(bc)%4)%4; i++ {
		stream = append(stream, 0)
	}
	return stream
}
