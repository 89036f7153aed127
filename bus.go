package ksz8851

// The KSZ8851SNL is driven over a 4-wire SPI link. Every access is a single
// chip-select window containing a command phase followed by a data phase.
// Register accesses use a 2-byte command header; bulk frame transfers into the
// TXQ or out of the RXQ use a single opcode byte followed by raw frame data.

// Op describes one leg of a bus transaction. Exactly one of W or R is non-nil:
// a W leg clocks the bytes out to the chip, an R leg clocks len(R) bytes in.
type Op struct {
	W []byte
	R []byte
}

// Write returns an Op that writes b to the bus.
func Write(b []byte) Op { return Op{W: b} }

// Read returns an Op that fills b from the bus.
func Read(b []byte) Op { return Op{R: b} }

// Bus is a HAL for the SPI device the KSZ8851SNL is wired to.
// Implementations assert chip select for the duration of a Transaction call and
// perform the legs in order, each leg completing before the next begins. The
// bus is exclusively owned by the driver instance; implementations need not be
// safe for concurrent use.
//
// On microcontroller targets this is typically a thin wrapper around
// machine.SPI plus a CS pin; in tests it is a simulated chip.
type Bus interface {
	Transaction(ops ...Op) error
}

// opcode is the top 2 bits of the first byte clocked out in any transaction.
type opcode uint8

const (
	opRegRead  opcode = 0b00
	opRegWrite opcode = 0b01
	opRXRead   opcode = 0b10 // RXQ FIFO streaming read
	opTXWrite  opcode = 0b11 // TXQ FIFO streaming write
)

// streamCmd returns the single command byte beginning a FIFO streaming
// transfer. Only opRXRead and opTXWrite are valid stream opcodes.
func streamCmd(op opcode) uint8 { return uint8(op) << 6 }

// regCmd builds the 2-byte command header for a 16-bit register access.
// The chip only addresses 4-byte-aligned windows with per-byte enables, so the
// byte-enable nibble is fully determined by the address alignment: 0b0011
// selects the low half of the window (addr≡0 mod 4), 0b1100 the high half
// (addr≡2 mod 4). All registers are 16 bits wide; an odd address is a
// programming error, not a runtime condition.
func regCmd(op opcode, addr uint8) [2]byte {
	var byteEnable uint8
	switch addr & 0b11 {
	case 0:
		byteEnable = 0b0011
	case 2:
		byteEnable = 0b1100
	default:
		panic("ksz8851: misaligned register address")
	}
	return [2]byte{
		uint8(op)<<6 | byteEnable<<2 | addr>>6,
		(addr & 0b0011_1100) << 2,
	}
}

// read16 reads the 16-bit register at addr. Register data is little-endian on
// the wire.
func (d *Dev) read16(addr uint8) (uint16, error) {
	cmd := regCmd(opRegRead, addr)
	var data [2]byte
	err := d.bus.Transaction(Write(cmd[:]), Read(data[:]))
	if err != nil {
		return 0, &TransportError{Op: "read16", Err: err}
	}
	return uint16(data[0]) | uint16(data[1])<<8, nil
}

// write16 writes the 16-bit register at addr.
func (d *Dev) write16(addr uint8, value uint16) error {
	cmd := regCmd(opRegWrite, addr)
	data := [2]byte{uint8(value), uint8(value >> 8)}
	err := d.bus.Transaction(Write(cmd[:]), Write(data[:]))
	if err != nil {
		return &TransportError{Op: "write16", Err: err}
	}
	return nil
}

// modify16 performs a read-modify-write of the register at addr, clearing the
// bits in clear and setting the bits in set, in that order.
func (d *Dev) modify16(addr uint8, set, clear uint16) error {
	v, err := d.read16(addr)
	if err != nil {
		return err
	}
	return d.write16(addr, v&^clear|set)
}
