package ksz8851

import (
	"errors"

	"github.com/soypat/lneto/ethernet"
)

// Receive filtering, wake-on-LAN and flow control knobs. All of these are
// chip-side toggles sharing the register access layer; none involve frame
// traffic.

// MulticastHashBit returns the hash table register offset (0..3) and bit
// position (0..15) a multicast address maps to. The chip indexes its 64-bit
// hash table with the top 6 bits of the Ethernet CRC of the destination
// address.
func MulticastHashBit(mac [6]byte) (reg, bit uint8) {
	idx := uint8(ethernet.CRC32(mac[:]) >> 26)
	return idx >> 4, idx & 0xf
}

// SetMulticastHashFilter programs the 64-bit multicast hash table. Build the
// table with MulticastHashBit and enable hash filtering with RXCR1MulticastHash
// via SetRxFilter for it to take effect.
func (d *Dev) SetMulticastHashFilter(table [4]uint16) error {
	for i, v := range table {
		err := d.write16(addrMAHTR0+2*uint8(i), v)
		if err != nil {
			return err
		}
	}
	return nil
}

// SetRxFilter replaces the address filtering bits of the receive control
// register, leaving checksum and enable bits untouched. Combine RXCR1
// constants: RXCR1Broadcast, RXCR1Multicast, RXCR1MulticastHash, RXCR1Unicast,
// RXCR1All and RXCR1InverseFilter.
func (d *Dev) SetRxFilter(filter RXCR1) error {
	const filterMask = RXCR1PhysicalFilter | RXCR1MulticastHash | RXCR1Broadcast |
		RXCR1Multicast | RXCR1Unicast | RXCR1All | RXCR1InverseFilter
	return d.modify16(addrRXCR1, uint16(filter&filterMask), uint16(filterMask))
}

// EnableMagicPacket toggles magic-packet wakeup detection.
func (d *Dev) EnableMagicPacket(on bool) error {
	if on {
		return d.modify16(addrWFCR, uint16(WFCRMagicPacketEnable), 0)
	}
	return d.modify16(addrWFCR, 0, uint16(WFCRMagicPacketEnable))
}

// SetWakeupFrame programs one of the four wakeup frame pattern slots with the
// expected CRC of the pattern and the 64-byte match mask, then enables the
// slot. Slots are numbered 0 through 3.
func (d *Dev) SetWakeupFrame(slot int, crc uint32, mask [4]uint16) error {
	if slot < 0 || slot > 3 {
		return errors.New("ksz8851: wakeup frame slot out of range")
	}
	base := uint8(addrWF0CRC0 + 0x10*slot)
	err := d.write16(base, uint16(crc))
	if err != nil {
		return err
	}
	err = d.write16(base+2, uint16(crc>>16))
	if err != nil {
		return err
	}
	for i, v := range mask {
		err = d.write16(base+4+2*uint8(i), v)
		if err != nil {
			return err
		}
	}
	return d.modify16(addrWFCR, uint16(WFCRFrame0Enable)<<slot, 0)
}

// SetFlowControlWatermarks sets the RXQ occupancy levels (in 4-byte units) at
// which the chip starts sending PAUSE frames, stops sending them, and signals
// overrun. Effective only with flow control enabled in TXCR/RXCR1.
func (d *Dev) SetFlowControlWatermarks(low, high, overrun uint16) error {
	const watermarkMask = 0x0fff
	err := d.write16(addrFCLWR, low&watermarkMask)
	if err != nil {
		return err
	}
	err = d.write16(addrFCHWR, high&watermarkMask)
	if err != nil {
		return err
	}
	return d.write16(addrFCOWR, overrun&watermarkMask)
}

// FlushTxQueue clears the TXQ memory and resets the TX frame pointer. The
// datasheet requires the transmitter disabled around the flush; it is
// re-enabled before returning.
func (d *Dev) FlushTxQueue() error {
	err := d.modify16(addrTXCR, 0, uint16(TXCREnable))
	if err != nil {
		return err
	}
	err = d.modify16(addrTXCR, uint16(TXCRFlushQueue), 0)
	if err != nil {
		return err
	}
	err = d.modify16(addrTXCR, 0, uint16(TXCRFlushQueue))
	if err != nil {
		return err
	}
	return d.modify16(addrTXCR, uint16(TXCREnable), 0)
}

// FlushRxQueue clears the RXQ memory and resets the RX frame pointer, with
// the receiver disabled around the flush as the datasheet requires.
func (d *Dev) FlushRxQueue() error {
	err := d.modify16(addrRXCR1, 0, uint16(RXCR1Enable))
	if err != nil {
		return err
	}
	err = d.modify16(addrRXCR1, uint16(RXCR1FlushQueue), 0)
	if err != nil {
		return err
	}
	err = d.modify16(addrRXCR1, 0, uint16(RXCR1FlushQueue))
	if err != nil {
		return err
	}
	return d.modify16(addrRXCR1, uint16(RXCR1Enable), 0)
}
