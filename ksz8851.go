// Package ksz8851 implements a driver for the Microchip KSZ8851SNL 10/100
// Ethernet controller attached over SPI. The driver owns the register access
// protocol, the chip bring-up sequence and the TXQ/RXQ frame transfer
// handshakes; the SPI transport, interrupt wiring and retry policy belong to
// the caller. See the [Bus] interface for the transport contract.
//
// The driver is single threaded: the chip exposes one command
// window and every operation is a strictly ordered sequence of bus
// transactions. Callers running concurrent goroutines must serialize access
// externally.
package ksz8851

import (
	"errors"
	"log/slog"
	"time"
)

// Expected CIDER identity of the KSZ8851SNL.
const (
	chipFamilyID = 0x88
	chipChipID   = 0x7
)

const (
	// MaxFrameSize is the largest frame the chip can queue for transmission.
	MaxFrameSize = 2000
	// resetSettle is the delay after asserting and after releasing the global
	// soft reset.
	resetSettle = 10 * time.Millisecond
	// rxFrameThreshold is the receive frame count that raises the RX
	// interrupt. One keeps latency minimal for polled operation.
	rxFrameThreshold = 1
)

// Config holds optional driver dependencies. The zero value is valid.
type Config struct {
	// Sleep is the timing source used for reset settle delays.
	// Defaults to time.Sleep.
	Sleep func(time.Duration)
	// Logger receives driver events. Nil disables logging.
	Logger *slog.Logger
}

// Dev is a driver instance bound to a single KSZ8851SNL. All configuration
// lives on the chip itself; the driver holds only the bus handle, the timing
// source and the next TX frame identifier.
type Dev struct {
	bus   Bus
	sleep func(time.Duration)
	log   *slog.Logger
	// nextFrameID is the 6-bit diagnostic identifier written into the next TX
	// control word, advanced modulo 32 after each successful enqueue.
	nextFrameID uint8
}

// New returns a driver for the chip behind bus. The chip is untouched until
// Init is called.
func New(bus Bus, cfg Config) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("ksz8851: nil bus")
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Dev{
		bus:   bus,
		sleep: sleep,
		log:   cfg.Logger,
	}, nil
}

// Init resets the chip and brings it into operating state:
//
//  1. Pulse the global soft reset and let it settle.
//  2. Verify chip identity and memory self-test results.
//  3. Configure the TX path: pointer auto-increment, no checksum generation,
//     no flow control, padding and CRC generation on.
//  4. Configure the RX path: pointer auto-increment, frame-count interrupt at
//     threshold 1, 2-byte IP header alignment, auto-dequeue, checksum
//     verification off, single-frame streaming bursts.
//  5. Enable interrupt sources and select manual per-frame enqueue.
//  6. Enable TX, then RX.
//
// Any failure aborts immediately and leaves the chip partially configured;
// the caller must restart from Init. Frames are transmitted with manual
// enqueue only: the chip's auto-enqueue mode is unreliable per the silicon
// errata and is never enabled.
func (d *Dev) Init() error {
	err := d.write16(addrGRR, uint16(GRRGlobalSoftReset))
	if err != nil {
		return err
	}
	d.sleep(resetSettle)
	err = d.write16(addrGRR, 0)
	if err != nil {
		return err
	}
	d.sleep(resetSettle)

	cider, err := d.read16(addrCIDER)
	if err != nil {
		return err
	}
	id := CIDER(cider)
	if id.FamilyID() != chipFamilyID || id.ChipID() != chipChipID {
		return &BadChipIDError{Family: id.FamilyID(), Chip: id.ChipID()}
	}
	d.info("chip identified",
		slog.Uint64("family", uint64(id.FamilyID())),
		slog.Uint64("chip", uint64(id.ChipID())),
		slog.Uint64("rev", uint64(id.RevisionID())),
	)
	mbir, err := d.read16(addrMBIR)
	if err != nil {
		return err
	}
	if MBIR(mbir)&(MBIRTxFail|MBIRRxFail) != 0 {
		return &SelfTestError{
			TxFailed: MBIR(mbir)&MBIRTxFail != 0,
			RxFailed: MBIR(mbir)&MBIRRxFail != 0,
		}
	}

	// TX path.
	err = d.modify16(addrTXFDPR, uint16(TXFDPRAutoIncrement), 0)
	if err != nil {
		return err
	}
	err = d.modify16(addrTXCR,
		uint16(TXCRPadding|TXCRCRC),
		uint16(TXCRChecksumICMP|TXCRChecksumTCP|TXCRChecksumIP|TXCRFlowControl))
	if err != nil {
		return err
	}

	// RX path.
	err = d.modify16(addrRXFDPR, uint16(RXFDPRAutoIncrement), 0)
	if err != nil {
		return err
	}
	err = d.modify16(addrRXFCTR, rxFrameThreshold, 0x00ff)
	if err != nil {
		return err
	}
	err = d.modify16(addrRXQCR,
		uint16(RXQCRFrameCountEnable|RXQCRIPHeaderOffset|RXQCRAutoDequeue), 0)
	if err != nil {
		return err
	}
	err = d.modify16(addrRXCR1,
		uint16(RXCR1FlowControl|RXCR1Broadcast|RXCR1Unicast),
		uint16(RXCR1ChecksumUDP|RXCR1ChecksumTCP|RXCR1ChecksumIP))
	if err != nil {
		return err
	}
	err = d.modify16(addrRXCR2,
		uint16(RXCR2FragmentPass|RXCR2ZeroChecksum|RXCR2UDPLite|RXCR2ChecksumICMP|RXCR2BurstFrame), 0)
	if err != nil {
		return err
	}

	err = d.modify16(addrIER,
		uint16(IERLinkChange|IERTxSpace|IERTxDone|IERRxDone|IERRxOverrun|IERSPIError), 0)
	if err != nil {
		return err
	}

	err = d.modify16(addrTXQCR, 0, uint16(TXQCRAutoEnqueue))
	if err != nil {
		return err
	}

	err = d.modify16(addrTXCR, uint16(TXCREnable), 0)
	if err != nil {
		return err
	}
	return d.modify16(addrRXCR1, uint16(RXCR1Enable), 0)
}

// ChipID reads the chip identity register and returns its family, chip and
// silicon revision identifiers.
func (d *Dev) ChipID() (family, chip, revision uint8, err error) {
	v, err := d.read16(addrCIDER)
	if err != nil {
		return 0, 0, 0, err
	}
	id := CIDER(v)
	return id.FamilyID(), id.ChipID(), id.RevisionID(), nil
}

// SetHardwareAddr6 programs the station MAC address used for unicast
// filtering. The chip ships without one; assign an address before enabling
// reception of unicast traffic.
func (d *Dev) SetHardwareAddr6(mac [6]byte) error {
	err := d.write16(addrMARH, uint16(mac[0])<<8|uint16(mac[1]))
	if err != nil {
		return err
	}
	err = d.write16(addrMARM, uint16(mac[2])<<8|uint16(mac[3]))
	if err != nil {
		return err
	}
	return d.write16(addrMARL, uint16(mac[4])<<8|uint16(mac[5]))
}

// HardwareAddr6 reads back the station MAC address. Zeroed or garbage until
// SetHardwareAddr6 is called, as the chip has no address of its own.
func (d *Dev) HardwareAddr6() (mac [6]byte, err error) {
	hi, err := d.read16(addrMARH)
	if err != nil {
		return mac, err
	}
	med, err := d.read16(addrMARM)
	if err != nil {
		return mac, err
	}
	lo, err := d.read16(addrMARL)
	if err != nil {
		return mac, err
	}
	mac = [6]byte{
		uint8(hi >> 8), uint8(hi),
		uint8(med >> 8), uint8(med),
		uint8(lo >> 8), uint8(lo),
	}
	return mac, nil
}

// IsLinkUp returns true if the embedded PHY reports an established link.
func (d *Dev) IsLinkUp() (bool, error) {
	v, err := d.read16(addrP1MBSR)
	if err != nil {
		return false, err
	}
	return P1MBSR(v)&P1MBSRLinkUp != 0, nil
}

// SetLEDs enables or disables the chip's link/activity LED outputs.
func (d *Dev) SetLEDs(on bool) error {
	if on {
		return d.modify16(addrP1MBCR, 0, uint16(P1MBCRDisableLED))
	}
	return d.modify16(addrP1MBCR, uint16(P1MBCRDisableLED), 0)
}

// SetLEDMode selects between the chip's two LED function mappings. With alt
// set LED1 indicates activity and LED0 link; the default maps LED1 to 100BT
// and LED0 to link/activity.
func (d *Dev) SetLEDMode(alt bool) error {
	if alt {
		return d.modify16(addrCGCR, uint16(CGCRLEDSel0), 0)
	}
	return d.modify16(addrCGCR, 0, uint16(CGCRLEDSel0))
}
