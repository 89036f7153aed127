package ksz8851

// Register map of the KSZ8851SNL. All registers are 16 bits wide and live at
// even byte offsets in the chip's I/O space. Bit-field positions follow the
// KSZ8851SNL datasheet, revision 3.0. This file is pure data: addresses and
// field masks, no logic.

// Register addresses.
const (
	addrCCR   = 0x08 // Chip Configuration
	addrMARL  = 0x10 // Host MAC Address Low (bytes 4,5)
	addrMARM  = 0x12 // Host MAC Address Middle (bytes 2,3)
	addrMARH  = 0x14 // Host MAC Address High (bytes 0,1)
	addrOBCR  = 0x20 // On-chip Bus Control
	addrEEPCR = 0x22 // EEPROM Control
	addrMBIR  = 0x24 // Memory BIST Info
	addrGRR   = 0x26 // Global Reset
	addrWFCR  = 0x2A // Wakeup Frame Control

	// Wakeup frame pattern slots 0..3. Each slot holds a 32-bit expected CRC
	// followed by a 64-byte match mask packed into four 16-bit registers.
	addrWF0CRC0 = 0x30
	addrWF1CRC0 = 0x40
	addrWF2CRC0 = 0x50
	addrWF3CRC0 = 0x60

	addrTXCR    = 0x70 // Transmit Control
	addrTXSR    = 0x72 // Transmit Status
	addrRXCR1   = 0x74 // Receive Control 1
	addrRXCR2   = 0x76 // Receive Control 2
	addrTXMIR   = 0x78 // TXQ Memory Information
	addrRXFHSR  = 0x7C // Receive Frame Header Status
	addrRXFHBCR = 0x7E // Receive Frame Header Byte Count
	addrTXQCR   = 0x80 // TXQ Command
	addrRXQCR   = 0x82 // RXQ Command
	addrTXFDPR  = 0x84 // TX Frame Data Pointer
	addrRXFDPR  = 0x86 // RX Frame Data Pointer
	addrRXDTTR  = 0x8C // RX Duration Timer Threshold
	addrRXDBCTR = 0x8E // RX Data Byte Count Threshold
	addrIER     = 0x90 // Interrupt Enable
	addrISR     = 0x92 // Interrupt Status
	addrRXFCTR  = 0x9C // RX Frame Count & Threshold
	addrTXNTFSR = 0x9E // TX Next Total Frames Size

	addrMAHTR0 = 0xA0 // MAC Address Hash Table 0 (bits 0..15)
	addrMAHTR1 = 0xA2
	addrMAHTR2 = 0xA4
	addrMAHTR3 = 0xA6

	addrFCLWR = 0xB0 // Flow Control Low Watermark
	addrFCHWR = 0xB2 // Flow Control High Watermark
	addrFCOWR = 0xB4 // Flow Control Overrun Watermark

	addrCIDER = 0xC0 // Chip ID and Enable
	addrCGCR  = 0xC6 // Chip Global Control

	// MII management registers of the embedded 10/100 PHY, memory-mapped into
	// chip register space. They mirror IEEE 802.3 Clause 22 registers 0..5.
	addrP1MBCR  = 0xE4 // PHY 1 Basic Control (MII reg 0)
	addrP1MBSR  = 0xE6 // PHY 1 Basic Status (MII reg 1)
	addrPHY1ILR = 0xE8 // PHY 1 ID Low (MII reg 2)
	addrPHY1IHR = 0xEA // PHY 1 ID High (MII reg 3)
	addrP1ANAR  = 0xEC // PHY 1 Auto-Negotiation Advertisement (MII reg 4)
	addrP1ANLPR = 0xEE // PHY 1 Auto-Negotiation Link Partner Ability (MII reg 5)
)

// CCR is the Chip Configuration Register.
type CCR uint16

const (
	CCREEPROMPresence CCR = 1 << 9 // external EEPROM attached
	CCRSPIBusMode     CCR = 1 << 8 // chip strapped for SPI operation
	CCR32PinPackage   CCR = 1 << 0
)

// EEPCR is the EEPROM Control Register.
type EEPCR uint16

const (
	EEPCRAccessWrite EEPCR = 1 << 5 // software read(0)/write(1) access select
	EEPCRAccess      EEPCR = 1 << 4 // software access to EEPROM pins enabled
	EEPCRStatus      EEPCR = 1 << 3 // data receive pin state
	EEPCRDataTx      EEPCR = 1 << 2
	EEPCRSerialClock EEPCR = 1 << 1
	EEPCRChipSelect  EEPCR = 1 << 0
)

// MBIR is the Memory BIST Info Register. Both memories report a finish bit and
// a fail bit; the fail-count fields are diagnostic only.
type MBIR uint16

const (
	MBIRTxFinish MBIR = 1 << 12 // TX memory self-test completed
	MBIRTxFail   MBIR = 1 << 11 // TX memory self-test failed
	MBIRRxFinish MBIR = 1 << 4  // RX memory self-test completed
	MBIRRxFail   MBIR = 1 << 3  // RX memory self-test failed
)

// GRR is the Global Reset Register.
type GRR uint16

const (
	// GRRQMUSoftReset flushes TXQ/RXQ memory and resets QMU registers only.
	GRRQMUSoftReset GRR = 1 << 1
	// GRRGlobalSoftReset resets PHY, MAC, QMU and DMA; all registers return to
	// their default values while the bit is held set.
	GRRGlobalSoftReset GRR = 1 << 0
)

// WFCR is the Wakeup Frame Control Register.
type WFCR uint16

const (
	WFCRMagicPacketEnable WFCR = 1 << 7 // magic packet pattern detection
	WFCRFrame3Enable      WFCR = 1 << 3
	WFCRFrame2Enable      WFCR = 1 << 2
	WFCRFrame1Enable      WFCR = 1 << 1
	WFCRFrame0Enable      WFCR = 1 << 0
)

// TXCR is the Transmit Control Register.
type TXCR uint16

const (
	TXCRChecksumICMP TXCR = 1 << 8 // generate ICMP checksums on transmit
	TXCRChecksumTCP  TXCR = 1 << 6 // generate TCP checksums on transmit
	TXCRChecksumIP   TXCR = 1 << 5 // generate IP header checksums on transmit
	TXCRFlushQueue   TXCR = 1 << 4 // clear TXQ memory, reset TX frame pointer
	TXCRFlowControl  TXCR = 1 << 3 // transmit PAUSE frames on RX pressure
	TXCRPadding      TXCR = 1 << 2 // pad frames shorter than 64 bytes
	TXCRCRC          TXCR = 1 << 1 // append 32-bit FCS to transmitted frames
	TXCREnable       TXCR = 1 << 0
)

// TXSR is the Transmit Status Register. Status bits refer to the frame
// identified by FrameID.
type TXSR uint16

const (
	TXSRLateCollision TXSR = 1 << 13
	TXSRMaxCollision  TXSR = 1 << 12
)

// FrameID returns the 6-bit identifier of the frame this status belongs to,
// matching the identifier written in the TX control word.
func (s TXSR) FrameID() uint8 { return uint8(s & 0x3f) }

// RXCR1 is the first Receive Control Register.
type RXCR1 uint16

const (
	RXCR1FlushQueue     RXCR1 = 1 << 15 // clear RXQ memory, reset RX frame pointer
	RXCR1ChecksumUDP    RXCR1 = 1 << 14 // drop UDP frames with bad checksum
	RXCR1ChecksumTCP    RXCR1 = 1 << 13 // drop TCP frames with bad checksum
	RXCR1ChecksumIP     RXCR1 = 1 << 12 // drop IP frames with bad header checksum
	RXCR1PhysicalFilter RXCR1 = 1 << 11 // unicast MAC address filtering
	RXCR1FlowControl    RXCR1 = 1 << 10 // honor received PAUSE frames
	RXCR1ErrorFrames    RXCR1 = 1 << 9  // accept CRC-error frames into RXQ
	RXCR1MulticastHash  RXCR1 = 1 << 8  // multicast filtering via hash table
	RXCR1Broadcast      RXCR1 = 1 << 7  // accept broadcast frames
	RXCR1Multicast      RXCR1 = 1 << 6  // accept all multicast frames
	RXCR1Unicast        RXCR1 = 1 << 5  // accept unicast frames matching MAC
	RXCR1All            RXCR1 = 1 << 4  // promiscuous
	RXCR1InverseFilter  RXCR1 = 1 << 1
	RXCR1Enable         RXCR1 = 1 << 0
)

// RXCR2 is the second Receive Control Register.
type RXCR2 uint16

const (
	RXCR2FragmentPass RXCR2 = 1 << 4 // pass checksum check for fragmented UDP
	RXCR2ZeroChecksum RXCR2 = 1 << 3 // pass UDP frames with checksum zero
	RXCR2UDPLite      RXCR2 = 1 << 2 // checksum handling for UDP-Lite frames
	RXCR2ChecksumICMP RXCR2 = 1 << 1 // drop ICMP frames with bad checksum
	RXCR2SourceFilter RXCR2 = 1 << 0 // drop frames sourced from our own MAC

	// SPI receive data burst length during RXQ streaming access, bits 7..5.
	rxcr2BurstShift       = 5
	RXCR2Burst4     RXCR2 = 0 << rxcr2BurstShift
	RXCR2Burst8     RXCR2 = 1 << rxcr2BurstShift
	RXCR2Burst16    RXCR2 = 2 << rxcr2BurstShift
	RXCR2Burst32    RXCR2 = 3 << rxcr2BurstShift
	// RXCR2BurstFrame streams a whole frame per RXQ read command.
	RXCR2BurstFrame RXCR2 = 4 << rxcr2BurstShift
)

// RXFHSR is the Receive Frame Header Status Register describing the frame at
// the head of the RXQ.
type RXFHSR uint16

const (
	// RXFHSRValid indicates the header (and byte count) are meaningful. When
	// clear there is either no pending frame or reception is still in flight.
	RXFHSRValid        RXFHSR = 1 << 15
	RXFHSRChecksumICMP RXFHSR = 1 << 13 // ICMP checksum incorrect
	RXFHSRChecksumIP   RXFHSR = 1 << 12 // IP header checksum incorrect
	RXFHSRChecksumTCP  RXFHSR = 1 << 11 // TCP checksum incorrect
	RXFHSRChecksumUDP  RXFHSR = 1 << 10 // UDP checksum incorrect
	RXFHSRBroadcast    RXFHSR = 1 << 7
	RXFHSRMulticast    RXFHSR = 1 << 6
	RXFHSRUnicast      RXFHSR = 1 << 5
	RXFHSRMIIError     RXFHSR = 1 << 4 // MII symbol error during reception
	RXFHSREthernetType RXFHSR = 1 << 3 // Ethernet II frame (not 802.3)
	RXFHSRTooLong      RXFHSR = 1 << 2 // frame exceeds 2000 bytes
	RXFHSRRunt         RXFHSR = 1 << 1 // damaged or prematurely terminated
	RXFHSRCRCError     RXFHSR = 1 << 0
)

// rxfhsrErrMask are the status bits that make a frame unusable. A frame
// flagging any of these is released back to the chip unread.
const rxfhsrErrMask = RXFHSRCRCError | RXFHSRRunt | RXFHSRTooLong | RXFHSRMIIError |
	RXFHSRChecksumUDP | RXFHSRChecksumTCP | RXFHSRChecksumIP | RXFHSRChecksumICMP

// HasErrors returns true if any chip-side integrity or protocol check failed
// for this frame.
func (s RXFHSR) HasErrors() bool { return s&rxfhsrErrMask != 0 }

// TXQCR is the TXQ Command Register.
type TXQCR uint16

const (
	// TXQCRAutoEnqueue queues all prepared frames automatically. Unreliable
	// per errata; this driver never sets it.
	TXQCRAutoEnqueue TXQCR = 1 << 2
	// TXQCRMemAvailIRQ arms a one-shot interrupt raised once TXQ memory of the
	// size requested in TXNTFSR becomes available. Self-clearing.
	TXQCRMemAvailIRQ TXQCR = 1 << 1
	// TXQCRManualEnqueue queues the single frame just written to the TXQ.
	// Self-clearing once the frame finishes transmitting.
	TXQCRManualEnqueue TXQCR = 1 << 0
)

// RXQCR is the RXQ Command Register.
type RXQCR uint16

const (
	RXQCRDurationStatus   RXQCR = 1 << 12 // duration timer threshold met
	RXQCRByteCountStatus  RXQCR = 1 << 11 // byte count threshold met
	RXQCRFrameCountStatus RXQCR = 1 << 10 // frame count threshold met
	RXQCRIPHeaderOffset   RXQCR = 1 << 9  // insert 2-byte IP alignment pad on RX
	RXQCRDurationEnable   RXQCR = 1 << 7
	RXQCRByteCountEnable  RXQCR = 1 << 6
	RXQCRFrameCountEnable RXQCR = 1 << 5
	RXQCRAutoDequeue      RXQCR = 1 << 4 // dequeue frame once fully read out
	// RXQCRStartDMA opens the FIFO streaming window. Register access is
	// unavailable while set.
	RXQCRStartDMA RXQCR = 1 << 3
	// RXQCRReleaseErrFrame discards the error frame at the head of the RXQ.
	// Self-clearing; must read back as zero before the next RX operation.
	RXQCRReleaseErrFrame RXQCR = 1 << 0
)

// TXFDPR is the TX Frame Data Pointer Register.
type TXFDPR uint16

const (
	TXFDPRAutoIncrement TXFDPR = 1 << 14
	txfdprPointerMask          = 0x07ff
)

// RXFDPR is the RX Frame Data Pointer Register.
type RXFDPR uint16

const (
	RXFDPRAutoIncrement RXFDPR = 1 << 14
	rxfdprPointerMask          = 0x07ff
)

// IER is the Interrupt Enable Register. Each bit gates the matching ISR status
// bit onto the interrupt output pin.
type IER uint16

const (
	IERLinkChange IER = 1 << 15
	IERTxDone     IER = 1 << 14
	IERRxDone     IER = 1 << 13
	IERRxOverrun  IER = 1 << 11
	IERTxStopped  IER = 1 << 9
	IERRxStopped  IER = 1 << 8
	IERTxSpace    IER = 1 << 6 // TXQ memory available (see TXQCRMemAvailIRQ)
	IERWakeFrame  IER = 1 << 5
	IERMagic      IER = 1 << 4
	IERLinkup     IER = 1 << 3
	IEREnergy     IER = 1 << 2
	IERSPIError   IER = 1 << 1
	IERDelayedEng IER = 1 << 0
)

// ISR is the Interrupt Status Register. Bits are cleared by writing 1.
type ISR uint16

const (
	ISRLinkChange ISR = 1 << 15
	ISRTxDone     ISR = 1 << 14
	ISRRxDone     ISR = 1 << 13
	ISRRxOverrun  ISR = 1 << 11
	ISRTxStopped  ISR = 1 << 9
	ISRRxStopped  ISR = 1 << 8
	ISRTxSpace    ISR = 1 << 6
	ISRWakeFrame  ISR = 1 << 5
	ISRMagic      ISR = 1 << 4
	ISRLinkup     ISR = 1 << 3
	ISREnergy     ISR = 1 << 2
	ISRSPIError   ISR = 1 << 1
)

// CIDER is the Chip ID and Enable Register.
type CIDER uint16

// FamilyID returns the chip family identifier, 0x88 for the KSZ8851 family.
func (c CIDER) FamilyID() uint8 { return uint8(c >> 8) }

// ChipID returns the chip identifier within the family, 0x7 for the SNL part.
func (c CIDER) ChipID() uint8 { return uint8(c>>4) & 0xf }

// RevisionID returns the silicon revision.
func (c CIDER) RevisionID() uint8 { return uint8(c>>1) & 0x7 }

// CGCR is the Chip Global Control Register.
type CGCR uint16

// CGCRLEDSel0 selects the alternate LED function mapping: LED1 indicates
// activity and LED0 link when set, 100BT/link-activity when clear.
const CGCRLEDSel0 CGCR = 1 << 9

// P1MBCR is the PHY 1 MII Basic Control register, mirroring IEEE 802.3 BMCR.
type P1MBCR uint16

const (
	P1MBCRLoopback        P1MBCR = 1 << 14
	P1MBCRForce100        P1MBCR = 1 << 13 // with AN disabled: 100(1)/10(0) Mbps
	P1MBCRANEnable        P1MBCR = 1 << 12
	P1MBCRRestartAN       P1MBCR = 1 << 9
	P1MBCRFullDuplex      P1MBCR = 1 << 8
	P1MBCRHPMDIX          P1MBCR = 1 << 5
	P1MBCRForceMDIX       P1MBCR = 1 << 4
	P1MBCRDisableMDIX     P1MBCR = 1 << 3
	P1MBCRDisableTransmit P1MBCR = 1 << 1
	P1MBCRDisableLED      P1MBCR = 1 << 0
)

// P1MBSR is the PHY 1 MII Basic Status register, mirroring IEEE 802.3 BMSR.
type P1MBSR uint16

const (
	P1MBSRT4Capable      P1MBSR = 1 << 15
	P1MBSR100FullCapable P1MBSR = 1 << 14
	P1MBSR100HalfCapable P1MBSR = 1 << 13
	P1MBSR10FullCapable  P1MBSR = 1 << 12
	P1MBSR10HalfCapable  P1MBSR = 1 << 11
	P1MBSRANComplete     P1MBSR = 1 << 5
	P1MBSRANCapable      P1MBSR = 1 << 3
	P1MBSRLinkUp         P1MBSR = 1 << 2
	P1MBSRExtCapable     P1MBSR = 1 << 0
)

// txCtrlWord builds the 2-byte control word prepended to an outgoing frame in
// the TXQ: bit 15 requests a completion interrupt, bits 0..5 carry the frame
// identifier used for diagnostic correlation in TXSR.
func txCtrlWord(irqOnCompletion bool, frameID uint8) uint16 {
	w := uint16(frameID & 0x3f)
	if irqOnCompletion {
		w |= 1 << 15
	}
	return w
}

// Field accessors for registers holding packed counters.

// rxfctrFrameCount extracts the pending frame count from RXFCTR (bits 8..15).
func rxfctrFrameCount(v uint16) uint8 { return uint8(v >> 8) }

// rxfhbcrByteCount extracts the 11-bit received byte count from RXFHBCR. The
// count includes the 4-byte FCS trailer and is only meaningful while the
// RXFHSRValid bit of the matching status register is set.
func rxfhbcrByteCount(v uint16) uint16 { return v & 0x0fff }

// txmirMemAvail extracts the available TXQ memory in bytes from TXMIR.
func txmirMemAvail(v uint16) uint16 { return v & 0x1fff }
