package ksz8851

import "log/slog"

// releaseMaxPolls bounds the busy-wait for the chip to finish discarding an
// error frame. The release is chip-internal and quick; hitting this cap
// means the chip is wedged.
const releaseMaxPolls = 1024

// RxFramesAvailable returns the number of complete frames waiting in the RXQ.
// The chip refreshes this count from its interrupt logic, so the value goes
// stale while the RX interrupt source is disabled.
func (d *Dev) RxFramesAvailable() (uint8, error) {
	v, err := d.read16(addrRXFCTR)
	if err != nil {
		return 0, err
	}
	return rxfctrFrameCount(v), nil
}

// Rx reads the frame at the head of the RXQ into buf and returns its length.
// The caller must have disabled the RX interrupt source beforehand (clear
// IERRxDone via SetIRQMask); the driver does not arbitrate concurrent RX
// polling and panics on this precondition. buf must be able to hold the
// largest frame the chip accepts: an incoming frame bigger than buf is an
// unrecoverable precondition violation, not a returned error, since silently
// truncating Ethernet frames is unsafe.
//
// ErrRxNoFrame and ErrRxFrameInvalid are routine and mean retry later. As
// with Tx, a bus error mid-stream can leave the FIFO streaming window open;
// see the package documentation on partial failures.
func (d *Dev) Rx(buf []byte) (n int, err error) {
	saved, err := d.read16(addrIER)
	if err != nil {
		return 0, err
	}
	if IER(saved)&IERRxDone != 0 {
		panic("ksz8851: Rx requires the RX interrupt source disabled")
	}
	err = d.write16(addrIER, 0)
	if err != nil {
		return 0, err
	}
	defer func() {
		rerr := d.irqRestore(saved)
		if err == nil {
			err = rerr
		}
	}()

	status, err := d.readFrameHeader()
	if err != nil {
		return 0, err
	}
	bcv, err := d.read16(addrRXFHBCR)
	if err != nil {
		return 0, err
	}
	bc := rxfhbcrByteCount(bcv)
	if status&RXFHSRValid == 0 {
		// No pending frame, or reception still in flight.
		return 0, ErrRxNoFrame
	}
	if status.HasErrors() {
		d.debug("rx frame discarded",
			slog.Uint64("status", uint64(status)), slog.Uint64("bc", uint64(bc)))
		err = d.releaseErrorFrame()
		if err != nil {
			return 0, err
		}
		return 0, ErrRxFrameInvalid
	}
	if bc < 6 {
		// The count includes the 2-byte alignment pad and 4-byte FCS, so
		// anything smaller is garbage from the chip. Discard the frame.
		err = d.releaseErrorFrame()
		if err != nil {
			return 0, err
		}
		return 0, ErrRxFrameInvalid
	}
	if int(bc) > len(buf) {
		panic("ksz8851: rx frame exceeds buffer capacity")
	}

	// Rewind the frame data pointer to the start of the frame, keeping the
	// auto-increment bit.
	err = d.modify16(addrRXFDPR, 0, rxfdprPointerMask)
	if err != nil {
		return 0, err
	}
	err = d.modify16(addrRXQCR, uint16(RXQCRStartDMA), 0)
	if err != nil {
		return 0, err
	}

	// Stream layout out of the RXQ: 4 dummy bytes, the frame header (status
	// word and byte count) again, the 2-byte IP alignment pad configured at
	// Init, the payload, the FCS trailer, then up to 3 discard bytes so the
	// total burst is 4-byte aligned.
	var dummy [4]byte
	var shdr [4]byte
	var ipPad [2]byte
	var crc [4]byte
	var discard [3]byte
	cmd := [1]byte{streamCmd(opRXRead)}
	pad := (4 - bc%4) % 4
	payload := buf[:int(bc)-6]
	ops := []Op{
		Write(cmd[:]),
		Read(dummy[:]),
		Read(shdr[:]),
		Read(ipPad[:]),
		Read(payload),
		Read(crc[:]),
	}
	if pad > 0 {
		ops = append(ops, Read(discard[:pad]))
	}
	err = d.bus.Transaction(ops...)
	if err != nil {
		return 0, &TransportError{Op: "rxq stream", Err: err}
	}
	err = d.modify16(addrRXQCR, 0, uint16(RXQCRStartDMA))
	if err != nil {
		return 0, err
	}

	// The header travels twice: once over register access before the stream
	// and once embedded in the stream. Disagreement means the RXQ moved under
	// us between the two reads; never hand such data to the caller.
	streamStatus := RXFHSR(uint16(shdr[0]) | uint16(shdr[1])<<8)
	streamBC := rxfhbcrByteCount(uint16(shdr[2]) | uint16(shdr[3])<<8)
	if streamStatus != status || streamBC != bc {
		d.debug("rx header mismatch",
			slog.Uint64("regStatus", uint64(status)), slog.Uint64("streamStatus", uint64(streamStatus)),
			slog.Uint64("regBC", uint64(bc)), slog.Uint64("streamBC", uint64(streamBC)))
		return 0, ErrRxHeaderMismatch
	}
	d.traceFrame("rx", payload)
	return int(bc) - 4, nil
}

// readFrameHeader reads the status word of the frame at the head of the RXQ.
func (d *Dev) readFrameHeader() (RXFHSR, error) {
	v, err := d.read16(addrRXFHSR)
	return RXFHSR(v), err
}

// releaseErrorFrame discards the frame at the head of the RXQ and waits for
// the chip to acknowledge by clearing the release bit. The wait is a bounded
// spin: the chip guarantees the release terminates, the bound only converts a
// wedged chip into an error instead of a hang.
func (d *Dev) releaseErrorFrame() error {
	err := d.modify16(addrRXQCR, uint16(RXQCRReleaseErrFrame), 0)
	if err != nil {
		return err
	}
	for i := 0; i < releaseMaxPolls; i++ {
		v, err := d.read16(addrRXQCR)
		if err != nil {
			return err
		}
		if RXQCR(v)&RXQCRReleaseErrFrame == 0 {
			return nil
		}
	}
	return ErrReleaseTimeout
}
