package ksz8851

import "log/slog"

// ReadyTx reports whether the TXQ has room for a frame of n bytes. When it
// does not, the chip is armed to raise the TX-space interrupt (ISRTxSpace)
// once enough memory frees up and false is returned; the caller decides
// whether to poll again or wait for the interrupt. This is the driver's only
// backpressure mechanism: nothing blocks and nothing is queued host-side.
func (d *Dev) ReadyTx(n int) (bool, error) {
	if n > MaxFrameSize {
		return false, &OversizeError{Size: n, Max: MaxFrameSize}
	}
	v, err := d.read16(addrTXMIR)
	if err != nil {
		return false, err
	}
	avail := txmirMemAvail(v)
	d.debug("tx memory", slog.Int("avail", int(avail)), slog.Int("need", n+4))
	if n+4 > int(avail) {
		// Arm the one-shot memory-available monitor for the requested size.
		err = d.write16(addrTXNTFSR, uint16(n+4))
		if err != nil {
			return false, err
		}
		err = d.write16(addrTXQCR, uint16(TXQCRMemAvailIRQ))
		if err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Tx writes one Ethernet frame into the TXQ and enqueues it for transmission.
// The caller must have confirmed buffer space via ReadyTx for this frame
// size. The enqueue bit self-clears when transmission completes; Tx does not
// wait for it.
//
// The whole sequence runs with chip interrupts masked. The saved mask is
// restored on every return path, but a bus error mid-stream can still leave
// the FIFO streaming window open (RXQCRStartDMA set) with no compensating
// action; recovery from that state requires reinitialization.
func (d *Dev) Tx(frame []byte) (err error) {
	saved, err := d.irqSave()
	if err != nil {
		return err
	}
	defer func() {
		rerr := d.irqRestore(saved)
		if err == nil {
			err = rerr
		}
	}()

	err = d.modify16(addrRXQCR, uint16(RXQCRStartDMA), 0)
	if err != nil {
		return err
	}

	ctl := txCtrlWord(true, d.nextFrameID)
	hdr := [5]byte{
		streamCmd(opTXWrite),
		uint8(ctl), uint8(ctl >> 8),
		uint8(len(frame)), uint8(len(frame) >> 8),
	}
	// The TXQ is 4-byte granular: pad the stream out to a 4-byte boundary.
	var zeros [3]byte
	pad := (4 - len(frame)%4) % 4
	ops := []Op{Write(hdr[:]), Write(frame)}
	if pad > 0 {
		ops = append(ops, Write(zeros[:pad]))
	}
	err = d.bus.Transaction(ops...)
	if err != nil {
		return &TransportError{Op: "txq stream", Err: err}
	}
	d.traceFrame("tx", frame)
	d.nextFrameID = (d.nextFrameID + 1) % 32

	err = d.modify16(addrRXQCR, 0, uint16(RXQCRStartDMA))
	if err != nil {
		return err
	}
	// Hand the frame to the MAC. The chip clears the bit once it is on the
	// wire; completion is observable via ISRTxDone or LastTxStatus.
	return d.modify16(addrTXQCR, uint16(TXQCRManualEnqueue), 0)
}

// LastTxStatus reads the transmit status register. Its collision flags refer
// to the frame whose identifier matches TXSR.FrameID, correlating with the
// identifiers Tx writes into successive control words.
func (d *Dev) LastTxStatus() (TXSR, error) {
	v, err := d.read16(addrTXSR)
	return TXSR(v), err
}
