package ksz8851

// The interrupt enable register doubles as the driver's only critical-section
// primitive. Multi-step sequences that must not interleave with chip-driven
// state changes save the mask, clear it, run, and restore the saved value
// verbatim. Restoring verbatim matters: the caller may have masked sources on
// purpose and an unconditional re-enable would undo that.

// irqSave reads the interrupt enable mask and clears it, entering the
// critical section. Pair with irqRestore on every exit path.
func (d *Dev) irqSave() (saved uint16, err error) {
	saved, err = d.read16(addrIER)
	if err != nil {
		return 0, err
	}
	err = d.write16(addrIER, 0)
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// irqRestore writes back the mask captured by irqSave.
func (d *Dev) irqRestore(saved uint16) error {
	return d.write16(addrIER, saved)
}

// IRQStatus reads the pending interrupt causes. Acknowledge handled causes
// with AckIRQ or the chip keeps the interrupt line asserted.
func (d *Dev) IRQStatus() (ISR, error) {
	v, err := d.read16(addrISR)
	return ISR(v), err
}

// AckIRQ clears the given interrupt causes. Status bits are write-1-to-clear.
func (d *Dev) AckIRQ(causes ISR) error {
	return d.write16(addrISR, uint16(causes))
}

// IRQMask reads the currently enabled interrupt sources.
func (d *Dev) IRQMask() (IER, error) {
	v, err := d.read16(addrIER)
	return IER(v), err
}

// SetIRQMask replaces the set of enabled interrupt sources. Init establishes
// the default set; callers polling Rx must clear IERRxDone first, see Rx.
func (d *Dev) SetIRQMask(mask IER) error {
	return d.write16(addrIER, uint16(mask))
}
