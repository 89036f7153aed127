package ksz8851

import "strconv"

type errDriver uint8

// Recoverable per-frame errors. Callers should treat these as routine: retry
// Rx later on ErrRxNoFrame, retry after the next frame on ErrRxFrameInvalid,
// and poll ReadyTx again (or wait for the TX-space interrupt) on a false
// ReadyTx result.
const (
	_ errDriver = iota // non-initialized err
	// ErrRxNoFrame is returned by Rx when no complete frame is pending.
	ErrRxNoFrame
	// ErrRxFrameInvalid is returned by Rx after discarding a frame that failed
	// a chip-side integrity or protocol check.
	ErrRxFrameInvalid
	// ErrRxHeaderMismatch is returned by Rx when the frame header embedded in
	// the FIFO stream disagrees with the header read via register access
	// before the stream began. No frame data is returned.
	ErrRxHeaderMismatch
	// ErrReleaseTimeout is returned by Rx when the chip does not clear the
	// release-error-frame bit within the bounded poll cap.
	ErrReleaseTimeout
)

func (err errDriver) Error() string {
	switch err {
	case ErrRxNoFrame:
		return "ksz8851: no frame available"
	case ErrRxFrameInvalid:
		return "ksz8851: frame invalid, discarded"
	case ErrRxHeaderMismatch:
		return "ksz8851: stream/register frame header mismatch"
	case ErrReleaseTimeout:
		return "ksz8851: error frame release timeout"
	}
	return "ksz8851: unknown error"
}

// TransportError wraps a failure reported by the underlying bus. The chip may
// be left mid-sequence when one occurs during Tx or Rx; see the Tx and Rx
// documentation.
type TransportError struct {
	Op  string // driver operation in flight
	Err error  // error reported by the Bus implementation
}

func (e *TransportError) Error() string { return "ksz8851: " + e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// BadChipIDError is returned by Init when the chip identity read after reset
// does not match the KSZ8851SNL. Fatal and non-retryable.
type BadChipIDError struct {
	Family uint8 // family identifier read from CIDER
	Chip   uint8 // chip identifier read from CIDER
}

func (e *BadChipIDError) Error() string {
	return "ksz8851: bad chip id: family 0x" + strconv.FormatUint(uint64(e.Family), 16) +
		" chip 0x" + strconv.FormatUint(uint64(e.Chip), 16) +
		" (want family 0x" + strconv.FormatUint(chipFamilyID, 16) +
		" chip 0x" + strconv.FormatUint(chipChipID, 16) + ")"
}

// SelfTestError is returned by Init when the memory built-in self-test of
// either queue reports failure. Fatal to initialization.
type SelfTestError struct {
	TxFailed bool
	RxFailed bool
}

func (e *SelfTestError) Error() string {
	switch {
	case e.TxFailed && e.RxFailed:
		return "ksz8851: TX and RX memory self-test failed"
	case e.TxFailed:
		return "ksz8851: TX memory self-test failed"
	case e.RxFailed:
		return "ksz8851: RX memory self-test failed"
	}
	return "ksz8851: self-test error with no failed block"
}

// OversizeError is returned by ReadyTx for payloads exceeding the chip's
// maximum frame size. Returned before any bus access.
type OversizeError struct {
	Size int
	Max  int
}

func (e *OversizeError) Error() string {
	return "ksz8851: tx packet too big: " + strconv.Itoa(e.Size) + " > " + strconv.Itoa(e.Max)
}
