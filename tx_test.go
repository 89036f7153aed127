package ksz8851_test

import (
	"errors"
	"testing"

	"github.com/soypat/ksz8851"
	"github.com/soypat/ksz8851/internal/chipsim"
)

func TestReadyTxOversize(t *testing.T) {
	dev, chip := initTestDev(t)
	before := chip.Transactions
	ok, err := dev.ReadyTx(ksz8851.MaxFrameSize + 1)
	if ok {
		t.Error("oversize frame reported as ready")
	}
	var ov *ksz8851.OversizeError
	if !errors.As(err, &ov) {
		t.Fatalf("err = %v, want OversizeError", err)
	}
	if ov.Size != ksz8851.MaxFrameSize+1 || ov.Max != ksz8851.MaxFrameSize {
		t.Errorf("OversizeError Size=%d Max=%d", ov.Size, ov.Max)
	}
	if chip.Transactions != before {
		t.Error("oversize check reached the bus")
	}
}

func TestReadyTx(t *testing.T) {
	dev, chip := initTestDev(t)
	ok, err := dev.ReadyTx(1500)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("frame not ready with an empty TXQ")
	}

	// A full queue returns false and arms the memory-available monitor for
	// the requested size plus the control overhead.
	chip.SetTxAvail(100)
	ok, err = dev.ReadyTx(1500)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("frame reported ready with 100 bytes of TXQ memory")
	}
	if got := chip.Reg(0x9E); got != 1504 { // TXNTFSR
		t.Errorf("TXNTFSR = %d, want 1504", got)
	}
	if txqcr := ksz8851.TXQCR(chip.Reg(0x80)); txqcr&ksz8851.TXQCRMemAvailIRQ == 0 {
		t.Errorf("TXQCR = %#04x, memory-available monitor not armed", uint16(txqcr))
	}

	// The overhead itself counts: 1500 payload bytes do not fit in exactly
	// 1500 bytes of queue memory.
	chip.SetTxAvail(1500)
	ok, err = dev.ReadyTx(1500)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("frame reported ready without room for the control word")
	}
}

func TestTxFraming(t *testing.T) {
	dev, chip := initTestDev(t)
	tests := []struct {
		n   int
		pad int
	}{
		{n: 60, pad: 0},
		{n: 61, pad: 3},
		{n: 62, pad: 2},
		{n: 63, pad: 1},
	}
	for i, tt := range tests {
		frame := make([]byte, tt.n)
		for j := range frame {
			frame[j] = byte(j)
		}
		if err := dev.Tx(frame); err != nil {
			t.Fatal(err)
		}
		if chip.TxParseErr != nil {
			t.Fatal("malformed TXQ stream:", chip.TxParseErr)
		}
		if len(chip.Sent) != i+1 {
			t.Fatalf("%d frames sent, %d accepted", i+1, len(chip.Sent))
		}
		sent := chip.Sent[i]
		if int(sent.Length) != tt.n {
			t.Errorf("frame %d: length field %d, want %d", i, sent.Length, tt.n)
		}
		if len(sent.Raw) != 5+tt.n+tt.pad {
			t.Errorf("frame %d: stream %d bytes, want %d", i, len(sent.Raw), 5+tt.n+tt.pad)
		}
		if string(sent.Payload) != string(frame) {
			t.Errorf("frame %d: payload corrupted in transit", i)
		}
		if want := uint16(1<<15 | i); sent.CtrlWord != want {
			t.Errorf("frame %d: control word %#04x, want %#04x", i, sent.CtrlWord, want)
		}
	}
}

func TestTxFrameIDWraps(t *testing.T) {
	dev, chip := initTestDev(t)
	frame := make([]byte, 64)
	for i := 0; i < 33; i++ {
		if err := dev.Tx(frame); err != nil {
			t.Fatal(err)
		}
	}
	for i, sent := range chip.Sent {
		want := uint8(i % 32)
		if sent.FrameID() != want {
			t.Fatalf("frame %d carries identifier %d, want %d", i, sent.FrameID(), want)
		}
	}
}

func TestTxRestoresIRQMask(t *testing.T) {
	dev, _ := initTestDev(t)
	const mask = ksz8851.IERLinkChange | ksz8851.IERTxDone
	if err := dev.SetIRQMask(mask); err != nil {
		t.Fatal(err)
	}
	if err := dev.Tx(make([]byte, 64)); err != nil {
		t.Fatal(err)
	}
	got, err := dev.IRQMask()
	if err != nil {
		t.Fatal(err)
	}
	if got != mask {
		t.Errorf("IER = %#04x after Tx, want %#04x restored", uint16(got), uint16(mask))
	}
}

func TestTxBusFailure(t *testing.T) {
	dev, chip := initTestDev(t)
	chip.FailNext = errors.New("wire noise")
	err := dev.Tx(make([]byte, 64))
	var te *ksz8851.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if len(chip.Sent) != 0 {
		t.Error("frame accepted despite bus failure")
	}
}

func TestLastTxStatus(t *testing.T) {
	dev, _ := initTestDev(t)
	for i := 0; i < 3; i++ {
		if err := dev.Tx(make([]byte, 64)); err != nil {
			t.Fatal(err)
		}
	}
	status, err := dev.LastTxStatus()
	if err != nil {
		t.Fatal(err)
	}
	if status.FrameID() != 2 {
		t.Errorf("status frame identifier %d, want 2", status.FrameID())
	}
}

var _ ksz8851.Bus = (*chipsim.Chip)(nil)
