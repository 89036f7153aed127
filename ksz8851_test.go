package ksz8851_test

import (
	"errors"
	"testing"
	"time"

	"github.com/soypat/ksz8851"
	"github.com/soypat/ksz8851/internal/chipsim"
)

func newTestDev(t *testing.T) (*ksz8851.Dev, *chipsim.Chip) {
	t.Helper()
	chip := chipsim.New()
	dev, err := ksz8851.New(chip, ksz8851.Config{
		Sleep: func(time.Duration) {},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dev, chip
}

func initTestDev(t *testing.T) (*ksz8851.Dev, *chipsim.Chip) {
	t.Helper()
	dev, chip := newTestDev(t)
	if err := dev.Init(); err != nil {
		t.Fatal("init:", err)
	}
	return dev, chip
}

func TestNewNilBus(t *testing.T) {
	_, err := ksz8851.New(nil, ksz8851.Config{})
	if err == nil {
		t.Fatal("nil bus accepted")
	}
}

func TestInit(t *testing.T) {
	dev, chip := newTestDev(t)
	err := dev.Init()
	if err != nil {
		t.Fatal("init:", err)
	}
	// Transmitter and receiver end up enabled, auto-enqueue never does.
	if txcr := ksz8851.TXCR(chip.Reg(0x70)); txcr&ksz8851.TXCREnable == 0 {
		t.Errorf("TXCR = %#04x, transmitter not enabled", uint16(txcr))
	}
	if rxcr := ksz8851.RXCR1(chip.Reg(0x74)); rxcr&ksz8851.RXCR1Enable == 0 {
		t.Errorf("RXCR1 = %#04x, receiver not enabled", uint16(rxcr))
	}
	if txqcr := ksz8851.TXQCR(chip.Reg(0x80)); txqcr&ksz8851.TXQCRAutoEnqueue != 0 {
		t.Errorf("TXQCR = %#04x, auto-enqueue enabled", uint16(txqcr))
	}
	if ier, _ := dev.IRQMask(); ier&ksz8851.IERRxDone == 0 {
		t.Errorf("IER = %#04x, RX interrupt source not enabled", uint16(ier))
	}
}

func TestInitIdempotent(t *testing.T) {
	dev, chip := newTestDev(t)
	if err := dev.Init(); err != nil {
		t.Fatal("first init:", err)
	}
	first := chip.Snapshot()
	if err := dev.Init(); err != nil {
		t.Fatal("second init:", err)
	}
	if chip.Snapshot() != first {
		t.Error("second init produced a different chip configuration")
	}
}

func TestInitBadChipID(t *testing.T) {
	dev, chip := newTestDev(t)
	chip.OverrideCIDER = 0x8840 // KSZ8851 family, wrong part
	err := dev.Init()
	var badID *ksz8851.BadChipIDError
	if !errors.As(err, &badID) {
		t.Fatalf("init error = %v, want BadChipIDError", err)
	}
	if badID.Family != 0x88 || badID.Chip != 0x4 {
		t.Errorf("decoded identity family=%#x chip=%#x", badID.Family, badID.Chip)
	}
}

func TestInitSelfTestFailure(t *testing.T) {
	dev, chip := newTestDev(t)
	chip.OverrideMBIR = 0x1010 | 1<<11 // TX memory fail
	err := dev.Init()
	var st *ksz8851.SelfTestError
	if !errors.As(err, &st) {
		t.Fatalf("init error = %v, want SelfTestError", err)
	}
	if !st.TxFailed || st.RxFailed {
		t.Errorf("SelfTestError Tx=%v Rx=%v, want Tx only", st.TxFailed, st.RxFailed)
	}
}

func TestInitBusFailure(t *testing.T) {
	dev, chip := newTestDev(t)
	chip.FailNext = errors.New("wire noise")
	err := dev.Init()
	var te *ksz8851.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("init error = %v, want TransportError", err)
	}
}

func TestChipID(t *testing.T) {
	dev, _ := newTestDev(t)
	family, chipid, rev, err := dev.ChipID()
	if err != nil {
		t.Fatal(err)
	}
	if family != 0x88 || chipid != 0x7 || rev != 1 {
		t.Errorf("identity family=%#x chip=%#x rev=%d", family, chipid, rev)
	}
}

func TestHardwareAddrRoundTrip(t *testing.T) {
	dev, _ := initTestDev(t)
	for _, mac := range [][6]byte{
		{0, 0, 0, 0, 0, 0},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0xde, 0xad, 0xbe, 0xef, 0x00, 0x51},
	} {
		if err := dev.SetHardwareAddr6(mac); err != nil {
			t.Fatal(err)
		}
		got, err := dev.HardwareAddr6()
		if err != nil {
			t.Fatal(err)
		}
		if got != mac {
			t.Errorf("round trip %x -> %x", mac, got)
		}
	}
}

func TestIsLinkUp(t *testing.T) {
	dev, chip := initTestDev(t)
	up, err := dev.IsLinkUp()
	if err != nil {
		t.Fatal(err)
	}
	if up {
		t.Error("link reported up with no cable")
	}
	chip.SetLink(true)
	up, err = dev.IsLinkUp()
	if err != nil {
		t.Fatal(err)
	}
	if !up {
		t.Error("link reported down after SetLink(true)")
	}
}

func TestIRQStatusAck(t *testing.T) {
	dev, _ := initTestDev(t)
	frame := make([]byte, 64)
	if err := dev.Tx(frame); err != nil {
		t.Fatal(err)
	}
	isr, err := dev.IRQStatus()
	if err != nil {
		t.Fatal(err)
	}
	if isr&ksz8851.ISRTxDone == 0 {
		t.Fatalf("ISR = %#04x, TX-done not raised after enqueue", uint16(isr))
	}
	if err := dev.AckIRQ(ksz8851.ISRTxDone); err != nil {
		t.Fatal(err)
	}
	isr, err = dev.IRQStatus()
	if err != nil {
		t.Fatal(err)
	}
	if isr&ksz8851.ISRTxDone != 0 {
		t.Errorf("ISR = %#04x, TX-done still set after ack", uint16(isr))
	}
}

func TestSetLEDs(t *testing.T) {
	dev, chip := initTestDev(t)
	if err := dev.SetLEDs(false); err != nil {
		t.Fatal(err)
	}
	if v := ksz8851.P1MBCR(chip.Reg(0xE4)); v&ksz8851.P1MBCRDisableLED == 0 {
		t.Errorf("P1MBCR = %#04x, LEDs not disabled", uint16(v))
	}
	if err := dev.SetLEDs(true); err != nil {
		t.Fatal(err)
	}
	if v := ksz8851.P1MBCR(chip.Reg(0xE4)); v&ksz8851.P1MBCRDisableLED != 0 {
		t.Errorf("P1MBCR = %#04x, LEDs still disabled", uint16(v))
	}
}

func TestSetLEDMode(t *testing.T) {
	dev, chip := initTestDev(t)
	if err := dev.SetLEDMode(true); err != nil {
		t.Fatal(err)
	}
	if v := ksz8851.CGCR(chip.Reg(0xC6)); v&ksz8851.CGCRLEDSel0 == 0 {
		t.Errorf("CGCR = %#04x, alternate LED mapping not selected", uint16(v))
	}
	if err := dev.SetLEDMode(false); err != nil {
		t.Fatal(err)
	}
	if v := ksz8851.CGCR(chip.Reg(0xC6)); v&ksz8851.CGCRLEDSel0 != 0 {
		t.Errorf("CGCR = %#04x, alternate LED mapping still selected", uint16(v))
	}
}
