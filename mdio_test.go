package ksz8851_test

import (
	"testing"

	"github.com/soypat/ksz8851"
)

func TestMDIORegisterMapping(t *testing.T) {
	dev, chip := initTestDev(t)
	mdio := dev.MDIO()
	// MII register 0 is the basic control register mapped at P1MBCR.
	v, err := mdio.Read(1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := chip.Reg(0xE4); v != want {
		t.Errorf("MII reg 0 = %#04x, chip register = %#04x", v, want)
	}
	// Writes land in the same chip register.
	err = mdio.Write(1, 0, 0, uint16(ksz8851.P1MBCRANEnable|ksz8851.P1MBCRRestartAN))
	if err != nil {
		t.Fatal(err)
	}
	if got := ksz8851.P1MBCR(chip.Reg(0xE4)); got&ksz8851.P1MBCRRestartAN == 0 {
		t.Errorf("P1MBCR = %#04x after MDIO write", uint16(got))
	}
	// MII register 1 is the basic status register, computed chip-side.
	chip.SetLink(true)
	v, err = mdio.Read(1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ksz8851.P1MBSR(v)&ksz8851.P1MBSRLinkUp == 0 {
		t.Errorf("MII reg 1 = %#04x, link bit clear with link up", v)
	}
}

func TestMDIOBadAccess(t *testing.T) {
	dev, _ := initTestDev(t)
	mdio := dev.MDIO()
	if _, err := mdio.Read(2, 0, 0); err == nil {
		t.Error("read from PHY address 2 succeeded")
	}
	if _, err := mdio.Read(1, 1, 0); err == nil {
		t.Error("Clause 45 read succeeded on a Clause 22 only PHY")
	}
	if _, err := mdio.Read(1, 0, 6); err == nil {
		t.Error("read of unmapped MII register 6 succeeded")
	}
	if err := mdio.Write(1, 0, 31, 0); err == nil {
		t.Error("write to unmapped MII register 31 succeeded")
	}
}

func TestPHYDevice(t *testing.T) {
	dev, chip := initTestDev(t)
	p, err := dev.PHY()
	if err != nil {
		t.Fatal(err)
	}
	up, err := p.IsLinkUp()
	if err != nil {
		t.Fatal(err)
	}
	if up {
		t.Error("PHY reports link up with no cable")
	}
	chip.SetLink(true)
	up, err = p.IsLinkUp()
	if err != nil {
		t.Fatal(err)
	}
	if !up {
		t.Error("PHY reports link down after SetLink(true)")
	}
}
