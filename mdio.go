package ksz8851

import (
	"errors"

	"github.com/soypat/lneto/phy"
)

// The embedded 10/100 PHY exposes IEEE 802.3 Clause 22 registers 0..5,
// memory-mapped into chip register space at P1MBCR and up. Adapting them to
// [phy.MDIOBus] lets the generic PHY machinery (auto-negotiation setup,
// forced modes, link waits) drive the chip without knowing about SPI.

// phyAddr is the fixed management address of the embedded PHY.
const phyAddr = 1

// maximum Clause 22 register mapped into chip register space.
const phyMaxReg = 5

var (
	errBadPHYAddr = errors.New("ksz8851: embedded PHY answers at address 1 only")
	errBadPHYReg  = errors.New("ksz8851: MII register not mapped by chip")
)

type mdioBus struct {
	d *Dev
}

func (m mdioBus) Read(addr, devAddr uint8, regAddr uint16) (uint16, error) {
	chipAddr, err := miiToChipAddr(addr, devAddr, regAddr)
	if err != nil {
		return 0, err
	}
	return m.d.read16(chipAddr)
}

func (m mdioBus) Write(addr, devAddr uint8, regAddr, value uint16) error {
	chipAddr, err := miiToChipAddr(addr, devAddr, regAddr)
	if err != nil {
		return err
	}
	return m.d.write16(chipAddr, value)
}

func miiToChipAddr(addr, devAddr uint8, regAddr uint16) (uint8, error) {
	if addr != phyAddr || devAddr != 0 {
		return 0, errBadPHYAddr
	}
	if regAddr > phyMaxReg {
		return 0, errBadPHYReg
	}
	return addrP1MBCR + 2*uint8(regAddr), nil
}

// MDIO returns a Clause 22 register bus over the chip's embedded PHY. Only
// PHY address 1 and registers 0 through 5 respond.
func (d *Dev) MDIO() phy.MDIOBus {
	return mdioBus{d: d}
}

// PHY returns a managed handle to the embedded PHY for link configuration
// beyond IsLinkUp: restarting or forcing auto-negotiation, advertisement
// control and deadline-bounded link waits.
func (d *Dev) PHY() (*phy.Device, error) {
	var dev phy.Device
	err := dev.ConfigureAs22(mdioBus{d: d}, phyAddr)
	if err != nil {
		return nil, err
	}
	return &dev, nil
}
