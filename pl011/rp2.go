// pl011/rp2.go

//go:build rp2040 || rp2350

package pl011

import (
	"device/rp"
	"sync/atomic"
)

// hwDevice binds the Device surface to one memory-mapped PL011 instance.
// Both instances share the UART0_Type layout; only the base address and
// the RESETS bit differ.
type hwDevice struct {
	bus      *rp.UART0_Type
	resetBit uint32
	claimed  uint32
}

// The two PL011 instances on RP2040/RP2350.
var (
	UART0 Device = &hwUART0
	UART1 Device = &hwUART1

	hwUART0 = hwDevice{bus: rp.UART0, resetBit: rp.RESETS_RESET_UART0}
	hwUART1 = hwDevice{bus: rp.UART1, resetBit: rp.RESETS_RESET_UART1}
)

func (d *hwDevice) Data() Register     { return &d.bus.UARTDR }
func (d *hwDevice) Flags() Register    { return &d.bus.UARTFR }
func (d *hwDevice) LineCtrl() Register { return &d.bus.UARTLCR_H }
func (d *hwDevice) Ctrl() Register     { return &d.bus.UARTCR }
func (d *hwDevice) BaudInt() Register  { return &d.bus.UARTIBRD }
func (d *hwDevice) BaudFrac() Register { return &d.bus.UARTFBRD }
func (d *hwDevice) DMACtrl() Register  { return &d.bus.UARTDMACR }

func (d *hwDevice) Claim() bool {
	return atomic.CompareAndSwapUint32(&d.claimed, 0, 1)
}

func (d *hwDevice) Release() {
	atomic.StoreUint32(&d.claimed, 0)
}

// Reset asserts and releases the peripheral reset for this instance.
func (d *hwDevice) Reset() {
	rp.RESETS.RESET.SetBits(d.resetBit)
	rp.RESETS.RESET.ClearBits(d.resetBit)
	for !rp.RESETS.RESET_DONE.HasBits(d.resetBit) {
	}
}
