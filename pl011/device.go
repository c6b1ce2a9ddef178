// pl011/device.go

package pl011

// Bit and field layout of the PL011 registers this driver touches.
// Names follow the TRM (and device/rp): CR control, LCR_H line control,
// FR flags, DMACR DMA control.
const (
	crUARTEN = 1 << 0 // UART enable
	crTXE    = 1 << 8 // transmit enable
	crRXE    = 1 << 9 // receive enable

	lcrhPEN     = 1 << 1 // parity enable
	lcrhEPS     = 1 << 2 // even parity select
	lcrhSTP2Pos = 3      // two stop bits select
	lcrhFEN     = 1 << 4 // FIFO enable
	lcrhWLENPos = 5      // word length, 2-bit field: 0b00=5 .. 0b11=8

	frBUSY = 1 << 3 // transmit shifter busy
	frRXFE = 1 << 4 // receive FIFO empty
	frTXFF = 1 << 5 // transmit FIFO full
	frRXFF = 1 << 6 // receive FIFO full
	frTXFE = 1 << 7 // transmit FIFO empty

	dmacrRXDMAE = 1 << 0 // receive DMA request enable
	dmacrTXDMAE = 1 << 1 // transmit DMA request enable
)

// fifoDepth is the depth of the PL011 hardware FIFOs in FIFO mode.
const fifoDepth = 32

// Register is one 32-bit device register. On MCU builds the memory-mapped
// *volatile.Register32 satisfies it directly; SimDevice provides a host
// implementation.
type Register interface {
	Get() uint32
	Set(value uint32)
	SetBits(value uint32)
	ClearBits(value uint32)
	HasBits(value uint32) bool
}

// Device is the register surface shared by the two PL011 instances, plus
// the ownership hooks the lifecycle needs. Bindings are concrete per
// instance (UART0/UART1 at their fixed base addresses, or a SimDevice) and
// are resolved once at Enable.
//
// A Device is a single-slot resource: Claim succeeds for at most one
// peripheral instance at a time, and Release empties the slot again.
type Device interface {
	Data() Register     // UARTDR, 8-bit data path
	Flags() Register    // UARTFR, read-only status
	LineCtrl() Register // UARTLCR_H
	Ctrl() Register     // UARTCR
	BaudInt() Register  // UARTIBRD, 16-bit integer divisor
	BaudFrac() Register // UARTFBRD, 6-bit fractional divisor
	DMACtrl() Register  // UARTDMACR, request lines only

	// Claim marks the device as owned by a peripheral instance.
	// It reports false if the device is already owned.
	Claim() bool
	// Release returns the device to the unowned state.
	Release()
	// Reset takes the peripheral through its hardware reset, leaving all
	// registers at their power-on values.
	Reset()
}
