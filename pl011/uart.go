// pl011/uart.go

package pl011

import "errors"

// UART is an enabled PL011 peripheral. It exclusively owns its Device until
// Disable or Free consumes it; only this type carries transfer methods.
type UART struct {
	dev           Device
	config        Config
	effectiveBaud uint32
}

// Disabled is a disabled PL011 peripheral. It still owns its Device but
// exposes no transfer methods; it can only be re-enabled or freed.
type Disabled struct {
	dev Device
}

// Enable claims dev, takes it through reset and configures it. Side effects
// in order: baud divisors, line format with FIFOs enabled, CR enable bits
// (UARTEN, TXE, RXE), DMA request enables for both directions.
//
// clockHz is the UART reference clock (clk_peri on RP2 parts).
func Enable(dev Device, cfg Config, clockHz uint32) (*UART, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if !dev.Claim() {
		return nil, ErrDeviceInUse
	}
	return program(dev, cfg, clockHz), nil
}

// Enable reconfigures the already-owned device and transitions back to the
// enabled state. No configuration persists from before: the caller supplies
// a complete Config and the device is reprogrammed from reset.
// The receiver is consumed.
func (d *Disabled) Enable(cfg Config, clockHz uint32) (*UART, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dev := d.dev
	d.dev = nil
	return program(dev, cfg, clockHz), nil
}

// program runs the full enable sequence against a claimed device.
// cfg has already been validated.
func program(dev Device, cfg Config, clockHz uint32) *UART {
	dev.Reset()

	effective := programBaud(dev, cfg.BaudRate, clockHz)

	lcrh, _ := lineFormat(cfg.DataBits, cfg.StopBits, cfg.Parity)
	dev.LineCtrl().Set(lcrh)

	dev.Ctrl().Set(crUARTEN | crTXE | crRXE)
	dev.DMACtrl().Set(dmacrTXDMAE | dmacrRXDMAE)

	return &UART{dev: dev, config: cfg, effectiveBaud: effective}
}

// Disable transitions to the disabled state without touching device
// registers. Callers needing a hardware-level shutdown should Free the
// device instead and Enable it again later. The receiver is consumed.
func (u *UART) Disable() *Disabled {
	dev := u.dev
	u.dev = nil
	return &Disabled{dev: dev}
}

// Free relinquishes ownership and returns the device handle.
// The receiver is consumed.
func (u *UART) Free() Device {
	dev := u.dev
	u.dev = nil
	dev.Release()
	return dev
}

// Free relinquishes ownership and returns the device handle.
// The receiver is consumed.
func (d *Disabled) Free() Device {
	dev := d.dev
	d.dev = nil
	dev.Release()
	return dev
}

// Config returns the configuration the peripheral was enabled with.
func (u *UART) Config() Config { return u.config }

// EffectiveBaud returns the rate actually programmed into the divisor
// registers, which may differ from Config().BaudRate due to rounding.
func (u *UART) EffectiveBaud() uint32 { return u.effectiveBaud }

// Writable reports whether the transmit FIFO can accept at least one byte.
func (u *UART) Writable() bool { return !u.dev.Flags().HasBits(frTXFF) }

// Readable reports whether the receive FIFO holds at least one byte.
func (u *UART) Readable() bool { return !u.dev.Flags().HasBits(frRXFE) }

// Write pushes bytes from p into the transmit FIFO in a single pass.
// It stops at the first full-FIFO condition: with nothing accepted it
// returns ErrWouldBlock, otherwise the partial count with a nil error.
// Consuming all of p returns len(p).
func (u *UART) Write(p []byte) (int, error) {
	n := 0
	for _, b := range p {
		if u.dev.Flags().HasBits(frTXFF) {
			if n == 0 {
				return 0, ErrWouldBlock
			}
			return n, nil
		}
		u.dev.Data().Set(uint32(b))
		n++
	}
	return n, nil
}

// Read fills p from the receive FIFO in a single pass. It stops at the
// first empty-FIFO condition: with nothing read it returns ErrWouldBlock,
// otherwise the partial count with a nil error. Filling all of p returns
// len(p) even if the FIFO still holds data.
func (u *UART) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if u.dev.Flags().HasBits(frRXFE) {
			if n == 0 {
				return 0, ErrWouldBlock
			}
			return n, nil
		}
		// Per-byte error flags live in bits 11:8 of DR; only the data
		// path is surfaced.
		p[n] = byte(u.dev.Data().Get())
		n++
	}
	return n, nil
}

// WriteByte pushes a single byte without blocking, or returns ErrWouldBlock.
func (u *UART) WriteByte(b byte) error {
	if u.dev.Flags().HasBits(frTXFF) {
		return ErrWouldBlock
	}
	u.dev.Data().Set(uint32(b))
	return nil
}

// ReadByte pops a single byte without blocking, or returns ErrWouldBlock.
func (u *UART) ReadByte() (byte, error) {
	if u.dev.Flags().HasBits(frRXFE) {
		return 0, ErrWouldBlock
	}
	return byte(u.dev.Data().Get()), nil
}

// WriteFullBlocking busy-spins until all of p has been accepted by the
// transmit FIFO. There is no timeout and no yield: completion depends on
// the peer draining the FIFO.
func (u *UART) WriteFullBlocking(p []byte) {
	offset := 0
	for offset < len(p) {
		n, err := u.Write(p[offset:])
		switch {
		case err == nil:
			offset += n
		case errors.Is(err, ErrWouldBlock):
			// FIFO full right now; spin and retry.
		default:
			// The transfer path has exactly one error kind. Anything else
			// is a broken invariant with no recovery path.
			panic("pl011: unexpected transfer error: " + err.Error())
		}
	}
}

// ReadFullBlocking busy-spins until all of p has been filled from the
// receive FIFO. Same liveness caveat as WriteFullBlocking.
func (u *UART) ReadFullBlocking(p []byte) {
	offset := 0
	for offset < len(p) {
		n, err := u.Read(p[offset:])
		switch {
		case err == nil:
			offset += n
		case errors.Is(err, ErrWouldBlock):
			// Nothing received yet; spin and retry.
		default:
			panic("pl011: unexpected transfer error: " + err.Error())
		}
	}
}

// Flush busy-waits until the transmit FIFO is empty and the shifter has
// pushed the last bit onto the line.
func (u *UART) Flush() {
	for !u.dev.Flags().HasBits(frTXFE) || u.dev.Flags().HasBits(frBUSY) {
	}
}
