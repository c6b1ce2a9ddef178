// pl011/serial.go

package pl011

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Serial adapts an enabled peripheral to the tinygo.org/x/drivers UART
// interface (io.Reader, io.Writer, Buffered) so it can be handed to
// existing sensor and modem drivers that expect one (GPS modules, LoRa
// radios, and so on).
//
// The adapter owns the typestate handle: Configure and SetBaudRate cycle
// the peripheral through Disabled and back.
type Serial struct {
	uart    *UART
	clockHz uint32
}

var _ drivers.UART = (*Serial)(nil)

// NewSerial wraps an enabled peripheral. clockHz must be the same reference
// clock the peripheral was enabled with; reconfiguration needs it to
// recompute divisors.
func NewSerial(u *UART, clockHz uint32) *Serial {
	return &Serial{uart: u, clockHz: clockHz}
}

// UART returns the current enabled handle. It changes after Configure.
func (s *Serial) UART() *UART { return s.uart }

// Configure re-enables the peripheral with a full configuration.
func (s *Serial) Configure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	u, err := s.uart.Disable().Enable(cfg, s.clockHz)
	if err != nil {
		return err
	}
	s.uart = u
	return nil
}

// SetBaudRate re-enables the peripheral at baud, keeping the current
// frame format.
func (s *Serial) SetBaudRate(baud uint32) error {
	c := s.uart.Config()
	c.BaudRate = baud
	return s.Configure(c)
}

// Buffered approximates receive FIFO occupancy. The PL011 has no occupancy
// counter, so this reports 0 (empty), fifoDepth (full) or 1 (something in
// between); drivers only use it as a readiness hint.
func (s *Serial) Buffered() int {
	fr := s.uart.dev.Flags().Get()
	switch {
	case fr&frRXFE != 0:
		return 0
	case fr&frRXFF != 0:
		return fifoDepth
	default:
		return 1
	}
}

// Read fills p from the receive FIFO without blocking. An empty FIFO
// yields (0, nil) rather than an error, matching machine.UART semantics;
// callers gate on Buffered or poll.
func (s *Serial) Read(p []byte) (int, error) {
	n, err := s.uart.Read(p)
	if errors.Is(err, ErrWouldBlock) {
		return 0, nil
	}
	return n, err
}

// ReadByte pops one byte without blocking, returning ErrWouldBlock when
// the FIFO is empty (callers gate on Buffered).
func (s *Serial) ReadByte() (byte, error) {
	return s.uart.ReadByte()
}

// Write sends all of p, blocking until the FIFO has accepted every byte.
func (s *Serial) Write(p []byte) (int, error) {
	s.uart.WriteFullBlocking(p)
	return len(p), nil
}
