// pl011/pl011.go

// Package pl011 drives the PL011-compatible UART found on RP2040/RP2350.
// The driver is polled: Read and Write are single-pass and bounded by the
// hardware FIFO status flags, and the *FullBlocking helpers busy-spin until
// the whole buffer has moved. There is no interrupt or DMA engine here; the
// DMA request lines are enabled so an external DMA channel may pace itself
// off the FIFOs, but buffer management is the caller's problem.
//
// Lifecycle is expressed in the type system: Enable returns a *UART, the
// only type with transfer methods, and Disable hands back a *Disabled that
// can merely be re-enabled or freed.
package pl011

import "errors"

// ErrWouldBlock reports that the hardware FIFO could accept or produce no
// data at all on this call. It is transient; retry later. Calls that made
// partial progress return a byte count and a nil error instead.
var ErrWouldBlock = errors.New("UART FIFO would block")

// ErrDeviceInUse reports that the device handle is already owned by another
// peripheral instance.
var ErrDeviceInUse = errors.New("UART device already in use")

var (
	errInvalidBaudRate = errors.New("invalid baud rate")
	errInvalidDataBits = errors.New("invalid databits")
	errInvalidStopBits = errors.New("invalid stopbits")
	errInvalidParity   = errors.New("invalid parity")
)

// Parity defines the parity setting used for UART communication.
type Parity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone Parity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

// Config describes the line configuration a peripheral is enabled with.
// It is a plain value; the driver never mutates it after Enable.
type Config struct {
	BaudRate uint32 // bits per second, > 0
	DataBits uint8  // 5..8
	StopBits uint8  // 1 or 2
	Parity   Parity
}

// validate rejects configurations the hardware cannot express.
func (c Config) validate() error {
	if c.BaudRate == 0 {
		return errInvalidBaudRate
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return errInvalidDataBits
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return errInvalidStopBits
	}
	if c.Parity > ParityOdd {
		return errInvalidParity
	}
	return nil
}

// Common configurations. All are 8 data bits, no parity, 1 stop bit.
var (
	Config9600_8N1   = Config{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: ParityNone}
	Config19200_8N1  = Config{BaudRate: 19200, DataBits: 8, StopBits: 1, Parity: ParityNone}
	Config38400_8N1  = Config{BaudRate: 38400, DataBits: 8, StopBits: 1, Parity: ParityNone}
	Config57600_8N1  = Config{BaudRate: 57600, DataBits: 8, StopBits: 1, Parity: ParityNone}
	Config115200_8N1 = Config{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: ParityNone}
)
