// pl011/sim.go

package pl011

import (
	"sync"

	"github.com/agausmann/rp-hal/x/mathx"
)

// SimDevice emulates the PL011 register subset the driver touches, backed
// by in-memory 32-deep FIFOs. It lets the real driver logic run in host
// tests and examples: a test goroutine plays the role of the wire by
// draining the TX FIFO and filling the RX FIFO.
//
// Register semantics mirror hardware where it matters: DR writes push the
// TX FIFO (and are dropped when full), DR reads pop the RX FIFO, FR is
// computed from FIFO occupancy, and the divisor registers mask their
// writes to field width.
type SimDevice struct {
	mu      sync.Mutex
	claimed bool

	tx []byte
	rx []byte

	data     simDataReg
	flags    simFlagReg
	ctrl     simReg
	lineCtrl simReg
	baudInt  simReg
	baudFrac simReg
	dmaCtrl  simReg
}

// NewSimDevice returns an unclaimed simulated PL011 with empty FIFOs.
func NewSimDevice() *SimDevice {
	d := &SimDevice{}
	d.data.dev = d
	d.flags.dev = d
	for _, r := range []*simReg{&d.ctrl, &d.lineCtrl, &d.baudInt, &d.baudFrac, &d.dmaCtrl} {
		r.dev = d
		r.mask = ^uint32(0)
	}
	d.baudInt.mask = 0xffff
	d.baudFrac.mask = 0x3f
	return d
}

func (d *SimDevice) Data() Register     { return &d.data }
func (d *SimDevice) Flags() Register    { return &d.flags }
func (d *SimDevice) LineCtrl() Register { return &d.lineCtrl }
func (d *SimDevice) Ctrl() Register     { return &d.ctrl }
func (d *SimDevice) BaudInt() Register  { return &d.baudInt }
func (d *SimDevice) BaudFrac() Register { return &d.baudFrac }
func (d *SimDevice) DMACtrl() Register  { return &d.dmaCtrl }

func (d *SimDevice) Claim() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.claimed {
		return false
	}
	d.claimed = true
	return true
}

func (d *SimDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claimed = false
}

// Reset clears all registers and FIFOs; ownership is unaffected.
func (d *SimDevice) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tx = nil
	d.rx = nil
	for _, r := range []*simReg{&d.ctrl, &d.lineCtrl, &d.baudInt, &d.baudFrac, &d.dmaCtrl} {
		r.val = 0
	}
}

// ---------------- wire-side helpers (the simulated peer) ----------------

// PushRX feeds bytes into the receive FIFO as if they arrived on the wire,
// returning how many fit before the FIFO filled.
func (d *SimDevice) PushRX(p []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := mathx.Min(len(p), fifoDepth-len(d.rx))
	d.rx = append(d.rx, p[:n]...)
	return n
}

// DrainTX removes up to max bytes from the transmit FIFO as if the wire
// consumed them, and returns them. max <= 0 drains everything pending.
func (d *SimDevice) DrainTX(max int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if max <= 0 {
		max = len(d.tx)
	}
	n := mathx.Clamp(max, 0, len(d.tx))
	out := append([]byte(nil), d.tx[:n]...)
	d.tx = d.tx[n:]
	return out
}

// TXPending returns the current transmit FIFO occupancy.
func (d *SimDevice) TXPending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tx)
}

// RXPending returns the current receive FIFO occupancy.
func (d *SimDevice) RXPending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rx)
}

// ---------------- register implementations ----------------

// simReg is a plain stored register with a write mask.
type simReg struct {
	dev  *SimDevice
	mask uint32
	val  uint32
}

func (r *simReg) Get() uint32 {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	return r.val
}

func (r *simReg) Set(v uint32) {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	r.val = v & r.mask
}

func (r *simReg) SetBits(v uint32)      { r.Set(r.Get() | v) }
func (r *simReg) ClearBits(v uint32)    { r.Set(r.Get() &^ v) }
func (r *simReg) HasBits(v uint32) bool { return r.Get()&v != 0 }

// simDataReg is UARTDR: writes push TX, reads pop RX.
type simDataReg struct {
	dev *SimDevice
}

func (r *simDataReg) Get() uint32 {
	d := r.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rx) == 0 {
		return 0
	}
	b := d.rx[0]
	d.rx = d.rx[1:]
	return uint32(b)
}

func (r *simDataReg) Set(v uint32) {
	d := r.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tx) < fifoDepth {
		d.tx = append(d.tx, byte(v))
	}
	// Writes to a full FIFO are dropped, as on hardware.
}

func (r *simDataReg) SetBits(v uint32)      { r.Set(v) }
func (r *simDataReg) ClearBits(uint32)      {}
func (r *simDataReg) HasBits(v uint32) bool { return r.Get()&v != 0 }

// simFlagReg is UARTFR, computed from FIFO occupancy. The shifter is
// modelled as busy whenever the TX FIFO is non-empty.
type simFlagReg struct {
	dev *SimDevice
}

func (r *simFlagReg) Get() uint32 {
	d := r.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	var fr uint32
	if len(d.rx) == 0 {
		fr |= frRXFE
	}
	if len(d.rx) >= fifoDepth {
		fr |= frRXFF
	}
	if len(d.tx) == 0 {
		fr |= frTXFE
	} else {
		fr |= frBUSY
	}
	if len(d.tx) >= fifoDepth {
		fr |= frTXFF
	}
	return fr
}

func (r *simFlagReg) Set(uint32)            {}
func (r *simFlagReg) SetBits(uint32)        {}
func (r *simFlagReg) ClearBits(uint32)      {}
func (r *simFlagReg) HasBits(v uint32) bool { return r.Get()&v != 0 }
