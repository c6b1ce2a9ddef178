//go:build rp2040 || rp2350

// Loopback self-test for the polled PL011 driver.
// Wire TX → RX (for Pico: GP0 to GP1) before flashing.
//
// The test is single-goroutine on purpose: the blocking transfer helpers
// busy-spin without yielding, so each round trip is kept at or under the
// 32-byte FIFO depth to guarantee the RX FIFO never overflows while the
// writer spins.
package main

import (
	"machine"
	"time"

	"github.com/agausmann/rp-hal/pl011"
	"github.com/agausmann/rp-hal/x/mathx"
)

const chunk = 32 // hardware FIFO depth

var payloads = [][]byte{
	[]byte("hello, world\r\n"),
	{0x00, 0x55, 0xaa, 0xff, 0x10, 0x20, 0x30, 0x40},
	[]byte("The quick brown fox jumps over the lazy dog."),
	pattern(256, 0xa5),
	pattern(1024, 0x5a),
}

func pattern(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed ^ byte(i)
	}
	return p
}

func firstMismatch(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// roundTrip pushes one payload through the wired loopback in FIFO-sized
// slices and verifies the echo. Returns the offset of the first bad byte,
// or -1.
func roundTrip(u *pl011.UART, payload []byte) int {
	got := make([]byte, chunk)
	for off := 0; off < len(payload); off += chunk {
		n := mathx.Min(chunk, len(payload)-off)
		u.WriteFullBlocking(payload[off : off+n])
		u.ReadFullBlocking(got[:n])
		if i := firstMismatch(got[:n], payload[off:off+n]); i >= 0 {
			return off + i
		}
	}
	return -1
}

func main() {
	time.Sleep(2 * time.Second) // allow USB CDC to settle

	machine.UART0_TX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})
	machine.UART0_RX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})

	u, err := pl011.Enable(pl011.UART0, pl011.Config115200_8N1, machine.CPUFrequency())
	if err != nil {
		println("enable failed:", err.Error())
		return
	}
	println("pl011 self-test: requested 115200, effective", u.EffectiveBaud())

	pass, fail := 0, 0
	for round := 0; round < 16; round++ {
		for i, p := range payloads {
			if bad := roundTrip(u, p); bad >= 0 {
				println("FAIL payload", i, "mismatch at offset", bad)
				fail++
			} else {
				pass++
			}
		}
	}
	u.Flush()

	println("done: pass =", pass, "fail =", fail)
	u.Free()

	for {
		time.Sleep(time.Second)
	}
}
