//go:build rp2040 || rp2350

// Cross-wired self-test exercising both PL011 instances: UART0 TX → UART1
// RX and UART1 TX → UART0 RX (for Pico: GP0→GP9, GP8→GP1). Traffic runs in
// both directions from a single goroutine, one FIFO-depth slice at a time.
package main

import (
	"machine"
	"time"

	"github.com/agausmann/rp-hal/pl011"
	"github.com/agausmann/rp-hal/x/mathx"
)

const chunk = 32

func firstMismatch(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// pump sends payload from tx and verifies it arrives intact on rx.
func pump(tx, rx *pl011.UART, payload []byte) bool {
	got := make([]byte, chunk)
	for off := 0; off < len(payload); off += chunk {
		n := mathx.Min(chunk, len(payload)-off)
		tx.WriteFullBlocking(payload[off : off+n])
		rx.ReadFullBlocking(got[:n])
		if i := firstMismatch(got[:n], payload[off:off+n]); i >= 0 {
			println("mismatch at offset", off+i)
			return false
		}
	}
	return true
}

func main() {
	time.Sleep(2 * time.Second)

	machine.UART0_TX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})
	machine.UART0_RX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})
	machine.UART1_TX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})
	machine.UART1_RX_PIN.Configure(machine.PinConfig{Mode: machine.PinUART})

	clock := machine.CPUFrequency()
	u0, err := pl011.Enable(pl011.UART0, pl011.Config115200_8N1, clock)
	if err != nil {
		println("enable UART0:", err.Error())
		return
	}
	u1, err := pl011.Enable(pl011.UART1, pl011.Config115200_8N1, clock)
	if err != nil {
		println("enable UART1:", err.Error())
		return
	}
	println("dual self-test at effective", u0.EffectiveBaud(), "/", u1.EffectiveBaud())

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	ok := true
	for round := 0; round < 8 && ok; round++ {
		ok = pump(u0, u1, payload) && pump(u1, u0, payload)
		println("round", round, "ok =", ok)
	}
	u0.Flush()
	u1.Flush()

	if ok {
		println("PASS")
	} else {
		println("FAIL")
	}

	for {
		time.Sleep(time.Second)
	}
}
