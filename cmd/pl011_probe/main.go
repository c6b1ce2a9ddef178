//go:build rp2040 || rp2350

// Register probe: enables UART0 with each canonical configuration and
// dumps the divisor pair, the effective rate, and the control registers.
// Useful when checking a board's clk_peri setup against expectations.
package main

import (
	"machine"
	"time"

	"github.com/agausmann/rp-hal/pl011"
)

func printlnHex(v uint32) {
	const hexdigits = "0123456789abcdef"
	var b [8]byte
	for i := 0; i < 8; i++ {
		shift := uint(28 - 4*i)
		b[i] = hexdigits[(v>>shift)&0xf]
	}
	println(string(b[:]))
}

func report(dev pl011.Device) {
	print("UARTCR   = 0x")
	printlnHex(dev.Ctrl().Get())
	print("UARTLCR_H= 0x")
	printlnHex(dev.LineCtrl().Get())
	print("UARTFR   = 0x")
	printlnHex(dev.Flags().Get())
	print("UARTIBRD = 0x")
	printlnHex(dev.BaudInt().Get())
	print("UARTFBRD = 0x")
	printlnHex(dev.BaudFrac().Get())
}

func main() {
	time.Sleep(2 * time.Second)

	clock := machine.CPUFrequency()
	println("reference clock:", clock, "Hz")

	configs := []pl011.Config{
		pl011.Config9600_8N1,
		pl011.Config19200_8N1,
		pl011.Config38400_8N1,
		pl011.Config57600_8N1,
		pl011.Config115200_8N1,
	}

	for _, cfg := range configs {
		u, err := pl011.Enable(pl011.UART0, cfg, clock)
		if err != nil {
			println("enable failed:", err.Error())
			continue
		}
		println("-----------------------------")
		println("requested:", cfg.BaudRate, "effective:", u.EffectiveBaud())
		report(pl011.UART0)
		u.Free()
	}

	for {
		time.Sleep(time.Second)
	}
}
