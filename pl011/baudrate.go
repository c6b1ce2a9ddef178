// pl011/baudrate.go

package pl011

// baudDivisors maps a wanted baud rate and the UART reference clock to the
// PL011 integer/fractional divisor pair. The fixed-point divisor is
// clock/(16*baud) carried with one extra bit so the fractional part can be
// rounded to its 6-bit register. Out-of-range results clamp to the fastest
// (ibrd=1) or slowest (ibrd=65535) representable rate, with the fractional
// part zeroed.
func baudDivisors(baud, clockHz uint32) (ibrd, fbrd uint32) {
	div := 8 * clockHz / baud

	ibrd = div >> 7
	switch {
	case ibrd == 0:
		ibrd, fbrd = 1, 0
	case ibrd >= 65535:
		ibrd, fbrd = 65535, 0
	default:
		fbrd = ((div & 0x7f) + 1) / 2
	}
	return ibrd, fbrd
}

// effectiveBaud returns the rate the divisor pair actually yields from the
// reference clock. Callers must treat this, not the requested rate, as
// authoritative when reasoning about drift.
func effectiveBaud(clockHz, ibrd, fbrd uint32) uint32 {
	return (4 * clockHz) / (64*ibrd + fbrd)
}

// programBaud latches the divisor pair for the wanted rate into dev and
// returns the effective baud rate. The trailing LCR_H rewrite is required
// by the PL011 to latch new divisors; it must not change line-control
// content, so the current value is written back.
func programBaud(dev Device, baud, clockHz uint32) uint32 {
	ibrd, fbrd := baudDivisors(baud, clockHz)

	dev.BaudInt().Set(ibrd)
	dev.BaudFrac().Set(fbrd)
	dev.LineCtrl().Set(dev.LineCtrl().Get())

	return effectiveBaud(clockHz, ibrd, fbrd)
}
