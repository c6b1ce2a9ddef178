package pl011

import "testing"

func TestBaudDivisors_Example(t *testing.T) {
	// 125 MHz reference clock, 115200 wanted: raw divisor 8680, so
	// ibrd = 8680>>7 = 67 and fbrd = ((8680&0x7f)+1)/2 = (104+1)/2 = 52.
	ibrd, fbrd := baudDivisors(115200, 125_000_000)
	if ibrd != 67 || fbrd != 52 {
		t.Fatalf("divisors = (%d, %d); want (67, 52)", ibrd, fbrd)
	}
	// effective = 500_000_000 / (64*67 + 52) = 500_000_000 / 4340.
	if got := effectiveBaud(125_000_000, ibrd, fbrd); got != 115207 {
		t.Fatalf("effective baud = %d; want 115207", got)
	}
}

func TestBaudDivisors_Deterministic(t *testing.T) {
	i1, f1 := baudDivisors(9600, 125_000_000)
	for n := 0; n < 5; n++ {
		i2, f2 := baudDivisors(9600, 125_000_000)
		if i1 != i2 || f1 != f2 {
			t.Fatalf("divisors changed between calls: (%d,%d) vs (%d,%d)", i1, f1, i2, f2)
		}
	}
}

func TestBaudDivisors_ClampFast(t *testing.T) {
	// raw = 8*1e6/100_000 = 80, so ibrd candidate is 0.
	ibrd, fbrd := baudDivisors(100_000, 1_000_000)
	if ibrd != 1 || fbrd != 0 {
		t.Fatalf("divisors = (%d, %d); want clamp to (1, 0)", ibrd, fbrd)
	}
}

func TestBaudDivisors_ClampSlow(t *testing.T) {
	// raw = 8*125e6/100 = 1e7, so ibrd candidate is 78125 >= 65535.
	ibrd, fbrd := baudDivisors(100, 125_000_000)
	if ibrd != 65535 || fbrd != 0 {
		t.Fatalf("divisors = (%d, %d); want clamp to (65535, 0)", ibrd, fbrd)
	}
}

func TestProgramBaud_LatchesDivisorsAndPreservesLineControl(t *testing.T) {
	dev := NewSimDevice()
	dev.LineCtrl().Set(0xb5) // arbitrary pre-existing line format

	got := programBaud(dev, 115200, 125_000_000)

	if ibrd := dev.BaudInt().Get(); ibrd != 67 {
		t.Fatalf("IBRD = %d; want 67", ibrd)
	}
	if fbrd := dev.BaudFrac().Get(); fbrd != 52 {
		t.Fatalf("FBRD = %d; want 52", fbrd)
	}
	// The latch write must not alter line-control content.
	if lcrh := dev.LineCtrl().Get(); lcrh != 0xb5 {
		t.Fatalf("LCR_H = %#x after latch write; want %#x", lcrh, 0xb5)
	}
	// The returned rate always derives from the registers as programmed.
	if want := effectiveBaud(125_000_000, 67, 52); got != want {
		t.Fatalf("effective baud = %d; want %d", got, want)
	}
}
