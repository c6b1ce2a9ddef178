package pl011

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

const testClockHz = 125_000_000

// enable115200 returns an enabled peripheral on a fresh simulated device.
func enable115200(t *testing.T) (*UART, *SimDevice) {
	t.Helper()
	dev := NewSimDevice()
	u, err := Enable(dev, Config115200_8N1, testClockHz)
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	return u, dev
}

func TestEnable_ProgramsDevice(t *testing.T) {
	u, dev := enable115200(t)

	if cr := dev.Ctrl().Get(); cr != crUARTEN|crTXE|crRXE {
		t.Fatalf("UARTCR = %#x; want UARTEN|TXE|RXE", cr)
	}
	if dmacr := dev.DMACtrl().Get(); dmacr != dmacrTXDMAE|dmacrRXDMAE {
		t.Fatalf("UARTDMACR = %#x; want both request enables", dmacr)
	}
	lcrh := dev.LineCtrl().Get()
	if lcrh&lcrhFEN == 0 {
		t.Fatalf("FIFOs not enabled: LCR_H=%#x", lcrh)
	}
	if wlen := (lcrh >> lcrhWLENPos) & 0b11; wlen != 0b11 {
		t.Fatalf("WLEN = %02b; want 0b11 for 8 databits", wlen)
	}
	if ibrd, fbrd := dev.BaudInt().Get(), dev.BaudFrac().Get(); ibrd != 67 || fbrd != 52 {
		t.Fatalf("divisors = (%d, %d); want (67, 52)", ibrd, fbrd)
	}
	if got := u.EffectiveBaud(); got != 115207 {
		t.Fatalf("EffectiveBaud = %d; want 115207", got)
	}
	if got := u.Config(); got != Config115200_8N1 {
		t.Fatalf("Config = %+v; want %+v", got, Config115200_8N1)
	}
}

func TestEnable_RejectsInvalidConfig(t *testing.T) {
	dev := NewSimDevice()
	bad := []Config{
		{BaudRate: 0, DataBits: 8, StopBits: 1},
		{BaudRate: 9600, DataBits: 4, StopBits: 1},
		{BaudRate: 9600, DataBits: 9, StopBits: 1},
		{BaudRate: 9600, DataBits: 8, StopBits: 0},
		{BaudRate: 9600, DataBits: 8, StopBits: 3},
		{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: Parity(9)},
	}
	for _, cfg := range bad {
		if _, err := Enable(dev, cfg, testClockHz); err == nil {
			t.Fatalf("Enable accepted invalid config %+v", cfg)
		}
	}
	// A failed Enable must not leave the device claimed.
	if !dev.Claim() {
		t.Fatal("device left claimed after rejected Enable")
	}
	dev.Release()
}

func TestEnable_ExclusiveOwnership(t *testing.T) {
	u, dev := enable115200(t)

	if _, err := Enable(dev, Config9600_8N1, testClockHz); !errors.Is(err, ErrDeviceInUse) {
		t.Fatalf("second Enable: err = %v; want ErrDeviceInUse", err)
	}

	// Free from the Enabled state returns the handle and ends ownership.
	got := u.Free()
	if got != Device(dev) {
		t.Fatalf("Free returned %v; want the original device", got)
	}
	if _, err := Enable(dev, Config9600_8N1, testClockHz); err != nil {
		t.Fatalf("Enable after Free: %v", err)
	}
}

func TestDisable_PureTransition(t *testing.T) {
	u, dev := enable115200(t)
	cr := dev.Ctrl().Get()

	d := u.Disable()

	// Disable touches no registers.
	if got := dev.Ctrl().Get(); got != cr {
		t.Fatalf("UARTCR changed across Disable: %#x -> %#x", cr, got)
	}

	// Re-enabling requires a full configuration; nothing persists.
	u2, err := d.Enable(Config9600_8N1, testClockHz)
	if err != nil {
		t.Fatalf("re-Enable: %v", err)
	}
	wantI, wantF := baudDivisors(9600, testClockHz)
	if ibrd, fbrd := dev.BaudInt().Get(), dev.BaudFrac().Get(); ibrd != wantI || fbrd != wantF {
		t.Fatalf("divisors after re-enable = (%d, %d); want (%d, %d)", ibrd, fbrd, wantI, wantF)
	}
	if u2.Config() != Config9600_8N1 {
		t.Fatalf("Config after re-enable = %+v; want %+v", u2.Config(), Config9600_8N1)
	}
}

func TestFree_FromDisabledState(t *testing.T) {
	u, dev := enable115200(t)
	d := u.Disable()
	if got := d.Free(); got != Device(dev) {
		t.Fatalf("Free from Disabled returned %v; want the original device", got)
	}
	if !dev.Claim() {
		t.Fatal("device still claimed after Free")
	}
	dev.Release()
}

func TestWrite_PartialIsSuccess(t *testing.T) {
	u, dev := enable115200(t)

	// Leave exactly 3 slots in the 32-deep FIFO.
	if n, err := u.Write(bytes.Repeat([]byte{0xaa}, fifoDepth-3)); err != nil || n != fifoDepth-3 {
		t.Fatalf("prefill: n=%d err=%v", n, err)
	}

	n, err := u.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("partial write: unexpected err %v", err)
	}
	if n != 3 {
		t.Fatalf("partial write accepted %d bytes; want 3", n)
	}
	if pending := dev.TXPending(); pending != fifoDepth {
		t.Fatalf("TX FIFO holds %d; want %d", pending, fifoDepth)
	}
}

func TestWrite_WouldBlockOnFullFIFO(t *testing.T) {
	u, _ := enable115200(t)
	u.Write(bytes.Repeat([]byte{0x55}, fifoDepth))

	if n, err := u.Write([]byte{1}); !errors.Is(err, ErrWouldBlock) || n != 0 {
		t.Fatalf("write on full FIFO: n=%d err=%v; want 0, ErrWouldBlock", n, err)
	}
	if err := u.WriteByte(1); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("WriteByte on full FIFO: err=%v; want ErrWouldBlock", err)
	}
}

func TestWrite_ConsumesWholeInput(t *testing.T) {
	u, dev := enable115200(t)
	payload := []byte("ping\n")

	n, err := u.Write(payload)
	if err != nil || n != len(payload) {
		t.Fatalf("write: n=%d err=%v; want %d, nil", n, err, len(payload))
	}
	if got := dev.DrainTX(0); !bytes.Equal(got, payload) {
		t.Fatalf("TX FIFO drained %q; want %q", got, payload)
	}
}

func TestRead_PartialAndWouldBlock(t *testing.T) {
	u, dev := enable115200(t)
	buf := make([]byte, 8)

	if n, err := u.Read(buf); !errors.Is(err, ErrWouldBlock) || n != 0 {
		t.Fatalf("read on empty FIFO: n=%d err=%v; want 0, ErrWouldBlock", n, err)
	}

	dev.PushRX([]byte("abc"))
	n, err := u.Read(buf)
	if err != nil || n != 3 || string(buf[:n]) != "abc" {
		t.Fatalf("read: n=%d err=%v data=%q; want 3, nil, \"abc\"", n, err, buf[:n])
	}
}

func TestRead_StopsAtBufferLength(t *testing.T) {
	u, dev := enable115200(t)
	dev.PushRX([]byte("abcde"))

	buf := make([]byte, 3)
	n, err := u.Read(buf)
	if err != nil || n != 3 || string(buf) != "abc" {
		t.Fatalf("read: n=%d err=%v data=%q; want 3, nil, \"abc\"", n, err, buf)
	}
	// The rest stays in the FIFO for the next call.
	if pending := dev.RXPending(); pending != 2 {
		t.Fatalf("RX FIFO holds %d; want 2", pending)
	}
	if b, err := u.ReadByte(); err != nil || b != 'd' {
		t.Fatalf("ReadByte: %q, %v; want 'd', nil", b, err)
	}
}

func TestWriteFullBlocking_TransfersAll(t *testing.T) {
	u, dev := enable115200(t)

	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i)
	}

	// A second goroutine plays the wire, draining the FIFO in small bites.
	collected := make(chan []byte, 1)
	go func() {
		var got []byte
		for len(got) < len(payload) {
			got = append(got, dev.DrainTX(7)...)
			time.Sleep(100 * time.Microsecond)
		}
		collected <- got
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		u.WriteFullBlocking(payload)
		u.Flush()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for WriteFullBlocking")
	}

	select {
	case got := <-collected:
		if !bytes.Equal(got, payload) {
			t.Fatalf("wire saw %d bytes, first mismatch at %d", len(got), firstDiff(got, payload))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for drain goroutine")
	}
}

func TestReadFullBlocking_TransfersAll(t *testing.T) {
	u, dev := enable115200(t)

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(255 - i)
	}

	// Feed the RX FIFO in dribs, retrying whatever did not fit.
	go func() {
		rest := payload
		for len(rest) > 0 {
			n := dev.PushRX(rest[:min(5, len(rest))])
			rest = rest[n:]
			time.Sleep(100 * time.Microsecond)
		}
	}()

	got := make([]byte, len(payload))
	done := make(chan struct{})
	go func() {
		defer close(done)
		u.ReadFullBlocking(got)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for ReadFullBlocking")
	}

	if !bytes.Equal(got, payload) {
		t.Fatalf("received %d bytes, first mismatch at %d", len(got), firstDiff(got, payload))
	}
}

func TestWritableReadable(t *testing.T) {
	u, dev := enable115200(t)

	if !u.Writable() {
		t.Fatal("Writable = false on empty TX FIFO")
	}
	if u.Readable() {
		t.Fatal("Readable = true on empty RX FIFO")
	}

	u.Write(bytes.Repeat([]byte{0}, fifoDepth))
	if u.Writable() {
		t.Fatal("Writable = true on full TX FIFO")
	}

	dev.PushRX([]byte{1})
	if !u.Readable() {
		t.Fatal("Readable = false with a byte pending")
	}
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
