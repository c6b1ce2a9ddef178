// pl011/format.go

package pl011

// lineFormat composes the full LCR_H value for a line configuration:
// word length (5..8 encoded as 0b00..0b11), stop-bit select, parity enable
// and polarity, and FEN. The FIFOs are always enabled by this driver; there
// is no character-mode fallback.
//
// The result is written as one whole-register transaction during enable,
// never OR-ed into an existing value.
func lineFormat(databits, stopbits uint8, parity Parity) (uint32, error) {
	if databits < 5 || databits > 8 {
		return 0, errInvalidDataBits
	}
	if stopbits != 1 && stopbits != 2 {
		return 0, errInvalidStopBits
	}

	var pen, eps uint32
	switch parity {
	case ParityNone:
		// PEN clear; EPS is don't-care and left clear.
	case ParityOdd:
		pen = lcrhPEN
	case ParityEven:
		pen = lcrhPEN
		eps = lcrhEPS
	default:
		return 0, errInvalidParity
	}

	return uint32(databits-5)<<lcrhWLENPos |
		uint32(stopbits-1)<<lcrhSTP2Pos |
		pen | eps | lcrhFEN, nil
}
