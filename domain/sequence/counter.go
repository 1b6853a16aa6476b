package sequence

import "strings"

// Alphabet selects the ordered symbol set a counter is expressed in. The
// first symbol is the low digit, the last symbol is the high digit.
type Alphabet int

const (
	AlphaNumeric Alphabet = 1
	Alpha        Alphabet = 2
	Numeric      Alphabet = 3
)

const (
	digits  = "0123456789"
	letters = "abcdefghijklmnopqrstuvwxyz"
)

// Symbols returns the ordered symbol sequence for the alphabet.
func (a Alphabet) Symbols() string {
	switch a {
	case Alpha:
		return letters
	case Numeric:
		return digits
	default:
		return digits + letters
	}
}

// First returns the alphabet's low digit, used for left padding.
func (a Alphabet) First() byte {
	return a.Symbols()[0]
}

// Increment treats value as a big-endian fixed-width number in the alphabet
// and advances it by one. The carry walk runs from the rightmost position:
// the high symbol resets to the low symbol and carries left, any other
// symbol steps to its successor and stops. A carry past the most significant
// position wraps silently to all-low-symbols; exhaustion is not reported.
func Increment(value string, alphabet Alphabet) string {
	symbols := alphabet.Symbols()
	last := symbols[len(symbols)-1]

	out := []byte(value)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] == last {
			out[i] = symbols[0]
			continue
		}
		// A symbol outside the alphabet indexes to -1 and steps to the
		// low digit rather than failing.
		out[i] = symbols[strings.IndexByte(symbols, out[i])+1]
		break
	}
	return string(out)
}

// Pad left-pads a raw counter with the alphabet's low digit to the given
// width. Values already at or beyond the width pass through unchanged.
func Pad(value string, width int, alphabet Alphabet) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat(string(alphabet.First()), width-len(value)) + value
}
